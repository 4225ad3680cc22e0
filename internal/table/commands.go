package table

import (
	"literature-lite/card"
	"literature-lite/literature"
)

// Typed wrappers around SubmitEvent used by the HTTP and websocket layers.

func (t *Table) Join(id literature.Identity) (literature.PlayerView, error) {
	res, err := t.SubmitEvent(Event{Type: EventJoin, Actor: id})
	return viewOf(res), err
}

// AddBots fills the remaining seats and returns the new bot ids.
func (t *Table) AddBots(actor string) ([]string, error) {
	res, err := t.SubmitEvent(Event{Type: EventAddBots, Actor: literature.Identity{ID: actor}})
	return res.Players, err
}

func (t *Table) CreateTeams(actor string, teams map[string][]string) (literature.PlayerView, error) {
	res, err := t.SubmitEvent(Event{Type: EventCreateTeams, Actor: literature.Identity{ID: actor}, Teams: teams})
	return viewOf(res), err
}

func (t *Table) Start(actor string) (literature.PlayerView, error) {
	res, err := t.SubmitEvent(Event{Type: EventStart, Actor: literature.Identity{ID: actor}})
	return viewOf(res), err
}

func (t *Table) Ask(actor, target string, c card.Card) (literature.Move, error) {
	res, err := t.SubmitEvent(Event{Type: EventAsk, Actor: literature.Identity{ID: actor}, Target: target, Card: c})
	return moveOf(res), err
}

func (t *Table) Claim(actor string, owners map[card.Card]string) (literature.Move, error) {
	res, err := t.SubmitEvent(Event{Type: EventClaim, Actor: literature.Identity{ID: actor}, Claim: owners})
	return moveOf(res), err
}

func (t *Table) Transfer(actor, target string) (literature.Move, error) {
	res, err := t.SubmitEvent(Event{Type: EventTransfer, Actor: literature.Identity{ID: actor}, Target: target})
	return moveOf(res), err
}

// View reads the player's view through the queue, so it reflects every
// command submitted before it.
func (t *Table) View(playerID string) (literature.PlayerView, error) {
	res, err := t.SubmitEvent(Event{Type: EventView, Actor: literature.Identity{ID: playerID}})
	return viewOf(res), err
}

func viewOf(res Result) literature.PlayerView {
	if res.View == nil {
		return literature.PlayerView{}
	}
	return *res.View
}

func moveOf(res Result) literature.Move {
	if res.Move == nil {
		return literature.Move{}
	}
	return *res.Move
}
