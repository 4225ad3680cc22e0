package table

import (
	"github.com/google/go-cmp/cmp"

	"literature-lite/card"
	"literature-lite/internal/notify"
	"literature-lite/literature"
)

type StatusPayload struct {
	Status literature.Status `json:"status"`
}

type TurnPayload struct {
	Turn string `json:"turn"`
}

type TeamScore struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Score int           `json:"score"`
	Books []card.BookID `json:"books,omitempty"`
}

type ScorePayload struct {
	Teams []TeamScore `json:"teams"`
}

type HandPayload struct {
	Hand []card.Card `json:"hand"`
}

type BeliefsPayload struct {
	Beliefs literature.Beliefs `json:"beliefs"`
}

// diff turns one state change into notifications. Hands and beliefs are
// only ever addressed to their owner; bots have no socket so they are
// skipped.
func diff(before, after literature.Snapshot, isBot func(string) bool) []notify.Notification {
	var out []notify.Notification
	public := func(k notify.Kind, payload any) {
		out = append(out, notify.Notification{Kind: k, Payload: payload})
	}

	for _, p := range after.Players {
		if _, ok := before.Player(p.ID); ok {
			continue
		}
		p.Hand = nil
		public(notify.KindPlayerJoined, p)
	}
	if len(before.Teams) == 0 && len(after.Teams) > 0 {
		public(notify.KindTeamsCreated, after.Teams)
	}
	if before.Status != after.Status {
		public(notify.KindStatus, StatusPayload{Status: after.Status})
	}
	// history is newest first
	for i := len(after.History) - 1; i >= 0; i-- {
		if m := after.History[i]; m.Seq > before.Seq {
			public(notify.KindMove, m)
		}
	}
	if scoreChanged(before, after) {
		payload := ScorePayload{}
		for _, t := range after.Teams {
			payload.Teams = append(payload.Teams, TeamScore{ID: t.ID, Name: t.Name, Score: t.Score, Books: t.Books})
		}
		public(notify.KindScore, payload)
	}
	if before.Turn != after.Turn {
		public(notify.KindTurn, TurnPayload{Turn: after.Turn})
	}

	for _, p := range after.Players {
		if isBot != nil && isBot(p.ID) {
			continue
		}
		prev, _ := before.Player(p.ID)
		if !sameCards(prev.Hand, p.Hand) {
			out = append(out, notify.Notification{
				Kind:       notify.KindHand,
				Recipients: []string{p.ID},
				Payload:    HandPayload{Hand: append([]card.Card{}, p.Hand...)},
			})
		}
		if next := after.Beliefs[p.ID]; !cmp.Equal(before.Beliefs[p.ID], next) {
			out = append(out, notify.Notification{
				Kind:       notify.KindBeliefs,
				Recipients: []string{p.ID},
				Payload:    BeliefsPayload{Beliefs: next},
			})
		}
	}
	return out
}

func scoreChanged(before, after literature.Snapshot) bool {
	for _, t := range after.Teams {
		prev, _ := before.Team(t.ID)
		if prev.Score != t.Score {
			return true
		}
	}
	return false
}

func sameCards(a, b []card.Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
