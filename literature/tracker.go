package literature

import (
	"sort"

	"literature-lite/card"
)

// Belief is what one player believes about the location of one card.
// Once Known is set, Possible is empty.
type Belief struct {
	Known    string             `json:"known,omitempty"`
	Inferred string             `json:"inferred,omitempty"`
	Possible map[string]float64 `json:"possible,omitempty"`
}

// Resolved reports whether the owner is known or inferred.
func (b Belief) Resolved() bool { return b.Known != "" || b.Inferred != "" }

// Candidates lists possible owners in id order.
func (b Belief) Candidates() []string {
	out := make([]string, 0, len(b.Possible))
	for id := range b.Possible {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (b Belief) clone() Belief {
	out := Belief{Known: b.Known, Inferred: b.Inferred}
	if len(b.Possible) > 0 {
		out.Possible = make(map[string]float64, len(b.Possible))
		for k, v := range b.Possible {
			out.Possible[k] = v
		}
	}
	return out
}

// Beliefs is one player's table of every card still in play.
type Beliefs map[card.Card]Belief

func (bs Beliefs) clone() Beliefs {
	out := make(Beliefs, len(bs))
	for c, b := range bs {
		out[c] = b.clone()
	}
	return out
}

// Tracker keeps a belief table per player. Every table only ever learns from
// public events and the owner's own hand.
type Tracker struct {
	maxWeight float64
	tables    map[string]map[card.Card]*Belief
}

func NewTracker(maxWeight float64) *Tracker {
	if maxWeight <= 0 {
		maxWeight = DefaultMaxWeight
	}
	return &Tracker{
		maxWeight: maxWeight,
		tables:    make(map[string]map[card.Card]*Belief),
	}
}

func (t *Tracker) MaxWeight() float64 { return t.maxWeight }

// Seed populates every table right after the deal.
func (t *Tracker) Seed(hands map[string]card.CardList) {
	t.tables = make(map[string]map[card.Card]*Belief, len(hands))
	for viewer := range hands {
		table := make(map[card.Card]*Belief)
		for owner, hand := range hands {
			for _, c := range hand {
				if owner == viewer {
					table[c] = &Belief{Known: viewer}
					continue
				}
				b := &Belief{Possible: make(map[string]float64, len(hands)-1)}
				for id := range hands {
					if id != viewer {
						b.Possible[id] = 0
					}
				}
				t.settle(b)
				table[c] = b
			}
		}
		t.tables[viewer] = table
	}
}

// ObserveAsk records a public ask. book holds the unclaimed cards of the
// asked card's book.
func (t *Tracker) ObserveAsk(asker, target string, c card.Card, book []card.Card, hit bool) {
	for viewer, table := range t.tables {
		if viewer != asker {
			inferHolder(table, asker, c, book)
		}
		b, ok := table[c]
		if !ok {
			continue
		}
		if hit {
			setKnown(b, asker)
			continue
		}
		t.eliminate(b, asker)
		t.eliminate(b, target)
	}
}

// ObserveEmpty removes a player with no cards left from every candidate set.
func (t *Tracker) ObserveEmpty(player string) {
	for _, table := range t.tables {
		for _, b := range table {
			t.eliminate(b, player)
		}
	}
}

// Retire drops claimed cards from every table.
func (t *Tracker) Retire(cards []card.Card) {
	for _, table := range t.tables {
		for _, c := range cards {
			delete(table, c)
		}
	}
}

// View copies one player's table.
func (t *Tracker) View(player string) Beliefs {
	table, ok := t.tables[player]
	if !ok {
		return nil
	}
	out := make(Beliefs, len(table))
	for c, b := range table {
		out[c] = b.clone()
	}
	return out
}

func (t *Tracker) views() map[string]Beliefs {
	out := make(map[string]Beliefs, len(t.tables))
	for id := range t.tables {
		out[id] = t.View(id)
	}
	return out
}

func (t *Tracker) restore(views map[string]Beliefs) {
	t.tables = make(map[string]map[card.Card]*Belief, len(views))
	for id, bs := range views {
		table := make(map[card.Card]*Belief, len(bs))
		for c, b := range bs {
			cb := b.clone()
			table[c] = &cb
		}
		t.tables[id] = table
	}
}

// inferHolder: asking for c suggests the asker holds another card of its
// book. If exactly one unresolved card of the book could be the asker's, the
// asker is inferred to hold it.
func inferHolder(table map[card.Card]*Belief, asker string, asked card.Card, book []card.Card) {
	var candidate *Belief
	n := 0
	for _, c := range book {
		if c == asked {
			continue
		}
		b, ok := table[c]
		if !ok {
			continue
		}
		if b.Known == asker || b.Inferred == asker {
			return
		}
		if b.Known != "" {
			continue
		}
		if _, ok := b.Possible[asker]; ok {
			candidate = b
			n++
		}
	}
	if n == 1 {
		candidate.Inferred = asker
	}
}

func setKnown(b *Belief, owner string) {
	b.Known = owner
	b.Inferred = ""
	b.Possible = nil
}

func (t *Tracker) eliminate(b *Belief, player string) {
	if b.Known != "" {
		return
	}
	if _, ok := b.Possible[player]; !ok {
		return
	}
	delete(b.Possible, player)
	if b.Inferred == player {
		b.Inferred = ""
	}
	t.settle(b)
}

// settle spreads W evenly over the remaining candidates and promotes a
// single survivor to known.
func (t *Tracker) settle(b *Belief) {
	switch len(b.Possible) {
	case 0:
		return
	case 1:
		for id := range b.Possible {
			setKnown(b, id)
		}
		return
	}
	share := t.maxWeight / float64(len(b.Possible))
	for id := range b.Possible {
		b.Possible[id] = share
	}
}
