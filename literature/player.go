package literature

import "literature-lite/card"

// Stats are the running per-player counters.
type Stats struct {
	AsksMade        int `json:"asksMade"`
	CardsTaken      int `json:"cardsTaken"`
	CardsGiven      int `json:"cardsGiven"`
	ClaimsAttempted int `json:"claimsAttempted"`
	ClaimsSucceeded int `json:"claimsSucceeded"`
}

type Player struct {
	ID     string
	Name   string
	Avatar string
	Bot    bool
	TeamID string

	hand  card.CardList
	stats Stats
}

func (p *Player) Hand() card.CardList { return p.hand.Clone() }
func (p *Player) CardCount() int      { return p.hand.Count() }
func (p *Player) Stats() Stats        { return p.stats }

func (p *Player) holds(c card.Card) bool { return p.hand.Contains(c) }

// Team refers to its members by id only.
type Team struct {
	ID      string
	Name    string
	Members []string
	Score   int
	Books   []card.BookID
}

func (t *Team) has(playerID string) bool {
	for _, id := range t.Members {
		if id == playerID {
			return true
		}
	}
	return false
}
