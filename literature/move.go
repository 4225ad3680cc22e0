package literature

import (
	"time"

	"literature-lite/card"
)

// Move is one history record. Exactly one of Ask, Claim or Transfer is set,
// matching Kind.
type Move struct {
	Seq         int       `json:"seq"`
	Kind        MoveKind  `json:"kind"`
	Actor       string    `json:"actor"`
	Success     bool      `json:"success"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`

	Ask      *AskMove      `json:"ask,omitempty"`
	Claim    *ClaimMove    `json:"claim,omitempty"`
	Transfer *TransferMove `json:"transfer,omitempty"`
}

type AskMove struct {
	Target string    `json:"target"`
	Card   card.Card `json:"card"`
}

type ClaimMove struct {
	Book        card.BookID          `json:"book"`
	BookName    string               `json:"bookName"`
	Owners      map[card.Card]string `json:"owners"`
	WinningTeam string               `json:"winningTeam"`
}

type TransferMove struct {
	Target string `json:"target"`
}

func (m Move) clone() Move {
	out := m
	if m.Ask != nil {
		a := *m.Ask
		out.Ask = &a
	}
	if m.Claim != nil {
		c := *m.Claim
		c.Owners = make(map[card.Card]string, len(m.Claim.Owners))
		for k, v := range m.Claim.Owners {
			c.Owners[k] = v
		}
		out.Claim = &c
	}
	if m.Transfer != nil {
		t := *m.Transfer
		out.Transfer = &t
	}
	return out
}

func cloneMoves(ms []Move) []Move {
	if len(ms) == 0 {
		return nil
	}
	out := make([]Move, len(ms))
	for i, m := range ms {
		out[i] = m.clone()
	}
	return out
}
