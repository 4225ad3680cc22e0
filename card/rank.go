package card

import (
	"fmt"
	"strings"
)

// Rank 点数 1-13 (A=1, K=13)
type Rank byte

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists A..K in ascending order.
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

func (r Rank) Valid() bool { return r >= Ace && r <= King }

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r.Valid() {
		return fmt.Sprintf("%d", byte(r))
	}
	return "?"
}

// Plural names a rank book ("aces", "sevens").
func (r Rank) Plural() string {
	switch r {
	case Ace:
		return "aces"
	case Two:
		return "twos"
	case Three:
		return "threes"
	case Four:
		return "fours"
	case Five:
		return "fives"
	case Six:
		return "sixes"
	case Seven:
		return "sevens"
	case Eight:
		return "eights"
	case Nine:
		return "nines"
	case Ten:
		return "tens"
	case Jack:
		return "jacks"
	case Queen:
		return "queens"
	case King:
		return "kings"
	}
	return "unknown"
}

func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank %d", byte(r))
	}
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	parsed, ok := parseRank(string(b))
	if !ok {
		return fmt.Errorf("invalid rank: %s", b)
	}
	*r = parsed
	return nil
}

// ParseRank accepts "A", "2".."10", "T", "J", "Q", "K" in any case.
func ParseRank(s string) (Rank, error) {
	r, ok := parseRank(strings.TrimSpace(s))
	if !ok {
		return 0, fmt.Errorf("invalid rank: %s", s)
	}
	return r, nil
}

func parseRank(s string) (Rank, bool) {
	switch strings.ToUpper(s) {
	case "A", "1":
		return Ace, true
	case "2":
		return Two, true
	case "3":
		return Three, true
	case "4":
		return Four, true
	case "5":
		return Five, true
	case "6":
		return Six, true
	case "7":
		return Seven, true
	case "8":
		return Eight, true
	case "9":
		return Nine, true
	case "T", "10":
		return Ten, true
	case "J":
		return Jack, true
	case "Q":
		return Queen, true
	case "K":
		return King, true
	}
	return 0, false
}
