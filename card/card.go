package card

import (
	"fmt"
	"strings"
)

// Card 牌枚举
//
// 编码规则:
// - 高4位: 花色 (0:Spade, 1:Heart, 2:Club, 3:Diamond)
// - 低4位: 点数 (1:A, 2..9, 10:T, 11:J, 12:Q, 13:K)
//
// The string form ("AS", "TH", "7C") is the stable identifier used on the wire
// and in persisted snapshots.
type Card byte

const CardInvalid Card = 0

// New builds a card from rank and suit. It returns CardInvalid for
// out-of-range input.
func New(r Rank, s Suit) Card {
	if !r.Valid() || !s.Valid() {
		return CardInvalid
	}
	return Card(byte(s)<<4 | byte(r))
}

func (c Card) Rank() Rank {
	if c == CardInvalid {
		return 0
	}
	return Rank(c & 0x0F)
}

func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) Valid() bool {
	return c.Rank().Valid() && c.Suit().Valid()
}

func (c Card) String() string {
	if !c.Valid() {
		return "Invalid"
	}
	return c.Rank().String() + c.Suit().String()
}

// Pretty renders the card with a suit glyph, for logs and move descriptions.
func (c Card) Pretty() string {
	if !c.Valid() {
		return "?"
	}
	return c.Rank().String() + c.Suit().Glyph()
}

func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card %#x", byte(c))
	}
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Parse 将字符串 (如 "AS", "Td", "10h") 转换为 Card
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return CardInvalid, fmt.Errorf("invalid card string: %q", s)
	}

	suit, ok := parseSuit(s[len(s)-1])
	if !ok {
		return CardInvalid, fmt.Errorf("invalid suit: %c", s[len(s)-1])
	}
	rank, ok := parseRank(s[:len(s)-1])
	if !ok {
		return CardInvalid, fmt.Errorf("invalid rank: %s", s[:len(s)-1])
	}
	return New(rank, suit), nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseList parses every identifier and fails on the first bad one.
func ParseList(ids []string) ([]Card, error) {
	out := make([]Card, 0, len(ids))
	for _, id := range ids {
		c, err := Parse(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Codes returns the identifiers of cs in order.
func Codes(cs []Card) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

// ParseOwners parses a card-id keyed map such as a claim {"AS": "p1"}.
func ParseOwners(raw map[string]string) (map[Card]string, error) {
	out := make(map[Card]string, len(raw))
	for id, owner := range raw {
		c, err := Parse(id)
		if err != nil {
			return nil, err
		}
		if _, dup := out[c]; dup {
			return nil, fmt.Errorf("card %s named twice", c)
		}
		out[c] = owner
	}
	return out, nil
}
