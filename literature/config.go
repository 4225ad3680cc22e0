package literature

import (
	"fmt"
	"strings"
	"time"

	"literature-lite/card"
)

// DefaultMaxWeight is the weight budget W split among a card's possible owners.
const DefaultMaxWeight = 100.0

type Config struct {
	// Roster
	PlayerCount int `json:"playerCount"`
	TeamCount   int `json:"teamCount"`

	// Deck
	Layout        card.Layout `json:"layout"`
	ExcludedRanks []card.Rank `json:"excludedRanks,omitempty"`

	// Tracker weight budget (W). Known owners count W, inferred W/2.
	MaxWeight float64 `json:"maxWeight"`

	// StrictAsk requires the asker to hold a card of the asked book.
	StrictAsk bool `json:"strictAsk,omitempty"`

	// RNG seed (0 => time-based)
	Seed int64 `json:"seed"`

	// Clock for move timestamps; nil => time.Now
	Now func() time.Time `json:"-"`
}

// Literature is the classic six or eight player game: half-suit books with
// the sevens taken out.
func Literature(players int) Config {
	return Config{
		PlayerCount:   players,
		TeamCount:     2,
		Layout:        card.LayoutHalfSuit,
		ExcludedRanks: []card.Rank{card.Seven},
		MaxWeight:     DefaultMaxWeight,
	}
}

// Fish plays the full deck in books of four cards of one rank.
func Fish(players int) Config {
	return Config{
		PlayerCount: players,
		TeamCount:   2,
		Layout:      card.LayoutRank,
		MaxWeight:   DefaultMaxWeight,
	}
}

// Variant returns the preset for a variant name.
func Variant(name string, players int) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "literature":
		return Literature(players), nil
	case "fish":
		return Fish(players), nil
	}
	return Config{}, fmt.Errorf("unknown variant %q", name)
}

func (c Config) withDefaults() Config {
	if c.TeamCount == 0 {
		c.TeamCount = 2
	}
	if c.MaxWeight == 0 {
		c.MaxWeight = DefaultMaxWeight
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

func (c Config) validate() error {
	if c.PlayerCount < 2 {
		return fmt.Errorf("PlayerCount must be >= 2")
	}
	if c.TeamCount < 2 {
		return fmt.Errorf("TeamCount must be >= 2")
	}
	if c.PlayerCount%c.TeamCount != 0 {
		return fmt.Errorf("PlayerCount %d does not split into %d equal teams", c.PlayerCount, c.TeamCount)
	}
	if c.MaxWeight <= 0 {
		return fmt.Errorf("MaxWeight must be > 0")
	}
	deck, err := card.NewDeck(c.Layout, c.ExcludedRanks)
	if err != nil {
		return err
	}
	if deck.Size()%c.PlayerCount != 0 {
		return fmt.Errorf("%d cards cannot be dealt evenly to %d players", deck.Size(), c.PlayerCount)
	}
	return nil
}
