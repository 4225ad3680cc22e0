package replay

import "literature-lite/literature"

// GameSpec describes a game to re-run: who sits where, how teams are
// split, the seed that decides the deal, and the moves in order.
type GameSpec struct {
	Variant   string              `json:"variant"`
	Seed      int64               `json:"seed"`
	StrictAsk bool                `json:"strict_ask,omitempty"`
	MaxWeight float64             `json:"max_weight,omitempty"`
	Players   []PlayerSpec        `json:"players"`
	Teams     map[string][]string `json:"teams,omitempty"`
	Moves     []MoveSpec          `json:"moves"`
	// Autoplay lets the bot heuristic finish the game after Moves.
	Autoplay bool `json:"autoplay,omitempty"`
	MaxSteps int  `json:"max_steps,omitempty"`
}

type PlayerSpec struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Bot    bool   `json:"bot,omitempty"`
}

type MoveSpec struct {
	Kind   string            `json:"kind"` // ask | claim | transfer
	Actor  string            `json:"actor"`
	Target string            `json:"target,omitempty"`
	Card   string            `json:"card,omitempty"`
	Claim  map[string]string `json:"claim,omitempty"`
}

const TapeVersion = 1

// Tape is the result of a replay: one event per applied move plus the
// final state.
type Tape struct {
	TapeVersion int                 `json:"tape_version"`
	Variant     string              `json:"variant"`
	Seed        int64               `json:"seed"`
	Events      []Event             `json:"events"`
	Final       literature.Snapshot `json:"final"`
}

// Event sources.
const (
	SourceSpec = "spec"
	SourceBot  = "bot"
)

type Event struct {
	Step   int             `json:"step"`
	Source string          `json:"source"`
	Move   literature.Move `json:"move"`
	Turn   string          `json:"turn,omitempty"`
	Scores map[string]int  `json:"scores"`
}
