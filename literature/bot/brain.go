package bot

import (
	"errors"

	"literature-lite/card"
	"literature-lite/literature"
)

// ErrNoMove means no transfer, claim or ask qualified for this turn.
var ErrNoMove = errors.New("bot: no move available")

// Decision is the move a bot wants to submit. Target is used by asks and
// transfers, Card by asks, Claim by claims.
type Decision struct {
	Kind   literature.MoveKind
	Target string
	Card   card.Card
	Claim  map[card.Card]string
	Weight float64
}

// BrainDecider picks a move from what one player can see.
type BrainDecider interface {
	Decide(view literature.PlayerView) (Decision, error)
	Name() string
}

// Apply submits the decision for player on g.
func (d Decision) Apply(g *literature.Game, player string) (literature.Move, error) {
	switch d.Kind {
	case literature.MoveAsk:
		return g.Ask(player, d.Target, d.Card)
	case literature.MoveClaim:
		return g.Claim(player, d.Claim)
	case literature.MoveTransfer:
		return g.Transfer(player, d.Target)
	}
	return literature.Move{}, ErrNoMove
}
