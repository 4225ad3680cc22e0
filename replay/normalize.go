package replay

import (
	"strings"

	"literature-lite/card"
	"literature-lite/literature"
	"literature-lite/literature/bot"
)

const defaultMaxSteps = 2000

type normalizedMove struct {
	kind   literature.MoveKind
	actor  string
	target string
	card   card.Card
	claim  map[card.Card]string
}

type normalizedSpec struct {
	cfg      literature.Config
	humans   []literature.Identity
	bots     []literature.Identity
	teams    map[string][]string
	moves    []normalizedMove
	autoplay bool
	maxSteps int
}

func normalizeSpec(spec GameSpec) (normalizedSpec, error) {
	var out normalizedSpec
	cfg, err := literature.Variant(spec.Variant, len(spec.Players))
	if err != nil {
		return out, specError("invalid_variant", "%v", err)
	}
	if spec.Seed == 0 {
		return out, specError("invalid_seed", "seed must be non-zero for a reproducible deal")
	}
	cfg.Seed = spec.Seed
	cfg.StrictAsk = spec.StrictAsk
	if spec.MaxWeight > 0 {
		cfg.MaxWeight = spec.MaxWeight
	}
	cfg.Now = newStepClock()
	out.cfg = cfg

	seen := make(map[string]bool, len(spec.Players))
	for i, p := range spec.Players {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return out, specError("invalid_players", "player %d has no id", i)
		}
		if seen[id] {
			return out, specError("invalid_players", "player %s listed twice", id)
		}
		seen[id] = true
		ident := literature.Identity{ID: id, Name: p.Name, Avatar: p.Avatar}
		if ident.Name == "" {
			ident.Name = id
		}
		if p.Bot {
			out.bots = append(out.bots, ident)
		} else {
			out.humans = append(out.humans, ident)
		}
	}
	if len(out.humans) == 0 {
		return out, specError("invalid_players", "at least one player must not be a bot")
	}
	out.teams = spec.Teams

	for i, m := range spec.Moves {
		nm, err := normalizeMove(i, m)
		if err != nil {
			return out, err
		}
		out.moves = append(out.moves, nm)
	}
	out.autoplay = spec.Autoplay
	out.maxSteps = spec.MaxSteps
	if out.maxSteps <= 0 {
		out.maxSteps = defaultMaxSteps
	}
	return out, nil
}

func normalizeMove(step int, m MoveSpec) (normalizedMove, error) {
	out := normalizedMove{actor: strings.TrimSpace(m.Actor), target: strings.TrimSpace(m.Target)}
	bad := func(reason, msg string) error {
		return &ReplayError{StepIndex: int32(step), Reason: reason, Message: msg}
	}
	if err := out.kind.UnmarshalText([]byte(m.Kind)); err != nil {
		return out, bad("invalid_move", err.Error())
	}
	switch out.kind {
	case literature.MoveAsk:
		c, err := card.Parse(m.Card)
		if err != nil {
			return out, bad("invalid_card", err.Error())
		}
		out.card = c
	case literature.MoveClaim:
		owners, err := card.ParseOwners(m.Claim)
		if err != nil {
			return out, bad("invalid_card", err.Error())
		}
		out.claim = owners
	}
	return out, nil
}

func (m normalizedMove) decision() bot.Decision {
	return bot.Decision{Kind: m.kind, Target: m.target, Card: m.card, Claim: m.claim}
}
