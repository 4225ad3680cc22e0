package replay

import (
	"time"

	"literature-lite/internal/log"
	"literature-lite/literature"
	"literature-lite/literature/bot"
)

// Run builds the game described by spec, applies its moves in order and,
// when asked, lets bots finish it. The same spec always yields the same tape
// apart from the game id.
func Run(spec GameSpec) (*Tape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	game, err := literature.NewGame(ns.cfg, ns.humans[0])
	if err != nil {
		return nil, specError("engine_init_failed", "%v", err)
	}
	for _, id := range ns.humans[1:] {
		if err := game.Join(id); err != nil {
			return nil, specError("seat_init_failed", "%s: %v", id.ID, err)
		}
	}
	if len(ns.bots) > 0 {
		if _, err := game.AddBots(ns.bots); err != nil {
			return nil, specError("seat_init_failed", "%v", err)
		}
	}
	owner := ns.humans[0].ID
	if err := game.CreateTeams(owner, ns.teams); err != nil {
		return nil, specError("teams_failed", "%v", err)
	}
	if err := game.Start(owner); err != nil {
		return nil, specError("start_failed", "%v", err)
	}

	tape := &Tape{
		TapeVersion: TapeVersion,
		Variant:     spec.Variant,
		Seed:        spec.Seed,
	}
	if tape.Variant == "" {
		tape.Variant = "literature"
	}

	for i, m := range ns.moves {
		expected := expectedState(game)
		move, err := m.decision().Apply(game, m.actor)
		if err != nil {
			return nil, &ReplayError{
				StepIndex: int32(i),
				Reason:    reasonOf(err),
				Message:   err.Error(),
				Expected:  expected,
			}
		}
		tape.Events = append(tape.Events, newEvent(game, len(tape.Events), SourceSpec, move))
	}

	if ns.autoplay {
		if err := autoplay(game, ns, tape); err != nil {
			return nil, err
		}
	}

	tape.Final = game.Snapshot()
	tape.Final.Config.Now = nil
	return tape, nil
}

func autoplay(game *literature.Game, ns normalizedSpec, tape *Tape) error {
	bots := bot.NewManager(ns.cfg.Seed, ns.cfg.MaxWeight, 0)
	for _, p := range game.Snapshot().Players {
		bots.Register(p.ID, p.Name)
	}
	for steps := 0; game.Status() == literature.StatusInProgress; steps++ {
		if steps >= ns.maxSteps {
			log.Warn("[Replay] autoplay stopped after %d moves", steps)
			return nil
		}
		turn := game.Turn()
		view, err := game.PlayerView(turn)
		if err != nil {
			return &ReplayError{StepIndex: int32(len(tape.Events)), Reason: "bot_failed", Message: err.Error()}
		}
		d, err := bots.OnTurn(view)
		if err != nil {
			log.Warn("[Replay] %s has no move after %d steps, stopping autoplay: %v", turn, steps, err)
			return nil
		}
		move, err := d.Apply(game, turn)
		if err != nil {
			log.Warn("[Replay] bot move %s for %s rejected: %v", d.Kind, turn, err)
			guess, gerr := bot.NewHeuristic(ns.cfg.Seed+int64(steps), ns.cfg.MaxWeight).Guess(view)
			if gerr != nil {
				return nil
			}
			if move, err = guess.Apply(game, turn); err != nil {
				return nil
			}
		}
		tape.Events = append(tape.Events, newEvent(game, len(tape.Events), SourceBot, move))
	}
	return nil
}

func newEvent(game *literature.Game, step int, source string, move literature.Move) Event {
	snap := game.Snapshot()
	scores := make(map[string]int, len(snap.Teams))
	for _, t := range snap.Teams {
		scores[t.ID] = t.Score
	}
	return Event{Step: step, Source: source, Move: move, Turn: snap.Turn, Scores: scores}
}

func expectedState(game *literature.Game) *ExpectedState {
	snap := game.Snapshot()
	return &ExpectedState{Turn: snap.Turn, Status: snap.Status, Seq: snap.Seq}
}

func reasonOf(err error) string {
	if kind := literature.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "apply_failed"
}

var replayEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// newStepClock ticks one second per call so timestamps depend only on the
// number of state changes.
func newStepClock() func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return replayEpoch.Add(time.Duration(n) * time.Second)
	}
}
