package replay

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"literature-lite/card"
	"literature-lite/internal/codec"
	"literature-lite/literature"
)

func baseGameSpec() GameSpec {
	return GameSpec{
		Variant: "literature",
		Seed:    42,
		Players: []PlayerSpec{
			{ID: "u1", Name: "Ann"},
			{ID: "u2", Name: "Bob"},
			{ID: "b1", Bot: true},
			{ID: "b2", Bot: true},
			{ID: "b3", Bot: true},
			{ID: "b4", Bot: true},
		},
		Teams: map[string][]string{
			"Red":  {"u1", "b1", "b2"},
			"Blue": {"u2", "b3", "b4"},
		},
	}
}

// firstAsk returns a legal ask for whoever holds the opening turn.
func firstAsk(t *testing.T, spec GameSpec) MoveSpec {
	t.Helper()
	tape, err := Run(spec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	s := tape.Final
	me, _ := s.Player(s.Turn)
	deck, err := card.NewDeck(s.Config.Layout, s.Config.ExcludedRanks)
	if err != nil {
		t.Fatalf("NewDeck: %v", err)
	}
	for _, held := range me.Hand {
		id, _ := deck.BookOf(held)
		book, _ := deck.Book(id)
		for _, c := range book.Cards {
			if card.CardList(me.Hand).Contains(c) {
				continue
			}
			for _, p := range s.Players {
				if p.TeamID != me.TeamID {
					return MoveSpec{Kind: "ask", Actor: s.Turn, Target: p.ID, Card: c.String()}
				}
			}
		}
	}
	t.Fatalf("no legal ask for %s", s.Turn)
	return MoveSpec{}
}

func TestRun_IsDeterministic(t *testing.T) {
	spec := baseGameSpec()
	spec.Moves = []MoveSpec{firstAsk(t, spec)}
	spec.Autoplay = true
	spec.MaxSteps = 300

	tapeA, err := Run(spec)
	if err != nil {
		t.Fatalf("Run A failed: %v", err)
	}
	tapeB, err := Run(spec)
	if err != nil {
		t.Fatalf("Run B failed: %v", err)
	}

	ignoreID := cmpopts.IgnoreFields(literature.Snapshot{}, "ID")
	if diff := cmp.Diff(tapeA, tapeB, ignoreID, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("tapes differ for the same spec (-a +b):\n%s", diff)
	}
	if len(tapeA.Events) < 2 {
		t.Fatalf("expected the spec move plus bot moves, got %d events", len(tapeA.Events))
	}
	if tapeA.Events[0].Source != SourceSpec || tapeA.Events[1].Source != SourceBot {
		t.Fatalf("unexpected sources: %s, %s", tapeA.Events[0].Source, tapeA.Events[1].Source)
	}
	for i, e := range tapeA.Events {
		if e.Step != i || e.Move.Seq != i+1 {
			t.Fatalf("event %d: step=%d seq=%d", i, e.Step, e.Move.Seq)
		}
	}
	if last := tapeA.Events[len(tapeA.Events)-1]; last.Move.Seq != tapeA.Final.Seq {
		t.Fatalf("final seq = %d, last event seq = %d", tapeA.Final.Seq, last.Move.Seq)
	}
	if tapeA.Final.Status == literature.StatusCompleted && tapeA.Final.TotalScore() != 8 {
		t.Fatalf("completed game scored %d books, want 8", tapeA.Final.TotalScore())
	}
}

func TestRun_ReturnsReplayErrorOnOutOfTurnMove(t *testing.T) {
	spec := baseGameSpec()
	ask := firstAsk(t, spec)
	for _, p := range spec.Players {
		if p.ID != ask.Actor {
			ask.Actor = p.ID
			break
		}
	}
	spec.Moves = []MoveSpec{ask}

	_, err := Run(spec)
	if err == nil {
		t.Fatalf("expected replay to fail on an out-of-turn move")
	}
	var replayErr *ReplayError
	if !errors.As(err, &replayErr) {
		t.Fatalf("expected ReplayError type, got %T", err)
	}
	if replayErr.Reason != "out_of_turn" || replayErr.StepIndex != 0 {
		t.Fatalf("unexpected error: %v", replayErr)
	}
	if replayErr.Expected == nil || replayErr.Expected.Turn == "" || replayErr.Expected.Turn == ask.Actor {
		t.Fatalf("expected the real turn holder in the error, got %+v", replayErr.Expected)
	}
}

func TestRun_RejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GameSpec)
		reason string
		step   int32
	}{
		{"unknown variant", func(s *GameSpec) { s.Variant = "bridge" }, "invalid_variant", -1},
		{"zero seed", func(s *GameSpec) { s.Seed = 0 }, "invalid_seed", -1},
		{"duplicate player", func(s *GameSpec) { s.Players[1].ID = "u1" }, "invalid_players", -1},
		{"uneven teams", func(s *GameSpec) {
			s.Teams = map[string][]string{"Red": {"u1", "b1"}, "Blue": {"u2", "b2", "b3", "b4"}}
		}, "teams_failed", -1},
		{"unknown move kind", func(s *GameSpec) {
			s.Moves = []MoveSpec{{Kind: "pass", Actor: "u1"}}
		}, "invalid_move", 0},
		{"bad card", func(s *GameSpec) {
			s.Moves = []MoveSpec{{Kind: "ask", Actor: "u1", Target: "u2", Card: "ZZ"}}
		}, "invalid_card", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := baseGameSpec()
			tc.mutate(&spec)
			_, err := Run(spec)
			var replayErr *ReplayError
			if !errors.As(err, &replayErr) {
				t.Fatalf("expected ReplayError, got %v", err)
			}
			if replayErr.Reason != tc.reason || replayErr.StepIndex != tc.step {
				t.Fatalf("got %v, want reason=%s step=%d", replayErr, tc.reason, tc.step)
			}
		})
	}
}

func TestToWire_EncodesEveryEvent(t *testing.T) {
	spec := baseGameSpec()
	spec.Moves = []MoveSpec{firstAsk(t, spec)}
	tape, err := Run(spec)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	wire, err := ToWire(tape)
	if err != nil {
		t.Fatalf("ToWire failed: %v", err)
	}
	if len(wire.Events) != 1 || wire.GameID != tape.Final.ID {
		t.Fatalf("unexpected wire tape: %+v", wire)
	}
	raw, err := base64.StdEncoding.DecodeString(wire.Events[0].EnvelopeB64)
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	env, err := codec.DecodeEnvelope(raw, codec.FormatBinary)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.Kind != "move" || env.Seq != 1 || env.GameID != tape.Final.ID {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
