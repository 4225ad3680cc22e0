package literature

import (
	"errors"
	"testing"
	"time"

	"literature-lite/card"
)

var testClock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func seededConfig(players int) Config {
	cfg := Literature(players)
	cfg.Seed = 42
	cfg.Now = testClock
	return cfg
}

// newStartedGame seats p1..p6 with Red = p1,p3,p5 and Blue = p2,p4,p6, deals,
// and hands the turn to p1.
func newStartedGame(t *testing.T) *Game {
	t.Helper()
	g, err := NewGame(seededConfig(6), Identity{ID: "p1", Name: "Alice"})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	names := map[string]string{"p2": "Bob", "p3": "Carol", "p4": "Dave", "p5": "Erin", "p6": "Frank"}
	for _, id := range []string{"p2", "p3", "p4", "p5", "p6"} {
		if err := g.Join(Identity{ID: id, Name: names[id]}); err != nil {
			t.Fatalf("Join %s err: %v", id, err)
		}
	}
	err = g.CreateTeams("p1", map[string][]string{
		"Red":  {"p1", "p3", "p5"},
		"Blue": {"p2", "p4", "p6"},
	})
	if err != nil {
		t.Fatalf("CreateTeams err: %v", err)
	}
	if err := g.Start("p1"); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	g.turn = "p1"
	return g
}

// give moves the listed cards into a player's hand and reseeds every belief
// table, as if the deal had come out that way.
func give(t *testing.T, g *Game, to string, codes ...string) {
	t.Helper()
	for _, code := range codes {
		c := card.MustParse(code)
		for _, p := range g.players {
			p.hand.Remove(c)
		}
		g.players[to].hand.Add(c)
	}
	hands := make(map[string]card.CardList, len(g.players))
	for id, p := range g.players {
		hands[id] = p.hand.Clone()
	}
	g.tracker.Seed(hands)
}

func owners(pairs ...string) map[card.Card]string {
	out := make(map[card.Card]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[card.MustParse(pairs[i])] = pairs[i+1]
	}
	return out
}

func assertKind(t *testing.T, err error, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestStart_DealsEqualHandsWithoutSevens(t *testing.T) {
	g := newStartedGame(t)
	snap := g.Snapshot()
	if snap.Status != StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", snap.Status)
	}
	total := 0
	seen := make(map[card.Card]bool)
	for _, p := range snap.Players {
		if len(p.Hand) != 8 || p.CardCount != 8 {
			t.Fatalf("player %s got %d cards (count %d), want 8", p.ID, len(p.Hand), p.CardCount)
		}
		for _, c := range p.Hand {
			if c.Rank() == card.Seven {
				t.Fatalf("player %s was dealt %s", p.ID, c)
			}
			if seen[c] {
				t.Fatalf("card %s dealt twice", c)
			}
			seen[c] = true
		}
		total += len(p.Hand)
	}
	if total != 48 {
		t.Fatalf("dealt %d cards, want 48", total)
	}
}

func TestStart_SameSeedSameDeal(t *testing.T) {
	a := newStartedGame(t).Snapshot()
	b := newStartedGame(t).Snapshot()
	for i := range a.Players {
		pa, pb := a.Players[i], b.Players[i]
		for j := range pa.Hand {
			if pa.Hand[j] != pb.Hand[j] {
				t.Fatalf("seeded deals differ for %s at %d: %s vs %s", pa.ID, j, pa.Hand[j], pb.Hand[j])
			}
		}
	}
}

func TestJoin_FillsRosterAndAdvances(t *testing.T) {
	g, err := NewGame(seededConfig(4), Identity{ID: "p1", Name: "Alice"})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	if g.Status() != StatusCreated {
		t.Fatalf("status = %s, want CREATED", g.Status())
	}
	if err := g.Join(Identity{ID: "p1", Name: "Alice"}); err != nil {
		t.Fatalf("rejoin should be a no-op, got %v", err)
	}
	if err := g.Join(Identity{ID: "p2", Name: "Bob"}); err != nil {
		t.Fatalf("Join err: %v", err)
	}
	added, err := g.AddBots([]Identity{{ID: "bot-a", Name: "Ada"}})
	if err != nil {
		t.Fatalf("AddBots err: %v", err)
	}
	if len(added) != 2 || added[0] != "bot-a" {
		t.Fatalf("added = %v, want bot-a plus one generated bot", added)
	}
	if !g.IsBot(added[1]) {
		t.Fatalf("%s should be a bot", added[1])
	}
	if g.Status() != StatusPlayersReady {
		t.Fatalf("status = %s, want PLAYERS_READY", g.Status())
	}
	assertKind(t, g.Join(Identity{ID: "p9", Name: "Late"}), ErrCapacityExceeded)
	_, err = g.AddBots(nil)
	assertKind(t, err, ErrCapacityExceeded)
}

func TestCreateTeams_Validation(t *testing.T) {
	g, _ := NewGame(seededConfig(4), Identity{ID: "p1", Name: "Alice"})
	assertKind(t, g.CreateTeams("p1", nil), ErrInvalidState)
	_ = g.Join(Identity{ID: "p2", Name: "Bob"})
	_ = g.Join(Identity{ID: "p3", Name: "Carol"})
	_ = g.Join(Identity{ID: "p4", Name: "Dave"})

	assertKind(t, g.CreateTeams("nobody", nil), ErrNotFound)
	assertKind(t, g.CreateTeams("p1", map[string][]string{
		"A": {"p1", "p2", "p3"},
		"B": {"p4"},
	}), ErrRuleViolation)
	assertKind(t, g.CreateTeams("p1", map[string][]string{
		"A": {"p1", "p2"},
		"B": {"p2", "p4"},
	}), ErrRuleViolation)
	if g.Status() != StatusPlayersReady {
		t.Fatalf("rejected team split must not change status, got %s", g.Status())
	}

	if err := g.CreateTeams("p2", nil); err != nil {
		t.Fatalf("auto teams err: %v", err)
	}
	snap := g.Snapshot()
	if len(snap.Teams) != 2 {
		t.Fatalf("got %d teams, want 2", len(snap.Teams))
	}
	for _, team := range snap.Teams {
		if len(team.Members) != 2 {
			t.Fatalf("team %s has %d members, want 2", team.Name, len(team.Members))
		}
	}
	for _, p := range snap.Players {
		if p.TeamID == "" {
			t.Fatalf("player %s has no team", p.ID)
		}
	}
	assertKind(t, g.CreateTeams("p1", nil), ErrInvalidState)
}

func TestMoves_RejectedBeforeStart(t *testing.T) {
	g, _ := NewGame(seededConfig(4), Identity{ID: "p1", Name: "Alice"})
	_, err := g.Ask("p1", "p2", card.MustParse("AS"))
	assertKind(t, err, ErrInvalidState)
	_, err = g.Claim("p1", owners("AS", "p1"))
	assertKind(t, err, ErrInvalidState)
	_, err = g.Transfer("p1", "p2")
	assertKind(t, err, ErrInvalidState)
	assertKind(t, g.Start("p1"), ErrInvalidState)
}

func TestAsk_MissPassesTurnAndKeepsHands(t *testing.T) {
	g := newStartedGame(t)
	give(t, g, "p1", "9H")
	give(t, g, "p4", "8H")
	before := g.Snapshot()

	m, err := g.Ask("p1", "p2", card.MustParse("8H"))
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if m.Success {
		t.Fatalf("ask should miss")
	}
	if m.Kind != MoveAsk || m.Ask.Target != "p2" || m.Seq != 1 {
		t.Fatalf("unexpected move record: %+v", m)
	}
	after := g.Snapshot()
	if after.Turn != "p2" {
		t.Fatalf("turn = %s, want p2", after.Turn)
	}
	for _, id := range []string{"p1", "p2"} {
		b, _ := before.Player(id)
		a, _ := after.Player(id)
		if len(a.Hand) != len(b.Hand) {
			t.Fatalf("%s hand changed on a miss", id)
		}
	}
	belief := after.Beliefs["p3"][card.MustParse("8H")]
	if _, ok := belief.Possible["p1"]; ok {
		t.Fatalf("asker must be ruled out after a miss: %+v", belief)
	}
	if _, ok := belief.Possible["p2"]; ok {
		t.Fatalf("asked player must be ruled out after a miss: %+v", belief)
	}
	if p1, _ := after.Player("p1"); p1.Stats.AsksMade != 1 {
		t.Fatalf("asks made = %d, want 1", p1.Stats.AsksMade)
	}
}

func TestAsk_HitMovesCardAndKeepsTurn(t *testing.T) {
	g := newStartedGame(t)
	give(t, g, "p1", "9H")
	give(t, g, "p2", "8H")

	m, err := g.Ask("p1", "p2", card.MustParse("8H"))
	if err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	if !m.Success {
		t.Fatalf("ask should hit")
	}
	snap := g.Snapshot()
	if snap.Turn != "p1" {
		t.Fatalf("turn = %s, want p1", snap.Turn)
	}
	p1, _ := snap.Player("p1")
	p2, _ := snap.Player("p2")
	if !card.CardList(p1.Hand).Contains(card.MustParse("8H")) || card.CardList(p2.Hand).Contains(card.MustParse("8H")) {
		t.Fatalf("8H did not move from p2 to p1")
	}
	if p1.CardCount != len(p1.Hand) || p2.CardCount != len(p2.Hand) {
		t.Fatalf("card counts out of sync with hands")
	}
	if p1.Stats.CardsTaken != 1 || p2.Stats.CardsGiven != 1 {
		t.Fatalf("unexpected stats p1=%+v p2=%+v", p1.Stats, p2.Stats)
	}
	for viewer, table := range snap.Beliefs {
		b := table[card.MustParse("8H")]
		if b.Known != "p1" || len(b.Possible) != 0 {
			t.Fatalf("%s belief for 8H = %+v, want known p1", viewer, b)
		}
	}
}

func TestAsk_Rejections(t *testing.T) {
	g := newStartedGame(t)
	give(t, g, "p1", "9H", "AS")
	give(t, g, "p6", "8H")
	give(t, g, "p4", "2S", "3S", "4S", "5S", "6S")

	cases := []struct {
		name   string
		actor  string
		target string
		card   string
		want   error
	}{
		{"out of turn", "p2", "p1", "8H", ErrOutOfTurn},
		{"unknown player", "p1", "nobody", "8H", ErrNotFound},
		{"card not in play", "p1", "p2", "7H", ErrNotFound},
		{"own teammate", "p1", "p3", "8H", ErrRuleViolation},
		{"self", "p1", "p1", "8H", ErrRuleViolation},
		{"card already held", "p1", "p2", "9H", ErrRuleViolation},
	}
	before := g.Snapshot()
	for _, tc := range cases {
		_, err := g.Ask(tc.actor, tc.target, card.MustParse(tc.card))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	after := g.Snapshot()
	if after.Seq != before.Seq || after.Turn != before.Turn || len(after.History) != 0 {
		t.Fatalf("rejected asks must not change state")
	}

	_, err := g.Ask("p1", "p2", card.MustParse("9H"))
	if err == nil || err.Error() != "You cannot ask a card that you already have!" {
		t.Fatalf("unexpected reason: %v", err)
	}
}

func TestAsk_TargetWithoutCardsAndStrictAsk(t *testing.T) {
	g := newStartedGame(t)
	p2 := g.Snapshot().Players[1]
	give(t, g, "p4", card.Codes(p2.Hand)...)
	give(t, g, "p4", "8H")
	_, err := g.Ask("p1", "p2", card.MustParse("8H"))
	assertKind(t, err, ErrRuleViolation)

	g.cfg.StrictAsk = true
	for _, c := range []string{"8H", "9H", "TH", "JH", "QH", "KH"} {
		give(t, g, "p6", c)
	}
	_, err = g.Ask("p1", "p4", card.MustParse("8H"))
	if err == nil || err.Error() != "You must hold a card of the same set to ask for it!" {
		t.Fatalf("strict ask should reject, got %v", err)
	}
}

func TestClaim_SuccessScoresAndRetiresBook(t *testing.T) {
	g := newStartedGame(t)
	give(t, g, "p1", "AH", "2H")
	give(t, g, "p3", "3H", "4H")
	give(t, g, "p5", "5H", "6H")

	m, err := g.Claim("p1", owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5"))
	if err != nil {
		t.Fatalf("Claim err: %v", err)
	}
	if !m.Success || m.Claim.WinningTeam != "team-2" {
		t.Fatalf("unexpected claim move: %+v %+v", m, m.Claim)
	}
	snap := g.Snapshot()
	red, _ := snap.Team("team-2")
	if red.Name != "Red" || red.Score != 1 || len(red.Books) != 1 {
		t.Fatalf("red team after claim = %+v", red)
	}
	for _, p := range snap.Players {
		for _, c := range p.Hand {
			if c.Suit() == card.Heart && c.Rank() <= card.Six {
				t.Fatalf("%s still holds claimed %s", p.ID, c)
			}
		}
	}
	for viewer, table := range snap.Beliefs {
		if _, ok := table[card.MustParse("AH")]; ok {
			t.Fatalf("%s still tracks a retired card", viewer)
		}
	}
	if snap.Turn != "p1" {
		t.Fatalf("claimant with cards should keep the turn, got %s", snap.Turn)
	}
	p1, _ := snap.Player("p1")
	if p1.Stats.ClaimsAttempted != 1 || p1.Stats.ClaimsSucceeded != 1 {
		t.Fatalf("claim stats = %+v", p1.Stats)
	}
	_, err = g.Claim("p1", owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5"))
	assertKind(t, err, ErrRuleViolation)
}

func TestClaim_WrongOwnerScoresForOpponents(t *testing.T) {
	g := newStartedGame(t)
	give(t, g, "p1", "AH", "2H")
	give(t, g, "p3", "3H", "4H", "6H")
	give(t, g, "p5", "5H")

	m, err := g.Claim("p1", owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5"))
	if err != nil {
		t.Fatalf("Claim err: %v", err)
	}
	if m.Success {
		t.Fatalf("claim should fail")
	}
	snap := g.Snapshot()
	blue, _ := snap.Team("team-1")
	red, _ := snap.Team("team-2")
	if blue.Score != 1 || red.Score != 0 {
		t.Fatalf("scores blue=%d red=%d, want 1/0", blue.Score, red.Score)
	}
	if p3, _ := snap.Player("p3"); card.CardList(p3.Hand).Contains(card.MustParse("6H")) {
		t.Fatalf("failed claim must still retire the book")
	}
	if turn, _ := snap.Player(snap.Turn); turn.TeamID != "team-1" {
		t.Fatalf("turn should pass to an opponent, got %s", snap.Turn)
	}
}

func TestClaim_Rejections(t *testing.T) {
	g := newStartedGame(t)
	give(t, g, "p1", "AH", "2H")
	give(t, g, "p3", "3H", "4H")
	give(t, g, "p5", "5H", "6H")
	give(t, g, "p2", "8H")

	cases := []struct {
		name  string
		actor string
		claim map[card.Card]string
		want  error
	}{
		{"partial book", "p1", owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5"), ErrRuleViolation},
		{"two books", "p1", owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5", "8H", "p2"), ErrRuleViolation},
		{"across teams", "p1", owners("AH", "p1", "2H", "p2", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5"), ErrRuleViolation},
		{"claimant not named", "p1", owners("AH", "p3", "2H", "p3", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5"), ErrRuleViolation},
		{"unknown owner", "p1", owners("AH", "p1", "2H", "px", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5"), ErrNotFound},
		{"excluded card", "p1", owners("7H", "p1"), ErrNotFound},
		{"empty", "p1", nil, ErrRuleViolation},
		{"out of turn", "p3", owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5"), ErrOutOfTurn},
	}
	for _, tc := range cases {
		_, err := g.Claim(tc.actor, tc.claim)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if snap := g.Snapshot(); snap.TotalScore() != 0 || len(snap.History) != 0 {
		t.Fatalf("rejected claims must not change state")
	}
}

func TestTransfer_OnlyAfterOwnSuccessfulClaim(t *testing.T) {
	g := newStartedGame(t)
	give(t, g, "p1", "AH", "2H", "9H")
	give(t, g, "p3", "3H", "4H", "KS")
	give(t, g, "p5", "5H", "6H")
	give(t, g, "p2", "8H")

	if _, err := g.Transfer("p1", "p3"); !errors.Is(err, ErrRuleViolation) {
		t.Fatalf("transfer with no history: expected rule violation, got %v", err)
	}
	if _, err := g.Ask("p1", "p2", card.MustParse("8H")); err != nil {
		t.Fatalf("Ask err: %v", err)
	}
	_, err := g.Transfer("p1", "p3")
	assertKind(t, err, ErrRuleViolation)

	if _, err := g.Claim("p1", owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5")); err != nil {
		t.Fatalf("Claim err: %v", err)
	}
	_, err = g.Transfer("p1", "p2")
	assertKind(t, err, ErrRuleViolation)
	_, err = g.Transfer("p1", "p1")
	assertKind(t, err, ErrRuleViolation)

	m, err := g.Transfer("p1", "p3")
	if err != nil {
		t.Fatalf("Transfer err: %v", err)
	}
	if m.Kind != MoveTransfer || g.Turn() != "p3" {
		t.Fatalf("turn = %s after transfer, want p3", g.Turn())
	}
	_, err = g.Transfer("p3", "p5")
	assertKind(t, err, ErrRuleViolation)

	snap := g.Snapshot()
	if len(snap.History) != 3 || snap.History[0].Kind != MoveTransfer || snap.History[2].Kind != MoveAsk {
		t.Fatalf("history should be newest first: %+v", snap.History)
	}
}

// strip moves every card of from's hand except keep over to to.
func strip(t *testing.T, g *Game, from, to string, keep ...string) {
	t.Helper()
	var kept card.CardList
	for _, code := range keep {
		kept = append(kept, card.MustParse(code))
	}
	var moved []string
	for _, c := range g.players[from].hand.Clone() {
		if !kept.Contains(c) {
			moved = append(moved, c.String())
		}
	}
	give(t, g, to, moved...)
}

func TestClaim_TurnTransitionOrder(t *testing.T) {
	lowHearts := owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5")
	dealLowHearts := func(t *testing.T, g *Game) {
		give(t, g, "p1", "AH", "2H")
		give(t, g, "p3", "3H", "4H")
		give(t, g, "p5", "5H", "6H")
	}
	cases := []struct {
		name    string
		setup   func(t *testing.T, g *Game)
		claim   map[card.Card]string
		success bool
		want    func(s Snapshot) bool
	}{
		{
			name: "good claim keeps the turn with a claimant holding cards",
			setup: func(t *testing.T, g *Game) {
				dealLowHearts(t, g)
			},
			claim:   lowHearts,
			success: true,
			want:    func(s Snapshot) bool { return s.Turn == "p1" },
		},
		{
			name: "good claim that empties the claimant goes to a teammate with cards",
			setup: func(t *testing.T, g *Game) {
				dealLowHearts(t, g)
				strip(t, g, "p1", "p3", "AH", "2H")
				strip(t, g, "p5", "p3", "5H", "6H")
			},
			claim:   lowHearts,
			success: true,
			want:    func(s Snapshot) bool { return s.Turn == "p3" },
		},
		{
			name: "good claim that empties the whole team goes to an opponent",
			setup: func(t *testing.T, g *Game) {
				dealLowHearts(t, g)
				strip(t, g, "p1", "p2", "AH", "2H")
				strip(t, g, "p3", "p2", "3H", "4H")
				strip(t, g, "p5", "p2", "5H", "6H")
			},
			claim:   lowHearts,
			success: true,
			want: func(s Snapshot) bool {
				p, _ := s.Player(s.Turn)
				return p.TeamID == "team-1" && p.CardCount > 0
			},
		},
		{
			name: "bad claim goes to an opponent with cards",
			setup: func(t *testing.T, g *Game) {
				dealLowHearts(t, g)
				give(t, g, "p3", "6H")
			},
			claim:   lowHearts,
			success: false,
			want: func(s Snapshot) bool {
				p, _ := s.Player(s.Turn)
				return p.TeamID == "team-1" && p.CardCount > 0
			},
		},
		{
			name: "bad claim with no opponent holding cards falls back to a teammate",
			setup: func(t *testing.T, g *Game) {
				dealLowHearts(t, g)
				give(t, g, "p2", "6H")
				strip(t, g, "p2", "p3", "6H")
				strip(t, g, "p4", "p3")
				strip(t, g, "p6", "p3")
				strip(t, g, "p5", "p3", "5H")
			},
			claim:   lowHearts,
			success: false,
			want:    func(s Snapshot) bool { return s.Turn == "p3" },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newStartedGame(t)
			tc.setup(t, g)
			m, err := g.Claim("p1", tc.claim)
			if err != nil {
				t.Fatalf("Claim err: %v", err)
			}
			if m.Success != tc.success {
				t.Fatalf("claim success = %v, want %v", m.Success, tc.success)
			}
			if snap := g.Snapshot(); !tc.want(snap) {
				t.Fatalf("unexpected turn holder %q", snap.Turn)
			}
		})
	}
}

func TestTransfer_RejectsTeammateWithoutCards(t *testing.T) {
	g := newStartedGame(t)
	give(t, g, "p1", "AH", "2H")
	give(t, g, "p3", "3H", "4H")
	give(t, g, "p5", "5H", "6H")
	strip(t, g, "p5", "p3", "5H", "6H")

	if _, err := g.Claim("p1", owners("AH", "p1", "2H", "p1", "3H", "p3", "4H", "p3", "5H", "p5", "6H", "p5")); err != nil {
		t.Fatalf("Claim err: %v", err)
	}
	if p5, _ := g.Snapshot().Player("p5"); p5.CardCount != 0 {
		t.Fatalf("p5 should be out of cards, has %d", p5.CardCount)
	}
	_, err := g.Transfer("p1", "p5")
	assertKind(t, err, ErrRuleViolation)
	if g.Turn() != "p1" {
		t.Fatalf("rejected transfer moved the turn to %s", g.Turn())
	}
	if _, err := g.Transfer("p1", "p3"); err != nil {
		t.Fatalf("Transfer to p3 err: %v", err)
	}
}

func TestClaim_LastBookCompletesGame(t *testing.T) {
	cfg := seededConfig(2)
	g, err := NewGame(cfg, Identity{ID: "a", Name: "Ann"})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	if err := g.Join(Identity{ID: "b", Name: "Ben"}); err != nil {
		t.Fatal(err)
	}
	if err := g.CreateTeams("a", map[string][]string{"North": {"a"}, "South": {"b"}}); err != nil {
		t.Fatal(err)
	}
	if err := g.Start("a"); err != nil {
		t.Fatal(err)
	}
	books := g.Deck().Books()
	if len(books) != 8 {
		t.Fatalf("got %d books, want 8", len(books))
	}
	for i, b := range books {
		holder := "a"
		if i%2 == 1 {
			holder = "b"
		}
		give(t, g, holder, card.Codes(b.Cards)...)
	}

	claimAll := func(player string) {
		for i, b := range books {
			if (i%2 == 0) != (player == "a") {
				continue
			}
			if g.Status() == StatusCompleted {
				t.Fatalf("game completed before book %s", b.Name)
			}
			claim := make(map[card.Card]string, len(b.Cards))
			for _, c := range b.Cards {
				claim[c] = player
			}
			g.turn = player
			m, err := g.Claim(player, claim)
			if err != nil || !m.Success {
				t.Fatalf("claim %s by %s: success=%v err=%v", b.Name, player, m.Success, err)
			}
		}
	}
	claimAll("a")
	claimAll("b")

	snap := g.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", snap.Status)
	}
	if snap.TotalScore() != 8 || snap.Turn != "" {
		t.Fatalf("score=%d turn=%q after completion", snap.TotalScore(), snap.Turn)
	}
	_, err = g.Ask("b", "a", books[0].Cards[0])
	assertKind(t, err, ErrInvalidState)
	_, err = g.Transfer("b", "a")
	assertKind(t, err, ErrInvalidState)
}

func TestPlayerView_HidesOtherHands(t *testing.T) {
	g := newStartedGame(t)
	v, err := g.PlayerView("p3")
	if err != nil {
		t.Fatalf("PlayerView err: %v", err)
	}
	if len(v.Hand) != 8 || v.You != "p3" {
		t.Fatalf("unexpected view: you=%s hand=%d", v.You, len(v.Hand))
	}
	for _, p := range v.Players {
		if len(p.Hand) != 0 {
			t.Fatalf("view of p3 leaks %s's hand", p.ID)
		}
		if p.CardCount != 8 {
			t.Fatalf("card count for %s = %d, want 8", p.ID, p.CardCount)
		}
	}
	for _, c := range v.Hand {
		if v.Beliefs[c].Known != "p3" {
			t.Fatalf("own card %s should be known to p3", c)
		}
	}
	if v.Config.Seed != 0 {
		t.Fatalf("view of p3 carries the deal seed %d", v.Config.Seed)
	}
	if g.Snapshot().Config.Seed != 42 {
		t.Fatalf("full snapshot must keep the seed for restore")
	}
	if _, err := g.PlayerView("stranger"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
