package literature

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"literature-lite/card"
)

type Game struct {
	cfg  Config
	deck *card.Deck
	rng  *rand.Rand

	mu sync.Mutex

	id   string
	code string

	status Status

	// roster, addressed by id
	players map[string]*Player
	order   []string // join order
	teams   map[string]*Team
	teamIDs []string

	turn    string
	history []Move // newest first
	seq     int
	claimed map[card.BookID]string // book -> winning team id

	tracker *Tracker

	createdAt time.Time
	updatedAt time.Time
}

// NewGame creates a game seated with its creator.
func NewGame(cfg Config, creator Identity) (*Game, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if creator.ID == "" {
		return nil, fmt.Errorf("creator id is required")
	}
	deck, err := card.NewDeck(cfg.Layout, cfg.ExcludedRanks)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := cfg.Now()
	g := &Game{
		cfg:       cfg,
		deck:      deck,
		rng:       rand.New(rand.NewSource(seed)),
		id:        uuid.NewString(),
		status:    StatusCreated,
		players:   make(map[string]*Player, cfg.PlayerCount),
		teams:     make(map[string]*Team, cfg.TeamCount),
		claimed:   make(map[card.BookID]string, deck.BookCount()),
		tracker:   NewTracker(cfg.MaxWeight),
		createdAt: now,
		updatedAt: now,
	}
	g.code = g.newCode()
	g.seatLocked(creator, false)
	g.advanceRosterLocked()
	return g, nil
}

func (g *Game) newCode() string {
	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[g.rng.Intn(len(codeAlphabet))])
	}
	return b.String()
}

func (g *Game) ID() string { return g.id }

func (g *Game) Code() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.code
}

// ResetCode draws a new join code, used when the registry reports a clash.
func (g *Game) ResetCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.code = g.newCode()
	return g.code
}

func (g *Game) Config() Config { return g.cfg }

func (g *Game) Deck() *card.Deck { return g.deck }

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) Turn() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turn
}

func (g *Game) IsBot(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.players[playerID]
	return p != nil && p.Bot
}

// LastMove returns the newest history record.
func (g *Game) LastMove() (Move, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.history) == 0 {
		return Move{}, false
	}
	return g.history[0].clone(), true
}

// Join seats a player. Joining again is a no-op.
func (g *Game) Join(id Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id.ID == "" {
		return notFound("Player id is required")
	}
	if _, ok := g.players[id.ID]; ok {
		return nil
	}
	if err := g.checkRosterOpenLocked(); err != nil {
		return err
	}
	g.seatLocked(id, false)
	g.advanceRosterLocked()
	g.touchLocked()
	return nil
}

// AddBots fills every empty seat with a bot. Identities are taken from pool
// in order; missing ones get a generated name.
func (g *Game) AddBots(pool []Identity) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkRosterOpenLocked(); err != nil {
		return nil, err
	}
	var added []string
	for n := 0; len(g.order) < g.cfg.PlayerCount; n++ {
		var id Identity
		if n < len(pool) {
			id = pool[n]
		}
		if id.ID == "" {
			id.ID = fmt.Sprintf("bot-%d", len(g.order)+1)
		}
		if _, taken := g.players[id.ID]; taken {
			id.ID = fmt.Sprintf("%s-%d", id.ID, len(g.order)+1)
		}
		if id.Name == "" {
			id.Name = fmt.Sprintf("Bot %d", len(g.order)+1)
		}
		g.seatLocked(id, true)
		added = append(added, id.ID)
	}
	g.advanceRosterLocked()
	g.touchLocked()
	return added, nil
}

func (g *Game) checkRosterOpenLocked() error {
	if len(g.order) >= g.cfg.PlayerCount {
		return ErrCapacityExceeded
	}
	if g.status != StatusCreated {
		return invalidState("Players can no longer join this game")
	}
	return nil
}

func (g *Game) seatLocked(id Identity, bot bool) {
	g.players[id.ID] = &Player{ID: id.ID, Name: id.Name, Avatar: id.Avatar, Bot: bot}
	g.order = append(g.order, id.ID)
}

func (g *Game) advanceRosterLocked() {
	if g.status == StatusCreated && len(g.order) == g.cfg.PlayerCount {
		g.status = StatusPlayersReady
	}
}

// CreateTeams partitions the roster. An empty assignment splits players
// round-robin over a shuffled order.
func (g *Game) CreateTeams(actor string, assignment map[string][]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.players[actor]; !ok {
		return notFound("Player %s is not in this game", actor)
	}
	switch {
	case g.status < StatusPlayersReady:
		return invalidState("Teams can only be created once all players have joined")
	case g.status > StatusPlayersReady:
		return invalidState("Teams have already been created")
	}
	if len(assignment) == 0 {
		assignment = g.autoTeamsLocked()
	}
	if err := g.checkTeamsLocked(assignment); err != nil {
		return err
	}

	names := make([]string, 0, len(assignment))
	for name := range assignment {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		t := &Team{
			ID:      fmt.Sprintf("team-%d", i+1),
			Name:    name,
			Members: append([]string(nil), assignment[name]...),
		}
		g.teams[t.ID] = t
		g.teamIDs = append(g.teamIDs, t.ID)
		for _, pid := range t.Members {
			g.players[pid].TeamID = t.ID
		}
	}
	g.status = StatusTeamsCreated
	g.touchLocked()
	return nil
}

func (g *Game) autoTeamsLocked() map[string][]string {
	ids := append([]string(nil), g.order...)
	g.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	out := make(map[string][]string, g.cfg.TeamCount)
	for i, id := range ids {
		name := fmt.Sprintf("Team %c", 'A'+i%g.cfg.TeamCount)
		out[name] = append(out[name], id)
	}
	return out
}

func (g *Game) checkTeamsLocked(assignment map[string][]string) error {
	if len(assignment) != g.cfg.TeamCount {
		return ruleViolation("Players must be split into %d teams", g.cfg.TeamCount)
	}
	size := g.cfg.PlayerCount / g.cfg.TeamCount
	seen := make(map[string]bool, len(g.order))
	for name, members := range assignment {
		if strings.TrimSpace(name) == "" {
			return ruleViolation("Every team needs a name")
		}
		if len(members) != size {
			return ruleViolation("Every team must have %d players", size)
		}
		for _, pid := range members {
			if _, ok := g.players[pid]; !ok {
				return notFound("Player %s is not in this game", pid)
			}
			if seen[pid] {
				return ruleViolation("Player %s cannot be on two teams", pid)
			}
			seen[pid] = true
		}
	}
	return nil
}

// Start shuffles and deals the deck and hands the first turn to a random
// player.
func (g *Game) Start(actor string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.players[actor]; !ok {
		return notFound("Player %s is not in this game", actor)
	}
	switch {
	case g.status < StatusTeamsCreated:
		return invalidState("Teams must be created before dealing")
	case g.status > StatusTeamsCreated:
		return invalidState("The game has already started!")
	}

	stock := g.deck.Cards()
	stock.Shuffle(g.rng)
	per := stock.Count() / len(g.order)
	hands := make(map[string]card.CardList, len(g.order))
	for _, pid := range g.order {
		cards, _ := stock.PopCards(per)
		p := g.players[pid]
		p.hand.Init(cards)
		p.hand.Sort()
		hands[pid] = p.hand.Clone()
	}
	g.tracker.Seed(hands)
	g.turn = g.order[g.rng.Intn(len(g.order))]
	g.status = StatusInProgress
	g.touchLocked()
	return nil
}

func (g *Game) touchLocked() {
	g.updatedAt = g.cfg.Now()
}

// teamOfLocked returns the team a player is on, nil before teams exist.
func (g *Game) teamOfLocked(playerID string) *Team {
	p := g.players[playerID]
	if p == nil {
		return nil
	}
	return g.teams[p.TeamID]
}

func (g *Game) sameTeamLocked(a, b string) bool {
	pa, pb := g.players[a], g.players[b]
	return pa != nil && pb != nil && pa.TeamID != "" && pa.TeamID == pb.TeamID
}

// withCardsLocked returns a shuffled copy of ids filtered to players who
// still hold cards.
func (g *Game) withCardsLocked(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p := g.players[id]; p != nil && p.CardCount() > 0 {
			out = append(out, id)
		}
	}
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (g *Game) teammatesLocked(playerID string) []string {
	t := g.teamOfLocked(playerID)
	if t == nil {
		return nil
	}
	var out []string
	for _, id := range t.Members {
		if id != playerID {
			out = append(out, id)
		}
	}
	return out
}

func (g *Game) opponentsLocked(playerID string) []string {
	var out []string
	p := g.players[playerID]
	for _, id := range g.order {
		if q := g.players[id]; q.TeamID != p.TeamID {
			out = append(out, id)
		}
	}
	return out
}
