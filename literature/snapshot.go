package literature

import (
	"fmt"
	"math/rand"
	"time"

	"literature-lite/card"
)

type PlayerSnapshot struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Avatar    string      `json:"avatar,omitempty"`
	Bot       bool        `json:"bot,omitempty"`
	TeamID    string      `json:"teamId,omitempty"`
	CardCount int         `json:"cardCount"`
	Stats     Stats       `json:"stats"`
	Hand      []card.Card `json:"hand,omitempty"`
}

type TeamSnapshot struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Members []string      `json:"members"`
	Score   int           `json:"score"`
	Books   []card.BookID `json:"books,omitempty"`
}

// Snapshot is the full state of a game, hands and beliefs included. It is
// what gets persisted; players only ever see a PlayerView.
type Snapshot struct {
	ID        string                 `json:"id"`
	Code      string                 `json:"code"`
	Config    Config                 `json:"config"`
	Status    Status                 `json:"status"`
	Turn      string                 `json:"turn,omitempty"`
	Seq       int                    `json:"seq"`
	Players   []PlayerSnapshot       `json:"players"`
	Teams     []TeamSnapshot         `json:"teams,omitempty"`
	History   []Move                 `json:"history,omitempty"`
	Claimed   map[card.BookID]string `json:"claimed,omitempty"`
	Beliefs   map[string]Beliefs     `json:"beliefs,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func (s Snapshot) Player(id string) (PlayerSnapshot, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

func (s Snapshot) Team(id string) (TeamSnapshot, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return TeamSnapshot{}, false
}

// TotalScore is the number of books claimed so far.
func (s Snapshot) TotalScore() int {
	n := 0
	for _, t := range s.Teams {
		n += t.Score
	}
	return n
}

// PlayerView is what one player is allowed to see: their own hand and
// beliefs plus public state.
type PlayerView struct {
	GameID   string                 `json:"gameId"`
	Code     string                 `json:"code"`
	Config   Config                 `json:"config"`
	Status   Status                 `json:"status"`
	Turn     string                 `json:"turn,omitempty"`
	Seq      int                    `json:"seq"`
	You      string                 `json:"you"`
	Hand     []card.Card            `json:"hand"`
	Beliefs  Beliefs                `json:"beliefs,omitempty"`
	Players  []PlayerSnapshot       `json:"players"`
	Teams    []TeamSnapshot         `json:"teams,omitempty"`
	History  []Move                 `json:"history,omitempty"`
	Claimed  map[card.BookID]string `json:"claimed,omitempty"`
}

func (v PlayerView) Me() PlayerSnapshot {
	for _, p := range v.Players {
		if p.ID == v.You {
			return p
		}
	}
	return PlayerSnapshot{}
}

func (v PlayerView) Player(id string) (PlayerSnapshot, bool) {
	for _, p := range v.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

// LastMove returns the newest public move.
func (v PlayerView) LastMove() (Move, bool) {
	if len(v.History) == 0 {
		return Move{}, false
	}
	return v.History[0], true
}

// ViewFor derives a player-scoped view. Other players' hands are dropped.
func (s Snapshot) ViewFor(playerID string) (PlayerView, bool) {
	me, ok := s.Player(playerID)
	if !ok {
		return PlayerView{}, false
	}
	v := PlayerView{
		GameID:  s.ID,
		Code:    s.Code,
		Config:  s.Config,
		Status:  s.Status,
		Turn:    s.Turn,
		Seq:     s.Seq,
		You:     playerID,
		Hand:    append([]card.Card{}, me.Hand...),
		Teams:   cloneTeams(s.Teams),
		History: cloneMoves(s.History),
		Claimed: cloneClaimed(s.Claimed),
	}
	// the seed plus the public roster reproduces the deal
	v.Config.Seed = 0
	v.Config.ExcludedRanks = append([]card.Rank(nil), s.Config.ExcludedRanks...)
	if bs, ok := s.Beliefs[playerID]; ok {
		v.Beliefs = bs.clone()
	}
	for _, p := range s.Players {
		p.Hand = nil
		v.Players = append(v.Players, p)
	}
	return v, true
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:        g.id,
		Code:      g.code,
		Config:    g.cfg,
		Status:    g.status,
		Turn:      g.turn,
		Seq:       g.seq,
		History:   cloneMoves(g.history),
		Claimed:   cloneClaimed(g.claimed),
		Beliefs:   g.tracker.views(),
		CreatedAt: g.createdAt,
		UpdatedAt: g.updatedAt,
	}
	s.Config.ExcludedRanks = append([]card.Rank(nil), g.cfg.ExcludedRanks...)
	for _, pid := range g.order {
		p := g.players[pid]
		s.Players = append(s.Players, PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Avatar:    p.Avatar,
			Bot:       p.Bot,
			TeamID:    p.TeamID,
			CardCount: p.CardCount(),
			Stats:     p.stats,
			Hand:      append([]card.Card{}, p.hand...),
		})
	}
	for _, tid := range g.teamIDs {
		t := g.teams[tid]
		s.Teams = append(s.Teams, TeamSnapshot{
			ID:      t.ID,
			Name:    t.Name,
			Members: append([]string(nil), t.Members...),
			Score:   t.Score,
			Books:   append([]card.BookID(nil), t.Books...),
		})
	}
	return s
}

// PlayerView returns the view of one member of the game.
func (g *Game) PlayerView(playerID string) (PlayerView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.players[playerID]; !ok {
		return PlayerView{}, notFound("Player %s is not in this game", playerID)
	}
	v, _ := g.snapshotLocked().ViewFor(playerID)
	return v, nil
}

// Restore rebuilds a game from a persisted snapshot. The rng is reseeded
// from the configured seed and the move count, so a seeded game stays
// reproducible across restarts.
func Restore(s Snapshot) (*Game, error) {
	cfg := s.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("restore %s: %w", s.ID, err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("restore: snapshot has no id")
	}
	deck, err := card.NewDeck(cfg.Layout, cfg.ExcludedRanks)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		cfg:       cfg,
		deck:      deck,
		rng:       rand.New(rand.NewSource(seed + int64(s.Seq))),
		id:        s.ID,
		code:      s.Code,
		status:    s.Status,
		players:   make(map[string]*Player, len(s.Players)),
		teams:     make(map[string]*Team, len(s.Teams)),
		turn:      s.Turn,
		history:   cloneMoves(s.History),
		seq:       s.Seq,
		claimed:   cloneClaimed(s.Claimed),
		tracker:   NewTracker(cfg.MaxWeight),
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
	}
	if g.claimed == nil {
		g.claimed = make(map[card.BookID]string, deck.BookCount())
	}
	if _, ok := StatusDictionary[g.status]; !ok {
		return nil, fmt.Errorf("restore %s: invalid status %d", s.ID, s.Status)
	}
	for _, ps := range s.Players {
		if ps.ID == "" {
			return nil, fmt.Errorf("restore %s: player without id", s.ID)
		}
		p := &Player{ID: ps.ID, Name: ps.Name, Avatar: ps.Avatar, Bot: ps.Bot, TeamID: ps.TeamID, stats: ps.Stats}
		p.hand.Init(ps.Hand)
		g.players[p.ID] = p
		g.order = append(g.order, p.ID)
	}
	for _, ts := range s.Teams {
		g.teams[ts.ID] = &Team{
			ID:      ts.ID,
			Name:    ts.Name,
			Members: append([]string(nil), ts.Members...),
			Score:   ts.Score,
			Books:   append([]card.BookID(nil), ts.Books...),
		}
		g.teamIDs = append(g.teamIDs, ts.ID)
	}
	if err := g.checkRestored(); err != nil {
		return nil, fmt.Errorf("restore %s: %w", s.ID, err)
	}
	g.tracker.restore(s.Beliefs)
	if g.status == StatusInProgress {
		if _, ok := g.players[g.turn]; !ok {
			return nil, fmt.Errorf("restore %s: turn holder %q is not seated", s.ID, g.turn)
		}
	}
	return g, nil
}

// checkRestored rejects snapshots that later moves would trip over, such as
// a player on a team that does not exist or a card from a claimed book still
// in someone's hand.
func (g *Game) checkRestored() error {
	for _, pid := range g.order {
		p := g.players[pid]
		if p.TeamID == "" {
			if g.status >= StatusTeamsCreated {
				return fmt.Errorf("player %s has no team", pid)
			}
			continue
		}
		t, ok := g.teams[p.TeamID]
		if !ok {
			return fmt.Errorf("player %s is on unknown team %q", pid, p.TeamID)
		}
		member := false
		for _, id := range t.Members {
			member = member || id == pid
		}
		if !member {
			return fmt.Errorf("player %s is not listed on team %s", pid, t.ID)
		}
	}
	for _, tid := range g.teamIDs {
		for _, id := range g.teams[tid].Members {
			if p, ok := g.players[id]; !ok || p.TeamID != tid {
				return fmt.Errorf("team %s lists %s, who is not on it", tid, id)
			}
		}
	}
	for id, winner := range g.claimed {
		if _, ok := g.deck.Book(id); !ok {
			return fmt.Errorf("claimed book %d is not in the deck", id)
		}
		if _, ok := g.teams[winner]; !ok {
			return fmt.Errorf("book %d was won by unknown team %q", id, winner)
		}
	}
	seen := make(map[card.Card]string, g.deck.Size())
	for _, pid := range g.order {
		for _, c := range g.players[pid].hand {
			book, ok := g.deck.BookOf(c)
			if !ok {
				return fmt.Errorf("player %s holds %s, which is not in play", pid, c)
			}
			if _, done := g.claimed[book]; done {
				return fmt.Errorf("player %s holds %s from a claimed book", pid, c)
			}
			if other, dup := seen[c]; dup {
				return fmt.Errorf("%s is held by both %s and %s", c, other, pid)
			}
			seen[c] = pid
		}
	}
	return nil
}

func cloneTeams(ts []TeamSnapshot) []TeamSnapshot {
	if ts == nil {
		return nil
	}
	out := make([]TeamSnapshot, len(ts))
	for i, t := range ts {
		t.Members = append([]string(nil), t.Members...)
		t.Books = append([]card.BookID(nil), t.Books...)
		out[i] = t
	}
	return out
}

func cloneClaimed(m map[card.BookID]string) map[card.BookID]string {
	if m == nil {
		return nil
	}
	out := make(map[card.BookID]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
