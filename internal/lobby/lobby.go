package lobby

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"literature-lite/internal/config"
	"literature-lite/internal/log"
	"literature-lite/internal/notify"
	"literature-lite/internal/store"
	"literature-lite/internal/table"
	"literature-lite/literature"
)

// ErrGameNotFound is a NotFound rejection so callers can treat it like any
// other engine error.
var ErrGameNotFound = &literature.Error{Kind: literature.KindNotFound, Msg: "Game not found"}

const maxCodeAttempts = 16

// Lobby maps game ids and join codes to their table actors. Games that are
// not resident are loaded from the store on first use. mu only guards the
// two maps; store round trips happen outside it.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	byCode map[string]string // also holds codes reserved by a Create in flight

	loads   singleflight.Group // rehydration, keyed by game id
	created atomic.Uint64

	store store.Store
	game  config.GameConf
	opts  table.Options
}

func New(st store.Store, game config.GameConf, out notify.Broadcaster) *Lobby {
	return &Lobby{
		tables: make(map[string]*table.Table),
		byCode: make(map[string]string),
		store:  st,
		game:   game,
		opts: table.Options{
			Store:        st,
			Broadcaster:  out,
			ThinkDelay:   game.ThinkDelay,
			TurnTimeout:  game.TurnTimeout,
			AsyncPersist: game.AsyncPersist,
		},
	}
}

// Create starts a new game of the given size (<= 0 uses the configured
// default) with creator already seated.
func (l *Lobby) Create(ctx context.Context, creator literature.Identity, players int) (*table.Table, error) {
	cfg, err := l.game.Engine(players)
	if err != nil {
		return nil, err
	}
	if cfg.Seed != 0 {
		cfg.Seed = gameSeed(cfg.Seed, l.created.Add(1))
	}
	g, err := literature.NewGame(cfg, creator)
	if err != nil {
		return nil, &literature.Error{Kind: literature.KindRuleViolation, Msg: err.Error()}
	}
	if err := l.reserveCode(ctx, g); err != nil {
		return nil, err
	}

	t := table.New(g, l.opts)
	l.mu.Lock()
	l.tables[t.ID] = t
	l.mu.Unlock()
	log.Info("[Lobby] %s created game %s (code %s, %d players)", creator.ID, t.ID, t.Code(), cfg.PlayerCount)
	return t, nil
}

// reserveCode claims g's join code in byCode, drawing a new one while the
// code is resident or already stored.
func (l *Lobby) reserveCode(ctx context.Context, g *literature.Game) error {
	for i := 0; i < maxCodeAttempts; i++ {
		code := g.Code()
		if !l.residentCode(code) && !l.storedCode(ctx, code) {
			l.mu.Lock()
			if _, taken := l.byCode[code]; !taken {
				l.byCode[code] = g.ID()
				l.mu.Unlock()
				return nil
			}
			l.mu.Unlock()
		}
		g.ResetCode()
	}
	return errors.New("lobby: could not allocate a join code")
}

func (l *Lobby) residentCode(code string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byCode[code]
	return ok
}

func (l *Lobby) storedCode(ctx context.Context, code string) bool {
	if l.store == nil {
		return false
	}
	_, err := l.store.LoadByCode(ctx, code)
	return err == nil
}

// gameSeed spreads a configured seed over games so each deals differently
// while a server run stays reproducible.
func gameSeed(base int64, n uint64) int64 {
	z := uint64(base) + n*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	if z == 0 {
		z = 1 // 0 would mean time-based
	}
	return int64(z)
}

func (l *Lobby) registerLocked(t *table.Table) {
	l.tables[t.ID] = t
	l.byCode[t.Code()] = t.ID
}

// Get returns the actor for a game id, rehydrating it from the store when
// it is not resident.
func (l *Lobby) Get(ctx context.Context, gameID string) (*table.Table, error) {
	l.mu.RLock()
	t := l.tables[gameID]
	l.mu.RUnlock()
	if t != nil && !t.IsClosed() {
		return t, nil
	}
	return l.load(ctx, func(st store.Store) (literature.Snapshot, error) {
		return st.Load(ctx, gameID)
	})
}

// GetByCode resolves a public join code. Codes are case-insensitive.
func (l *Lobby) GetByCode(ctx context.Context, code string) (*table.Table, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	l.mu.RLock()
	id, ok := l.byCode[code]
	t := l.tables[id]
	l.mu.RUnlock()
	if ok && t != nil && !t.IsClosed() {
		return t, nil
	}
	return l.load(ctx, func(st store.Store) (literature.Snapshot, error) {
		return st.LoadByCode(ctx, code)
	})
}

func (l *Lobby) load(ctx context.Context, fetch func(store.Store) (literature.Snapshot, error)) (*table.Table, error) {
	if l.store == nil {
		return nil, ErrGameNotFound
	}
	snap, err := fetch(l.store)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	v, err, _ := l.loads.Do(snap.ID, func() (any, error) {
		l.mu.RLock()
		t := l.tables[snap.ID]
		creating := t == nil && l.byCode[snap.Code] == snap.ID
		l.mu.RUnlock()
		if t != nil && !t.IsClosed() {
			return t, nil
		}
		if creating {
			return nil, ErrGameNotFound
		}
		g, err := literature.Restore(snap)
		if err != nil {
			return nil, err
		}
		t = table.New(g, l.opts)
		l.mu.Lock()
		l.registerLocked(t)
		l.mu.Unlock()
		log.Info("[Lobby] rehydrated game %s at seq %d", snap.ID, snap.Seq)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Table), nil
}

// Join seats a player in the game behind code and returns their view.
func (l *Lobby) Join(ctx context.Context, code string, id literature.Identity) (*table.Table, literature.PlayerView, error) {
	t, err := l.GetByCode(ctx, code)
	if err != nil {
		return nil, literature.PlayerView{}, err
	}
	view, err := t.Join(id)
	if err != nil {
		return nil, literature.PlayerView{}, err
	}
	return t, view, nil
}

// ReapIdle stops and forgets tables idle for ttl. Their state stays in the
// store, so a later request brings them back.
func (l *Lobby) ReapIdle(ttl time.Duration) int {
	l.mu.Lock()
	var idle []*table.Table
	for id, t := range l.tables {
		if !t.IsIdleFor(ttl) {
			continue
		}
		idle = append(idle, t)
		delete(l.tables, id)
		if l.byCode[t.Code()] == id {
			delete(l.byCode, t.Code())
		}
	}
	l.mu.Unlock()

	for _, t := range idle {
		t.Stop()
		log.Info("[Lobby] unloaded idle game %s", t.ID)
	}
	return len(idle)
}

// Run reaps idle tables until ctx is done.
func (l *Lobby) Run(ctx context.Context) {
	ttl := l.game.IdleTTL
	if ttl <= 0 {
		return
	}
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.ReapIdle(ttl)
		}
	}
}

// Len is the number of resident games.
func (l *Lobby) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tables)
}

// Close stops every resident table.
func (l *Lobby) Close() {
	l.mu.Lock()
	tables := make([]*table.Table, 0, len(l.tables))
	for _, t := range l.tables {
		tables = append(tables, t)
	}
	l.tables = make(map[string]*table.Table)
	l.byCode = make(map[string]string)
	l.mu.Unlock()
	for _, t := range tables {
		t.Stop()
	}
}
