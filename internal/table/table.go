package table

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"literature-lite/card"
	"literature-lite/internal/log"
	"literature-lite/internal/notify"
	"literature-lite/literature"
	"literature-lite/literature/bot"
)

// Store is the part of the snapshot store the actor needs.
type Store interface {
	Save(ctx context.Context, s literature.Snapshot) error
}

// Options tune one table. Zero values disable the optional behaviors.
type Options struct {
	Store       Store
	Broadcaster notify.Broadcaster
	// Bots wait this long (plus jitter) before acting.
	ThinkDelay time.Duration
	// A human holding the turn longer than this gets a bot move played for
	// them. 0 disables it.
	TurnTimeout  time.Duration
	AsyncPersist bool
}

// Table is the single writer of one game. Every command goes through the
// events channel and is applied in arrival order by run().
type Table struct {
	ID string

	mu       sync.RWMutex
	game     *literature.Game
	bots     *bot.Manager
	rng      *rand.Rand
	opts     Options
	closed   bool
	stopOnce sync.Once

	events chan Event
	done   chan struct{}

	persistQ    chan literature.Snapshot
	persistDone chan struct{}

	notifySeq  uint64
	turnSince  time.Time
	lastActive time.Time

	// the bot move already queued, so a tick does not queue it twice
	botFor string
	botSeq int
}

type EventType int

const (
	EventJoin EventType = iota
	EventAddBots
	EventCreateTeams
	EventStart
	EventAsk
	EventClaim
	EventTransfer
	EventView
	EventBotMove
	EventClose
)

func (e EventType) String() string {
	switch e {
	case EventJoin:
		return "join"
	case EventAddBots:
		return "add_bots"
	case EventCreateTeams:
		return "create_teams"
	case EventStart:
		return "start"
	case EventAsk:
		return "ask"
	case EventClaim:
		return "claim"
	case EventTransfer:
		return "transfer"
	case EventView:
		return "view"
	case EventBotMove:
		return "bot_move"
	case EventClose:
		return "close"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Event is a message to the table actor.
type Event struct {
	Type      EventType
	Actor     literature.Identity
	Target    string
	Card      card.Card
	Claim     map[card.Card]string
	Teams     map[string][]string
	Seq       int // game seq a bot move was planned against
	Timestamp time.Time
	Response  chan Result
}

// Result is what a command produced. View is the actor's view after the
// command; Move is set for asks, claims and transfers.
type Result struct {
	Move    *literature.Move
	View    *literature.PlayerView
	Players []string
	Err     error
}

var ErrTableClosed = errors.New("table closed")

const (
	tickInterval   = 500 * time.Millisecond
	persistTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// New starts the actor for an existing game, either freshly created or
// restored from a snapshot. Bot seats already present are re-registered.
func New(game *literature.Game, opts Options) *Table {
	cfg := game.Config()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := time.Now()
	t := &Table{
		ID:         game.ID(),
		game:       game,
		bots:       bot.NewManager(seed, cfg.MaxWeight, opts.ThinkDelay),
		rng:        rand.New(rand.NewSource(seed)),
		opts:       opts,
		events:     make(chan Event, 256),
		done:       make(chan struct{}),
		turnSince:  now,
		lastActive: now,
	}
	snap := game.Snapshot()
	for _, p := range snap.Players {
		if p.Bot {
			t.bots.Register(p.ID, p.Name)
		}
	}
	if opts.Store != nil && opts.AsyncPersist {
		t.persistQ = make(chan literature.Snapshot, 64)
		t.persistDone = make(chan struct{})
		go t.persistLoop()
	}
	t.persistLocked(snap)
	t.scheduleBotLocked(snap)

	go t.run()

	log.Info("[Table %s] Created (code=%s players=%d status=%s)", t.ID, snap.Code, cfg.PlayerCount, snap.Status)
	return t
}

func (t *Table) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-t.events:
			res := t.handleEvent(event)
			if event.Response != nil {
				event.Response <- res
			}
		case <-ticker.C:
			t.tick()
		case <-t.done:
			log.Info("[Table %s] Actor stopped", t.ID)
			return
		}
	}
}

func (t *Table) handleEvent(e Event) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return Result{Err: ErrTableClosed}
	}
	if e.Type == EventClose {
		t.stopLocked()
		return Result{}
	}
	if e.Type == EventView {
		view, err := t.game.PlayerView(e.Actor.ID)
		if err != nil {
			return Result{Err: err}
		}
		return Result{View: &view}
	}

	before := t.game.Snapshot()
	res := t.applyLocked(e, before)
	if res.Err != nil {
		if e.Type != EventBotMove {
			log.Debug("[Table %s] %s by %s rejected: %v", t.ID, e.Type, e.Actor.ID, res.Err)
		}
		return res
	}
	after := t.afterChangeLocked(before)
	if e.Type != EventBotMove {
		if view, ok := after.ViewFor(e.Actor.ID); ok {
			res.View = &view
		}
	}
	return res
}

func (t *Table) applyLocked(e Event, before literature.Snapshot) Result {
	actor := e.Actor.ID
	switch e.Type {
	case EventJoin:
		return Result{Err: t.game.Join(e.Actor)}
	case EventAddBots:
		if _, err := t.game.PlayerView(actor); err != nil {
			return Result{Err: err}
		}
		added, err := t.game.AddBots(bot.Identities(before.Config.PlayerCount, t.rng))
		if err != nil {
			return Result{Err: err}
		}
		snap := t.game.Snapshot()
		for _, id := range added {
			if p, ok := snap.Player(id); ok {
				t.bots.Register(id, p.Name)
			}
		}
		return Result{Players: added}
	case EventCreateTeams:
		return Result{Err: t.game.CreateTeams(actor, e.Teams)}
	case EventStart:
		return Result{Err: t.game.Start(actor)}
	case EventAsk:
		return moveResult(t.game.Ask(actor, e.Target, e.Card))
	case EventClaim:
		return moveResult(t.game.Claim(actor, e.Claim))
	case EventTransfer:
		return moveResult(t.game.Transfer(actor, e.Target))
	case EventBotMove:
		if t.botFor == actor && t.botSeq == e.Seq {
			t.botFor = ""
		}
		if before.Status != literature.StatusInProgress || before.Turn != actor || before.Seq != e.Seq {
			// stale: someone already moved
			return Result{Err: errStaleBotMove}
		}
		return moveResult(t.playForLocked(actor))
	}
	return Result{Err: fmt.Errorf("unknown event type: %d", e.Type)}
}

var errStaleBotMove = errors.New("stale bot move")

func moveResult(m literature.Move, err error) Result {
	if err != nil {
		return Result{Err: err}
	}
	return Result{Move: &m}
}

// playForLocked lets the heuristic move for a seat, bot or timed-out human.
func (t *Table) playForLocked(playerID string) (literature.Move, error) {
	view, err := t.game.PlayerView(playerID)
	if err != nil {
		return literature.Move{}, err
	}
	d, err := t.bots.OnTurn(view)
	if err != nil {
		return literature.Move{}, err
	}
	move, err := d.Apply(t.game, playerID)
	if err == nil {
		return move, nil
	}
	log.Error("[Table %s] bot move %s for %s rejected: %v", t.ID, d.Kind, playerID, err)
	guess, gerr := bot.NewHeuristic(t.rng.Int63(), t.game.Config().MaxWeight).Guess(view)
	if gerr != nil {
		return literature.Move{}, err
	}
	return guess.Apply(t.game, playerID)
}

// afterChangeLocked runs after every accepted command: persist, notify,
// reset the turn clock and queue the next bot move.
func (t *Table) afterChangeLocked(before literature.Snapshot) literature.Snapshot {
	after := t.game.Snapshot()
	now := time.Now()
	t.lastActive = now
	if after.Turn != before.Turn || after.Seq != before.Seq {
		t.turnSince = now
	}

	t.persistLocked(after)
	for _, n := range diff(before, after, t.bots.IsBot) {
		t.publishLocked(n)
	}
	if before.Status != after.Status {
		log.Info("[Table %s] %s -> %s", t.ID, before.Status, after.Status)
	}
	if after.Status == literature.StatusCompleted && before.Status != after.Status {
		for _, team := range after.Teams {
			log.Info("[Table %s] final score %s: %d", t.ID, team.Name, team.Score)
		}
	}
	t.scheduleBotLocked(after)
	return after
}

func (t *Table) publishLocked(n notify.Notification) {
	if t.opts.Broadcaster == nil {
		return
	}
	t.notifySeq++
	n.GameID = t.ID
	n.Seq = t.notifySeq
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := t.opts.Broadcaster.Publish(ctx, n); err != nil {
		log.Warn("[Table %s] publish %s failed: %v", t.ID, n.Kind, err)
	}
}

func (t *Table) persistLocked(s literature.Snapshot) {
	if t.opts.Store == nil {
		return
	}
	if t.persistQ != nil {
		select {
		case t.persistQ <- s:
			return
		default:
			log.Warn("[Table %s] persist queue full, saving seq %d inline", t.ID, s.Seq)
		}
	}
	t.save(s)
}

func (t *Table) save(s literature.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := t.opts.Store.Save(ctx, s); err != nil {
		log.Error("[Table %s] persist seq %d failed: %v", t.ID, s.Seq, err)
	}
}

func (t *Table) persistLoop() {
	defer close(t.persistDone)
	for s := range t.persistQ {
		t.save(s)
	}
}

// scheduleBotLocked queues a bot move after the bot's think delay. The move
// is re-validated against the game seq when it arrives.
func (t *Table) scheduleBotLocked(s literature.Snapshot) {
	if s.Status != literature.StatusInProgress || s.Turn == "" || !t.bots.IsBot(s.Turn) {
		return
	}
	if t.botFor == s.Turn && t.botSeq == s.Seq {
		return
	}
	t.botFor, t.botSeq = s.Turn, s.Seq
	playerID, seq := s.Turn, s.Seq
	time.AfterFunc(t.bots.ThinkDelay(playerID), func() {
		_, err := t.SubmitEvent(Event{
			Type:  EventBotMove,
			Actor: literature.Identity{ID: playerID},
			Seq:   seq,
		})
		if err != nil && !errors.Is(err, ErrTableClosed) && !errors.Is(err, errStaleBotMove) {
			log.Warn("[Table %s] bot %s move failed: %v", t.ID, playerID, err)
		}
	})
}

func (t *Table) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	now := time.Now()
	if err := t.handleTurnTimeoutLocked(now); err != nil {
		log.Warn("[Table %s] turn timeout handler failed: %v", t.ID, err)
	}
	// a bot move that failed leaves nothing queued
	if t.botFor == "" && t.game.Status() == literature.StatusInProgress && t.bots.IsBot(t.game.Turn()) {
		t.scheduleBotLocked(t.game.Snapshot())
	}
}

func (t *Table) handleTurnTimeoutLocked(now time.Time) error {
	if t.opts.TurnTimeout <= 0 {
		return nil
	}
	if t.game.Status() != literature.StatusInProgress {
		return nil
	}
	turn := t.game.Turn()
	if turn == "" || t.bots.IsBot(turn) || now.Sub(t.turnSince) < t.opts.TurnTimeout {
		return nil
	}
	log.Info("[Table %s] %s timed out after %s, playing for them", t.ID, turn, t.opts.TurnTimeout)
	before := t.game.Snapshot()
	if _, err := t.playForLocked(turn); err != nil {
		// do not retry every tick
		t.turnSince = now
		return err
	}
	t.afterChangeLocked(before)
	return nil
}

// SubmitEvent sends an event to the actor and waits for its result.
func (t *Table) SubmitEvent(e Event) (Result, error) {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan Result, 1)
	}

	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return Result{}, ErrTableClosed
	}

	select {
	case t.events <- e:
	case <-t.done:
		return Result{}, ErrTableClosed
	}

	select {
	case res := <-e.Response:
		return res, res.Err
	case <-t.done:
		return Result{}, ErrTableClosed
	}
}

// Stop closes the actor and waits for queued snapshots to be written.
func (t *Table) Stop() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
	if t.persistDone != nil {
		<-t.persistDone
	}
}

func (t *Table) stopLocked() {
	t.closed = true
	t.stopOnce.Do(func() {
		close(t.done)
		if t.persistQ != nil {
			close(t.persistQ)
		}
	})
}

// IsIdleFor reports whether no command was accepted for ttl.
func (t *Table) IsIdleFor(ttl time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return true
	}
	return time.Since(t.lastActive) >= ttl
}

func (t *Table) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

func (t *Table) Code() string { return t.game.Code() }

func (t *Table) Snapshot() literature.Snapshot { return t.game.Snapshot() }

func (t *Table) IsBot(playerID string) bool { return t.bots.IsBot(playerID) }
