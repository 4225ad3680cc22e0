package bot

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"literature-lite/internal/log"
	"literature-lite/literature"
)

// Instance is one bot seat in one game.
type Instance struct {
	PlayerID   string
	Name       string
	Brain      BrainDecider
	ThinkDelay time.Duration
}

// Manager owns the bots of one game.
type Manager struct {
	instances  map[string]*Instance
	mu         sync.RWMutex
	rng        *rand.Rand
	maxWeight  float64
	thinkDelay time.Duration
}

// NewManager seeds every bot brain from seed (0 => time-based). Each bot
// waits thinkDelay plus up to half of it again before acting.
func NewManager(seed int64, maxWeight float64, thinkDelay time.Duration) *Manager {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		instances:  make(map[string]*Instance),
		rng:        rand.New(rand.NewSource(seed)),
		maxWeight:  maxWeight,
		thinkDelay: thinkDelay,
	}
}

// Register creates a brain for a bot seat. Registering twice is a no-op.
func (m *Manager) Register(playerID, name string) *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inst, ok := m.instances[playerID]; ok {
		return inst
	}
	delay := m.thinkDelay
	if delay > 0 {
		delay += time.Duration(m.rng.Int63n(int64(delay)/2 + 1))
	}
	inst := &Instance{
		PlayerID:   playerID,
		Name:       name,
		Brain:      NewHeuristic(m.rng.Int63(), m.maxWeight),
		ThinkDelay: delay,
	}
	m.instances[playerID] = inst
	log.Debug("[Bot] registered %s (%s)", name, playerID)
	return inst
}

func (m *Manager) IsBot(playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[playerID] != nil
}

func (m *Manager) ThinkDelay(playerID string) time.Duration {
	m.mu.RLock()
	inst := m.instances[playerID]
	m.mu.RUnlock()
	if inst == nil {
		return m.thinkDelay
	}
	return inst.ThinkDelay
}

// OnTurn asks the seat's brain for a move. Unregistered seats (a human who
// timed out) get a temporary heuristic. When the brain finds nothing it falls
// back to a guessed claim.
func (m *Manager) OnTurn(view literature.PlayerView) (Decision, error) {
	m.mu.Lock()
	inst := m.instances[view.You]
	var brain BrainDecider
	if inst != nil {
		brain = inst.Brain
	} else {
		brain = NewHeuristic(m.rng.Int63(), m.maxWeight)
	}
	m.mu.Unlock()

	d, err := brain.Decide(view)
	if errors.Is(err, ErrNoMove) {
		log.Warn("[Bot] %s has no move in game %s, guessing a claim", view.You, view.GameID)
		if h, ok := brain.(*Heuristic); ok {
			d, err = h.Guess(view)
		}
	}
	if err != nil {
		log.Warn("[Bot] %s: %v", view.You, err)
		return Decision{}, err
	}
	log.Debug("[Bot] %s decides %s target=%s card=%s weight=%.1f", view.You, d.Kind, d.Target, d.Card, d.Weight)
	return d, nil
}

func (m *Manager) Remove(playerID string) {
	m.mu.Lock()
	delete(m.instances, playerID)
	m.mu.Unlock()
}
