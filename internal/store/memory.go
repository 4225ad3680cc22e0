package store

import (
	"context"
	"sync"

	"literature-lite/literature"
)

type memoryRecord struct {
	seq int
	raw []byte
}

// Memory keeps encoded snapshots in process. Used by tests and the
// "memory" driver.
type Memory struct {
	mu     sync.RWMutex
	games  map[string]memoryRecord
	byCode map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		games:  make(map[string]memoryRecord),
		byCode: make(map[string]string),
	}
}

func (m *Memory) Save(_ context.Context, s literature.Snapshot) error {
	raw, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.games[s.ID]; ok && cur.seq > s.Seq {
		return nil
	}
	m.games[s.ID] = memoryRecord{seq: s.Seq, raw: raw}
	m.byCode[s.Code] = s.ID
	return nil
}

func (m *Memory) Load(_ context.Context, gameID string) (literature.Snapshot, error) {
	m.mu.RLock()
	rec, ok := m.games[gameID]
	m.mu.RUnlock()
	if !ok {
		return literature.Snapshot{}, ErrNotFound
	}
	return decode(rec.raw)
}

func (m *Memory) LoadByCode(ctx context.Context, code string) (literature.Snapshot, error) {
	m.mu.RLock()
	id, ok := m.byCode[code]
	m.mu.RUnlock()
	if !ok {
		return literature.Snapshot{}, ErrNotFound
	}
	return m.Load(ctx, id)
}

// Len reports how many games are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

func (m *Memory) Close() error { return nil }
