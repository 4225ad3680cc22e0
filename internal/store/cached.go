package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"literature-lite/literature"
)

// Cached is a read-through cache in front of another store. Values are the
// encoded snapshots so every Load hands out a fresh copy.
type Cached struct {
	inner Store
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCached wraps inner. maxCost is in bytes of encoded snapshot.
func NewCached(inner Store, maxCost int64, ttl time.Duration) (*Cached, error) {
	if maxCost <= 0 {
		maxCost = 1 << 26
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache, ttl: ttl}, nil
}

func (c *Cached) Save(ctx context.Context, s literature.Snapshot) error {
	if err := c.inner.Save(ctx, s); err != nil {
		return err
	}
	c.remember(s)
	return nil
}

func (c *Cached) Load(ctx context.Context, gameID string) (literature.Snapshot, error) {
	if v, ok := c.cache.Get("id:" + gameID); ok {
		if raw, ok := v.([]byte); ok {
			return decode(raw)
		}
	}
	s, err := c.inner.Load(ctx, gameID)
	if err != nil {
		return literature.Snapshot{}, err
	}
	c.remember(s)
	return s, nil
}

func (c *Cached) LoadByCode(ctx context.Context, code string) (literature.Snapshot, error) {
	if v, ok := c.cache.Get("code:" + code); ok {
		if id, ok := v.(string); ok {
			return c.Load(ctx, id)
		}
	}
	s, err := c.inner.LoadByCode(ctx, code)
	if err != nil {
		return literature.Snapshot{}, err
	}
	c.remember(s)
	return s, nil
}

func (c *Cached) remember(s literature.Snapshot) {
	raw, err := encode(s)
	if err != nil {
		return
	}
	if cur, ok := c.cache.Get("id:" + s.ID); ok {
		if old, ok := cur.([]byte); ok {
			if prev, err := decode(old); err == nil && prev.Seq > s.Seq {
				return
			}
		}
	}
	c.cache.SetWithTTL("id:"+s.ID, raw, int64(len(raw)), c.ttl)
	c.cache.SetWithTTL("code:"+s.Code, s.ID, 1, c.ttl)
}

// Wait blocks until pending cache writes are visible.
func (c *Cached) Wait() { c.cache.Wait() }

func (c *Cached) Close() error {
	c.cache.Close()
	return c.inner.Close()
}
