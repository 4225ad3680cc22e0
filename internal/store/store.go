package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"literature-lite/internal/config"
	"literature-lite/internal/log"
	"literature-lite/literature"
)

var ErrNotFound = errors.New("store: game not found")

// Store persists full game snapshots. Save is an upsert keyed by game id and
// never replaces a newer snapshot with an older one.
type Store interface {
	Save(ctx context.Context, s literature.Snapshot) error
	Load(ctx context.Context, gameID string) (literature.Snapshot, error)
	LoadByCode(ctx context.Context, code string) (literature.Snapshot, error)
	Close() error
}

// Open builds the configured backend, wrapped in a read cache when
// CacheTTL > 0.
func Open(ctx context.Context, conf config.StoreConf) (Store, error) {
	var (
		s   Store
		err error
	)
	driver := strings.ToLower(strings.TrimSpace(conf.Driver))
	switch driver {
	case "memory":
		s = NewMemory()
	case "sqlite":
		s, err = NewSQLite(conf.Path)
	case "postgres":
		s, err = NewPostgres(ctx, conf.DSN)
	case "redis":
		s, err = NewRedis(ctx, conf.RedisAddr, conf.RedisPassword)
	case "mongo":
		s, err = NewMongo(ctx, conf.MongoURI, conf.MongoDB)
	default:
		return nil, fmt.Errorf("unknown store driver %q", conf.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if conf.CacheTTL > 0 && driver != "memory" {
		cached, err := NewCached(s, conf.CacheMaxCost, conf.CacheTTL)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s = cached
	}
	log.Info("[Store] using %s backend", driver)
	return s, nil
}

func encode(s literature.Snapshot) ([]byte, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("store: snapshot has no id")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", s.ID, err)
	}
	return raw, nil
}

func decode(raw []byte) (literature.Snapshot, error) {
	var s literature.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return literature.Snapshot{}, fmt.Errorf("store: decode snapshot: %w", err)
	}
	return s, nil
}
