package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"literature-lite/literature"
)

const (
	redisGameKey = "literature:game:"
	redisCodeKey = "literature:code:"
)

// Redis keeps one JSON value per game plus a code -> id index.
type Redis struct {
	cli *redis.Client
}

func NewRedis(ctx context.Context, addr, password string) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis address")
	}
	cli := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{cli: cli}, nil
}

// seqScript only overwrites when the stored seq is not newer.
var seqScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'seq')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'seq', ARGV[1], 'snapshot', ARGV[2])
redis.call('SET', KEYS[2], ARGV[3])
return 1
`)

func (r *Redis) Save(ctx context.Context, snap literature.Snapshot) error {
	raw, err := encode(snap)
	if err != nil {
		return err
	}
	keys := []string{redisGameKey + snap.ID, redisCodeKey + snap.Code}
	err = seqScript.Run(ctx, r.cli, keys, snap.Seq, string(raw), snap.ID).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis save %s: %w", snap.ID, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, gameID string) (literature.Snapshot, error) {
	raw, err := r.cli.HGet(ctx, redisGameKey+gameID, "snapshot").Bytes()
	if errors.Is(err, redis.Nil) {
		return literature.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return literature.Snapshot{}, fmt.Errorf("redis load %s: %w", gameID, err)
	}
	return decode(raw)
}

func (r *Redis) LoadByCode(ctx context.Context, code string) (literature.Snapshot, error) {
	id, err := r.cli.Get(ctx, redisCodeKey+code).Result()
	if errors.Is(err, redis.Nil) {
		return literature.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return literature.Snapshot{}, fmt.Errorf("redis code %s: %w", code, err)
	}
	return r.Load(ctx, id)
}

func (r *Redis) Close() error { return r.cli.Close() }
