package snapshot

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash that holds the snapshot when none is configured.
const DefaultRedisKey = "groupool:snapshot"

// RedisStore keeps the snapshot in a single Redis hash, one field per key.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, addr string, db int, key string) (*RedisStore, error) {
	if key == "" {
		key = DefaultRedisKey
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, key: key}, nil
}

// Save swaps the whole hash inside MULTI/EXEC.
func (r *RedisStore) Save(ctx context.Context, kv map[string][]byte) error {
	values := make(map[string]interface{}, len(kv))
	for k, v := range kv {
		values[k] = v
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.HSet(ctx, r.key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context) (map[string][]byte, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	out := make(map[string][]byte, len(fields))
	for k, v := range fields {
		out[k] = []byte(v)
	}
	return out, nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
