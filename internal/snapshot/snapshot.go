// Package snapshot persists the ledger as a flat set of keys, each holding one
// JSON document. Backends only move bytes; encoding lives with the ledger.
package snapshot

import (
	"context"
	"fmt"
)

// Store saves and loads a key/value snapshot.
type Store interface {
	// Save replaces the stored snapshot with kv.
	Save(ctx context.Context, kv map[string][]byte) error
	// Load returns the stored snapshot. A backend with nothing stored returns an empty map.
	Load(ctx context.Context) (map[string][]byte, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	FilePath   string
	SQLitePath string
	RedisAddr  string
	RedisDB    int
	RedisKey   string
}

// Open builds the backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.FilePath), nil
	case BackendSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisDB, opts.RedisKey)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", opts.Backend)
	}
}

func copyKV(kv map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(kv))
	for k, v := range kv {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
