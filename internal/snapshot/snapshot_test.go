package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleKV() map[string][]byte {
	return map[string][]byte{
		"group": []byte(`{"id":"grp-001","total_pool":"2000"}`),
		"votes": []byte(`[]`),
	}
}

// roundTrip saves, overwrites and reloads through any backend.
func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.Save(ctx, sampleKV()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(sampleKV()["group"]), string(got["group"]))
	assert.JSONEq(t, `[]`, string(got["votes"]))

	// A later save replaces keys that are no longer present.
	require.NoError(t, s.Save(ctx, map[string][]byte{"user": []byte(`{"id":"mbr-001"}`)}))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.JSONEq(t, `{"id":"mbr-001"}`, string(got["user"]))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	roundTrip(t, s)
	assert.Equal(t, 2, s.Saves())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.json")
	roundTrip(t, NewFileStore(path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"))
	err := s.Save(context.Background(), map[string][]byte{"group": []byte("not json")})
	assert.Error(t, err)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	defer s.Close()
	roundTrip(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("GROUPOOL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GROUPOOL_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, 0, "groupool:test:snapshot")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(ctx, map[string][]byte{}))
	roundTrip(t, s)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"})
	assert.Error(t, err)
}

func TestOpen_DefaultsToFile(t *testing.T) {
	s, err := Open(context.Background(), Options{FilePath: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	_, ok := s.(*FileStore)
	assert.True(t, ok)
}
