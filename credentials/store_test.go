package credentials_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/stretchr/testify/require"
)

func testPair() credentials.Pair {
	return credentials.Pair{
		AccessToken:     "access-token",
		RefreshToken:    "refresh-token",
		AccessExpiresAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := credentials.NewMemoryStore()

	got, err := store.Get()
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, store.Set(testPair()))

	got, err = store.Get()
	require.NoError(t, err)
	require.Equal(t, testPair(), *got)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear()) // idempotent

	got, err = store.Get()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMemoryStoreRejectsPartialPair(t *testing.T) {
	store := credentials.NewMemoryStore()
	err := store.Set(credentials.Pair{AccessToken: "only-access"})
	require.Error(t, err)

	got, err := store.Get()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	store, err := credentials.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(testPair()))

	// A new store over the same path sees the persisted pair, like a
	// page reload.
	reloaded, err := credentials.NewFileStore(path)
	require.NoError(t, err)
	got, err := reloaded.Get()
	require.NoError(t, err)
	require.Equal(t, testPair(), *got)

	require.NoError(t, store.Clear())
	reloaded, err = credentials.NewFileStore(path)
	require.NoError(t, err)
	got, err = reloaded.Get()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStoreMalformedFileReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := credentials.NewFileStore(path)
	require.NoError(t, err)

	got, err := store.Get()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStoreDegradesToMemoryOnly(t *testing.T) {
	// A regular file used as a parent directory makes every write fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	path := filepath.Join(blocker, "tokens.json")

	store, err := credentials.NewFileStore(path)
	require.NoError(t, err)
	require.False(t, store.Degraded())

	// Set still succeeds; the pair lives for the process lifetime.
	require.NoError(t, store.Set(testPair()))
	require.True(t, store.Degraded())

	got, err := store.Get()
	require.NoError(t, err)
	require.Equal(t, testPair(), *got)
}
