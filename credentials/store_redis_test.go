package credentials_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*credentials.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := credentials.NewRedisStore(client)
	require.NoError(t, err)
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)

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

func TestRedisStoreMalformedValueReadsAsAbsent(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("synergy:credentials", "{not json"))

	got, err := store.Get()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisStoreRejectsPartialPair(t *testing.T) {
	store, _ := newRedisStore(t)
	require.Error(t, store.Set(credentials.Pair{AccessToken: "only-access"}))
}
