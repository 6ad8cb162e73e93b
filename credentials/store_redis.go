package credentials

import (
	"context"
	"encoding/json"
	"time"

	interrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// redisKey is the fixed storage key; it mirrors the web frontend's
// "synergy_access_token" storage key.
const redisKey = "synergy:credentials"

const redisOpTimeout = 5 * time.Second

var _ Store = (*RedisStore)(nil)

// RedisStore persists the credential pair in Redis, for headless clients
// that share a session across processes or hosts.
type RedisStore struct {
	client *redis.Client
	key    string
}

type RedisStoreOption func(*RedisStore)

// WithRedisKey overrides the storage key, e.g. to namespace per user.
func WithRedisKey(key string) RedisStoreOption {
	return func(rs *RedisStore) {
		rs.key = key
	}
}

func NewRedisStore(client *redis.Client, options ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("[NewRedisStore] client is required")
	}

	rs := &RedisStore{
		client: client,
		key:    redisKey,
	}
	for _, opt := range options {
		opt(rs)
	}
	return rs, nil
}

func (rs *RedisStore) Get() (*Pair, error) {
	ctx, cancel := rs.opContext()
	defer cancel()

	data, err := rs.client.Get(ctx, rs.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, interrors.Wrapf(interrors.ErrStorageUnavailable, "[RedisStore Get] %s", err)
	}

	var pair Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		// Malformed data reads as absent.
		return nil, nil
	}
	if !pair.Complete() {
		return nil, nil
	}
	return &pair, nil
}

func (rs *RedisStore) Set(pair Pair) error {
	if err := validatePair(pair); err != nil {
		return err
	}

	data, err := json.Marshal(pair)
	if err != nil {
		return interrors.Wrapf(err, "[RedisStore Set] marshal")
	}

	ctx, cancel := rs.opContext()
	defer cancel()
	if err := rs.client.Set(ctx, rs.key, data, 0).Err(); err != nil {
		return interrors.Wrapf(interrors.ErrStorageUnavailable, "[RedisStore Set] %s", err)
	}
	return nil
}

func (rs *RedisStore) Clear() error {
	ctx, cancel := rs.opContext()
	defer cancel()
	if err := rs.client.Del(ctx, rs.key).Err(); err != nil {
		return interrors.Wrapf(interrors.ErrStorageUnavailable, "[RedisStore Clear] %s", err)
	}
	return nil
}

func (rs *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}
