package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, scope string) *RedisStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s, err := NewRedisStore(client, scope)
	require.NoError(t, err)
	return s
}

func TestNewRedisStoreValidation(t *testing.T) {
	_, err := NewRedisStore(nil, "scope")
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	_, err = NewRedisStore(client, "")
	assert.Error(t, err)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t, "device-1")

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "accessToken", "A"))
	v, err := s.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "A", v)

	require.NoError(t, s.Delete(ctx, "accessToken"))
	_, err = s.Get(ctx, "accessToken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreScopesAreIsolated(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	one, err := NewRedisStore(client, "device-1")
	require.NoError(t, err)
	two, err := NewRedisStore(client, "device-2")
	require.NoError(t, err)

	require.NoError(t, one.Set(ctx, "accessToken", "A1"))
	_, err = two.Get(ctx, "accessToken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreSessionHelpers(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t, "device-1")

	require.NoError(t, WriteSession(ctx, s, &Session{AccessToken: "A", RefreshToken: "R", UserID: "U"}))

	sess, err := ReadSession(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "A", sess.AccessToken)
}
