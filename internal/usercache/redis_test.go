package usercache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtrac-gateway/internal/model"
)

func unreachableRedis(t *testing.T) *Redis {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFromClient(client)
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFromClient(client), srv
}

func TestRedisRoundTrip(t *testing.T) {
	t.Parallel()

	cache, srv := newTestRedis(t)
	ctx := context.Background()
	user := model.DashboardUser{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		IsStaff:   true,
		Groups:    []string{"lab"},
	}

	require.NoError(t, cache.Set(ctx, "fp1", user, 5*time.Minute))

	assert.True(t, srv.Exists("gtrac:user:fp1"))
	assert.Equal(t, 5*time.Minute, srv.TTL("gtrac:user:fp1"))

	raw, err := srv.Get("gtrac:user:fp1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"ada@example.com","firstName":"Ada","lastName":"Lovelace","isStaff":true,"isSuperuser":false,"groups":["lab"]}`, raw)

	got, ok, err := cache.Get(ctx, "fp1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user, got)

	require.NoError(t, cache.Delete(ctx, "fp1"))
	assert.False(t, srv.Exists("gtrac:user:fp1"))

	_, ok, err = cache.Get(ctx, "fp1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisEntryExpires(t *testing.T) {
	t.Parallel()

	cache, srv := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "fp1", model.DashboardUser{Email: "a@example.com"}, time.Minute))
	srv.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "fp1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCorruptEntryIsMiss(t *testing.T) {
	t.Parallel()

	cache, srv := newTestRedis(t)
	require.NoError(t, srv.Set("gtrac:user:fp1", "{not json"))

	_, ok, err := cache.Get(context.Background(), "fp1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisUnavailableIsReported(t *testing.T) {
	t.Parallel()

	cache := unreachableRedis(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "k")
	assert.False(t, ok)
	require.ErrorIs(t, err, model.ErrCacheUnavailable)

	require.ErrorIs(t, cache.Set(ctx, "k", model.DashboardUser{Email: "a@example.com"}, time.Minute), model.ErrCacheUnavailable)
	require.ErrorIs(t, cache.Delete(ctx, "k"), model.ErrCacheUnavailable)
}

func TestRedisSkipsExpiredEntries(t *testing.T) {
	t.Parallel()

	// A non-positive TTL never reaches the server.
	require.NoError(t, unreachableRedis(t).Set(context.Background(), "k", model.DashboardUser{}, 0))
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedis(context.Background(), "not a url")
	require.Error(t, err)
}
