package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/pkg/adapters/redis"
	"github.com/parleybot/parley/pkg/domain"
	"github.com/parleybot/parley/pkg/ports/tests"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	tests.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ephemeral", domain.NewSession("ephemeral")))

	mr.FastForward(2 * time.Second)

	_, err := store.Load(ctx, "ephemeral")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "ephemeral", "List prunes expired index entries")
}

func TestRedisStore_CustomPrefix(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("bot:s:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", domain.NewSession("abc")))
	assert.True(t, mr.Exists("bot:s:abc"))
}
