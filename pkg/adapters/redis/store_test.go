package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/scenery/pkg/adapters/redis"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	tests.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisGraphStore_Contract(t *testing.T) {
	_, client := setup(t)
	tests.RunGraphStoreContract(t, redis.NewGraphStore(client, ""))
}

func TestRedisGraphStore_KeyLayout(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewGraphStore(client, "bot:")

	require.NoError(t, store.Save(context.Background(), "quest", tests.SampleGraph(t)))
	assert.True(t, mr.Exists("bot:graph:quest"))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	err := store.Save(ctx, sessionID, domain.NewState(sessionID, "start"))
	assert.NoError(t, err)

	sessions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Expires the key; the index entry is cleaned lazily by List.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index score is based on wall clock time, which miniredis does not control.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}
