package ledger

import (
	"budget_tracker/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedisCache_Transactions(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, found, err := cache.GetTransactions(ctx, "u1", 10)
	require.NoError(t, err)
	assert.False(t, found)

	txs := []domain.Transaction{{ID: "t1", UserID: "u1", Type: domain.Income}}
	require.NoError(t, cache.SetTransactions(ctx, "u1", 10, txs))
	require.NoError(t, cache.SetTransactions(ctx, "u1", 0, []domain.Transaction{}))

	got, found, err := cache.GetTransactions(ctx, "u1", 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)

	empty, found, err := cache.GetTransactions(ctx, "u1", 0)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.True(t, mr.Exists("ledger:user:u1:txs"))
	assert.Equal(t, time.Minute, mr.TTL("ledger:user:u1:txs"))
}

func TestRedisCache_Invalidate(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetUser(ctx, &domain.User{ID: "u1", Email: "a@b.c"}))
	require.NoError(t, cache.SetTransactions(ctx, "u1", 10, []domain.Transaction{{ID: "t1"}}))
	require.NoError(t, cache.SetTransactions(ctx, "u1", 0, []domain.Transaction{{ID: "t1"}}))

	require.NoError(t, cache.Invalidate(ctx, "u1"))
	assert.False(t, mr.Exists("ledger:user:u1"))
	assert.False(t, mr.Exists("ledger:user:u1:txs"))

	// Invalidating an uncached user is not an error.
	require.NoError(t, cache.Invalidate(ctx, "nobody"))
}

func TestService_CacheIsInvalidatedAfterMutations(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisCache(client, time.Minute)
	svc, _ := setupTestService(t, WithCache(cache))
	ctx := context.Background()
	u := mustLogin(t, svc, "cache@example.com")

	txs, err := svc.ListTransactions(ctx, u.ID, RecentLimit)
	require.NoError(t, err)
	assert.Empty(t, txs)
	_, found, err := cache.GetTransactions(ctx, u.ID, RecentLimit)
	require.NoError(t, err)
	assert.True(t, found)

	profile, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, profile.Balance.IsZero())

	created, _, err := svc.ApplyTransaction(ctx, u.ID, payload(domain.Income, "15"))
	require.NoError(t, err)

	txs, err = svc.ListTransactions(ctx, u.ID, RecentLimit)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, created.ID, txs[0].ID)

	profile, err = svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assertBalance(t, "15", profile.Balance)

	_, err = svc.ResetLedger(ctx, u.ID)
	require.NoError(t, err)

	txs, err = svc.ListTransactions(ctx, u.ID, RecentLimit)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestService_CacheFailureFallsBackToStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	svc, hook := setupTestService(t, WithCache(NewRedisCache(client, time.Minute)))
	ctx := context.Background()
	u := mustLogin(t, svc, "down@example.com")

	mr.Close()

	_, _, err := svc.ApplyTransaction(ctx, u.ID, payload(domain.Expense, "4"))
	require.NoError(t, err)

	txs, err := svc.ListTransactions(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Message == "Cache read failed" || e.Message == "Cache invalidation failed" {
			warned = true
		}
	}
	assert.True(t, warned)
}
