package ledger

import (
	"budget_tracker/internal/domain" // Importing domain models
	"budget_tracker/internal/utils"  // Redis cache helpers
	"context"                        // Request-scoped cancellation
	"strconv"                        // Cache field names
	"time"                           // Durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache holds read-side copies of a user's profile and transaction listings.
// Implementations must tolerate Invalidate on users that were never cached.
type Cache interface {
	GetUser(ctx context.Context, userID string) (*domain.User, bool, error)
	SetUser(ctx context.Context, u *domain.User) error
	GetTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, bool, error)
	SetTransactions(ctx context.Context, userID string, limit int, txs []domain.Transaction) error
	Invalidate(ctx context.Context, userID string) error
}

// RedisCache implements Cache on Redis.
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisCache creates a Redis-backed Cache whose entries expire after ttl.
func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func userKey(userID string) string {
	return "ledger:user:" + userID
}

// All listings of one user live in one hash, keyed by limit.
func transactionsKey(userID string) string {
	return "ledger:user:" + userID + ":txs"
}

// GetUser returns the cached profile of a user.
func (c *RedisCache) GetUser(ctx context.Context, userID string) (*domain.User, bool, error) {
	var u domain.User
	found, err := utils.GetCache(ctx, c.rdb, userKey(userID), &u)
	if err != nil || !found {
		return nil, false, err
	}
	return &u, true, nil
}

// SetUser caches a user's profile.
func (c *RedisCache) SetUser(ctx context.Context, u *domain.User) error {
	return utils.SetCache(ctx, c.rdb, userKey(u.ID), u, c.ttl)
}

// GetTransactions returns a cached listing for (userID, limit).
func (c *RedisCache) GetTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, bool, error) {
	var txs []domain.Transaction
	found, err := utils.GetHashCache(ctx, c.rdb, transactionsKey(userID), strconv.Itoa(limit), &txs)
	if err != nil || !found {
		return nil, false, err
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, true, nil
}

// SetTransactions caches a listing for (userID, limit).
func (c *RedisCache) SetTransactions(ctx context.Context, userID string, limit int, txs []domain.Transaction) error {
	return utils.SetHashCache(ctx, c.rdb, transactionsKey(userID), strconv.Itoa(limit), txs, c.ttl)
}

// Invalidate drops everything cached for the user.
func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	return utils.DeleteCache(ctx, c.rdb, userKey(userID), transactionsKey(userID))
}
