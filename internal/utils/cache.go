package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Sentinel comparison
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache reads a JSON value stored under key into dest. Reports false on a miss.
func GetCache(ctx context.Context, rdb redis.Cmdable, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal(val, dest)
}

// SetCache stores value as JSON under key with a TTL
func SetCache(ctx context.Context, rdb redis.Cmdable, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// GetHashCache reads a JSON value stored in field of the hash at key. Reports false on a miss.
func GetHashCache(ctx context.Context, rdb redis.Cmdable, key, field string, dest any) (bool, error) {
	val, err := rdb.HGet(ctx, key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal(val, dest)
}

// SetHashCache stores value as JSON in field of the hash at key and refreshes the hash TTL.
// Grouping related entries in one hash lets a single DEL drop all of them.
func SetHashCache(ctx context.Context, rdb redis.Cmdable, key, field string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, field, b)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// DeleteCache deletes one or more keys from Redis
func DeleteCache(ctx context.Context, rdb redis.Cmdable, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
