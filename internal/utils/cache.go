package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Key prefix for revoked JWT IDs
const denyKeyPrefix = "jwtdeny:"

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// DenyToken records a revoked token ID until the token itself would expire
func DenyToken(ctx context.Context, rdb *redis.Client, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token already expired, nothing to revoke
	}
	return rdb.Set(ctx, denyKeyPrefix+tokenID, "1", ttl).Err() // Mark token as revoked
}

// IsTokenDenied reports whether a token ID has been revoked by logout
func IsTokenDenied(ctx context.Context, rdb *redis.Client, tokenID string) (bool, error) {
	_, err := rdb.Get(ctx, denyKeyPrefix+tokenID).Result() // Look up the deny marker
	if err == redis.Nil {
		return false, nil // Not revoked
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, nil // Revoked
}
