package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/payflowhq/payflow/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// terminalStatusTTL bounds how long a resolved transaction status is served
// from cache. The store remains the source of truth.
const terminalStatusTTL = 10 * time.Minute

// SetupCache initializes the connection to the Redis cache server
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	return GetClient().Del(ctx, key).Err()
}

func transactionStatusKey(reference string) string {
	return "payments:status:" + reference
}

// SetTransactionStatus caches the terminal status of a transaction so webhook
// bursts and polling do not hammer the database.
func SetTransactionStatus(reference, status string) error {
	return Set(transactionStatusKey(reference), status, terminalStatusTTL)
}

// GetTransactionStatus returns the cached terminal status for a reference, or
// empty when not cached (or the cache is unavailable).
func GetTransactionStatus(reference string) string {
	val, err := Get(transactionStatusKey(reference))
	if err != nil {
		return ""
	}
	return val
}
