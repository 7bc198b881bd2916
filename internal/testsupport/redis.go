package testsupport

import (
	"testing"

	"nereus/internal/adapters/config"
	"nereus/internal/adapters/redis"
)

// NewRedisTestHelper creates a Redis client for tests.
func NewRedisTestHelper(t *testing.T, cfg config.RedisConfig) *redis.Client {
	t.Helper()

	client, err := redis.NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}

// NewTestRedis creates a test redis client with config loaded from the environment
func NewTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	dbConfigs := LoadDatabaseConfigsFromEnv(t)

	return NewRedisTestHelper(t, dbConfigs.Redis)
}
