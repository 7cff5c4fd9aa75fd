package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/velocraft/velocraft-backend/config"
	"github.com/velocraft/velocraft-backend/pkg/logger"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

func catalogKey(productID uint) string {
	return fmt.Sprintf("catalog:%d", productID)
}

// CacheCatalog stores a serialized product catalog with a TTL
func CacheCatalog(ctx context.Context, productID uint, payload []byte, ttl time.Duration) error {
	logger.Debug("Caching catalog", map[string]interface{}{
		"product_id": productID,
		"ttl":        ttl.String(),
	})

	if err := client.Set(ctx, catalogKey(productID), payload, ttl).Err(); err != nil {
		logger.Error("Failed to cache catalog", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}

// GetCachedCatalog returns the serialized catalog for a product, or nil on a
// cache miss
func GetCachedCatalog(ctx context.Context, productID uint) ([]byte, error) {
	payload, err := client.Get(ctx, catalogKey(productID)).Bytes()
	if err == redis.Nil {
		// Key does not exist - cache miss
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to read cached catalog", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return payload, nil
}

// InvalidateCatalog drops the cached catalog for a product
func InvalidateCatalog(ctx context.Context, productID uint) error {
	return client.Del(ctx, catalogKey(productID)).Err()
}
