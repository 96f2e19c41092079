package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

const (
	keyPrefix      = "facets:"
	scanBatchSize  = 200
	defaultTimeout = 5 * time.Second
)

// NewRedisClient connects and pings Redis.
func NewRedisClient(addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", addr), zap.Error(err))
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	log.Info("Connected to Redis", zap.String("address", addr))
	return rdb, nil
}

// FacetCache stores computed facet results under the facets: namespace.
type FacetCache struct {
	client redis.UniversalClient
	logger *logger.Logger
}

func NewFacetCache(client redis.UniversalClient, log *logger.Logger) *FacetCache {
	return &FacetCache{client: client, logger: log.Named("FacetCache")}
}

func (c *FacetCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("FacetCache.Get %q: %w", key, err)
	}
	return val, nil
}

func (c *FacetCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("FacetCache.Set %q: %w", key, err)
	}
	return nil
}

// Invalidate deletes every key in the facets: namespace.
func (c *FacetCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	deleted := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("FacetCache.Invalidate: %w", err)
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("FacetCache.Invalidate scan: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	c.logger.Debug("Facet cache invalidated", zap.Int("keys", deleted))
	return nil
}
