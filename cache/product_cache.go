package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ProductKeyPrefix     = "product:detail:"
	ProductListKeyPrefix = "products:v:"
	ProductVersionKey    = "products:version"

	DefaultTTL = 10 * time.Minute
)

// ProductCache caches product reads. Every method degrades to a miss or a
// no-op when Redis is unavailable.
type ProductCache interface {
	Get(ctx context.Context, id uint) (*models.Product, bool)
	Set(ctx context.Context, p *models.Product)
	GetList(ctx context.Context) ([]models.Product, bool)
	SetList(ctx context.Context, products []models.Product)
	Invalidate(ctx context.Context, id uint)
}

// RedisProductCache keeps single products under fixed keys and the list
// under a versioned key. Bumping the version invalidates every list entry.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisProductCache{client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func productKey(id uint) string {
	return ProductKeyPrefix + strconv.FormatUint(uint64(id), 10)
}

func (c *RedisProductCache) Get(ctx context.Context, id uint) (*models.Product, bool) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("product cache read failed", zap.Uint("product_id", id), zap.Error(err))
		}
		return nil, false
	}
	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("failed to unmarshal cached product", zap.Error(err))
		return nil, false
	}
	return &p, true
}

func (c *RedisProductCache) Set(ctx context.Context, p *models.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache product", zap.Uint("product_id", p.ID), zap.Error(err))
	}
}

func (c *RedisProductCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, ProductVersionKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func (c *RedisProductCache) GetList(ctx context.Context) ([]models.Product, bool) {
	v, err := c.version(ctx)
	if err != nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, ProductListKeyPrefix+strconv.FormatInt(v, 10)).Bytes()
	if err != nil {
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (c *RedisProductCache) SetList(ctx context.Context, products []models.Product) {
	v, err := c.version(ctx)
	if err != nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, ProductListKeyPrefix+strconv.FormatInt(v, 10), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache product list", zap.Error(err))
	}
}

// Invalidate drops the product entry and bumps the list version.
func (c *RedisProductCache) Invalidate(ctx context.Context, id uint) {
	if err := c.client.Incr(ctx, ProductVersionKey).Err(); err != nil {
		c.logger.Error("failed to bump product cache version", zap.Uint("product_id", id), zap.Error(err))
	}
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.Warn("failed to delete cached product", zap.Uint("product_id", id), zap.Error(err))
	}
}

// Noop is used when no Redis URL is configured.
type Noop struct{}

func (Noop) Get(context.Context, uint) (*models.Product, bool) { return nil, false }
func (Noop) Set(context.Context, *models.Product) {}
func (Noop) GetList(context.Context) ([]models.Product, bool) { return nil, false }
func (Noop) SetList(context.Context, []models.Product) {}
func (Noop) Invalidate(context.Context, uint) {}
