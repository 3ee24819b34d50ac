package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"shop_manager/internal/models"
)

type Client struct {
	rdb *redis.Client
}

// ErrCacheMiss is returned when a key is absent; callers fall through to the
// database and repopulate.
var ErrCacheMiss = fmt.Errorf("cache miss")

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Active commission rule cache, keyed per shop. Invalidated whenever a rule is
// created or updated so settlement never rates against a stale rule.

func (c *Client) SetActiveRule(shopID uint, rule *models.CommissionRule, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to marshal commission rule: %w", err)
	}
	key := fmt.Sprintf("commission_rule:shop:%d", shopID)
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

func (c *Client) GetActiveRule(shopID uint) (*models.CommissionRule, error) {
	ctx := context.Background()
	key := fmt.Sprintf("commission_rule:shop:%d", shopID)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get commission rule: %w", err)
	}

	var rule models.CommissionRule
	if err := json.Unmarshal([]byte(val), &rule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal commission rule: %w", err)
	}
	return &rule, nil
}

func (c *Client) InvalidateActiveRule(shopID uint) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, fmt.Sprintf("commission_rule:shop:%d", shopID)).Err()
}

// Sale read-model cache. Settled sales change rarely, so reads are served from
// cache and the entry is dropped on every update or delete.

func (c *Client) SetSale(sale *models.Sale, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("failed to marshal sale: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("sale:%d", sale.ID), jsonData, ttl).Err()
}

func (c *Client) GetSale(id uint) (*models.Sale, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, fmt.Sprintf("sale:%d", id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	var sale models.Sale
	if err := json.Unmarshal([]byte(val), &sale); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sale: %w", err)
	}
	return &sale, nil
}

func (c *Client) InvalidateSale(id uint) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, fmt.Sprintf("sale:%d", id)).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
