package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Simplici0/posadzki/internal/catalog"
)

// RawCatalogKey holds the JSON encoded raw catalog tables.
const RawCatalogKey = "catalog:raw:v1"

// Catalog caches the raw catalog tables in Redis so page loads do not hit the
// database.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Catalog {
	return &Catalog{client: client, ttl: ttl}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// GetRaw returns the cached tables. A missing key is a miss, not an error.
func (c *Catalog) GetRaw(ctx context.Context) (catalog.Raw, bool, error) {
	data, err := c.client.Get(ctx, RawCatalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return catalog.Raw{}, false, nil
	}
	if err != nil {
		return catalog.Raw{}, false, fmt.Errorf("get cached catalog: %w", err)
	}

	var raw catalog.Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return catalog.Raw{}, false, fmt.Errorf("unmarshal cached catalog: %w", err)
	}
	return raw, true, nil
}

func (c *Catalog) SetRaw(ctx context.Context, raw catalog.Raw) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return c.client.Set(ctx, RawCatalogKey, data, c.ttl).Err()
}

// Invalidate drops the cached tables, e.g. after an admin edit or import.
func (c *Catalog) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, RawCatalogKey).Err()
}
