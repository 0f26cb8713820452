package service

import (
	"context"
	"fmt"
	"time"

	"kitchen-analytics/internal/models"
	"kitchen-analytics/internal/util"

	"go.uber.org/zap"
)

// ItemStore is the item catalog in the shared database
type ItemStore interface {
	GetItemsByIDs(ctx context.Context, ids []string) ([]models.ItemRecord, error)
	GetItems(ctx context.Context) ([]models.ItemRecord, error)
}

// ItemCache holds item metadata close to the service
type ItemCache interface {
	GetItems(ctx context.Context, ids []string) (map[string]models.ItemRecord, error)
	SetItems(ctx context.Context, items []models.ItemRecord, ttl time.Duration) error
}

// ItemCatalog resolves item metadata, reading through the cache to the store
type ItemCatalog struct {
	store  ItemStore
	cache  ItemCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewItemCatalog creates a new item catalog. cache may be nil.
func NewItemCatalog(store ItemStore, cache ItemCache, ttl time.Duration) *ItemCatalog {
	return &ItemCatalog{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: util.ComponentLogger("item_catalog"),
	}
}

// GetItemsByIDs returns the items found for ids (fast path via Redis). Ids
// unknown to both cache and store are absent from the result.
func (c *ItemCatalog) GetItemsByIDs(ctx context.Context, ids []string) ([]models.ItemRecord, error) {
	ctx, span := util.StartSpan(ctx, "ItemCatalog.GetItemsByIDs")
	defer span.End()

	found := make(map[string]models.ItemRecord, len(ids))
	missing := ids

	if c.cache != nil {
		cached, err := c.cache.GetItems(ctx, ids)
		if err != nil {
			c.logger.Warn("Redis item lookup failed, falling back to DB",
				zap.Int("ids", len(ids)),
				zap.Error(err))
		} else {
			missing = make([]string, 0, len(ids))
			for _, id := range ids {
				if item, ok := cached[id]; ok {
					found[id] = item
				} else {
					missing = append(missing, id)
				}
			}
		}
	}

	util.ItemCacheHits.Add(float64(len(found)))
	util.ItemCacheMisses.Add(float64(len(missing)))

	if len(missing) > 0 {
		items, err := c.store.GetItemsByIDs(ctx, missing)
		if err != nil {
			util.SpanError(span, err)
			return nil, fmt.Errorf("failed to get items: %w", err)
		}
		for _, item := range items {
			found[item.ID] = item
		}
		c.fill(ctx, items)
	}

	out := make([]models.ItemRecord, 0, len(found))
	for _, id := range ids {
		if item, ok := found[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// WarmCache loads the whole item catalog into Redis
func (c *ItemCatalog) WarmCache(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}

	c.logger.Info("Starting item cache warm-up")

	items, err := c.store.GetItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}

	if err := c.cache.SetItems(ctx, items, c.ttl); err != nil {
		return fmt.Errorf("failed to cache items: %w", err)
	}

	c.logger.Info("Item cache warm-up completed", zap.Int("count", len(items)))
	return nil
}

func (c *ItemCatalog) fill(ctx context.Context, items []models.ItemRecord) {
	if c.cache == nil || len(items) == 0 {
		return
	}
	if err := c.cache.SetItems(ctx, items, c.ttl); err != nil {
		c.logger.Warn("Failed to cache items", zap.Error(err))
	}
}
