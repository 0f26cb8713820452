package service

import (
	"context"
	"time"

	"kitchen-analytics/internal/models"
	"kitchen-analytics/internal/store"
)

// fakeStore is an in-memory stand-in for the shared database
type fakeStore struct {
	orders      []models.OrderRecord
	items       []models.ItemRecord
	recipes     []models.RecipeRecord
	stock       []models.StockRecord
	ingredients []models.IngredientRecord

	ordersErr      error
	itemsErr       error
	recipesErr     error
	stockErr       error
	ingredientsErr error

	lastFilter  store.OrderFilter
	itemLookups [][]string
	itemsListed int
}

func (f *fakeStore) FindOrders(ctx context.Context, filter store.OrderFilter) ([]models.OrderRecord, error) {
	f.lastFilter = filter
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	var out []models.OrderRecord
	for _, o := range f.orders {
		if !filter.Since.IsZero() && !o.Date.Time.IsZero() && o.Date.Time.Before(filter.Since) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeStore) GetItemsByIDs(ctx context.Context, ids []string) ([]models.ItemRecord, error) {
	f.itemLookups = append(f.itemLookups, append([]string(nil), ids...))
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.ItemRecord
	for _, item := range f.items {
		if want[item.ID] {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeStore) GetItems(ctx context.Context) ([]models.ItemRecord, error) {
	f.itemsListed++
	return f.items, f.itemsErr
}

func (f *fakeStore) GetRecipes(ctx context.Context) ([]models.RecipeRecord, error) {
	return f.recipes, f.recipesErr
}

func (f *fakeStore) GetCentralStock(ctx context.Context) ([]models.StockRecord, error) {
	return f.stock, f.stockErr
}

func (f *fakeStore) GetIngredientsByIDs(ctx context.Context, ids []string) ([]models.IngredientRecord, error) {
	if f.ingredientsErr != nil {
		return nil, f.ingredientsErr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.IngredientRecord
	for _, ing := range f.ingredients {
		if want[ing.ID] {
			out = append(out, ing)
		}
	}
	return out, nil
}

// fakeCache is an in-memory ItemCache
type fakeCache struct {
	items  map[string]models.ItemRecord
	getErr error
	setErr error
	sets   int
}

func (c *fakeCache) GetItems(ctx context.Context, ids []string) (map[string]models.ItemRecord, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := make(map[string]models.ItemRecord)
	for _, id := range ids {
		if item, ok := c.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (c *fakeCache) SetItems(ctx context.Context, items []models.ItemRecord, ttl time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	if c.items == nil {
		c.items = make(map[string]models.ItemRecord)
	}
	for _, item := range items {
		c.items[item.ID] = item
	}
	return nil
}

func order(status string, ids ...string) models.OrderRecord {
	items := make(models.LineItems, len(ids))
	for i, id := range ids {
		items[i] = models.RawLineItem{ID: models.DocID(id)}
	}
	return models.OrderRecord{Status: status, Items: items}
}

func paid(ids ...string) models.OrderRecord {
	return order(models.OrderStatusPaid, ids...)
}

func qty(q float64) *float64 {
	return &q
}

type sale struct {
	id  string
	qty float64
}

// datedOrder builds a paid order on the given day
func datedOrder(day time.Time, sales ...sale) models.OrderRecord {
	o := models.OrderRecord{Status: models.OrderStatusPaid, Date: models.OrderDate{Time: day}}
	for _, s := range sales {
		o.Items = append(o.Items, models.RawLineItem{ID: models.DocID(s.id), Quantity: qty(s.qty)})
	}
	return o
}
