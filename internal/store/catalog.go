package store

import (
	"context"
	"errors"
	"fmt"

	"kitchen-analytics/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrMalformedID is returned when an identifier is not a catalog UUID
var ErrMalformedID = errors.New("malformed identifier")

const itemColumns = "id::text AS id, name, image, price"

// GetItemsByIDs retrieves menu items by id. Catalog rows are keyed by UUID,
// but legacy rows were imported with free-form keys, so a batch holding a
// malformed id is retried as a raw text lookup.
func (s *Store) GetItemsByIDs(ctx context.Context, ids []string) ([]models.ItemRecord, error) {
	if len(ids) == 0 {
		return []models.ItemRecord{}, nil
	}

	items, err := s.getItemsByUUID(ctx, ids)
	if errors.Is(err, ErrMalformedID) {
		return s.getItemsByText(ctx, ids)
	}
	return items, err
}

func (s *Store) getItemsByUUID(ctx context.Context, ids []string) ([]models.ItemRecord, error) {
	uuids, err := parseUUIDs(ids)
	if err != nil {
		return nil, err
	}
	return s.selectItems(ctx, "SELECT "+itemColumns+" FROM foods WHERE id IN (?)", uuids)
}

func (s *Store) getItemsByText(ctx context.Context, ids []string) ([]models.ItemRecord, error) {
	return s.selectItems(ctx, "SELECT "+itemColumns+" FROM foods WHERE id::text IN (?)", ids)
}

func (s *Store) selectItems(ctx context.Context, query string, ids interface{}) ([]models.ItemRecord, error) {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.ItemRecord
	err = s.read(func() error {
		return s.db.SelectContext(ctx, &items, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	return items, nil
}

// GetItems retrieves the whole item catalog
func (s *Store) GetItems(ctx context.Context) ([]models.ItemRecord, error) {
	var items []models.ItemRecord
	err := s.read(func() error {
		return s.db.SelectContext(ctx, &items, "SELECT "+itemColumns+" FROM foods ORDER BY id")
	})
	return items, err
}

// GetRecipes retrieves every recipe
func (s *Store) GetRecipes(ctx context.Context) ([]models.RecipeRecord, error) {
	var recipes []models.RecipeRecord
	err := s.read(func() error {
		return s.db.SelectContext(ctx, &recipes,
			"SELECT food_id::text AS food_id, ingredients FROM recipes ORDER BY food_id")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	return recipes, nil
}

// GetCentralStock retrieves stock held by the central warehouse
func (s *Store) GetCentralStock(ctx context.Context) ([]models.StockRecord, error) {
	var stock []models.StockRecord
	err := s.read(func() error {
		return s.db.SelectContext(ctx, &stock,
			`SELECT ingredient_id::text AS ingredient_id, branch_id::text AS branch_id, quantity, min_threshold
			 FROM stocks WHERE branch_id IS NULL`)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	return stock, nil
}

// GetIngredientsByIDs retrieves ingredients by id. Ids that are not valid
// references are skipped.
func (s *Store) GetIngredientsByIDs(ctx context.Context, ids []string) ([]models.IngredientRecord, error) {
	valid, _ := partitionUUIDs(ids)
	if len(valid) == 0 {
		return []models.IngredientRecord{}, nil
	}

	query, args, err := sqlx.In("SELECT id::text AS id, name, unit FROM ingredients WHERE id IN (?)", valid)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var ingredients []models.IngredientRecord
	err = s.read(func() error {
		return s.db.SelectContext(ctx, &ingredients, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	return ingredients, nil
}

func parseUUIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedID, id)
		}
		out = append(out, id)
	}
	return out, nil
}

func partitionUUIDs(ids []string) (valid, invalid []string) {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		} else {
			invalid = append(invalid, id)
		}
	}
	return valid, invalid
}
