package store

import (
	"context"
	"fmt"
	"time"

	"kitchen-analytics/internal/models"

	"github.com/jmoiron/sqlx"
)

// OrderFilter selects order documents
type OrderFilter struct {
	Statuses []string
	// Since drops orders dated before it when non-zero
	Since time.Time
}

// FindOrders returns the orders matching the filter, newest first, bounded by
// the configured result-set limit.
func (s *Store) FindOrders(ctx context.Context, filter OrderFilter) ([]models.OrderRecord, error) {
	query, args, err := buildOrderQuery(filter, s.maxOrders)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var orders []models.OrderRecord
	err = s.read(func() error {
		return s.db.SelectContext(ctx, &orders, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return orders, nil
}

func buildOrderQuery(filter OrderFilter, limit int) (string, []interface{}, error) {
	if len(filter.Statuses) == 0 {
		return "", nil, fmt.Errorf("order filter needs at least one status")
	}

	query := "SELECT status, date, items FROM orders WHERE status IN (?)"
	args := []interface{}{filter.Statuses}

	if !filter.Since.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.Since)
	}

	query += " ORDER BY date DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return sqlx.In(query, args...)
}
