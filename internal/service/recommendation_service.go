package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kitchen-analytics/internal/models"
	"kitchen-analytics/internal/store"
	"kitchen-analytics/internal/util"

	"go.uber.org/zap"
)

// ErrMissingItemID is returned when a recommendation is requested without an item
var ErrMissingItemID = errors.New("missing food_id")

// MaxTopN bounds the number of suggestions a caller may ask for
const MaxTopN = 20

// OrderSource yields order documents
type OrderSource interface {
	FindOrders(ctx context.Context, filter store.OrderFilter) ([]models.OrderRecord, error)
}

// ItemLookup resolves item metadata
type ItemLookup interface {
	GetItemsByIDs(ctx context.Context, ids []string) ([]models.ItemRecord, error)
}

// ComboResult is the outcome of a combo recommendation
type ComboResult struct {
	ItemID          string
	Recommendations []models.Recommendation
	Message         string
}

// RecommendationService answers "customers who bought X also bought"
type RecommendationService struct {
	orders OrderSource
	items  ItemLookup
	topN   int
	logger *zap.Logger
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(orders OrderSource, items ItemLookup, defaultTopN int) *RecommendationService {
	if defaultTopN <= 0 {
		defaultTopN = DefaultTopN
	}
	return &RecommendationService{
		orders: orders,
		items:  items,
		topN:   defaultTopN,
		logger: util.ComponentLogger("recommendation"),
	}
}

// Recommend returns the items most often ordered together with itemID. A
// topN of zero uses the configured default.
func (s *RecommendationService) Recommend(ctx context.Context, itemID string, topN int) (*ComboResult, error) {
	ctx, span := util.StartSpan(ctx, "RecommendationService.Recommend")
	defer span.End()

	if strings.TrimSpace(itemID) == "" {
		util.RecommendationsTotal.WithLabelValues("invalid").Inc()
		return nil, ErrMissingItemID
	}
	if topN <= 0 {
		topN = s.topN
	}
	if topN > MaxTopN {
		topN = MaxTopN
	}

	start := time.Now()
	defer func() {
		util.PipelineLatency.WithLabelValues("combo").Observe(time.Since(start).Seconds())
	}()

	orders, err := s.orders.FindOrders(ctx, store.OrderFilter{
		Statuses: models.CompletedOrderStatuses,
	})
	if err != nil {
		util.RecommendationsTotal.WithLabelValues("error").Inc()
		util.SpanError(span, err)
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	util.OrdersScanned.WithLabelValues("combo").Observe(float64(len(orders)))

	recs, outcome := CountCoOccurrences(orders, itemID, topN)
	util.RecommendationsTotal.WithLabelValues(outcome.String()).Inc()

	if outcome != CoOccurrenceFound {
		s.logger.Debug("No combo recommendations",
			zap.String("food_id", itemID),
			zap.String("outcome", outcome.String()),
			zap.Int("orders", len(orders)))
		return &ComboResult{
			ItemID:          itemID,
			Recommendations: []models.Recommendation{},
			Message:         outcome.Message(),
		}, nil
	}

	s.decorate(ctx, recs)
	util.RecommendationSize.Observe(float64(len(recs)))

	return &ComboResult{
		ItemID:          itemID,
		Recommendations: recs,
	}, nil
}

// decorate attaches item metadata. Lookup failures and misses degrade to the
// placeholder item.
func (s *RecommendationService) decorate(ctx context.Context, recs []models.Recommendation) {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ItemID
	}

	byID := make(map[string]models.ItemRecord, len(ids))
	items, err := s.items.GetItemsByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Item metadata lookup failed, using placeholders",
			zap.Strings("food_ids", ids),
			zap.Error(err))
	}
	for _, item := range items {
		byID[item.ID] = item
	}

	for i := range recs {
		item, ok := byID[recs[i].ItemID]
		if !ok {
			item = models.UnknownItem(recs[i].ItemID)
		}
		recs[i].Item = item
	}
}
