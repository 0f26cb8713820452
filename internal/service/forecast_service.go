package service

import (
	"context"
	"fmt"
	"time"

	"kitchen-analytics/internal/models"
	"kitchen-analytics/internal/store"
	"kitchen-analytics/internal/util"

	"go.uber.org/zap"
)

// ForecastSource provides everything the ingredient forecast reads
type ForecastSource interface {
	OrderSource
	GetRecipes(ctx context.Context) ([]models.RecipeRecord, error)
	GetCentralStock(ctx context.Context) ([]models.StockRecord, error)
	GetIngredientsByIDs(ctx context.Context, ids []string) ([]models.IngredientRecord, error)
}

// ForecastConfig tunes the forecast window
type ForecastConfig struct {
	WindowDays int
	MinOrders  int
	Location   *time.Location
}

// ForecastResult is the outcome of an ingredient forecast
type ForecastResult struct {
	Lines      []models.ForecastLine
	OrderCount int
	Message    string
}

// Counts returns the number of lines per status
func (r *ForecastResult) Counts() map[models.ForecastStatus]int {
	counts := map[models.ForecastStatus]int{
		models.ForecastStatusCritical: 0,
		models.ForecastStatusWarning:  0,
		models.ForecastStatusSafe:     0,
	}
	for _, line := range r.Lines {
		counts[line.Status]++
	}
	return counts
}

// ForecastService predicts tomorrow's ingredient needs and compares them with stock
type ForecastService struct {
	source ForecastSource
	cfg    ForecastConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewForecastService creates a new forecast service
func NewForecastService(source ForecastSource, cfg ForecastConfig) *ForecastService {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.MinOrders <= 0 {
		cfg.MinOrders = 3
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ForecastService{
		source: source,
		cfg:    cfg,
		now:    time.Now,
		logger: util.ComponentLogger("forecast"),
	}
}

// Forecast runs the ingredient demand forecast. Too little history yields an
// empty result with a message, not an error.
func (s *ForecastService) Forecast(ctx context.Context) (*ForecastResult, error) {
	ctx, span := util.StartSpan(ctx, "ForecastService.Forecast")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PipelineLatency.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	}()

	result, err := s.forecast(ctx)
	if err != nil {
		util.ForecastRunsTotal.WithLabelValues("error").Inc()
		util.SpanError(span, err)
		return nil, err
	}

	if len(result.Lines) == 0 {
		util.ForecastRunsTotal.WithLabelValues("empty").Inc()
	} else {
		util.ForecastRunsTotal.WithLabelValues("success").Inc()
	}
	for status, n := range result.Counts() {
		util.ForecastLines.WithLabelValues(string(status)).Set(float64(n))
	}

	return result, nil
}

func (s *ForecastService) forecast(ctx context.Context) (*ForecastResult, error) {
	now := s.now().In(s.cfg.Location)

	orders, err := s.source.FindOrders(ctx, store.OrderFilter{
		Statuses: models.CompletedOrderStatuses,
		Since:    now.AddDate(0, 0, -s.cfg.WindowDays),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	util.OrdersScanned.WithLabelValues("forecast").Observe(float64(len(orders)))

	if len(orders) < s.cfg.MinOrders {
		return s.empty(len(orders), fmt.Sprintf(
			"Not enough data to forecast (need at least %d orders in the last %d days)",
			s.cfg.MinOrders, s.cfg.WindowDays)), nil
	}

	sales := AggregateDailySales(orders, s.cfg.Location)
	if sales.Len() == 0 {
		return s.empty(len(orders), fmt.Sprintf("No sales data in the last %d days", s.cfg.WindowDays)), nil
	}

	predictions := PredictNextDay(sales, now, s.cfg.Location)

	recipes, err := s.source.GetRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	needs := ExpandToIngredients(predictions, recipes)
	for _, need := range needs {
		if need.UnitConflict {
			s.logger.Warn("Recipes disagree on ingredient unit, using last declared",
				zap.String("ingredient_id", need.IngredientID),
				zap.String("unit", need.Unit))
		}
	}

	stockRecords, err := s.source.GetCentralStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock: %w", err)
	}

	lines := Classify(needs, CentralStock(stockRecords), s.ingredientCatalog(ctx, needs))

	s.logger.Info("Ingredient forecast computed",
		zap.Int("orders", len(orders)),
		zap.Int("items_predicted", len(predictions)),
		zap.Int("ingredients", len(lines)))

	return &ForecastResult{
		Lines:      lines,
		OrderCount: len(orders),
		Message:    fmt.Sprintf("Forecast based on %d orders in the last %d days", len(orders), s.cfg.WindowDays),
	}, nil
}

// ingredientCatalog resolves names for the needed ingredients. A failed lookup
// leaves every name as the placeholder.
func (s *ForecastService) ingredientCatalog(ctx context.Context, needs []IngredientNeed) map[string]models.IngredientRecord {
	ids := make([]string, len(needs))
	for i, n := range needs {
		ids[i] = n.IngredientID
	}

	catalog := make(map[string]models.IngredientRecord, len(ids))
	if len(ids) == 0 {
		return catalog
	}

	ingredients, err := s.source.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Ingredient lookup failed, using placeholder names", zap.Error(err))
		return catalog
	}
	for _, ing := range ingredients {
		catalog[ing.ID] = ing
	}
	return catalog
}

func (s *ForecastService) empty(orderCount int, message string) *ForecastResult {
	return &ForecastResult{
		Lines:      []models.ForecastLine{},
		OrderCount: orderCount,
		Message:    message,
	}
}
