package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kitchen-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForecastService(fs *fakeStore) *ForecastService {
	svc := NewForecastService(fs, ForecastConfig{WindowDays: 30, MinOrders: 3, Location: time.UTC})
	svc.now = func() time.Time { return testNow }
	return svc
}

func kitchenStore() *fakeStore {
	return &fakeStore{
		orders: []models.OrderRecord{
			datedOrder(daysBefore(1), sale{"pho", 10}),
			datedOrder(daysBefore(1), sale{"pho", 5}, sale{"tea", 4}),
			datedOrder(daysBefore(3), sale{"pho", 5}),
			datedOrder(daysBefore(45), sale{"pho", 500}),
		},
		recipes: []models.RecipeRecord{
			{FoodID: "pho", Ingredients: models.RecipeIngredients{
				{IngredientID: "beef", QuantityNeeded: 0.2, Unit: "kg"},
				{IngredientID: "noodle", QuantityNeeded: 0.1, Unit: "kg"},
			}},
			{FoodID: "tea", Ingredients: models.RecipeIngredients{
				{IngredientID: "leaf", QuantityNeeded: 0.01, Unit: "kg"},
			}},
		},
		stock: []models.StockRecord{
			{IngredientID: "beef", Quantity: 1},
			{IngredientID: "noodle", Quantity: 1.5},
			{IngredientID: "leaf", Quantity: 10},
		},
		ingredients: []models.IngredientRecord{
			{ID: "beef", Name: "Beef", Unit: "kg"},
			{ID: "noodle", Name: "Rice noodle", Unit: "kg"},
			{ID: "leaf", Name: "Tea leaf", Unit: "kg"},
		},
	}
}

func TestForecast(t *testing.T) {
	fs := kitchenStore()
	svc := newTestForecastService(fs)

	result, err := svc.Forecast(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.OrderCount)
	assert.Equal(t, "Forecast based on 3 orders in the last 30 days", result.Message)
	assert.Equal(t, models.CompletedOrderStatuses, fs.lastFilter.Statuses)
	assert.Equal(t, testNow.AddDate(0, 0, -30), fs.lastFilter.Since)

	// pho: days 29 (15) and 27 (5) -> (15*3 + 5*3) / 6 * 1.2 = 12
	// tea: 4 * 1.2 = 4.8
	require.Len(t, result.Lines, 3)

	beef := result.Lines[0]
	assert.Equal(t, "beef", beef.IngredientID)
	assert.Equal(t, "Beef", beef.Name)
	assert.InDelta(t, 2.4, beef.PredictedNeed, 1e-9)
	assert.InDelta(t, 1.4, beef.Deficit, 1e-9)
	assert.Equal(t, models.ForecastStatusCritical, beef.Status)

	noodle := result.Lines[1]
	assert.Equal(t, "noodle", noodle.IngredientID)
	assert.InDelta(t, 1.2, noodle.PredictedNeed, 1e-9)
	assert.Equal(t, models.ForecastStatusWarning, noodle.Status)

	leaf := result.Lines[2]
	assert.Equal(t, "leaf", leaf.IngredientID)
	assert.Equal(t, models.ForecastStatusSafe, leaf.Status)

	counts := result.Counts()
	assert.Equal(t, 1, counts[models.ForecastStatusCritical])
	assert.Equal(t, 1, counts[models.ForecastStatusWarning])
	assert.Equal(t, 1, counts[models.ForecastStatusSafe])
}

func TestForecastNotEnoughOrders(t *testing.T) {
	fs := kitchenStore()
	fs.orders = fs.orders[:2]
	svc := newTestForecastService(fs)

	result, err := svc.Forecast(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, result.Lines)
	assert.Empty(t, result.Lines)
	assert.Contains(t, result.Message, "at least 3 orders")
}

func TestForecastNoSalesRows(t *testing.T) {
	fs := kitchenStore()
	fs.orders = []models.OrderRecord{paid(), paid(), paid()}
	svc := newTestForecastService(fs)

	result, err := svc.Forecast(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Lines)
	assert.Equal(t, "No sales data in the last 30 days", result.Message)
}

func TestForecastIngredientLookupFailureKeepsLines(t *testing.T) {
	fs := kitchenStore()
	fs.ingredientsErr = errors.New("catalog down")
	svc := newTestForecastService(fs)

	result, err := svc.Forecast(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Lines, 3)
	for _, line := range result.Lines {
		assert.Equal(t, models.UnknownName, line.Name)
		assert.Equal(t, "kg", line.Unit)
	}
}

func TestForecastStoreFailures(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name string
		fail func(*fakeStore)
	}{
		{"orders", func(f *fakeStore) { f.ordersErr = boom }},
		{"recipes", func(f *fakeStore) { f.recipesErr = boom }},
		{"stock", func(f *fakeStore) { f.stockErr = boom }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := kitchenStore()
			tt.fail(fs)

			result, err := newTestForecastService(fs).Forecast(context.Background())
			assert.Nil(t, result)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestForecastIsIdempotent(t *testing.T) {
	svc := newTestForecastService(kitchenStore())

	first, err := svc.Forecast(context.Background())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := svc.Forecast(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNewForecastServiceDefaults(t *testing.T) {
	svc := NewForecastService(&fakeStore{}, ForecastConfig{})

	assert.Equal(t, 30, svc.cfg.WindowDays)
	assert.Equal(t, 3, svc.cfg.MinOrders)
	assert.Equal(t, time.Local, svc.cfg.Location)
}
