package service

import (
	"testing"
	"time"

	"kitchen-analytics/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func daysBefore(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestAggregateDailySales(t *testing.T) {
	orders := []models.OrderRecord{
		datedOrder(daysBefore(1), sale{"A", 2}, sale{"B", 1}),
		datedOrder(daysBefore(1).Add(-time.Hour), sale{"A", 3}),
		datedOrder(daysBefore(2), sale{"A", 1}),
		order("Pending", "A"),
	}

	sales := AggregateDailySales(orders, time.UTC)

	assert.Equal(t, []string{"A", "B"}, sales.Items())
	assert.Equal(t, []DaySales{
		{Date: "2024-06-29", Quantity: 5},
		{Date: "2024-06-28", Quantity: 1},
	}, sales.Rows("A"))
	assert.Equal(t, []DaySales{{Date: "2024-06-29", Quantity: 1}}, sales.Rows("B"))
	assert.Equal(t, 3, sales.Len())
}

func TestAggregateDailySalesRawDateAndDefaultQuantity(t *testing.T) {
	orders := []models.OrderRecord{{
		Status: models.OrderStatusServed,
		Date:   models.OrderDate{Raw: "2024-06-20 lunch"},
		Items:  models.LineItems{{FoodID: "A"}, {FoodID: "A"}},
	}}

	sales := AggregateDailySales(orders, time.UTC)
	assert.Equal(t, []DaySales{{Date: "2024-06-20", Quantity: 2}}, sales.Rows("A"))
}

func TestAggregateDailySalesUsesServiceTimezone(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	late := time.Date(2024, 6, 29, 20, 0, 0, 0, time.UTC)

	sales := AggregateDailySales([]models.OrderRecord{datedOrder(late, sale{"A", 1})}, loc)
	assert.Equal(t, "2024-06-30", sales.Rows("A")[0].Date)
}

func TestRecencyWeight(t *testing.T) {
	assert.Equal(t, 3.0, recencyWeight(0))
	assert.Equal(t, 3.0, recencyWeight(7))
	assert.Equal(t, 2.0, recencyWeight(8))
	assert.Equal(t, 2.0, recencyWeight(14))
	assert.Equal(t, 1.0, recencyWeight(15))
	assert.Equal(t, 1.0, recencyWeight(29))
}

func TestDaysAgoCountsCalendarDaysAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// clocks spring forward on 2024-03-10
	now := time.Date(2024, 3, 16, 0, 30, 0, 0, ny)
	assert.Equal(t, 8, daysAgo(time.Date(2024, 3, 8, 0, 0, 0, 0, ny), now))
	assert.Equal(t, 7, daysAgo(time.Date(2024, 3, 9, 0, 0, 0, 0, ny), now))
	assert.Equal(t, 0, daysAgo(time.Date(2024, 3, 16, 0, 0, 0, 0, ny), now))

	orders := []models.OrderRecord{
		datedOrder(time.Date(2024, 3, 8, 12, 0, 0, 0, ny), sale{"A", 10}),
		datedOrder(time.Date(2024, 3, 15, 12, 0, 0, 0, ny), sale{"A", 4}),
	}
	p := PredictNextDay(AggregateDailySales(orders, ny), now.UTC(), ny)
	require.Len(t, p, 1)
	// (10*2 + 4*3) / 5 * 1.2
	assert.InDelta(t, 32.0/5.0*1.2, p[0].Quantity, 1e-9)
}

func TestPredictNextDay(t *testing.T) {
	orders := []models.OrderRecord{
		datedOrder(daysBefore(1), sale{"A", 10}),
		datedOrder(daysBefore(10), sale{"A", 4}),
		datedOrder(daysBefore(20), sale{"A", 1}),
	}
	sales := AggregateDailySales(orders, time.UTC)

	predictions := PredictNextDay(sales, testNow, time.UTC)

	require.Len(t, predictions, 1)
	// (10*3 + 4*2 + 1*1) / 6 * 1.2
	assert.InDelta(t, 39.0/6.0*1.2, predictions[0].Quantity, 1e-9)
}

func TestPredictNextDaySkipsUnparseableDays(t *testing.T) {
	orders := []models.OrderRecord{
		datedOrder(daysBefore(1), sale{"A", 5}),
		{Status: models.OrderStatusPaid, Date: models.OrderDate{Raw: "yesterday"}, Items: models.LineItems{{ID: "A", Quantity: qty(100)}}},
		{Status: models.OrderStatusPaid, Date: models.OrderDate{Raw: "garbage"}, Items: models.LineItems{{ID: "B", Quantity: qty(7)}}},
	}
	sales := AggregateDailySales(orders, time.UTC)

	predictions := PredictNextDay(sales, testNow, time.UTC)

	require.Len(t, predictions, 1, "items without a parseable day are omitted")
	assert.Equal(t, "A", predictions[0].ItemID)
	assert.InDelta(t, 6.0, predictions[0].Quantity, 1e-9)
}

func TestPredictNextDayMonotonicInRecentSales(t *testing.T) {
	predict := func(recent float64) float64 {
		orders := []models.OrderRecord{
			datedOrder(daysBefore(2), sale{"A", recent}),
			datedOrder(daysBefore(9), sale{"A", 6}),
			datedOrder(daysBefore(25), sale{"A", 3}),
		}
		p := PredictNextDay(AggregateDailySales(orders, time.UTC), testNow, time.UTC)
		require.Len(t, p, 1)
		return p[0].Quantity
	}

	prev := predict(0)
	for _, q := range []float64{1, 2, 5, 5, 10, 40} {
		next := predict(q)
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestExpandToIngredients(t *testing.T) {
	predictions := []Prediction{
		{ItemID: "pho", Quantity: 10},
		{ItemID: "banh-mi", Quantity: 4},
		{ItemID: "no-recipe", Quantity: 99},
	}
	recipes := []models.RecipeRecord{
		{FoodID: "pho", Ingredients: models.RecipeIngredients{
			{IngredientID: "beef", QuantityNeeded: 0.2, Unit: "kg"},
			{IngredientID: "noodle", QuantityNeeded: 0.15, Unit: "kg"},
			{IngredientID: "", QuantityNeeded: 1, Unit: "pcs"},
		}},
		{FoodID: "banh-mi", Ingredients: models.RecipeIngredients{
			{IngredientID: "bread", QuantityNeeded: 1, Unit: "pcs"},
			{IngredientID: "beef", QuantityNeeded: 0.05, Unit: "kg"},
		}},
	}

	needs := ExpandToIngredients(predictions, recipes)

	require.Len(t, needs, 3)
	assert.Equal(t, "beef", needs[0].IngredientID)
	assert.InDelta(t, 2.2, needs[0].Quantity, 1e-9)
	assert.Equal(t, "kg", needs[0].Unit)
	assert.False(t, needs[0].UnitConflict)
	assert.Equal(t, "noodle", needs[1].IngredientID)
	assert.InDelta(t, 1.5, needs[1].Quantity, 1e-9)
	assert.Equal(t, "bread", needs[2].IngredientID)
	assert.InDelta(t, 4.0, needs[2].Quantity, 1e-9)
}

func TestExpandToIngredientsUnitConflictLastWins(t *testing.T) {
	predictions := []Prediction{{ItemID: "a", Quantity: 1}, {ItemID: "b", Quantity: 1}}
	recipes := []models.RecipeRecord{
		{FoodID: "a", Ingredients: models.RecipeIngredients{{IngredientID: "milk", QuantityNeeded: 1, Unit: "liter"}}},
		{FoodID: "b", Ingredients: models.RecipeIngredients{{IngredientID: "milk", QuantityNeeded: 200, Unit: "ml"}}},
	}

	needs := ExpandToIngredients(predictions, recipes)

	require.Len(t, needs, 1)
	assert.Equal(t, "ml", needs[0].Unit)
	assert.True(t, needs[0].UnitConflict)
	assert.InDelta(t, 201.0, needs[0].Quantity, 1e-9)
}

func TestClassifyStatusBoundaries(t *testing.T) {
	status := func(current, need float64) models.ForecastStatus {
		return classifyStatus(decimal.NewFromFloat(current), decimal.NewFromFloat(need))
	}
	assert.Equal(t, models.ForecastStatusCritical, status(9, 10))
	assert.Equal(t, models.ForecastStatusWarning, status(10, 10))
	assert.Equal(t, models.ForecastStatusWarning, status(14.99, 10))
	assert.Equal(t, models.ForecastStatusSafe, status(15, 10))
	assert.Equal(t, models.ForecastStatusSafe, status(0, 0))
}

func TestClassifyDecidesOnReportedPrecision(t *testing.T) {
	needs := []IngredientNeed{
		{IngredientID: "rice", Quantity: 10.004, Unit: "kg"},
		{IngredientID: "oil", Quantity: 10.006, Unit: "l"},
	}
	stock := map[string]float64{"rice": 10, "oil": 10}

	lines := Classify(needs, stock, nil)

	require.Len(t, lines, 2)
	assert.Equal(t, models.ForecastLine{
		IngredientID: "oil", Name: models.UnknownName, Unit: "l",
		CurrentStock: 10, PredictedNeed: 10.01, Deficit: 0.01,
		Status: models.ForecastStatusCritical,
	}, lines[0])
	assert.Equal(t, models.ForecastLine{
		IngredientID: "rice", Name: models.UnknownName, Unit: "kg",
		CurrentStock: 10, PredictedNeed: 10, Deficit: 0,
		Status: models.ForecastStatusWarning,
	}, lines[1])
}

func TestClassify(t *testing.T) {
	needs := []IngredientNeed{
		{IngredientID: "salt", Quantity: 1, Unit: "kg"},
		{IngredientID: "beef", Quantity: 10, Unit: "kg"},
		{IngredientID: "egg", Quantity: 30},
		{IngredientID: "rice", Quantity: 8, Unit: "kg"},
		{IngredientID: "ghost", Quantity: 2, Unit: "pcs"},
	}
	stock := map[string]float64{"salt": 50, "beef": 4, "egg": 40, "rice": 7}
	catalog := map[string]models.IngredientRecord{
		"salt": {ID: "salt", Name: "Salt", Unit: "kg"},
		"beef": {ID: "beef", Name: "Beef", Unit: "kg"},
		"egg":  {ID: "egg", Name: "Egg", Unit: "pcs"},
		"rice": {ID: "rice", Name: "Rice", Unit: "kg"},
	}

	lines := Classify(needs, stock, catalog)

	require.Len(t, lines, 5)
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.IngredientID
	}
	assert.Equal(t, []string{"beef", "ghost", "rice", "egg", "salt"}, ids)

	assert.Equal(t, models.ForecastLine{
		IngredientID: "beef", Name: "Beef", Unit: "kg",
		CurrentStock: 4, PredictedNeed: 10, Deficit: 6,
		Status: models.ForecastStatusCritical,
	}, lines[0])
	assert.Equal(t, models.UnknownName, lines[1].Name)
	assert.Equal(t, 0.0, lines[1].CurrentStock)
	assert.Equal(t, "pcs", lines[3].Unit, "falls back to the catalog unit")
	assert.Equal(t, models.ForecastStatusWarning, lines[3].Status)
	assert.Equal(t, 0.0, lines[4].Deficit)
}

func TestCentralStockIgnoresBranches(t *testing.T) {
	records := []models.StockRecord{
		{IngredientID: "beef", Quantity: 12},
	}
	branch := models.StockRecord{IngredientID: "rice", Quantity: 99}
	branch.BranchID.Valid = true
	branch.BranchID.String = "branch-1"
	records = append(records, branch)

	stock := CentralStock(records)
	assert.Equal(t, map[string]float64{"beef": 12}, stock)
}

func TestCentralStockSumsDuplicateRows(t *testing.T) {
	records := []models.StockRecord{
		{IngredientID: "beef", Quantity: 0.1},
		{IngredientID: "beef", Quantity: 0.2},
		{IngredientID: "rice", Quantity: 5},
	}

	stock := CentralStock(records)
	assert.Equal(t, map[string]float64{"beef": 0.3, "rice": 5}, stock)
}

func TestExpandToIngredientsAccumulatesExactly(t *testing.T) {
	predictions := []Prediction{{ItemID: "a", Quantity: 1}, {ItemID: "b", Quantity: 1}, {ItemID: "c", Quantity: 1}}
	recipes := []models.RecipeRecord{
		{FoodID: "a", Ingredients: models.RecipeIngredients{{IngredientID: "salt", QuantityNeeded: 0.1}}},
		{FoodID: "b", Ingredients: models.RecipeIngredients{{IngredientID: "salt", QuantityNeeded: 0.2}}},
		{FoodID: "c", Ingredients: models.RecipeIngredients{{IngredientID: "salt", QuantityNeeded: 0.3}}},
	}

	needs := ExpandToIngredients(predictions, recipes)

	require.Len(t, needs, 1)
	assert.Equal(t, 0.6, needs[0].Quantity)
}
