package service

import (
	"sort"

	"kitchen-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// displayPlaces is the precision quantities are reported and compared at
const displayPlaces = 2

// warningCover is the stock-to-need ratio under which a covered ingredient is still flagged
var warningCover = decimal.NewFromFloat(1.5)

// classifyStatus compares stock on hand with the predicted need
func classifyStatus(current, need decimal.Decimal) models.ForecastStatus {
	switch {
	case current.LessThan(need):
		return models.ForecastStatusCritical
	case current.LessThan(need.Mul(warningCover)):
		return models.ForecastStatusWarning
	default:
		return models.ForecastStatusSafe
	}
}

// CentralStock sums the central warehouse quantity per ingredient
func CentralStock(records []models.StockRecord) map[string]float64 {
	totals := make(map[string]decimal.Decimal, len(records))
	for _, r := range records {
		if r.IsCentral() {
			totals[r.IngredientID] = totals[r.IngredientID].Add(decimal.NewFromFloat(r.Quantity))
		}
	}

	stock := make(map[string]float64, len(totals))
	for id, total := range totals {
		stock[id] = total.InexactFloat64()
	}
	return stock
}

// Classify builds the forecast lines, most urgent first and, within a
// status, largest deficit first. Need, stock and deficit are settled at the
// reported precision before the status is decided, so a line never reads
// differently from its status. Ingredients missing from the catalog keep the
// placeholder name.
func Classify(needs []IngredientNeed, stock map[string]float64, catalog map[string]models.IngredientRecord) []models.ForecastLine {
	lines := make([]models.ForecastLine, 0, len(needs))

	for _, need := range needs {
		current := decimal.NewFromFloat(stock[need.IngredientID]).Round(displayPlaces)
		required := decimal.Max(decimal.Zero, decimal.NewFromFloat(need.Quantity)).Round(displayPlaces)
		deficit := decimal.Max(decimal.Zero, required.Sub(current))

		line := models.ForecastLine{
			IngredientID:  need.IngredientID,
			Name:          models.UnknownName,
			Unit:          need.Unit,
			CurrentStock:  current.InexactFloat64(),
			PredictedNeed: required.InexactFloat64(),
			Deficit:       deficit.InexactFloat64(),
			Status:        classifyStatus(current, required),
		}

		if ing, ok := catalog[need.IngredientID]; ok {
			line.Name = ing.Name
			if line.Unit == "" {
				line.Unit = ing.Unit
			}
		}

		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		pi, pj := lines[i].Status.Priority(), lines[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		return lines[i].Deficit > lines[j].Deficit
	})

	return lines
}
