package service

import (
	"kitchen-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// IngredientNeed is the predicted quantity of one ingredient
type IngredientNeed struct {
	IngredientID string
	Quantity     float64
	Unit         string
	// UnitConflict is set when recipes disagree on the unit; Unit holds the last one seen
	UnitConflict bool
}

// ExpandToIngredients converts item predictions into ingredient needs through
// the recipes. Items without a recipe are skipped. Needs keep the order in
// which ingredients were first reached.
func ExpandToIngredients(predictions []Prediction, recipes []models.RecipeRecord) []IngredientNeed {
	byItem := make(map[string]models.RecipeIngredients, len(recipes))
	for _, r := range recipes {
		byItem[r.FoodID] = r.Ingredients
	}

	var needs []IngredientNeed
	var totals []decimal.Decimal
	index := make(map[string]int)

	for _, p := range predictions {
		lines, ok := byItem[p.ItemID]
		if !ok {
			continue
		}

		for _, line := range lines {
			id := string(line.IngredientID)
			if id == "" {
				continue
			}

			i, ok := index[id]
			if !ok {
				i = len(needs)
				index[id] = i
				needs = append(needs, IngredientNeed{IngredientID: id, Unit: line.Unit})
				totals = append(totals, decimal.Zero)
			}

			totals[i] = totals[i].Add(decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(line.QuantityNeeded)))
			n := &needs[i]
			if line.Unit != "" && line.Unit != n.Unit {
				n.UnitConflict = n.UnitConflict || n.Unit != ""
				n.Unit = line.Unit
			}
		}
	}

	for i := range needs {
		needs[i].Quantity = totals[i].InexactFloat64()
	}
	return needs
}
