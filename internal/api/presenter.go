package api

import (
	"kitchen-analytics/internal/models"
	"kitchen-analytics/internal/service"

	"github.com/shopspring/decimal"
)

// ComboItem is one suggested item in a combo response
type ComboItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Image             string  `json:"image"`
	Price             float64 `json:"price"`
	CoOccurrenceCount int     `json:"co_occurrence_count"`
}

// ComboResponse is the body of a combo recommendation
type ComboResponse struct {
	Success         bool        `json:"success"`
	Recommendations []ComboItem `json:"recommendations"`
	Message         string      `json:"message,omitempty"`
	InputFoodID     string      `json:"input_food_id"`
}

// ForecastItem is one ingredient row of a forecast response
type ForecastItem struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Unit          string                `json:"unit"`
	CurrentStock  float64               `json:"currentStock"`
	PredictedNeed float64               `json:"predictedNeed"`
	Deficit       float64               `json:"deficit"`
	Status        models.ForecastStatus `json:"status"`
}

// ForecastResponse is the body of an ingredient forecast
type ForecastResponse struct {
	Success bool           `json:"success"`
	Data    []ForecastItem `json:"data"`
	Message string         `json:"message"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// round2 rounds half away from zero to two decimals for display
func round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

func presentCombo(result *service.ComboResult) ComboResponse {
	items := make([]ComboItem, len(result.Recommendations))
	for i, rec := range result.Recommendations {
		items[i] = ComboItem{
			ID:                rec.ItemID,
			Name:              rec.Item.Name,
			Image:             rec.Item.Image,
			Price:             rec.Item.Price,
			CoOccurrenceCount: rec.Count,
		}
	}
	return ComboResponse{
		Success:         true,
		Recommendations: items,
		Message:         result.Message,
		InputFoodID:     result.ItemID,
	}
}

func presentForecast(result *service.ForecastResult) ForecastResponse {
	data := make([]ForecastItem, len(result.Lines))
	for i, line := range result.Lines {
		data[i] = ForecastItem{
			ID:            line.IngredientID,
			Name:          line.Name,
			Unit:          line.Unit,
			CurrentStock:  round2(line.CurrentStock),
			PredictedNeed: round2(line.PredictedNeed),
			Deficit:       round2(line.Deficit),
			Status:        line.Status,
		}
	}
	return ForecastResponse{
		Success: true,
		Data:    data,
		Message: result.Message,
	}
}
