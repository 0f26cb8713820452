package models

import "time"

// Event types
const (
	EventTypeForecastRequested  = "FORECAST_REQUESTED"
	EventTypeForecastCompleted  = "FORECAST_COMPLETED"
	EventTypeIngredientShortage = "INGREDIENT_SHORTAGE"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ForecastRequestedEvent asks the worker to run an ingredient forecast
type ForecastRequestedEvent struct {
	BaseEvent
	RequestedBy string `json:"requested_by,omitempty"`
}

// ForecastCompletedEvent summarizes a finished forecast run
type ForecastCompletedEvent struct {
	BaseEvent
	RequestID  string `json:"request_id,omitempty"`
	OrderCount int    `json:"order_count"`
	Critical   int    `json:"critical"`
	Warning    int    `json:"warning"`
	Safe       int    `json:"safe"`
	Message    string `json:"message"`
}

// IngredientShortageEvent is published for every CRITICAL forecast line
type IngredientShortageEvent struct {
	BaseEvent
	IngredientID  string  `json:"ingredient_id"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	CurrentStock  float64 `json:"current_stock"`
	PredictedNeed float64 `json:"predicted_need"`
	Deficit       float64 `json:"deficit"`
}
