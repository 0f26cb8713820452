package models

// Recommendation is one ranked co-occurring item
type Recommendation struct {
	ItemID string
	Count  int
	Item   ItemRecord
}

// ForecastStatus classifies an ingredient's stock against its predicted need
type ForecastStatus string

const (
	ForecastStatusCritical ForecastStatus = "CRITICAL"
	ForecastStatusWarning  ForecastStatus = "WARNING"
	ForecastStatusSafe     ForecastStatus = "SAFE"
)

// Priority orders statuses for display, most urgent first
func (s ForecastStatus) Priority() int {
	switch s {
	case ForecastStatusCritical:
		return 0
	case ForecastStatusWarning:
		return 1
	case ForecastStatusSafe:
		return 2
	default:
		return 99
	}
}

// ForecastLine is the forecast for one ingredient. Quantities are unrounded.
type ForecastLine struct {
	IngredientID  string
	Name          string
	Unit          string
	CurrentStock  float64
	PredictedNeed float64
	Deficit       float64
	Status        ForecastStatus
}
