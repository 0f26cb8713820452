package service

import (
	"time"

	"kitchen-analytics/internal/models"
)

const (
	recentDays = 7
	midDays    = 14

	// SafetyBuffer inflates every prediction by 20%
	SafetyBuffer = 1.2
)

// Prediction is the expected quantity of an item sold tomorrow
type Prediction struct {
	ItemID   string
	Quantity float64
}

// recencyWeight weights a day by how many whole days ago it was
func recencyWeight(daysAgo int) float64 {
	switch {
	case daysAgo <= recentDays:
		return 3
	case daysAgo <= midDays:
		return 2
	default:
		return 1
	}
}

// daysAgo counts calendar days between a sales day and now, both read in
// their own location. Daylight saving shifts do not move a day across a band.
func daysAgo(day, now time.Time) int {
	return int(civilDate(now).Sub(civilDate(day)).Hours() / 24)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PredictNextDay estimates tomorrow's quantity per item as a recency-weighted
// average of its daily sales plus the safety buffer. Days that do not parse
// are skipped; items left without any weight are omitted.
func PredictNextDay(sales DailySales, now time.Time, loc *time.Location) []Prediction {
	predictions := make([]Prediction, 0, len(sales.Items()))
	now = now.In(loc)

	for _, itemID := range sales.Items() {
		var weighted, totalWeight float64

		for _, row := range sales.Rows(itemID) {
			day, err := time.ParseInLocation(models.DateKeyLayout, row.Date, loc)
			if err != nil {
				continue
			}
			w := recencyWeight(daysAgo(day, now))
			weighted += row.Quantity * w
			totalWeight += w
		}

		if totalWeight == 0 {
			continue
		}

		predictions = append(predictions, Prediction{
			ItemID:   itemID,
			Quantity: weighted / totalWeight * SafetyBuffer,
		})
	}

	return predictions
}
