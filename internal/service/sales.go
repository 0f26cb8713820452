package service

import (
	"time"

	"kitchen-analytics/internal/models"
)

// DaySales is the quantity of one item sold on one day
type DaySales struct {
	Date     string
	Quantity float64
}

// DailySales holds summed quantities per item and day. Items and days keep
// the order in which they were first seen.
type DailySales struct {
	items []string
	rows  map[string][]DaySales
	index map[salesKey]int
}

type salesKey struct {
	itemID string
	date   string
}

// Items returns the item ids with sales
func (d DailySales) Items() []string {
	return d.items
}

// Rows returns the per-day sales of an item
func (d DailySales) Rows(itemID string) []DaySales {
	return d.rows[itemID]
}

// Len is the number of (item, day) rows
func (d DailySales) Len() int {
	return len(d.index)
}

// AggregateDailySales sums line quantities of completed orders per item and
// per day, with days keyed in loc.
func AggregateDailySales(orders []models.OrderRecord, loc *time.Location) DailySales {
	sales := DailySales{
		rows:  make(map[string][]DaySales),
		index: make(map[salesKey]int),
	}

	for _, order := range orders {
		if !models.IsCompleted(order.Status) {
			continue
		}
		date := order.Date.DateKey(loc)

		for _, line := range order.Lines() {
			key := salesKey{itemID: line.ItemID, date: date}
			if i, ok := sales.index[key]; ok {
				sales.rows[line.ItemID][i].Quantity += line.Quantity
				continue
			}

			if _, seen := sales.rows[line.ItemID]; !seen {
				sales.items = append(sales.items, line.ItemID)
			}
			sales.index[key] = len(sales.rows[line.ItemID])
			sales.rows[line.ItemID] = append(sales.rows[line.ItemID], DaySales{Date: date, Quantity: line.Quantity})
		}
	}

	return sales
}
