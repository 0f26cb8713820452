package service

import (
	"sort"

	"kitchen-analytics/internal/models"
)

// DefaultTopN is the number of combo suggestions returned when none is requested
const DefaultTopN = 3

// CoOccurrenceOutcome explains how a co-occurrence count ended
type CoOccurrenceOutcome int

const (
	CoOccurrenceFound CoOccurrenceOutcome = iota
	CoOccurrenceNoHistory
	CoOccurrenceTargetNotFound
	CoOccurrenceNoAssociations
)

// Message is the informational text returned with empty results
func (o CoOccurrenceOutcome) Message() string {
	switch o {
	case CoOccurrenceNoHistory:
		return "No order history available"
	case CoOccurrenceTargetNotFound:
		return "No orders found containing this food item"
	case CoOccurrenceNoAssociations:
		return "No associated items found"
	default:
		return ""
	}
}

func (o CoOccurrenceOutcome) String() string {
	switch o {
	case CoOccurrenceFound:
		return "found"
	case CoOccurrenceNoHistory:
		return "no_history"
	case CoOccurrenceTargetNotFound:
		return "target_not_found"
	case CoOccurrenceNoAssociations:
		return "no_associations"
	default:
		return "unknown"
	}
}

// orderLine is one (order ordinal, item) pair. The ordinal is only meaningful
// within a single count.
type orderLine struct {
	order  int
	itemID string
}

// flattenOrders turns completed orders into order lines, numbering orders by
// their position in the input.
func flattenOrders(orders []models.OrderRecord) []orderLine {
	var lines []orderLine
	for idx, order := range orders {
		if !models.IsCompleted(order.Status) {
			continue
		}
		for _, line := range order.Lines() {
			lines = append(lines, orderLine{order: idx, itemID: line.ItemID})
		}
	}
	return lines
}

// CountCoOccurrences ranks the items that appear in the same completed orders
// as target. Each order counts at most once per item, quantities are ignored.
// Equal counts keep the order in which items were first encountered. At most
// topN items are returned.
func CountCoOccurrences(orders []models.OrderRecord, target string, topN int) ([]models.Recommendation, CoOccurrenceOutcome) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	lines := flattenOrders(orders)
	if len(lines) == 0 {
		return nil, CoOccurrenceNoHistory
	}

	withTarget := make(map[int]struct{})
	for _, l := range lines {
		if l.itemID == target {
			withTarget[l.order] = struct{}{}
		}
	}
	if len(withTarget) == 0 {
		return nil, CoOccurrenceTargetNotFound
	}

	counts := make(map[string]int)
	var firstSeen []string
	counted := make(map[orderLine]struct{})

	for _, l := range lines {
		if _, ok := withTarget[l.order]; !ok || l.itemID == target {
			continue
		}
		if _, dup := counted[l]; dup {
			continue
		}
		counted[l] = struct{}{}

		if _, seen := counts[l.itemID]; !seen {
			firstSeen = append(firstSeen, l.itemID)
		}
		counts[l.itemID]++
	}

	if len(firstSeen) == 0 {
		return nil, CoOccurrenceNoAssociations
	}

	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})

	if len(firstSeen) > topN {
		firstSeen = firstSeen[:topN]
	}

	recs := make([]models.Recommendation, 0, len(firstSeen))
	for _, id := range firstSeen {
		recs = append(recs, models.Recommendation{ItemID: id, Count: counts[id]})
	}
	return recs, CoOccurrenceFound
}
