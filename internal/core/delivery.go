package core

import "time"

// leadTimeDays returns the supplier lead time for an order quantity.
func leadTimeDays(quantity int) int {
	switch {
	case quantity <= 10:
		return 0
	case quantity <= 100:
		return 1
	case quantity <= 1000:
		return 4
	default:
		return 7
	}
}

// EstimateDelivery returns the promised delivery date (YYYY-MM-DD) for a
// restock order. An unparseable order date falls back to now() instead of
// failing: the estimate is advisory, not transactional.
func EstimateDelivery(orderDate string, quantity int, now func() time.Time) string {
	start, err := ParseDate(orderDate)
	if err != nil {
		start = now()
	}
	return start.AddDate(0, 0, leadTimeDays(quantity)).Format("2006-01-02")
}
