// Package ledger holds the pure stock ledger rules: ending inventory, status
// classification, variant resolution, date ranges and report aggregation.
// Nothing in this package performs I/O.
package ledger

import "github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"

// EndingInventory applies the conservation law
// beginning + purchases - released + returns.
// Negative results are returned as-is so callers can surface them.
func EndingInventory(c domain.Counters) int {
	return c.BeginningInventory + c.Purchases - c.Released + c.Returns
}

// Rollover returns the counters of the next period: the ending inventory
// becomes the beginning inventory and movement counters are zeroed.
func Rollover(c domain.Counters) domain.Counters {
	return domain.Counters{BeginningInventory: EndingInventory(c)}
}

// AddPurchase returns c with quantity added to purchases.
func AddPurchase(c domain.Counters, quantity int) domain.Counters {
	c.Purchases += quantity
	return c
}
