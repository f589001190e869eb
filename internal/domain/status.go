package domain

import "strings"

// StockStatus is the classification of a variant's current stock against its
// reorder point.
type StockStatus string

const (
	StatusOutOfStock     StockStatus = "out_of_stock"
	StatusCritical       StockStatus = "critical"
	StatusAtReorderPoint StockStatus = "at_reorder_point"
	StatusInStock        StockStatus = "in_stock"
)

var stockStatusLabels = map[StockStatus]string{
	StatusOutOfStock:     "Out of Stock",
	StatusCritical:       "Critical",
	StatusAtReorderPoint: "At Reorder Point",
	StatusInStock:        "In Stock",
}

// higher is more severe
var stockStatusSeverity = map[StockStatus]int{
	StatusInStock:        0,
	StatusAtReorderPoint: 1,
	StatusCritical:       2,
	StatusOutOfStock:     3,
}

// Label returns a human-readable label for the status.
func (s StockStatus) Label() string {
	if label, ok := stockStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}

// Severity orders statuses from InStock (0) to OutOfStock (3).
// Unknown statuses rank below InStock.
func (s StockStatus) Severity() int {
	if sev, ok := stockStatusSeverity[s]; ok {
		return sev
	}
	return -1
}

// MoreSevere reports whether s dominates other.
func (s StockStatus) MoreSevere(other StockStatus) bool {
	return s.Severity() > other.Severity()
}

// ParseStockStatus accepts either the status code or its label (case-insensitive).
func ParseStockStatus(raw string) (StockStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for status, label := range stockStatusLabels {
		if normalized == string(status) || normalized == strings.ToLower(label) {
			return status, true
		}
	}

	return "", false
}
