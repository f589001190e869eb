package ledger

import (
	"fmt"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
)

const (
	DefaultCriticalRatio    = 0.5
	DefaultReorderBandRatio = 2.0
)

// Classifier maps (current stock, reorder point) to a StockStatus. Both
// boundaries are derived from the variant's own reorder point:
//
//	stock <= 0                                   OutOfStock
//	stock <  reorderPoint * CriticalRatio        Critical
//	stock <= reorderPoint * ReorderBandRatio     AtReorderPoint
//	otherwise                                    InStock
type Classifier struct {
	CriticalRatio    float64
	ReorderBandRatio float64
}

// NewClassifier validates the ratios. CriticalRatio must not exceed
// ReorderBandRatio, otherwise the ordering of statuses would break.
func NewClassifier(criticalRatio, reorderBandRatio float64) (Classifier, error) {
	if criticalRatio < 0 {
		return Classifier{}, fmt.Errorf("critical ratio must not be negative, got %v", criticalRatio)
	}
	if reorderBandRatio < criticalRatio {
		return Classifier{}, fmt.Errorf("reorder band ratio %v is below critical ratio %v", reorderBandRatio, criticalRatio)
	}
	return Classifier{CriticalRatio: criticalRatio, ReorderBandRatio: reorderBandRatio}, nil
}

// DefaultClassifier uses DefaultCriticalRatio and DefaultReorderBandRatio.
func DefaultClassifier() Classifier {
	return Classifier{CriticalRatio: DefaultCriticalRatio, ReorderBandRatio: DefaultReorderBandRatio}
}

// Classify never fails; a negative stock is treated as out of stock.
func (c Classifier) Classify(stock, reorderPoint int) domain.StockStatus {
	if stock <= 0 {
		return domain.StatusOutOfStock
	}

	s := float64(stock)
	rp := float64(reorderPoint)
	switch {
	case s < rp*c.CriticalRatio:
		return domain.StatusCritical
	case s <= rp*c.ReorderBandRatio:
		return domain.StatusAtReorderPoint
	default:
		return domain.StatusInStock
	}
}

// ClassifyCounters derives the ending inventory and classifies it.
func (c Classifier) ClassifyCounters(counters domain.Counters, reorderPoint int) (int, domain.StockStatus) {
	ending := EndingInventory(counters)
	return ending, c.Classify(ending, reorderPoint)
}

// MostSevere returns the dominating status of the given statuses.
// An empty input yields InStock.
func MostSevere(statuses ...domain.StockStatus) domain.StockStatus {
	worst := domain.StatusInStock
	for _, s := range statuses {
		if s.MoreSevere(worst) {
			worst = s
		}
	}
	return worst
}
