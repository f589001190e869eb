package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatching(t *testing.T) {
	amb := &AmbiguityError{Selector: "XL", Candidates: []string{"S", "M"}}
	wrapped := fmt.Errorf("add stock: %w", amb)

	assert.ErrorIs(t, wrapped, ErrAmbiguousVariant)
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Contains(t, amb.Error(), "matches no variant")

	var target *AmbiguityError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, CodeAmbiguousVariant, target.Code())

	nf := NewNotFoundError("item", int64(4))
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, CodeNotFound, nf.Code())

	verr := NewValidationError("quantity", "must be positive")
	assert.ErrorIs(t, verr, ErrValidation)
	assert.Equal(t, "quantity", verr.Field)
}

func TestStockStatusSeverity(t *testing.T) {
	assert.True(t, StatusOutOfStock.MoreSevere(StatusCritical))
	assert.True(t, StatusCritical.MoreSevere(StatusAtReorderPoint))
	assert.True(t, StatusAtReorderPoint.MoreSevere(StatusInStock))
	assert.True(t, StatusInStock.MoreSevere(StockStatus("bogus")))

	s, ok := ParseStockStatus("At Reorder Point")
	assert.True(t, ok)
	assert.Equal(t, StatusAtReorderPoint, s)
}

func TestEducationLevels(t *testing.T) {
	level, ok := ParseEducationLevel("  junior   HIGH ")
	assert.True(t, ok)
	assert.Equal(t, LevelJuniorHigh, level)

	_, ok = ParseEducationLevel("university")
	assert.False(t, ok)

	assert.Less(t, LevelPreschool.Order(), LevelCollege.Order())
	assert.Equal(t, len(EducationLevels), EducationLevel("other").Order())
}
