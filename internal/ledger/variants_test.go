package ledger

import (
	"testing"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyItem() domain.LegacyItem {
	return domain.LegacyItem{
		LegacyID:       "42",
		Name:           "PE Uniform",
		EducationLevel: domain.LevelElementary,
		Counters:       domain.Counters{BeginningInventory: 20, Released: 5},
		ReorderPoint:   10,
	}
}

func TestResolveVariants_StructuredWinsOverDelimited(t *testing.T) {
	item := legacyItem()
	item.Size = "S, M, L"
	item.SizeVariations = `[
		{"size": "M", "beginning_inventory": 12, "purchases": 3, "released": 1, "returns": 0, "reorder_point": 4},
		{"size": "XL", "beginning_inventory": 7, "unit_price": "350.50"}
	]`

	res := ResolveVariants(item)

	assert.Equal(t, StrategyStructured, res.Strategy)
	require.Len(t, res.Variants, 2)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, "M", res.Variants[0].Size)
	assert.Equal(t, domain.Counters{BeginningInventory: 12, Purchases: 3, Released: 1}, res.Variants[0].Counters)
	assert.Equal(t, 4, res.Variants[0].ReorderPoint)
	assert.False(t, res.Variants[0].UnitPrice.Valid)

	assert.Equal(t, "XL", res.Variants[1].Size)
	assert.Equal(t, 10, res.Variants[1].ReorderPoint, "missing reorder point inherits the item's")
	require.True(t, res.Variants[1].UnitPrice.Valid)
	assert.Equal(t, "350.5", res.Variants[1].UnitPrice.Decimal.String())
}

func TestResolveVariants_MalformedStructuredFallsThrough(t *testing.T) {
	item := legacyItem()
	item.Size = "S | M | L"
	item.SizeVariations = `[{"size": "M", "beginning_inventory": }`

	res := ResolveVariants(item)

	assert.Equal(t, StrategyDelimited, res.Strategy)
	require.Len(t, res.Variants, 3)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "malformed size_variations")

	for _, v := range res.Variants {
		assert.Equal(t, item.Counters, v.Counters)
		assert.Equal(t, item.ReorderPoint, v.ReorderPoint)
	}
	assert.Equal(t, []string{"S", "M", "L"}, sizesOf(res.Variants))
}

func TestResolveVariants_MalformedWithoutSizesIsImplicit(t *testing.T) {
	item := legacyItem()
	item.SizeVariations = `{not json`

	res := ResolveVariants(item)

	assert.Equal(t, StrategyImplicit, res.Strategy)
	assert.Equal(t, []string{NotApplicableLabel}, sizesOf(res.Variants))
	assert.Len(t, res.Warnings, 1)
}

func TestResolveVariants_EmptyStructuredListIsIgnored(t *testing.T) {
	item := legacyItem()
	item.Size = "M"
	item.SizeVariations = `[]`

	res := ResolveVariants(item)

	assert.Equal(t, StrategyImplicit, res.Strategy)
	assert.Equal(t, []string{"M"}, sizesOf(res.Variants))
	assert.Empty(t, res.Warnings)
}

func TestResolveVariants_DelimitedDropsBlanksAndDuplicates(t *testing.T) {
	item := legacyItem()
	item.Size = "S;;m; M ;L,"

	res := ResolveVariants(item)

	assert.Equal(t, StrategyDelimited, res.Strategy)
	assert.Equal(t, []string{"S", "m", "L"}, sizesOf(res.Variants))
}

func TestResolveVariants_SingleLabel(t *testing.T) {
	item := legacyItem()
	item.Size = "  Free Size  "

	res := ResolveVariants(item)

	assert.Equal(t, StrategyImplicit, res.Strategy)
	require.Len(t, res.Variants, 1)
	assert.Equal(t, "Free Size", res.Variants[0].Size)
	assert.Equal(t, item.Counters, res.Variants[0].Counters)
}

func TestResolveVariants_StructuredDuplicateSizeKeepsFirst(t *testing.T) {
	item := legacyItem()
	item.SizeVariations = `[{"size": "M", "beginning_inventory": 1}, {"size": "m", "beginning_inventory": 2}, {"size": ""}]`

	res := ResolveVariants(item)

	assert.Equal(t, StrategyStructured, res.Strategy)
	assert.Equal(t, []string{"M", NotApplicableLabel}, sizesOf(res.Variants))
	assert.Equal(t, 1, res.Variants[0].BeginningInventory)
	assert.Len(t, res.Warnings, 1)
}

func TestSelectVariant(t *testing.T) {
	variants := []domain.SizeVariant{
		{ID: 1, ItemID: 9, Size: "S"},
		{ID: 2, ItemID: 9, Size: "M"},
		{ID: 3, ItemID: 9, Size: "L"},
	}

	t.Run("case-insensitive match", func(t *testing.T) {
		v, err := SelectVariant(9, variants, " m ")
		require.NoError(t, err)
		assert.Equal(t, int64(2), v.ID)
	})

	t.Run("no match lists candidates", func(t *testing.T) {
		_, err := SelectVariant(9, variants, "XL")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAmbiguousVariant)
		assert.ErrorIs(t, err, domain.ErrValidation)

		var amb *domain.AmbiguityError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, 0, amb.Matched)
		assert.Equal(t, []string{"S", "M", "L"}, amb.Candidates)
	})

	t.Run("empty selector on multi-variant item", func(t *testing.T) {
		_, err := SelectVariant(9, variants, "")
		var amb *domain.AmbiguityError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, 3, amb.Matched)
	})

	t.Run("empty selector on single-variant item", func(t *testing.T) {
		v, err := SelectVariant(9, variants[:1], "")
		require.NoError(t, err)
		assert.Equal(t, "S", v.Size)
	})

	t.Run("duplicate labels are ambiguous", func(t *testing.T) {
		dup := append([]domain.SizeVariant{{ID: 4, ItemID: 9, Size: "s"}}, variants...)
		_, err := SelectVariant(9, dup, "S")
		var amb *domain.AmbiguityError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, 2, amb.Matched)
		assert.ElementsMatch(t, []string{"s", "S"}, amb.Candidates)
	})

	t.Run("no variants at all", func(t *testing.T) {
		_, err := SelectVariant(9, nil, "M")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTargetVariants(t *testing.T) {
	variants := []domain.SizeVariant{{ID: 1, Size: "S"}, {ID: 2, Size: "M"}}

	all, err := TargetVariants(1, variants, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := TargetVariants(1, variants, "m")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, int64(2), one[0].ID)

	_, err = TargetVariants(1, variants, "XL")
	assert.ErrorIs(t, err, domain.ErrAmbiguousVariant)
}

func TestDistinctSizes(t *testing.T) {
	got := DistinctSizes([]string{"M", " s", "L", "m", "", "N/A", "S"})
	assert.Equal(t, []string{"L", "M", "N/A", "s"}, got)
	assert.Empty(t, DistinctSizes(nil))
}

func sizesOf(vs []ResolvedVariant) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Size
	}
	return out
}
