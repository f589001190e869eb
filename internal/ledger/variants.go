package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// NotApplicableLabel labels the implicit variant of an item without sizes.
const NotApplicableLabel = "N/A"

// ResolveStrategy records which legacy encoding produced the variants.
type ResolveStrategy string

const (
	StrategyStructured ResolveStrategy = "structured"
	StrategyDelimited  ResolveStrategy = "delimited"
	StrategyImplicit   ResolveStrategy = "implicit"
)

// ResolvedVariant is a variant synthesized from a legacy item record.
type ResolvedVariant struct {
	Size string
	domain.Counters
	ReorderPoint int
	UnitPrice    decimal.NullDecimal
}

// Resolution is the outcome of ResolveVariants. Warnings carry data-quality
// findings that did not stop resolution.
type Resolution struct {
	Strategy ResolveStrategy
	Variants []ResolvedVariant
	Warnings []string
}

// sizeVariationEntry is one element of the structured legacy encoding.
type sizeVariationEntry struct {
	Size               string           `json:"size"`
	BeginningInventory int              `json:"beginning_inventory"`
	Purchases          int              `json:"purchases"`
	Released           int              `json:"released"`
	Returns            int              `json:"returns"`
	ReorderPoint       *int             `json:"reorder_point"`
	UnitPrice          *decimal.Decimal `json:"unit_price"`
}

// ResolveVariants turns a legacy item into its ordered variants. It tries the
// structured size_variations list, then a delimited size string, then a single
// implicit variant. It never fails.
func ResolveVariants(item domain.LegacyItem) Resolution {
	var res Resolution

	if variants, warn, ok := fromStructured(item); ok {
		res.Strategy = StrategyStructured
		res.Variants = variants
		res.Warnings = append(res.Warnings, warn...)
		return res
	} else if len(warn) > 0 {
		res.Warnings = append(res.Warnings, warn...)
	}

	if labels := splitSizeLabels(item.Size); len(labels) > 1 {
		res.Strategy = StrategyDelimited
		for _, label := range labels {
			res.Variants = append(res.Variants, inherit(item, label))
		}
		return res
	}

	label := strings.TrimSpace(item.Size)
	if label == "" {
		label = NotApplicableLabel
	}
	res.Strategy = StrategyImplicit
	res.Variants = []ResolvedVariant{inherit(item, label)}
	return res
}

func inherit(item domain.LegacyItem, size string) ResolvedVariant {
	return ResolvedVariant{
		Size:         size,
		Counters:     item.Counters,
		ReorderPoint: item.ReorderPoint,
	}
}

func fromStructured(item domain.LegacyItem) ([]ResolvedVariant, []string, bool) {
	raw := strings.TrimSpace(item.SizeVariations)
	if raw == "" || raw == "null" {
		return nil, nil, false
	}

	var entries []sizeVariationEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, []string{fmt.Sprintf("item %s: malformed size_variations: %v", item.LegacyID, err)}, false
	}
	if len(entries) == 0 {
		return nil, nil, false
	}

	var (
		variants []ResolvedVariant
		warnings []string
		seen     = make(map[string]struct{}, len(entries))
	)
	for _, e := range entries {
		size := strings.TrimSpace(e.Size)
		if size == "" {
			size = NotApplicableLabel
		}
		key := NormalizeSize(size)
		if _, dup := seen[key]; dup {
			warnings = append(warnings, fmt.Sprintf("item %s: duplicate size %q in size_variations, keeping the first entry", item.LegacyID, size))
			continue
		}
		seen[key] = struct{}{}

		rp := item.ReorderPoint
		if e.ReorderPoint != nil {
			rp = *e.ReorderPoint
		}
		v := ResolvedVariant{
			Size: size,
			Counters: domain.Counters{
				BeginningInventory: e.BeginningInventory,
				Purchases:          e.Purchases,
				Released:           e.Released,
				Returns:            e.Returns,
			},
			ReorderPoint: rp,
		}
		if e.UnitPrice != nil {
			v.UnitPrice = decimal.NullDecimal{Decimal: *e.UnitPrice, Valid: true}
		}
		variants = append(variants, v)
	}

	return variants, warnings, true
}

// splitSizeLabels splits a legacy size field on , ; | or line breaks and
// drops blanks and case-insensitive duplicates, preserving order.
func splitSizeLabels(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n' || r == '\r'
	})

	labels := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := NormalizeSize(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, p)
	}
	return labels
}

// NormalizeSize is the comparison key for size labels.
func NormalizeSize(size string) string {
	return strings.ToLower(strings.TrimSpace(size))
}

// SelectVariant resolves a size selector against an item's variants. An empty
// selector selects the only variant of a single-variant item.
func SelectVariant(itemID int64, variants []domain.SizeVariant, selector string) (domain.SizeVariant, error) {
	if len(variants) == 0 {
		return domain.SizeVariant{}, domain.NewNotFoundError("variant of item", itemID)
	}

	candidates := make([]string, len(variants))
	for i, v := range variants {
		candidates[i] = v.Size
	}

	key := NormalizeSize(selector)
	if key == "" {
		if len(variants) == 1 {
			return variants[0], nil
		}
		return domain.SizeVariant{}, &domain.AmbiguityError{Selector: selector, Candidates: candidates, Matched: len(variants)}
	}

	var matches []domain.SizeVariant
	for _, v := range variants {
		if NormalizeSize(v.Size) == key {
			matches = append(matches, v)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return domain.SizeVariant{}, &domain.AmbiguityError{Selector: selector, Candidates: candidates}
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Size
		}
		return domain.SizeVariant{}, &domain.AmbiguityError{Selector: selector, Candidates: names, Matched: len(matches)}
	}
}

// TargetVariants is SelectVariant for operations where an empty selector
// means every variant of the item.
func TargetVariants(itemID int64, variants []domain.SizeVariant, selector string) ([]domain.SizeVariant, error) {
	if NormalizeSize(selector) == "" {
		if len(variants) == 0 {
			return nil, domain.NewNotFoundError("variant of item", itemID)
		}
		return variants, nil
	}

	v, err := SelectVariant(itemID, variants, selector)
	if err != nil {
		return nil, err
	}
	return []domain.SizeVariant{v}, nil
}

// DistinctSizes trims, de-duplicates (case-insensitively, first spelling wins)
// and sorts size labels.
func DistinctSizes(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		key := NormalizeSize(l)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return NormalizeSize(out[i]) < NormalizeSize(out[j])
	})
	return out
}
