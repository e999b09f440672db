package policy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Slab is one professional tax bracket. A nil Max means the bracket is unbounded.
type Slab struct {
	Min       decimal.Decimal  `json:"min_salary"`
	Max       *decimal.Decimal `json:"max_salary"`
	TaxAmount decimal.Decimal  `json:"tax_amount"`
}

// Contains reports whether min <= amount <= max.
func (s Slab) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(s.Min) {
		return false
	}
	return s.Max == nil || amount.LessThanOrEqual(*s.Max)
}

// FindSlab returns the first slab containing amount.
func FindSlab(slabs []Slab, amount decimal.Decimal) (Slab, bool) {
	for _, slab := range slabs {
		if slab.Contains(amount) {
			return slab, true
		}
	}
	return Slab{}, false
}

// DecodeSlabs normalizes a stored slab list. raw may be a JSON string, raw
// bytes, or a list already decoded into []any / []map[string]any. Both the
// min_salary/max_salary/tax_amount keys and the short min/max/tax aliases are
// accepted; an absent, null or empty max is unbounded.
func DecodeSlabs(raw any) ([]Slab, error) {
	var items []map[string]any
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []Slab:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSlabs, err)
		}
	case []byte:
		return DecodeSlabs(string(v))
	case json.RawMessage:
		return DecodeSlabs(string(v))
	case []map[string]any:
		items = v
	case []any:
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d is not an object", ErrInvalidSlabs, i)
			}
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidSlabs, raw)
	}

	slabs := make([]Slab, 0, len(items))
	for i, item := range items {
		slab, err := slabFromMap(item)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidSlabs, i, err)
		}
		slabs = append(slabs, slab)
	}
	return slabs, nil
}

func slabFromMap(item map[string]any) (Slab, error) {
	minRaw, ok := lookup(item, "min_salary", "min")
	if !ok {
		return Slab{}, fmt.Errorf("missing min_salary")
	}
	minValue, err := requireDecimal(minRaw)
	if err != nil {
		return Slab{}, fmt.Errorf("min_salary: %w", err)
	}

	taxRaw, ok := lookup(item, "tax_amount", "tax")
	if !ok {
		return Slab{}, fmt.Errorf("missing tax_amount")
	}
	taxValue, err := requireDecimal(taxRaw)
	if err != nil {
		return Slab{}, fmt.Errorf("tax_amount: %w", err)
	}

	slab := Slab{Min: minValue, TaxAmount: taxValue}
	if maxRaw, ok := lookup(item, "max_salary", "max"); ok {
		maxValue, err := toDecimal(maxRaw)
		if err != nil {
			return Slab{}, fmt.Errorf("max_salary: %v", err)
		}
		slab.Max = maxValue
	}
	return slab, nil
}

func lookup(item map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := item[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func requireDecimal(v any) (decimal.Decimal, error) {
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d == nil {
		return decimal.Decimal{}, fmt.Errorf("value is required")
	}
	return *d, nil
}

// toDecimal returns nil for null or blank values.
func toDecimal(v any) (*decimal.Decimal, error) {
	var d decimal.Decimal
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		d = decimal.NewFromFloat(n)
	case int:
		d = decimal.NewFromInt(int64(n))
	case int64:
		d = decimal.NewFromInt(n)
	case json.Number:
		parsed, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, err
		}
		d = parsed
	case decimal.Decimal:
		d = n
	case string:
		if strings.TrimSpace(n) == "" {
			return nil, nil
		}
		parsed, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		d = parsed
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
	return &d, nil
}

// ValidateSlabs checks that slabs start at zero, are ordered and contiguous in
// whole units, and end with an unbounded bracket.
func ValidateSlabs(slabs []Slab) error {
	if len(slabs) == 0 {
		return fmt.Errorf("%w: at least one slab is required", ErrInvalidSlabs)
	}
	if !slabs[0].Min.IsZero() {
		return fmt.Errorf("%w: first slab must start at 0", ErrInvalidSlabs)
	}
	one := decimal.NewFromInt(1)
	for i, slab := range slabs {
		if slab.TaxAmount.IsNegative() {
			return fmt.Errorf("%w: slab %d has a negative tax amount", ErrInvalidSlabs, i)
		}
		last := i == len(slabs)-1
		if slab.Max == nil {
			if !last {
				return fmt.Errorf("%w: only the last slab may be unbounded", ErrInvalidSlabs)
			}
			continue
		}
		if slab.Max.LessThan(slab.Min) {
			return fmt.Errorf("%w: slab %d max is below its min", ErrInvalidSlabs, i)
		}
		if last {
			return fmt.Errorf("%w: last slab must be unbounded", ErrInvalidSlabs)
		}
		next := slabs[i+1].Min
		if next.LessThanOrEqual(*slab.Max) {
			return fmt.Errorf("%w: slab %d overlaps slab %d", ErrInvalidSlabs, i, i+1)
		}
		if next.Sub(*slab.Max).GreaterThan(one) {
			return fmt.Errorf("%w: gap between slab %d and slab %d", ErrInvalidSlabs, i, i+1)
		}
	}
	return nil
}
