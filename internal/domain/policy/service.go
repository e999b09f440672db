package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	Values(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// Settings is the API representation of the payroll policy.
type Settings struct {
	PFEnabled     bool            `json:"pfEnabled"`
	ESICEnabled   bool            `json:"esicEnabled"`
	PTaxEnabled   bool            `json:"ptaxEnabled"`
	PFRate        decimal.Decimal `json:"pfRate"`
	ESICRate      decimal.Decimal `json:"esicRate"`
	ESICWageLimit decimal.Decimal `json:"esicWageLimit"`
	PTaxSlabs     []Slab          `json:"ptaxSlabs"`
	SlabsError    string          `json:"slabsError,omitempty"`
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	values, err := s.Store.Values(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load payroll settings: %w", err)
	}
	return NewSnapshot(values), nil
}

func (s *Service) Settings(ctx context.Context) (Settings, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Settings{}, err
	}
	out := Settings{
		PFEnabled:     snap.PFEnabled,
		ESICEnabled:   snap.ESICEnabled,
		PTaxEnabled:   snap.PTaxEnabled,
		PFRate:        snap.PFRate,
		ESICRate:      snap.ESICRate,
		ESICWageLimit: snap.ESICWageLimit,
	}
	slabs, err := snap.Slabs()
	if err != nil {
		out.SlabsError = err.Error()
	}
	out.PTaxSlabs = slabs
	return out, nil
}

// Update validates and stores a partial set of policy values keyed by setting
// name. Nothing is written when any value is invalid.
func (s *Service) Update(ctx context.Context, updates map[string]any) error {
	normalized := make(map[string]string, len(updates))
	for key, raw := range updates {
		if !knownKeys[key] {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		value, err := normalizeValue(key, raw)
		if err != nil {
			return err
		}
		normalized[key] = value
	}
	if len(normalized) == 0 {
		return nil
	}
	return s.Store.Set(ctx, normalized)
}

func normalizeValue(key string, raw any) (string, error) {
	switch key {
	case KeyPFEnabled, KeyESICEnabled, KeyPTaxEnabled:
		switch v := raw.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return "", fmt.Errorf("%w: %s", ErrInvalidBoolean, key)
			}
			return strconv.FormatBool(b), nil
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidBoolean, key)
	case KeyPTaxSlabs:
		slabs, err := DecodeSlabs(raw)
		if err != nil {
			return "", err
		}
		if err := ValidateSlabs(slabs); err != nil {
			return "", err
		}
		return EncodeSlabs(slabs)
	default:
		d, err := toDecimal(raw)
		if err != nil || d == nil || d.IsNegative() {
			return "", fmt.Errorf("%w: %s", ErrInvalidNumber, key)
		}
		if (key == KeyPFRate || key == KeyESICRate) && d.GreaterThan(decimal.NewFromInt(1)) {
			return "", fmt.Errorf("%w: %s must be a fraction", ErrInvalidNumber, key)
		}
		return d.String(), nil
	}
}

// EncodeSlabs renders slabs in the stored min_salary/max_salary/tax_amount form.
func EncodeSlabs(slabs []Slab) (string, error) {
	items := make([]map[string]any, 0, len(slabs))
	for _, slab := range slabs {
		item := map[string]any{
			"min_salary": json.Number(slab.Min.String()),
			"max_salary": nil,
			"tax_amount": json.Number(slab.TaxAmount.String()),
		}
		if slab.Max != nil {
			item["max_salary"] = json.Number(slab.Max.String())
		}
		items = append(items, item)
	}
	out, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
