package policy

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Snapshot is the typed, read-only view of payroll settings taken once per run.
type Snapshot struct {
	PFEnabled     bool
	ESICEnabled   bool
	PTaxEnabled   bool
	PFRate        decimal.Decimal
	ESICRate      decimal.Decimal
	ESICWageLimit decimal.Decimal

	slabs    []Slab
	slabsErr error
}

// NewSnapshot normalizes raw key/value settings. Missing toggles read as
// disabled and missing rates fall back to the statutory defaults. A slab list
// that cannot be decoded is kept as an error and only surfaces when PTAX is
// actually computed.
func NewSnapshot(values map[string]string) Snapshot {
	snap := Snapshot{
		PFEnabled:     parseToggle(values, KeyPFEnabled),
		ESICEnabled:   parseToggle(values, KeyESICEnabled),
		PTaxEnabled:   parseToggle(values, KeyPTaxEnabled),
		PFRate:        parseRate(values, KeyPFRate, DefaultPFRate),
		ESICRate:      parseRate(values, KeyESICRate, DefaultESICRate),
		ESICWageLimit: parseRate(values, KeyESICWageLimit, DefaultESICWageLimit),
	}
	slabs, err := DecodeSlabs(values[KeyPTaxSlabs])
	snap.slabs = slabs
	snap.slabsErr = err
	return snap
}

// WithSlabs returns a copy of s using slabs.
func (s Snapshot) WithSlabs(slabs []Slab) Snapshot {
	s.slabs = append([]Slab(nil), slabs...)
	s.slabsErr = nil
	return s
}

// Slabs returns a copy of the decoded slab list or the decode error.
func (s Snapshot) Slabs() ([]Slab, error) {
	if s.slabsErr != nil {
		return nil, s.slabsErr
	}
	return append([]Slab(nil), s.slabs...), nil
}

func parseToggle(values map[string]string, key string) bool {
	raw, ok := values[key]
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "on":
		return true
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid policy toggle, treating as disabled", "key", key, "value", raw)
		return false
	}
	return enabled
}

func parseRate(values map[string]string, key string, fallback decimal.Decimal) decimal.Decimal {
	raw := strings.TrimSpace(values[key])
	if raw == "" {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		slog.Warn("invalid policy rate, using default", "key", key, "value", raw)
		return fallback
	}
	return d
}
