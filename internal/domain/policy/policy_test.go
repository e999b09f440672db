package policy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDecodeSlabsAcceptsStringBytesAndDecodedList(t *testing.T) {
	raw := `[{"min_salary":0,"max_salary":25000,"tax_amount":130},{"min_salary":25001,"max_salary":null,"tax_amount":200}]`

	var decoded []any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	for name, input := range map[string]any{
		"string":  raw,
		"bytes":   []byte(raw),
		"decoded": decoded,
	} {
		t.Run(name, func(t *testing.T) {
			slabs, err := DecodeSlabs(input)
			require.NoError(t, err)
			require.Len(t, slabs, 2)
			assert.True(t, slabs[0].Min.IsZero())
			require.NotNil(t, slabs[0].Max)
			assert.True(t, slabs[0].Max.Equal(dec("25000")))
			assert.True(t, slabs[0].TaxAmount.Equal(dec("130")))
			assert.Nil(t, slabs[1].Max)
		})
	}
}

func TestDecodeSlabsAliasesAndBlankMax(t *testing.T) {
	slabs, err := DecodeSlabs(`[{"min":"0","max":"","tax":"50"}]`)
	require.NoError(t, err)
	require.Len(t, slabs, 1)
	assert.Nil(t, slabs[0].Max)
	assert.True(t, slabs[0].TaxAmount.Equal(dec("50")))
}

func TestDecodeSlabsRejectsMalformed(t *testing.T) {
	for _, input := range []any{`{not json`, `[{"max_salary":10}]`, `[1,2]`, 42} {
		_, err := DecodeSlabs(input)
		assert.ErrorIs(t, err, ErrInvalidSlabs, "input %v", input)
	}
	_, err := DecodeSlabs([]any{"x"})
	assert.ErrorIs(t, err, ErrInvalidSlabs)
}

func TestFindSlabInclusiveUpperBound(t *testing.T) {
	slabs, err := DecodeSlabs(`[{"min":0,"max":25000,"tax":130},{"min":25001,"max":null,"tax":200}]`)
	require.NoError(t, err)

	slab, ok := FindSlab(slabs, dec("25000"))
	require.True(t, ok)
	assert.True(t, slab.TaxAmount.Equal(dec("130")))

	slab, ok = FindSlab(slabs, dec("25001"))
	require.True(t, ok)
	assert.True(t, slab.TaxAmount.Equal(dec("200")))

	slab, ok = FindSlab(slabs, dec("1000000"))
	require.True(t, ok)
	assert.True(t, slab.TaxAmount.Equal(dec("200")))

	_, ok = FindSlab(slabs, dec("25000.50"))
	assert.False(t, ok)

	_, ok = FindSlab(nil, dec("10"))
	assert.False(t, ok)
}

func TestValidateSlabs(t *testing.T) {
	valid, err := DecodeSlabs(DefaultSlabsJSON)
	require.NoError(t, err)
	assert.NoError(t, ValidateSlabs(valid))

	cases := map[string]string{
		"empty":            `[]`,
		"not from zero":    `[{"min":5,"max":null,"tax":0}]`,
		"bounded last":     `[{"min":0,"max":100,"tax":0}]`,
		"unbounded middle": `[{"min":0,"max":null,"tax":0},{"min":101,"max":null,"tax":0}]`,
		"overlap":          `[{"min":0,"max":100,"tax":0},{"min":100,"max":null,"tax":5}]`,
		"gap":              `[{"min":0,"max":100,"tax":0},{"min":150,"max":null,"tax":5}]`,
		"negative tax":     `[{"min":0,"max":null,"tax":-1}]`,
		"inverted":         `[{"min":0,"max":-5,"tax":0},{"min":1,"max":null,"tax":0}]`,
	}
	for name, raw := range cases {
		slabs, err := DecodeSlabs(raw)
		require.NoError(t, err, name)
		assert.ErrorIs(t, ValidateSlabs(slabs), ErrInvalidSlabs, name)
	}
}

func TestNewSnapshotDefaults(t *testing.T) {
	snap := NewSnapshot(map[string]string{})
	assert.False(t, snap.PFEnabled)
	assert.False(t, snap.ESICEnabled)
	assert.False(t, snap.PTaxEnabled)
	assert.True(t, snap.PFRate.Equal(DefaultPFRate))
	assert.True(t, snap.ESICRate.Equal(DefaultESICRate))
	assert.True(t, snap.ESICWageLimit.Equal(DefaultESICWageLimit))

	slabs, err := snap.Slabs()
	require.NoError(t, err)
	assert.Empty(t, slabs)
}

func TestNewSnapshotParsesValues(t *testing.T) {
	snap := NewSnapshot(map[string]string{
		KeyPFEnabled:   "true",
		KeyESICEnabled: "0",
		KeyPTaxEnabled: "yes",
		KeyPFRate:      "0.10",
		KeyESICRate:    "bogus",
		KeyPTaxSlabs:   `[{"min":0,"max":null,"tax":200}]`,
	})
	assert.True(t, snap.PFEnabled)
	assert.False(t, snap.ESICEnabled)
	assert.True(t, snap.PTaxEnabled)
	assert.True(t, snap.PFRate.Equal(dec("0.1")))
	assert.True(t, snap.ESICRate.Equal(DefaultESICRate))

	slabs, err := snap.Slabs()
	require.NoError(t, err)
	require.Len(t, slabs, 1)

	slabs[0].TaxAmount = dec("1")
	again, _ := snap.Slabs()
	assert.True(t, again[0].TaxAmount.Equal(dec("200")), "snapshot must not share its slab slice")
}

func TestNewSnapshotKeepsSlabErrorUntilUsed(t *testing.T) {
	snap := NewSnapshot(map[string]string{KeyPTaxSlabs: "[oops"})
	_, err := snap.Slabs()
	assert.ErrorIs(t, err, ErrInvalidSlabs)

	fixed := snap.WithSlabs([]Slab{{Min: decimal.Zero, TaxAmount: dec("10")}})
	_, err = fixed.Slabs()
	assert.NoError(t, err)
}

type memoryStore struct {
	values map[string]string
	err    error
}

func (m *memoryStore) Values(context.Context) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]string{}
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) Set(_ context.Context, values map[string]string) error {
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func TestServiceUpdateNormalizesAndValidates(t *testing.T) {
	store := &memoryStore{values: Defaults()}
	svc := NewService(store)

	var slabs []any
	require.NoError(t, json.Unmarshal([]byte(`[{"min":0,"max":20000,"tax":0},{"min":20001,"max":null,"tax":150}]`), &slabs))

	err := svc.Update(context.Background(), map[string]any{
		KeyESICEnabled: false,
		KeyPFRate:      0.1,
		KeyPTaxSlabs:   slabs,
	})
	require.NoError(t, err)
	assert.Equal(t, "false", store.values[KeyESICEnabled])
	assert.Equal(t, "0.1", store.values[KeyPFRate])

	settings, err := svc.Settings(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.ESICEnabled)
	require.Len(t, settings.PTaxSlabs, 2)
	assert.True(t, settings.PTaxSlabs[1].TaxAmount.Equal(dec("150")))
	assert.Empty(t, settings.SlabsError)
}

func TestServiceUpdateRejectsInvalidInput(t *testing.T) {
	store := &memoryStore{values: Defaults()}
	svc := NewService(store)

	assert.ErrorIs(t, svc.Update(context.Background(), map[string]any{"bonus_rate": 1}), ErrUnknownKey)
	assert.ErrorIs(t, svc.Update(context.Background(), map[string]any{KeyPFEnabled: "maybe"}), ErrInvalidBoolean)
	assert.ErrorIs(t, svc.Update(context.Background(), map[string]any{KeyPFRate: 1.5}), ErrInvalidNumber)
	assert.ErrorIs(t, svc.Update(context.Background(), map[string]any{KeyESICWageLimit: -1}), ErrInvalidNumber)
	assert.ErrorIs(t, svc.Update(context.Background(), map[string]any{KeyPTaxSlabs: `[{"min":0,"max":10,"tax":0}]`}), ErrInvalidSlabs)

	assert.Equal(t, Defaults(), store.values, "rejected updates must not be written")
}

func TestServiceSnapshotWrapsStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&memoryStore{err: boom})
	_, err := svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, boom)
}
