package policy

import "github.com/shopspring/decimal"

const (
	KeyPFEnabled     = "pf_enabled"
	KeyESICEnabled   = "esic_enabled"
	KeyPTaxEnabled   = "ptax_enabled"
	KeyPTaxSlabs     = "ptax_slabs"
	KeyPFRate        = "pf_rate"
	KeyESICRate      = "esic_rate"
	KeyESICWageLimit = "esic_wage_limit"
)

var (
	DefaultPFRate        = decimal.RequireFromString("0.12")
	DefaultESICRate      = decimal.RequireFromString("0.0075")
	DefaultESICWageLimit = decimal.NewFromInt(21000)
)

// DefaultSlabsJSON is the slab list written by the seeder.
const DefaultSlabsJSON = `[{"min_salary":0,"max_salary":10000,"tax_amount":0},{"min_salary":10001,"max_salary":15000,"tax_amount":110},{"min_salary":15001,"max_salary":25000,"tax_amount":130},{"min_salary":25001,"max_salary":null,"tax_amount":200}]`

// Defaults are the settings a fresh installation starts with.
func Defaults() map[string]string {
	return map[string]string{
		KeyPFEnabled:     "true",
		KeyESICEnabled:   "true",
		KeyPTaxEnabled:   "true",
		KeyPTaxSlabs:     DefaultSlabsJSON,
		KeyPFRate:        DefaultPFRate.String(),
		KeyESICRate:      DefaultESICRate.String(),
		KeyESICWageLimit: DefaultESICWageLimit.String(),
	}
}

var knownKeys = map[string]bool{
	KeyPFEnabled:     true,
	KeyESICEnabled:   true,
	KeyPTaxEnabled:   true,
	KeyPTaxSlabs:     true,
	KeyPFRate:        true,
	KeyESICRate:      true,
	KeyESICWageLimit: true,
}
