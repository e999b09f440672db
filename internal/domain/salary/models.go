package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// Structure is an employee's current monthly salary breakdown.
type Structure struct {
	EmployeeID    string          `json:"employeeId"`
	Basic         decimal.Decimal `json:"basic"`
	HRA           decimal.Decimal `json:"hra"`
	DA            decimal.Decimal `json:"da"`
	Allowances    decimal.Decimal `json:"allowances"`
	GrossSalary   decimal.Decimal `json:"grossSalary"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ComponentSum is basic + hra + da + allowances.
func (s Structure) ComponentSum() decimal.Decimal {
	return s.Basic.Add(s.HRA).Add(s.DA).Add(s.Allowances)
}

// Normalize fills GrossSalary from the components when it is zero.
func (s Structure) Normalize() Structure {
	if s.GrossSalary.IsZero() {
		s.GrossSalary = s.ComponentSum()
	}
	return s
}

func (s Structure) Validate() []string {
	var bad []string
	for name, v := range map[string]decimal.Decimal{
		"basic":       s.Basic,
		"hra":         s.HRA,
		"da":          s.DA,
		"allowances":  s.Allowances,
		"grossSalary": s.GrossSalary,
	} {
		if v.IsNegative() {
			bad = append(bad, name)
		}
	}
	return bad
}

// Revision is an archived structure.
type Revision struct {
	Structure
	ArchivedAt time.Time `json:"archivedAt"`
}
