package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/employee"
	"hrms/internal/domain/policy"
	"hrms/internal/domain/salary"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, got.Equal(d(want)), "%s: want %s, got %s", field, want, got)
}

func TestPayableDays(t *testing.T) {
	cases := []struct {
		name   string
		joined time.Time
		want   int
	}{
		{"joined before month", day(2023, time.January, 1), 30},
		{"joined on day 1", day(2024, time.March, 1), 30},
		{"joined on day 15", day(2024, time.March, 15), 16},
		{"joined on day 30", day(2024, time.March, 30), 1},
		{"joined on day 31 clamps to zero", day(2024, time.March, 31), 0},
		{"joined after month", day(2024, time.April, 1), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PayableDays(tc.joined, 3, 2024))
		})
	}
}

func TestPayableDaysShortMonth(t *testing.T) {
	assert.Equal(t, 2, PayableDays(day(2024, time.February, 29), 2, 2024))
	assert.Equal(t, 30, PayableDays(day(2024, time.January, 31), 2, 2024))
}

func TestJoinedAfter(t *testing.T) {
	assert.False(t, JoinedAfter(day(2024, time.February, 29), 2, 2024))
	assert.True(t, JoinedAfter(day(2024, time.March, 1), 2, 2024))
	assert.False(t, JoinedAfter(time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC), 2, 2024))
}

func endToEndSnapshot(t *testing.T) policy.Snapshot {
	t.Helper()
	return policy.NewSnapshot(map[string]string{
		policy.KeyPFEnabled:   "true",
		policy.KeyESICEnabled: "false",
		policy.KeyPTaxEnabled: "true",
		policy.KeyPTaxSlabs:   `[{"min":0,"max":25000,"tax":130},{"min":25001,"max":null,"tax":200}]`,
	})
}

func TestComputePayslipEndToEnd(t *testing.T) {
	emp := employee.Employee{ID: "e1", AccountActive: true, DateOfJoining: day(2023, time.January, 1)}
	structure := salary.Structure{EmployeeID: "e1", Basic: d("20000"), HRA: d("8000")}

	p, err := ComputePayslip(emp, structure, 4, 2024, endToEndSnapshot(t))
	require.NoError(t, err)

	assert.Equal(t, 30, p.DaysWorked)
	assertDecimal(t, "28000", p.GrossSalary, "gross")
	assertDecimal(t, "28000", p.TotalEarnings, "earnings")
	assertDecimal(t, "2400", p.PF, "pf")
	assertDecimal(t, "0", p.ESIC, "esic")
	assertDecimal(t, "200", p.PTax, "ptax")
	assertDecimal(t, "2600", p.TotalDeductions, "deductions")
	assertDecimal(t, "25400", p.NetPay, "net")
}

func TestComputePayslipProratesComponents(t *testing.T) {
	emp := employee.Employee{ID: "e1", DateOfJoining: day(2024, time.April, 11)}
	structure := salary.Structure{Basic: d("10000"), HRA: d("3333.33"), DA: d("100"), Allowances: d("0")}

	p, err := ComputePayslip(emp, structure, 4, 2024, policy.Snapshot{})
	require.NoError(t, err)

	// 20 of 30 days.
	assert.Equal(t, 20, p.DaysWorked)
	assertDecimal(t, "6666.67", p.Basic, "basic")
	assertDecimal(t, "2222.22", p.HRA, "hra")
	assertDecimal(t, "66.67", p.DA, "da")
	assertDecimal(t, "8955.56", p.GrossSalary, "gross")
	assertDecimal(t, "0", p.TotalDeductions, "deductions")
	assertDecimal(t, "8955.56", p.NetPay, "net")
}

func TestComputePayslipPFRoundsHalfUp(t *testing.T) {
	snap := policy.NewSnapshot(map[string]string{policy.KeyPFEnabled: "true"})
	emp := employee.Employee{DateOfJoining: day(2020, time.January, 1)}

	p, err := ComputePayslip(emp, salary.Structure{Basic: d("15000.555")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "1800.07", p.PF, "pf")

	p, err = ComputePayslip(emp, salary.Structure{Basic: d("104.125")}, 4, 2024, snap)
	require.NoError(t, err)
	// basic rounds to 104.13, 12% is 12.4956.
	assertDecimal(t, "12.50", p.PF, "pf")
}

func TestComputePayslipESICCeilingAndEligibility(t *testing.T) {
	snap := policy.NewSnapshot(map[string]string{policy.KeyESICEnabled: "true"})
	emp := employee.Employee{DateOfJoining: day(2020, time.January, 1)}

	p, err := ComputePayslip(emp, salary.Structure{Basic: d("10000.01"), GrossSalary: d("10000.01")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "76", p.ESIC, "esic")

	p, err = ComputePayslip(emp, salary.Structure{Basic: d("21000"), GrossSalary: d("21000")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "158", p.ESIC, "esic at the wage limit")

	p, err = ComputePayslip(emp, salary.Structure{Basic: d("21000.01"), GrossSalary: d("21000.01")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "0", p.ESIC, "esic above the wage limit")
}

func TestComputePayslipESICEligibilityReadsStoredGross(t *testing.T) {
	snap := policy.NewSnapshot(map[string]string{policy.KeyESICEnabled: "true"})
	emp := employee.Employee{DateOfJoining: day(2020, time.January, 1)}

	// Components are above the limit but the stored gross is zero.
	p, err := ComputePayslip(emp, salary.Structure{Basic: d("30000")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "30000", p.GrossSalary, "gross")
	assertDecimal(t, "225", p.ESIC, "esic with zero stored gross")

	p, err = ComputePayslip(emp, salary.Structure{Basic: d("30000"), GrossSalary: d("21000.01")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "0", p.ESIC, "esic with stored gross above the limit")
}

func TestComputePayslipESICEligibilityUsesFullMonthlyGross(t *testing.T) {
	snap := policy.NewSnapshot(map[string]string{policy.KeyESICEnabled: "true"})
	// Joined on day 16: earns 15 days of 30000, which would be under the limit.
	emp := employee.Employee{DateOfJoining: day(2024, time.April, 16)}

	p, err := ComputePayslip(emp, salary.Structure{Basic: d("30000"), GrossSalary: d("30000")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "15000", p.GrossSalary, "gross")
	assertDecimal(t, "0", p.ESIC, "esic")
}

func TestComputePayslipPTaxSlabBoundary(t *testing.T) {
	snap := endToEndSnapshot(t)
	snap.PFEnabled = false
	emp := employee.Employee{DateOfJoining: day(2020, time.January, 1)}

	p, err := ComputePayslip(emp, salary.Structure{Basic: d("25000")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "130", p.PTax, "ptax at max")

	p, err = ComputePayslip(emp, salary.Structure{Basic: d("25001")}, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "200", p.PTax, "ptax one unit above")
}

func TestComputePayslipOptOutsAndToggles(t *testing.T) {
	snap := policy.NewSnapshot(map[string]string{
		policy.KeyPFEnabled:   "true",
		policy.KeyESICEnabled: "true",
		policy.KeyPTaxEnabled: "true",
		policy.KeyPTaxSlabs:   policy.DefaultSlabsJSON,
	})
	structure := salary.Structure{Basic: d("12000"), HRA: d("4000")}

	full, err := ComputePayslip(employee.Employee{DateOfJoining: day(2020, 1, 1)}, structure, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "1440", full.PF, "pf")
	assertDecimal(t, "120", full.ESIC, "esic")
	assertDecimal(t, "130", full.PTax, "ptax")

	optedOut, err := ComputePayslip(employee.Employee{
		DateOfJoining: day(2020, 1, 1),
		PFOptOut:      true,
		ESICOptOut:    true,
		PTaxOptOut:    true,
	}, structure, 4, 2024, snap)
	require.NoError(t, err)
	assertDecimal(t, "0", optedOut.TotalDeductions, "deductions")
	assertDecimal(t, "16000", optedOut.NetPay, "net")
}

func TestComputePayslipMalformedSlabs(t *testing.T) {
	snap := policy.NewSnapshot(map[string]string{
		policy.KeyPTaxEnabled: "true",
		policy.KeyPTaxSlabs:   "{broken",
	})
	emp := employee.Employee{DateOfJoining: day(2020, 1, 1)}

	_, err := ComputePayslip(emp, salary.Structure{Basic: d("1000")}, 4, 2024, snap)
	assert.ErrorIs(t, err, policy.ErrInvalidSlabs)

	emp.PTaxOptOut = true
	_, err = ComputePayslip(emp, salary.Structure{Basic: d("1000")}, 4, 2024, snap)
	assert.NoError(t, err, "slabs are only read when ptax applies")
}
