package payroll

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type pdfLine struct {
	label  string
	amount decimal.Decimal
}

// RenderPDF writes a one-page A4 payslip.
func RenderPDF(w io.Writer, d Detail) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %d", time.Month(d.Month), d.Year), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		fmt.Sprintf("Employee: %s", d.EmployeeName),
		fmt.Sprintf("Email: %s", d.EmployeeEmail),
		fmt.Sprintf("Period: %s %d", time.Month(d.Month), d.Year),
		fmt.Sprintf("Days worked: %d / %d", d.DaysWorked, PayrollMonthDays),
		fmt.Sprintf("Generated on: %s", d.GeneratedOn.Format("2006-01-02")),
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	earnings := []pdfLine{
		{"Basic", d.Basic},
		{"HRA", d.HRA},
		{"DA", d.DA},
		{"Allowances", d.Allowances},
	}
	deductions := []pdfLine{
		{"Provident fund", d.PF},
		{"ESIC", d.ESIC},
		{"Professional tax", d.PTax},
	}
	writeSection(pdf, "Earnings", earnings, pdfLine{"Total earnings", d.TotalEarnings})
	pdf.Ln(4)
	writeSection(pdf, "Deductions", deductions, pdfLine{"Total deductions", d.TotalDeductions})
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 9, "Net pay", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, d.NetPay.StringFixed(2), "1", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func writeSection(pdf *gofpdf.Fpdf, title string, lines []pdfLine, total pdfLine) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(180, 8, title, "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		pdf.CellFormat(120, 7, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, line.amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 7, total.label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, total.amount.StringFixed(2), "1", 1, "R", false, 0, "")
}
