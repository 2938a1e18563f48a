package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/rentledger/rentledger/internal/domain"
)

// BuildBillPDF renders a tenant-facing statement for one bill.
func BuildBillPDF(bill *domain.Bill, tenant *domain.Tenant, apt *domain.Apartment, charges []domain.OtherCharge) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Rent Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Tenant: %s", tenant.FullName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Unit: %s", apt.UnitNumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %d-%02d", bill.Year, int(bill.Month)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Due: %s", bill.DueDate.Format("2006-01-02")))
	pdf.Ln(5)
	status := "UNPAID"
	if bill.IsPaid {
		status = "PAID"
	}
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", status))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	line := func(name string, amount int64) {
		pdf.CellFormat(90, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, domain.FormatAmount(amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	line("Rent", bill.Rent)
	line("Electricity", bill.Electricity)
	line("Water", bill.Water)
	line("Gas", bill.Gas)
	line("Internet", bill.Internet)
	line("Trash", bill.Trash)
	line("Parking", bill.Parking)
	for _, c := range charges {
		line(c.Name, c.Amount)
	}
	line("Previous balance", bill.PreviousBalance)
	line("Advance applied", -bill.AdvancePayment)

	pdf.SetFont("Arial", "B", 10)
	line("Total due", bill.Total)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("BuildBillPDF: %w", err)
	}
	return buf.Bytes(), nil
}
