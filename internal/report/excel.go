package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rentledger/rentledger/internal/domain"
)

// BuildMonthXLSX renders all bills of one period as a spreadsheet, one row
// per bill, amounts in major units.
func BuildMonthXLSX(year, month int, bills []domain.Bill) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "bills"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Tenant ID", "Year", "Month", "Rent", "Utilities", "Other charges",
		"Previous balance", "Advance applied", "Total", "Paid", "Due date",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, b := range bills {
		row := i + 2
		values := []any{
			b.TenantID.String(), b.Year, int(b.Month),
			domain.FormatAmount(b.Rent),
			domain.FormatAmount(b.UtilityTotal()),
			domain.FormatAmount(b.OtherCharges),
			domain.FormatAmount(b.PreviousBalance),
			domain.FormatAmount(b.AdvancePayment),
			domain.FormatAmount(b.Total),
			b.IsPaid,
			b.DueDate.Format("2006-01-02"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("BuildMonthXLSX: %d-%02d: %w", year, month, err)
	}
	return buf.Bytes(), nil
}
