package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rentledger/rentledger/internal/domain"
)

func sampleBill() *domain.Bill {
	return &domain.Bill{
		ID:              uuid.New(),
		TenantID:        uuid.New(),
		ApartmentID:     uuid.New(),
		Year:            2024,
		Month:           time.June,
		Rent:            100000,
		Electricity:     4500,
		OtherCharges:    10000,
		PreviousBalance: 30000,
		AdvancePayment:  20000,
		Total:           124500,
		DueDate:         time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildBillPDF(t *testing.T) {
	bill := sampleBill()
	tenant := &domain.Tenant{ID: bill.TenantID, FullName: "Pat Doe"}
	apt := &domain.Apartment{ID: bill.ApartmentID, UnitNumber: "A-101"}
	charges := []domain.OtherCharge{
		{ID: uuid.New(), BillID: bill.ID, Name: "Lock replacement", Amount: 10000},
	}

	out, err := BuildBillPDF(bill, tenant, apt, charges)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output starts with a PDF header")
}

func TestBuildMonthXLSX(t *testing.T) {
	bills := []domain.Bill{*sampleBill(), *sampleBill()}

	out, err := BuildMonthXLSX(2024, 6, bills)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("bills")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per bill")
	assert.Equal(t, "Tenant ID", rows[0][0])
	assert.Equal(t, "1000.00", rows[1][3])
	assert.Equal(t, "1245.00", rows[1][8])
}
