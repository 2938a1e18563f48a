package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/domain"
	"github.com/rentledger/rentledger/internal/repository"
	"github.com/rentledger/rentledger/internal/testutil"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestBillGeneration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	clock := fixedClock{t: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
	svc := billing.NewService(
		repository.NewTenantRepository(db),
		repository.NewBillRepository(db),
		repository.NewChargeRepository(db),
		repository.NewPaymentRepository(db),
		db, clock, nil, nil, billing.DefaultPolicy(),
	)
	dueDate := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	t.Run("first bill for a fresh tenant is rent only", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "A-101", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "fresh", testutil.TenantOpts{IsActive: true})

		bill, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.NoError(t, err)

		assert.Equal(t, int64(100000), bill.Rent)
		assert.Equal(t, int64(0), bill.PreviousBalance)
		assert.Equal(t, int64(0), bill.AdvancePayment)
		assert.Equal(t, int64(100000), bill.Total)
		assert.False(t, bill.IsPaid)
	})

	t.Run("unpaid prior bill carries forward as previous balance", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "A-102", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "carryover", testutil.TenantOpts{IsActive: true})
		testutil.SeedBill(t, db, tn.ID, apt.ID, 2024, 5, testutil.BillOpts{
			Rent: 130000, Total: 130000, IsPaid: false,
		})

		bill, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.NoError(t, err)

		assert.Equal(t, int64(130000), bill.PreviousBalance)
		assert.Equal(t, int64(230000), bill.Total)
	})

	t.Run("leftover advance plus standing credit applies to the new bill", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "A-103", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "credit", testutil.TenantOpts{
			AdvancePayment: 30000, IsActive: true,
		})
		// Prior month overpaid by 70000; together with the 30000 standing
		// credit the new bill sees a 100000 advance.
		testutil.SeedBill(t, db, tn.ID, apt.ID, 2024, 5, testutil.BillOpts{
			Rent: 80000, AdvancePayment: 150000, Total: 80000, IsPaid: true,
		})

		bill, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.NoError(t, err)

		assert.Equal(t, int64(100000), bill.AdvancePayment)
		assert.Equal(t, int64(0), bill.Total)
		assert.True(t, bill.IsPaid)

		// Credit was consumed into the bill; whatever the advance did not
		// cover of the gross stays on the ledger. Gross here is 100000,
		// so nothing is left.
		advance, _, _ := testutil.GetTenantLedger(t, db, tn.ID)
		assert.Equal(t, int64(0), advance)
	})

	t.Run("generation is idempotent and never double-consumes credit", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "A-104", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "idem", testutil.TenantOpts{
			AdvancePayment: 50000, IsActive: true,
		})

		first, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.NoError(t, err)
		second, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.AdvancePayment, second.AdvancePayment)
		assert.Equal(t, first.Total, second.Total)

		advance, _, _ := testutil.GetTenantLedger(t, db, tn.ID)
		assert.Equal(t, int64(0), advance, "credit consumed exactly once")
	})

	t.Run("excess credit over the gross amount returns to the ledger", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "A-105", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "excess", testutil.TenantOpts{
			AdvancePayment: 250000, IsActive: true,
		})

		bill, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.NoError(t, err)

		assert.Equal(t, int64(0), bill.Total)
		assert.True(t, bill.IsPaid)

		advance, _, _ := testutil.GetTenantLedger(t, db, tn.ID)
		assert.Equal(t, int64(150000), advance)
	})

	t.Run("inactive tenant is rejected", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "A-106", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "gone", testutil.TenantOpts{IsActive: false})

		_, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.ErrorIs(t, err, domain.ErrTenantInactive)
	})

	t.Run("invalid period is rejected before any lookup", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "A-107", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "period", testutil.TenantOpts{IsActive: true})

		_, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.Month(13), dueDate)
		require.ErrorIs(t, err, domain.ErrInvalidMonth)
		_, err = svc.GenerateForTenant(ctx, tn.ID, 1999, time.June, dueDate)
		require.ErrorIs(t, err, domain.ErrInvalidYear)
	})
}

func TestChargeRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	clock := fixedClock{t: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
	svc := billing.NewService(
		repository.NewTenantRepository(db),
		repository.NewBillRepository(db),
		repository.NewChargeRepository(db),
		repository.NewPaymentRepository(db),
		db, clock, nil, nil, billing.DefaultPolicy(),
	)
	dueDate := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	apt := testutil.SeedApartment(t, db, "B-201", 100000)
	tn := testutil.SeedTenant(t, db, apt.ID, "charges", testutil.TenantOpts{IsActive: true})
	bill, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
	require.NoError(t, err)

	beforeCharges, beforeTotal := testutil.GetBillTotals(t, db, bill.ID)

	charge, updated, err := svc.AddCharge(ctx, bill.ID, billing.AddChargeInput{
		Name: "Lock replacement", Amount: 10000,
	})
	require.NoError(t, err)
	assert.Equal(t, beforeCharges+10000, updated.OtherCharges)
	assert.Equal(t, beforeTotal+10000, updated.Total)

	otherCharges, total := testutil.GetBillTotals(t, db, bill.ID)
	assert.Equal(t, updated.OtherCharges, otherCharges)
	assert.Equal(t, updated.Total, total)

	restored, err := svc.RemoveCharge(ctx, bill.ID, charge.ID)
	require.NoError(t, err)
	assert.Equal(t, beforeCharges, restored.OtherCharges)
	assert.Equal(t, beforeTotal, restored.Total)

	otherCharges, total = testutil.GetBillTotals(t, db, bill.ID)
	assert.Equal(t, beforeCharges, otherCharges)
	assert.Equal(t, beforeTotal, total)

	t.Run("removing a charge from the wrong bill changes nothing", func(t *testing.T) {
		otherApt := testutil.SeedApartment(t, db, "B-202", 90000)
		otherTenant := testutil.SeedTenant(t, db, otherApt.ID, "other", testutil.TenantOpts{IsActive: true})
		otherBill, err := svc.GenerateForTenant(ctx, otherTenant.ID, 2024, time.June, dueDate)
		require.NoError(t, err)

		stray, _, err := svc.AddCharge(ctx, otherBill.ID, billing.AddChargeInput{
			Name: "Cleaning", Amount: 5000,
		})
		require.NoError(t, err)

		_, err = svc.RemoveCharge(ctx, bill.ID, stray.ID)
		require.ErrorIs(t, err, domain.ErrChargeNotOnBill)

		otherCharges, _ := testutil.GetBillTotals(t, db, otherBill.ID)
		assert.Equal(t, int64(5000), otherCharges, "stray charge untouched")
	})

	t.Run("removing a missing charge reports not found", func(t *testing.T) {
		_, err := svc.RemoveCharge(ctx, bill.ID, uuid.New())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPaymentsAndReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	clock := fixedClock{t: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
	svc := billing.NewService(
		repository.NewTenantRepository(db),
		repository.NewBillRepository(db),
		repository.NewChargeRepository(db),
		repository.NewPaymentRepository(db),
		db, clock, nil, nil, billing.DefaultPolicy(),
	)
	dueDate := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	t.Run("remaining balance snapshots the unpaid total", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "C-301", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "payer", testutil.TenantOpts{IsActive: true})
		_, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.NoError(t, err)

		p, err := svc.RecordPayment(ctx, billing.RecordPaymentInput{
			TenantID: tn.ID, Amount: 40000, Method: domain.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(60000), p.RemainingBalance)

		// Paid less than billed: no surplus, credit stays at zero.
		advance, _, _ := testutil.GetTenantLedger(t, db, tn.ID)
		assert.Equal(t, int64(0), advance)
	})

	t.Run("overpayment becomes standing credit in the same transaction", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "C-302", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "overpayer", testutil.TenantOpts{IsActive: true})
		_, err := svc.GenerateForTenant(ctx, tn.ID, 2024, time.June, dueDate)
		require.NoError(t, err)

		p, err := svc.RecordPayment(ctx, billing.RecordPaymentInput{
			TenantID: tn.ID, Amount: 130000, Method: domain.PaymentMethodBankTransfer,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), p.RemainingBalance)

		advance, _, _ := testutil.GetTenantLedger(t, db, tn.ID)
		assert.Equal(t, int64(30000), advance)
	})

	t.Run("unknown tenant is rejected", func(t *testing.T) {
		_, err := svc.RecordPayment(ctx, billing.RecordPaymentInput{
			TenantID: uuid.New(), Amount: 10000, Method: domain.PaymentMethodCash,
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("administrative edit touches metadata only", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "C-303", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "editable", testutil.TenantOpts{IsActive: true})

		p, err := svc.RecordPayment(ctx, billing.RecordPaymentInput{
			TenantID: tn.ID, Amount: 25000, Method: domain.PaymentMethodCash,
		})
		require.NoError(t, err)

		ref := "TXN-42"
		edited, err := svc.EditPayment(ctx, p.ID, domain.PaymentMethodCheck, &ref, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentMethodCheck, edited.Method)
		require.NotNil(t, edited.Reference)
		assert.Equal(t, ref, *edited.Reference)
		assert.Equal(t, p.Amount, edited.Amount)
		assert.Equal(t, p.RemainingBalance, edited.RemainingBalance)
	})
}

func TestClosure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	clock := fixedClock{t: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
	svc := billing.NewService(
		repository.NewTenantRepository(db),
		repository.NewBillRepository(db),
		repository.NewChargeRepository(db),
		repository.NewPaymentRepository(db),
		db, clock, nil, nil, billing.DefaultPolicy(),
	)

	t.Run("preview mutates nothing", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "D-401", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "previewed", testutil.TenantOpts{
			AdvancePayment: 50000, SecurityDeposit: 200000, IsActive: true,
		})
		testutil.SeedBill(t, db, tn.ID, apt.ID, 2024, 5, testutil.BillOpts{
			Rent: 100000, Total: 100000, IsPaid: false,
		})

		view, err := svc.PreviewClosure(ctx, tn.ID, billing.ClosureInput{
			DepositDeductions: 30000, Reason: "estimate",
		})
		require.NoError(t, err)
		assert.False(t, view.Committed)
		assert.Equal(t, int64(100000), view.Outstanding)
		assert.Equal(t, int64(170000), view.RemainingDeposit)
		assert.Equal(t, int64(50000), view.FinalBalanceDue)

		advance, deposit, active := testutil.GetTenantLedger(t, db, tn.ID)
		assert.Equal(t, int64(50000), advance)
		assert.Equal(t, int64(200000), deposit)
		assert.True(t, active)
	})

	t.Run("closure zeroes the ledger and deactivates in one step", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "D-402", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "leaver", testutil.TenantOpts{
			AdvancePayment: 100000, SecurityDeposit: 200000, IsActive: true,
		})
		testutil.SeedBill(t, db, tn.ID, apt.ID, 2024, 5, testutil.BillOpts{
			Rent: 180000, Total: 180000, IsPaid: false,
		})
		_, err := svc.RecordPayment(ctx, billing.RecordPaymentInput{
			TenantID: tn.ID, Amount: 100000, Method: domain.PaymentMethodCash,
		})
		require.NoError(t, err)

		view, err := svc.ProcessClosure(ctx, tn.ID, billing.ClosureInput{
			DepositDeductions: 20000, Reason: "moved out",
		})
		require.NoError(t, err)
		assert.True(t, view.Committed)
		assert.Equal(t, int64(80000), view.Outstanding)
		assert.Equal(t, int64(20000), view.RemainingAdvance)
		assert.Equal(t, int64(180000), view.RemainingDeposit)
		assert.Equal(t, int64(200000), view.PotentialRefund)
		assert.Equal(t, int64(0), view.FinalBalanceDue)

		advance, deposit, active := testutil.GetTenantLedger(t, db, tn.ID)
		assert.Equal(t, int64(0), advance)
		assert.Equal(t, int64(0), deposit)
		assert.False(t, active)
	})

	t.Run("second closure reports already closed instead of zeros", func(t *testing.T) {
		apt := testutil.SeedApartment(t, db, "D-403", 100000)
		tn := testutil.SeedTenant(t, db, apt.ID, "twice", testutil.TenantOpts{
			SecurityDeposit: 100000, IsActive: true,
		})

		_, err := svc.ProcessClosure(ctx, tn.ID, billing.ClosureInput{Reason: "first"})
		require.NoError(t, err)

		_, err = svc.ProcessClosure(ctx, tn.ID, billing.ClosureInput{Reason: "second"})
		require.ErrorIs(t, err, domain.ErrTenantClosed)
	})

	t.Run("negative deductions are rejected", func(t *testing.T) {
		_, err := svc.PreviewClosure(ctx, uuid.New(), billing.ClosureInput{DepositDeductions: -1})
		require.ErrorIs(t, err, domain.ErrNegativeAmount)
	})
}

func TestGenerateForMonth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	clock := fixedClock{t: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
	svc := billing.NewService(
		repository.NewTenantRepository(db),
		repository.NewBillRepository(db),
		repository.NewChargeRepository(db),
		repository.NewPaymentRepository(db),
		db, clock, nil, nil, billing.DefaultPolicy(),
	)

	aptA := testutil.SeedApartment(t, db, "E-501", 100000)
	aptB := testutil.SeedApartment(t, db, "E-502", 120000)
	tnA := testutil.SeedTenant(t, db, aptA.ID, "batch-a", testutil.TenantOpts{IsActive: true})
	tnB := testutil.SeedTenant(t, db, aptB.ID, "batch-b", testutil.TenantOpts{IsActive: true})
	testutil.SeedTenant(t, db, aptB.ID, "batch-closed", testutil.TenantOpts{IsActive: false})

	report, err := svc.GenerateForMonth(ctx, 2024, time.June)
	require.NoError(t, err)

	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, time.June, report.Month)
	assert.Equal(t, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), report.DueDate)
	assert.Len(t, report.Bills, 2, "only active tenants are billed")
	assert.Empty(t, report.Failures)

	// Rerunning the month returns the same bills instead of duplicating.
	again, err := svc.GenerateForMonth(ctx, 2024, time.June)
	require.NoError(t, err)
	require.Len(t, again.Bills, 2)

	ids := map[uuid.UUID]uuid.UUID{}
	for _, b := range report.Bills {
		ids[b.TenantID] = b.BillID
	}
	for _, b := range again.Bills {
		assert.Equal(t, ids[b.TenantID], b.BillID)
	}

	billsA, err := svc.ListTenantBills(ctx, tnA.ID)
	require.NoError(t, err)
	require.Len(t, billsA, 1)
	assert.Equal(t, int64(100000), billsA[0].Total)

	billsB, err := svc.ListTenantBills(ctx, tnB.ID)
	require.NoError(t, err)
	require.Len(t, billsB, 1)
	assert.Equal(t, int64(120000), billsB[0].Total)

	t.Run("run for the current period uses the grace window", func(t *testing.T) {
		monthly, err := svc.RunMonthly(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2024, monthly.Year)
		assert.Equal(t, time.June, monthly.Month)
		assert.Equal(t, clock.t.AddDate(0, 0, 10), monthly.DueDate)
		// June bills already exist; the run returns them unchanged.
		assert.Len(t, monthly.Bills, 2)
	})

	t.Run("invalid period is rejected", func(t *testing.T) {
		_, err := svc.GenerateForMonth(ctx, 2024, time.Month(0))
		require.ErrorIs(t, err, domain.ErrInvalidMonth)
	})
}
