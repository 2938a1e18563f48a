package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
	"github.com/rentledger/rentledger/internal/logging"
)

// GenerateForTenant builds the bill for one tenant and month, or returns
// the existing one untouched. Generation consumes the tenant's standing
// credit exactly once; calling again for the same month is a no-op.
func (s *Service) GenerateForTenant(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, dueDate time.Time) (*domain.Bill, error) {
	if err := s.validateBillingMonth(year, month); err != nil {
		return nil, fmt.Errorf("GenerateForTenant: %w", err)
	}

	tw, err := s.tenants.GetWithApartment(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("GenerateForTenant: %w", err)
	}

	b, err := s.generate(ctx, *tw, year, month, dueDate)
	if err != nil {
		return nil, fmt.Errorf("GenerateForTenant: %w", err)
	}
	return b, nil
}

func (s *Service) generate(ctx context.Context, tw domain.TenantWithApartment, year int, month time.Month, dueDate time.Time) (*domain.Bill, error) {
	log := logging.FromContext(ctx)
	tenant, apt := tw.Tenant, tw.Apartment

	// Idempotency gate: an existing bill is returned as-is, with no
	// recomputation and no ledger mutation.
	existing, err := s.bills.GetByTenantMonth(ctx, tenant.ID, year, int(month))
	if err == nil {
		s.metrics.BillSkipped()
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		log.Error("bill lookup failed", "tenant_id", tenant.ID, "year", year, "month", int(month), "error", err)
		return nil, fmt.Errorf("generate: %w", err)
	}

	if !tenant.IsActive {
		return nil, fmt.Errorf("generate: tenant %s: %w", tenant.ID, domain.ErrTenantInactive)
	}

	prevYear, prevMonth := previousPeriod(year, month)
	var prev *domain.Bill
	prev, err = s.bills.GetByTenantMonth(ctx, tenant.ID, prevYear, int(prevMonth))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error("previous bill lookup failed", "tenant_id", tenant.ID, "error", err)
			return nil, fmt.Errorf("generate: %w", err)
		}
		prev = nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("generate: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock the ledger row; the standing credit is read and consumed under
	// the same lock that payments and settlement take.
	locked, err := s.tenants.GetForUpdate(ctx, tx, tenant.ID)
	if err != nil {
		log.Error("tenant lock failed", "tenant_id", tenant.ID, "error", err)
		return nil, fmt.Errorf("generate: %w", err)
	}

	prevBalance, leftover := carryover(prev)
	advance := leftover + locked.AdvancePayment

	utilities := s.pricer.Price(*locked, apt)
	components := Components{
		Rent:            apt.BaseRent,
		Electricity:     utilities.Electricity,
		Water:           utilities.Water,
		Gas:             utilities.Gas,
		Internet:        utilities.Internet,
		Trash:           utilities.Trash,
		Parking:         utilities.Parking,
		PreviousBalance: prevBalance,
		AdvancePayment:  advance,
	}
	total := BillTotal(components)

	// The credit that goes back on the ledger for the next cycle: whatever
	// the applied advance exceeds the gross amount by. The standing credit
	// itself is consumed regardless of whether it covered the bill.
	isPaid := advance >= total
	remainder := max0(advance - components.GrossSum())

	now := s.clock.Now()
	bill := &domain.Bill{
		ID:              uuid.New(),
		TenantID:        tenant.ID,
		ApartmentID:     apt.ID,
		Year:            year,
		Month:           month,
		Rent:            apt.BaseRent,
		Electricity:     utilities.Electricity,
		Water:           utilities.Water,
		Gas:             utilities.Gas,
		Internet:        utilities.Internet,
		Trash:           utilities.Trash,
		Parking:         utilities.Parking,
		PreviousBalance: prevBalance,
		AdvancePayment:  advance,
		Total:           total,
		IsPaid:          isPaid,
		DueDate:         dueDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bills.Create(ctx, tx, bill); err != nil {
		log.Error("bill insert failed", "tenant_id", tenant.ID, "year", year, "month", int(month), "error", err)
		return nil, fmt.Errorf("generate: %w", err)
	}

	if err := s.tenants.UpdateLedger(ctx, tx, tenant.ID, remainder, locked.SecurityDeposit, locked.IsActive, locked.Version+1); err != nil {
		log.Error("ledger update failed", "tenant_id", tenant.ID, "error", err)
		return nil, fmt.Errorf("generate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("bill generation commit failed", "tenant_id", tenant.ID, "error", err)
		return nil, fmt.Errorf("generate: commit: %w", err)
	}

	s.metrics.BillGenerated()
	log.Info("bill generated",
		"bill_id", bill.ID,
		"tenant_id", tenant.ID,
		"year", year,
		"month", int(month),
		"total", bill.Total,
		"advance_applied", advance,
		"is_paid", isPaid,
	)
	return bill, nil
}

// carryover derives the two amounts a prior bill feeds into the next one:
// the unpaid remainder carried as previous balance, and the leftover
// advance carried as credit. Both floor at zero.
func carryover(prev *domain.Bill) (prevBalance, leftover int64) {
	if prev == nil {
		return 0, 0
	}
	if !prev.IsPaid {
		prevBalance = max0(prev.Total - prev.AdvancePayment)
	}
	leftover = max0(prev.AdvancePayment - prev.Total)
	return prevBalance, leftover
}

// previousPeriod steps one month back; January wraps to the prior
// year's December.
func previousPeriod(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
