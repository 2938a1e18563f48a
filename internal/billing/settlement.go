package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
	"github.com/rentledger/rentledger/internal/logging"
)

type ClosureInput struct {
	DepositDeductions int64
	Reason            string
}

func (in ClosureInput) validate() error {
	if in.DepositDeductions < 0 {
		return domain.ErrNegativeAmount
	}
	return nil
}

// settlementFigures nets a tenancy out: outstanding debt against standing
// credit, deposit against deductions. Pure; preview and commit share it.
func settlementFigures(advance, deposit, totalBilled, totalPaid, deductions int64) (outstanding, remainingAdvance, remainingDeposit, refund, due int64) {
	outstanding = max0(totalBilled - totalPaid)
	remainingAdvance = max0(advance - outstanding)
	remainingDeposit = max0(deposit - deductions)
	refund = remainingAdvance + remainingDeposit
	due = max0(outstanding - advance)
	return outstanding, remainingAdvance, remainingDeposit, refund, due
}

// PreviewClosure computes the closure figures without touching anything.
// Estimated deductions stand in for the real ones.
func (s *Service) PreviewClosure(ctx context.Context, tenantID uuid.UUID, in ClosureInput) (*domain.Settlement, error) {
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("PreviewClosure: %w", err)
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("PreviewClosure: %w", err)
	}

	billed, err := s.bills.SumTotals(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("PreviewClosure: %w", err)
	}
	paid, err := s.payments.SumAmounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("PreviewClosure: %w", err)
	}

	outstanding, remAdvance, remDeposit, refund, due := settlementFigures(
		tenant.AdvancePayment, tenant.SecurityDeposit, billed, paid, in.DepositDeductions,
	)
	return &domain.Settlement{
		TenantID:          tenantID,
		Outstanding:       outstanding,
		RemainingAdvance:  remAdvance,
		RemainingDeposit:  remDeposit,
		PotentialRefund:   refund,
		FinalBalanceDue:   due,
		DepositDeductions: in.DepositDeductions,
		Reason:            in.Reason,
		Committed:         false,
		ComputedAt:        s.clock.Now(),
	}, nil
}

// ProcessClosure commits the settlement: the tenant goes Active to Closed
// and the advance and deposit are zeroed, all inside one transaction. A
// tenant that is already closed gets ErrTenantClosed instead of a second,
// trivially zero settlement. The returned figures are the only record of
// the money movement; paying the refund or collecting the balance happens
// outside the system.
func (s *Service) ProcessClosure(ctx context.Context, tenantID uuid.UUID, in ClosureInput) (*domain.Settlement, error) {
	log := logging.FromContext(ctx)

	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("ProcessClosure: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ProcessClosure: begin tx: %w", err)
	}
	defer tx.Rollback()

	tenant, err := s.tenants.GetForUpdate(ctx, tx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ProcessClosure: %w", err)
	}
	if !tenant.IsActive {
		return nil, fmt.Errorf("ProcessClosure: tenant %s: %w", tenantID, domain.ErrTenantClosed)
	}

	billed, err := s.bills.SumTotalsTx(ctx, tx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ProcessClosure: %w", err)
	}
	paid, err := s.payments.SumAmountsTx(ctx, tx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ProcessClosure: %w", err)
	}

	outstanding, remAdvance, remDeposit, refund, due := settlementFigures(
		tenant.AdvancePayment, tenant.SecurityDeposit, billed, paid, in.DepositDeductions,
	)

	if err := s.tenants.UpdateLedger(ctx, tx, tenantID, 0, 0, false, tenant.Version+1); err != nil {
		return nil, fmt.Errorf("ProcessClosure: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ProcessClosure: commit: %w", err)
	}

	s.metrics.TenantClosed()
	log.Info("tenancy closed",
		"tenant_id", tenantID,
		"outstanding", outstanding,
		"refund", refund,
		"balance_due", due,
		"deductions", in.DepositDeductions,
		"reason", in.Reason,
	)
	return &domain.Settlement{
		TenantID:          tenantID,
		Outstanding:       outstanding,
		RemainingAdvance:  remAdvance,
		RemainingDeposit:  remDeposit,
		PotentialRefund:   refund,
		FinalBalanceDue:   due,
		DepositDeductions: in.DepositDeductions,
		Reason:            in.Reason,
		Committed:         true,
		ComputedAt:        s.clock.Now(),
	}, nil
}
