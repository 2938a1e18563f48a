package billing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
	"github.com/rentledger/rentledger/internal/logging"
)

type RecordPaymentInput struct {
	TenantID  uuid.UUID
	Amount    int64
	PaidAt    *time.Time
	Method    domain.PaymentMethod
	Reference *string
	Notes     *string
}

func (in RecordPaymentInput) validate() error {
	if in.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if !in.Method.IsValid() {
		return domain.ErrInvalidMethod
	}
	return nil
}

// RecordPayment inserts the payment and reconciles the tenant's standing
// credit in one transaction, with the tenant row locked for the duration.
// Two concurrent payments for the same tenant therefore serialize; the
// second one reconciles over history that already includes the first.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*domain.Payment, error) {
	log := logging.FromContext(ctx)

	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("RecordPayment: begin tx: %w", err)
	}
	defer tx.Rollback()

	tenant, err := s.tenants.GetForUpdate(ctx, tx, in.TenantID)
	if err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}

	// Point-in-time snapshot of what the tenant still owes after this
	// payment, across all unpaid bills. Not a per-bill allocation.
	unpaid, err := s.bills.SumUnpaidTotalsTx(ctx, tx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}
	remaining := max0(unpaid - in.Amount)

	paidAt := s.clock.Now()
	if in.PaidAt != nil {
		paidAt = *in.PaidAt
	}

	payment := &domain.Payment{
		ID:               uuid.New(),
		TenantID:         tenant.ID,
		Amount:           in.Amount,
		PaidAt:           paidAt,
		RemainingBalance: remaining,
		Method:           in.Method,
		Reference:        in.Reference,
		Notes:            in.Notes,
		CreatedAt:        s.clock.Now(),
	}
	if err := s.payments.Create(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}

	if err := s.reconcileAdvance(ctx, tx, tenant); err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("RecordPayment: commit: %w", err)
	}

	s.metrics.PaymentRecorded()
	log.Info("payment recorded",
		"payment_id", payment.ID,
		"tenant_id", tenant.ID,
		"amount", in.Amount,
		"remaining_balance", remaining,
	)
	return payment, nil
}

// reconcileAdvance recomputes the tenant's standing credit as total
// historical payments minus total billed, and overwrites the ledger when
// the surplus is positive. The caller must already hold the tenant row
// lock; the sums see the payment inserted earlier in the same transaction.
func (s *Service) reconcileAdvance(ctx context.Context, tx *sql.Tx, tenant *domain.Tenant) error {
	paid, err := s.payments.SumAmountsTx(ctx, tx, tenant.ID)
	if err != nil {
		return fmt.Errorf("reconcileAdvance: %w", err)
	}
	billed, err := s.bills.SumTotalsTx(ctx, tx, tenant.ID)
	if err != nil {
		return fmt.Errorf("reconcileAdvance: %w", err)
	}

	surplus := paid - billed
	if surplus <= 0 || surplus == tenant.AdvancePayment {
		return nil
	}

	if err := s.tenants.UpdateLedger(ctx, tx, tenant.ID, surplus, tenant.SecurityDeposit, tenant.IsActive, tenant.Version+1); err != nil {
		return fmt.Errorf("reconcileAdvance: %w", err)
	}
	return nil
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetPayment: %w", err)
	}
	return p, nil
}

func (s *Service) ListTenantPayments(ctx context.Context, tenantID uuid.UUID) ([]domain.Payment, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("ListTenantPayments: %w", err)
	}
	payments, err := s.payments.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ListTenantPayments: %w", err)
	}
	return payments, nil
}

// EditPayment is the administrative metadata edit; the amount, date and
// snapshot are immutable history.
func (s *Service) EditPayment(ctx context.Context, id uuid.UUID, method domain.PaymentMethod, reference, notes *string) (*domain.Payment, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("EditPayment: %w", domain.ErrInvalidMethod)
	}
	if err := s.payments.UpdateMetadata(ctx, id, method, reference, notes); err != nil {
		return nil, fmt.Errorf("EditPayment: %w", err)
	}
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("EditPayment: %w", err)
	}
	return p, nil
}
