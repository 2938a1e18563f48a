package billing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
)

type tenantRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	GetWithApartment(ctx context.Context, id uuid.UUID) (*domain.TenantWithApartment, error)
	ListActiveWithApartments(ctx context.Context) ([]domain.TenantWithApartment, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Tenant, error)
	UpdateLedger(ctx context.Context, tx *sql.Tx, id uuid.UUID, advance, deposit int64, isActive bool, newVersion int64) error
}

type billRepo interface {
	Create(ctx context.Context, tx *sql.Tx, b *domain.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error)
	GetByTenantMonth(ctx context.Context, tenantID uuid.UUID, year, month int) (*domain.Bill, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Bill, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Bill, error)
	ListByMonth(ctx context.Context, year, month int) ([]domain.Bill, error)
	ListUnpaidByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Bill, error)
	SumTotals(ctx context.Context, tenantID uuid.UUID) (int64, error)
	SumTotalsTx(ctx context.Context, tx *sql.Tx, tenantID uuid.UUID) (int64, error)
	SumUnpaidTotalsTx(ctx context.Context, tx *sql.Tx, tenantID uuid.UUID) (int64, error)
	UpdateChargeTotals(ctx context.Context, tx *sql.Tx, id uuid.UUID, otherCharges, total int64) error
	MarkPaid(ctx context.Context, id uuid.UUID) error
}

type chargeRepo interface {
	Create(ctx context.Context, tx *sql.Tx, c *domain.OtherCharge) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OtherCharge, error)
	ListByBill(ctx context.Context, billID uuid.UUID) ([]domain.OtherCharge, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
	SumByBillTx(ctx context.Context, tx *sql.Tx, billID uuid.UUID) (int64, error)
}

type paymentRepo interface {
	Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Payment, error)
	SumAmounts(ctx context.Context, tenantID uuid.UUID) (int64, error)
	SumAmountsTx(ctx context.Context, tx *sql.Tx, tenantID uuid.UUID) (int64, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, method domain.PaymentMethod, reference, notes *string) error
}

// Policy carries the billing knobs that are configuration, not code: the
// two due-date rules and the year floor for validation.
type Policy struct {
	DueDateGraceDays int
	DueDateFixedDay  int
	MinYear          int
}

func DefaultPolicy() Policy {
	return Policy{DueDateGraceDays: 10, DueDateFixedDay: 10, MinYear: 2000}
}

// Service is the billing and settlement engine. All ledger mutations for a
// tenant run inside one transaction with the tenant row locked, so
// concurrent generation, payments and closure for the same tenant
// serialize; different tenants proceed in parallel.
type Service struct {
	tenants  tenantRepo
	bills    billRepo
	charges  chargeRepo
	payments paymentRepo
	db       *sql.DB
	clock    Clock
	pricer   UtilityPricer
	metrics  Metrics
	policy   Policy
}

func NewService(
	tenants tenantRepo,
	bills billRepo,
	charges chargeRepo,
	payments paymentRepo,
	db *sql.DB,
	clock Clock,
	pricer UtilityPricer,
	metrics Metrics,
	policy Policy,
) *Service {
	if clock == nil {
		clock = RealClock()
	}
	if pricer == nil {
		pricer = ZeroPricer{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Service{
		tenants:  tenants,
		bills:    bills,
		charges:  charges,
		payments: payments,
		db:       db,
		clock:    clock,
		pricer:   pricer,
		metrics:  metrics,
		policy:   policy,
	}
}

func (s *Service) GetTenantWithApartment(ctx context.Context, tenantID uuid.UUID) (*domain.TenantWithApartment, error) {
	tw, err := s.tenants.GetWithApartment(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("GetTenantWithApartment: %w", err)
	}
	return tw, nil
}

func (s *Service) GetBill(ctx context.Context, billID uuid.UUID) (*domain.Bill, error) {
	b, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("GetBill: %w", err)
	}
	return b, nil
}

func (s *Service) ListTenantBills(ctx context.Context, tenantID uuid.UUID) ([]domain.Bill, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("ListTenantBills: %w", err)
	}
	bills, err := s.bills.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ListTenantBills: %w", err)
	}
	return bills, nil
}

func (s *Service) ListBillCharges(ctx context.Context, billID uuid.UUID) ([]domain.OtherCharge, error) {
	if _, err := s.bills.GetByID(ctx, billID); err != nil {
		return nil, fmt.Errorf("ListBillCharges: %w", err)
	}
	charges, err := s.charges.ListByBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("ListBillCharges: %w", err)
	}
	return charges, nil
}

func (s *Service) MarkBillPaid(ctx context.Context, billID uuid.UUID) (*domain.Bill, error) {
	if err := s.bills.MarkPaid(ctx, billID); err != nil {
		return nil, fmt.Errorf("MarkBillPaid: %w", err)
	}
	b, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("MarkBillPaid: %w", err)
	}
	return b, nil
}

func (s *Service) ListMonthBills(ctx context.Context, year int, month time.Month) ([]domain.Bill, error) {
	if err := s.validateBillingMonth(year, month); err != nil {
		return nil, fmt.Errorf("ListMonthBills: %w", err)
	}
	bills, err := s.bills.ListByMonth(ctx, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("ListMonthBills: %w", err)
	}
	return bills, nil
}

// validateBillingMonth rejects malformed periods before any computation or
// state change happens.
func (s *Service) validateBillingMonth(year int, month time.Month) error {
	if month < time.January || month > time.December {
		return domain.ErrInvalidMonth
	}
	if year < s.policy.MinYear {
		return domain.ErrInvalidYear
	}
	return nil
}
