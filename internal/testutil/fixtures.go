package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
)

func SeedApartment(t *testing.T, db *sql.DB, unitNumber string, baseRent int64) *domain.Apartment {
	t.Helper()

	a := &domain.Apartment{
		ID:         uuid.New(),
		UnitNumber: unitNumber,
		Address:    "12 Harbor Road",
		BaseRent:   baseRent,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO apartments (id, unit_number, address, base_rent, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.UnitNumber, a.Address, a.BaseRent, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed apartment: %v", err)
	}
	return a
}

type TenantOpts struct {
	AdvancePayment  int64
	SecurityDeposit int64
	IsActive        bool
}

func SeedTenant(t *testing.T, db *sql.DB, apartmentID uuid.UUID, name string, opts TenantOpts) *domain.Tenant {
	t.Helper()

	now := time.Now().UTC()
	tn := &domain.Tenant{
		ID:              uuid.New(),
		ApartmentID:     apartmentID,
		FullName:        name,
		Email:           name + "@test.local",
		MoveInDate:      now.AddDate(0, -6, 0),
		AdvancePayment:  opts.AdvancePayment,
		SecurityDeposit: opts.SecurityDeposit,
		IsActive:        opts.IsActive,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_, err := db.Exec(
		`INSERT INTO tenants (
			id, apartment_id, full_name, email, move_in_date,
			advance_payment, security_deposit, is_active, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tn.ID, tn.ApartmentID, tn.FullName, tn.Email, tn.MoveInDate,
		tn.AdvancePayment, tn.SecurityDeposit, tn.IsActive, tn.Version, tn.CreatedAt, tn.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tn
}

type BillOpts struct {
	Rent           int64
	OtherCharges   int64
	AdvancePayment int64
	Total          int64
	IsPaid         bool
}

func SeedBill(t *testing.T, db *sql.DB, tenantID, apartmentID uuid.UUID, year, month int, opts BillOpts) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(
		`INSERT INTO bills (
			id, tenant_id, apartment_id, year, month, rent, other_charges,
			advance_payment, total, is_paid, due_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, tenantID, apartmentID, year, month, opts.Rent, opts.OtherCharges,
		opts.AdvancePayment, opts.Total, opts.IsPaid, now.AddDate(0, 0, 10), now, now,
	)
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}
	return id
}

func GetTenantLedger(t *testing.T, db *sql.DB, id uuid.UUID) (advance, deposit int64, isActive bool) {
	t.Helper()
	err := db.QueryRow(
		`SELECT advance_payment, security_deposit, is_active FROM tenants WHERE id = $1`, id,
	).Scan(&advance, &deposit, &isActive)
	if err != nil {
		t.Fatalf("get tenant ledger: %v", err)
	}
	return advance, deposit, isActive
}

func GetBillTotals(t *testing.T, db *sql.DB, id uuid.UUID) (otherCharges, total int64) {
	t.Helper()
	err := db.QueryRow(
		`SELECT other_charges, total FROM bills WHERE id = $1`, id,
	).Scan(&otherCharges, &total)
	if err != nil {
		t.Fatalf("get bill totals: %v", err)
	}
	return otherCharges, total
}
