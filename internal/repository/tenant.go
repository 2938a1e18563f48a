package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
)

const tenantColumns = `id, apartment_id, full_name, email, phone, move_in_date,
	advance_payment, security_deposit, is_active,
	electricity_enabled, water_enabled, gas_enabled, internet_enabled, trash_enabled, parking_enabled,
	version, created_at, updated_at`

type TenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (
			id, apartment_id, full_name, email, phone, move_in_date,
			advance_payment, security_deposit, is_active,
			electricity_enabled, water_enabled, gas_enabled, internet_enabled, trash_enabled, parking_enabled,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		t.ID, t.ApartmentID, t.FullName, t.Email, t.Phone, t.MoveInDate,
		t.AdvancePayment, t.SecurityDeposit, t.IsActive,
		t.ElectricityEnabled, t.WaterEnabled, t.GasEnabled, t.InternetEnabled, t.TrashEnabled, t.ParkingEnabled,
		t.Version, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id,
	)
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

func (r *TenantRepository) GetWithApartment(ctx context.Context, id uuid.UUID) (*domain.TenantWithApartment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+joinedTenantColumns+`
		FROM tenants t
		JOIN apartments a ON a.id = t.apartment_id
		WHERE t.id = $1`, id,
	)
	tw, err := scanTenantWithApartment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetWithApartment: tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetWithApartment: %w", err)
	}
	return tw, nil
}

// ListActiveWithApartments feeds the monthly billing run. Ordering is fixed
// so batch runs touch tenants in a stable order.
func (r *TenantRepository) ListActiveWithApartments(ctx context.Context) ([]domain.TenantWithApartment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+joinedTenantColumns+`
		FROM tenants t
		JOIN apartments a ON a.id = t.apartment_id
		WHERE t.is_active
		ORDER BY t.created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListActiveWithApartments: %w", err)
	}
	defer rows.Close()

	var result []domain.TenantWithApartment
	for rows.Next() {
		tw, err := scanTenantWithApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActiveWithApartments: scan: %w", err)
		}
		result = append(result, *tw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActiveWithApartments: rows: %w", err)
	}
	return result, nil
}

func (r *TenantRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Tenant, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1 FOR UPDATE`, id,
	)
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return t, nil
}

// UpdateLedger rewrites the tenant's financial state. The version check
// backstops the row lock taken by GetForUpdate.
func (r *TenantRepository) UpdateLedger(ctx context.Context, tx *sql.Tx, id uuid.UUID, advance, deposit int64, isActive bool, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE tenants
		SET advance_payment = $1, security_deposit = $2, is_active = $3, version = $4, updated_at = now()
		WHERE id = $5 AND version = $6`,
		advance, deposit, isActive, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateLedger: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateLedger: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateLedger: tenant %s: %w", id, domain.ErrVersionConflict)
	}
	return nil
}

const joinedTenantColumns = `t.id, t.apartment_id, t.full_name, t.email, t.phone, t.move_in_date,
	t.advance_payment, t.security_deposit, t.is_active,
	t.electricity_enabled, t.water_enabled, t.gas_enabled, t.internet_enabled, t.trash_enabled, t.parking_enabled,
	t.version, t.created_at, t.updated_at,
	a.id, a.unit_number, a.address, a.base_rent,
	a.electricity_rate, a.water_rate, a.gas_rate, a.internet_rate, a.trash_rate, a.parking_rate,
	a.created_at`

func scanTenant(s scanner) (*domain.Tenant, error) {
	var t domain.Tenant
	err := s.Scan(
		&t.ID, &t.ApartmentID, &t.FullName, &t.Email, &t.Phone, &t.MoveInDate,
		&t.AdvancePayment, &t.SecurityDeposit, &t.IsActive,
		&t.ElectricityEnabled, &t.WaterEnabled, &t.GasEnabled, &t.InternetEnabled, &t.TrashEnabled, &t.ParkingEnabled,
		&t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTenantWithApartment(s scanner) (*domain.TenantWithApartment, error) {
	var tw domain.TenantWithApartment
	t, a := &tw.Tenant, &tw.Apartment
	err := s.Scan(
		&t.ID, &t.ApartmentID, &t.FullName, &t.Email, &t.Phone, &t.MoveInDate,
		&t.AdvancePayment, &t.SecurityDeposit, &t.IsActive,
		&t.ElectricityEnabled, &t.WaterEnabled, &t.GasEnabled, &t.InternetEnabled, &t.TrashEnabled, &t.ParkingEnabled,
		&t.Version, &t.CreatedAt, &t.UpdatedAt,
		&a.ID, &a.UnitNumber, &a.Address, &a.BaseRent,
		&a.ElectricityRate, &a.WaterRate, &a.GasRate, &a.InternetRate, &a.TrashRate, &a.ParkingRate,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tw, nil
}
