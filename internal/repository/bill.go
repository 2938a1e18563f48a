package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
)

const billColumns = `id, tenant_id, apartment_id, year, month, rent,
	electricity, water, gas, internet, trash, parking,
	other_charges, previous_balance, advance_payment, total,
	is_paid, due_date, created_at, updated_at`

type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(ctx context.Context, tx *sql.Tx, b *domain.Bill) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO bills (
			id, tenant_id, apartment_id, year, month, rent,
			electricity, water, gas, internet, trash, parking,
			other_charges, previous_balance, advance_payment, total,
			is_paid, due_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)`,
		b.ID, b.TenantID, b.ApartmentID, b.Year, int(b.Month), b.Rent,
		b.Electricity, b.Water, b.Gas, b.Internet, b.Trash, b.Parking,
		b.OtherCharges, b.PreviousBalance, b.AdvancePayment, b.Total,
		b.IsPaid, b.DueDate, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1`, id,
	)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: bill %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return b, nil
}

func (r *BillRepository) GetByTenantMonth(ctx context.Context, tenantID uuid.UUID, year, month int) (*domain.Bill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE tenant_id = $1 AND year = $2 AND month = $3`,
		tenantID, year, month,
	)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByTenantMonth: tenant %s %d-%02d: %w", tenantID, year, month, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByTenantMonth: %w", err)
	}
	return b, nil
}

func (r *BillRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Bill, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1 FOR UPDATE`, id,
	)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: bill %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return b, nil
}

func (r *BillRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE tenant_id = $1 ORDER BY year, month`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByTenant: %w", err)
	}
	return collectBills(rows, "ListByTenant")
}

func (r *BillRepository) ListByMonth(ctx context.Context, year, month int) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE year = $1 AND month = $2 ORDER BY created_at`,
		year, month,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByMonth: %w", err)
	}
	return collectBills(rows, "ListByMonth")
}

func (r *BillRepository) ListUnpaidByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE tenant_id = $1 AND NOT is_paid ORDER BY year, month`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListUnpaidByTenant: %w", err)
	}
	return collectBills(rows, "ListUnpaidByTenant")
}

func (r *BillRepository) SumTotals(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM bills WHERE tenant_id = $1`, tenantID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumTotals: %w", err)
	}
	return sum, nil
}

func (r *BillRepository) SumTotalsTx(ctx context.Context, tx *sql.Tx, tenantID uuid.UUID) (int64, error) {
	var sum int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM bills WHERE tenant_id = $1`, tenantID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumTotalsTx: %w", err)
	}
	return sum, nil
}

func (r *BillRepository) SumUnpaidTotalsTx(ctx context.Context, tx *sql.Tx, tenantID uuid.UUID) (int64, error) {
	var sum int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM bills WHERE tenant_id = $1 AND NOT is_paid`, tenantID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumUnpaidTotalsTx: %w", err)
	}
	return sum, nil
}

// UpdateChargeTotals rewrites other_charges and total together so the two
// fields can never be observed out of step.
func (r *BillRepository) UpdateChargeTotals(ctx context.Context, tx *sql.Tx, id uuid.UUID, otherCharges, total int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET other_charges = $1, total = $2, updated_at = now() WHERE id = $3`,
		otherCharges, total, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateChargeTotals: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateChargeTotals: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateChargeTotals: bill %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *BillRepository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET is_paid = true, updated_at = now() WHERE id = $1 AND NOT is_paid`, id,
	)
	if err != nil {
		return fmt.Errorf("MarkPaid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkPaid: rows affected: %w", err)
	}
	if rows == 0 {
		b, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return fmt.Errorf("MarkPaid: %w", getErr)
		}
		if b.IsPaid {
			return fmt.Errorf("MarkPaid: bill %s: %w", id, domain.ErrBillAlreadyPaid)
		}
		return fmt.Errorf("MarkPaid: bill %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func collectBills(rows *sql.Rows, op string) ([]domain.Bill, error) {
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return bills, nil
}

func scanBill(s scanner) (*domain.Bill, error) {
	var b domain.Bill
	var month int
	err := s.Scan(
		&b.ID, &b.TenantID, &b.ApartmentID, &b.Year, &month, &b.Rent,
		&b.Electricity, &b.Water, &b.Gas, &b.Internet, &b.Trash, &b.Parking,
		&b.OtherCharges, &b.PreviousBalance, &b.AdvancePayment, &b.Total,
		&b.IsPaid, &b.DueDate, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Month = time.Month(month)
	return &b, nil
}
