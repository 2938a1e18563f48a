package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
)

const paymentColumns = `id, tenant_id, amount, paid_at, remaining_balance,
	method, reference, notes, created_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO payments (
			id, tenant_id, amount, paid_at, remaining_balance,
			method, reference, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.TenantID, p.Amount, p.PaidAt, p.RemainingBalance,
		p.Method, p.Reference, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: payment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (r *PaymentRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE tenant_id = $1 ORDER BY paid_at`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByTenant: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByTenant: scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByTenant: rows: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) SumAmounts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE tenant_id = $1`, tenantID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumAmounts: %w", err)
	}
	return sum, nil
}

func (r *PaymentRepository) SumAmountsTx(ctx context.Context, tx *sql.Tx, tenantID uuid.UUID) (int64, error) {
	var sum int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE tenant_id = $1`, tenantID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumAmountsTx: %w", err)
	}
	return sum, nil
}

// UpdateMetadata is the administrative edit. The amount, date and
// remaining-balance snapshot stay immutable.
func (r *PaymentRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, method domain.PaymentMethod, reference, notes *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET method = $1, reference = $2, notes = $3 WHERE id = $4`,
		method, reference, notes, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateMetadata: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateMetadata: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateMetadata: payment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	err := s.Scan(
		&p.ID, &p.TenantID, &p.Amount, &p.PaidAt, &p.RemainingBalance,
		&p.Method, &p.Reference, &p.Notes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
