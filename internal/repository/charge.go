package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
)

const chargeColumns = `id, bill_id, name, amount, description, created_at`

type ChargeRepository struct {
	db *sql.DB
}

func NewChargeRepository(db *sql.DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

func (r *ChargeRepository) Create(ctx context.Context, tx *sql.Tx, c *domain.OtherCharge) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO other_charges (id, bill_id, name, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.BillID, c.Name, c.Amount, c.Description, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ChargeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OtherCharge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chargeColumns+` FROM other_charges WHERE id = $1`, id,
	)
	c, err := scanCharge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: charge %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *ChargeRepository) ListByBill(ctx context.Context, billID uuid.UUID) ([]domain.OtherCharge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+chargeColumns+` FROM other_charges WHERE bill_id = $1 ORDER BY created_at`, billID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByBill: %w", err)
	}
	defer rows.Close()

	var charges []domain.OtherCharge
	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByBill: scan: %w", err)
		}
		charges = append(charges, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByBill: rows: %w", err)
	}
	return charges, nil
}

func (r *ChargeRepository) DeleteTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM other_charges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteTx: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteTx: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("DeleteTx: charge %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ChargeRepository) SumByBillTx(ctx context.Context, tx *sql.Tx, billID uuid.UUID) (int64, error) {
	var sum int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM other_charges WHERE bill_id = $1`, billID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SumByBillTx: %w", err)
	}
	return sum, nil
}

func scanCharge(s scanner) (*domain.OtherCharge, error) {
	var c domain.OtherCharge
	err := s.Scan(&c.ID, &c.BillID, &c.Name, &c.Amount, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
