package billing

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
	"github.com/rentledger/rentledger/internal/logging"
)

type AddChargeInput struct {
	Name        string
	Amount      int64
	Description *string
}

func (in AddChargeInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.ErrInvalidRequest
	}
	if in.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

// AddCharge attaches an ad hoc charge to a bill and recomputes the bill's
// other_charges and total in the same transaction, so the bill and its
// charge rows never disagree.
func (s *Service) AddCharge(ctx context.Context, billID uuid.UUID, in AddChargeInput) (*domain.OtherCharge, *domain.Bill, error) {
	log := logging.FromContext(ctx)

	if err := in.validate(); err != nil {
		return nil, nil, fmt.Errorf("AddCharge: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("AddCharge: begin tx: %w", err)
	}
	defer tx.Rollback()

	bill, err := s.bills.GetForUpdate(ctx, tx, billID)
	if err != nil {
		return nil, nil, fmt.Errorf("AddCharge: %w", err)
	}

	charge := &domain.OtherCharge{
		ID:          uuid.New(),
		BillID:      bill.ID,
		Name:        strings.TrimSpace(in.Name),
		Amount:      in.Amount,
		Description: in.Description,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.charges.Create(ctx, tx, charge); err != nil {
		return nil, nil, fmt.Errorf("AddCharge: %w", err)
	}

	updated, err := s.recalcChargeTotals(ctx, tx, bill)
	if err != nil {
		return nil, nil, fmt.Errorf("AddCharge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("AddCharge: commit: %w", err)
	}

	log.Info("charge added",
		"charge_id", charge.ID,
		"bill_id", bill.ID,
		"amount", charge.Amount,
		"bill_total", updated.Total,
	)
	return charge, updated, nil
}

// RemoveCharge detaches a charge and recomputes the owning bill the same
// way AddCharge does. A missing bill or charge surfaces as ErrNotFound and
// a charge on a different bill as ErrChargeNotOnBill; neither leaves any
// partial state.
func (s *Service) RemoveCharge(ctx context.Context, billID, chargeID uuid.UUID) (*domain.Bill, error) {
	log := logging.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("RemoveCharge: begin tx: %w", err)
	}
	defer tx.Rollback()

	bill, err := s.bills.GetForUpdate(ctx, tx, billID)
	if err != nil {
		return nil, fmt.Errorf("RemoveCharge: %w", err)
	}

	charge, err := s.charges.GetByID(ctx, chargeID)
	if err != nil {
		return nil, fmt.Errorf("RemoveCharge: %w", err)
	}
	if charge.BillID != bill.ID {
		return nil, fmt.Errorf("RemoveCharge: charge %s on bill %s: %w", chargeID, charge.BillID, domain.ErrChargeNotOnBill)
	}

	if err := s.charges.DeleteTx(ctx, tx, chargeID); err != nil {
		return nil, fmt.Errorf("RemoveCharge: %w", err)
	}

	updated, err := s.recalcChargeTotals(ctx, tx, bill)
	if err != nil {
		return nil, fmt.Errorf("RemoveCharge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("RemoveCharge: commit: %w", err)
	}

	log.Info("charge removed", "charge_id", chargeID, "bill_id", bill.ID, "bill_total", updated.Total)
	return updated, nil
}

// recalcChargeTotals re-derives other_charges from the charge rows and the
// total from the refreshed snapshot, then writes both fields as one update.
func (s *Service) recalcChargeTotals(ctx context.Context, tx *sql.Tx, bill *domain.Bill) (*domain.Bill, error) {
	sum, err := s.charges.SumByBillTx(ctx, tx, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("recalcChargeTotals: %w", err)
	}

	components := componentsOf(bill)
	components.OtherCharges = sum
	total := BillTotal(components)

	if err := s.bills.UpdateChargeTotals(ctx, tx, bill.ID, sum, total); err != nil {
		return nil, fmt.Errorf("recalcChargeTotals: %w", err)
	}

	updated := *bill
	updated.OtherCharges = sum
	updated.Total = total
	return &updated, nil
}
