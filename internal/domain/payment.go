package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is an immutable history record aside from administrative edits to
// its metadata. RemainingBalance is a snapshot of the tenant's unpaid bill
// total at the time the payment was recorded, not a running ledger.
type Payment struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Amount           int64
	PaidAt           time.Time
	RemainingBalance int64
	Method           PaymentMethod
	Reference        *string
	Notes            *string
	CreatedAt        time.Time
}
