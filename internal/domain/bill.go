package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bill is the authoritative monthly statement for one tenant. At most one
// bill exists per (tenant, year, month); the unique index enforces it.
// AdvancePayment here is the credit applied to this bill, not the tenant's
// standing credit. Total is derived and floored at zero.
type Bill struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	ApartmentID uuid.UUID
	Year        int
	Month       time.Month

	Rent        int64
	Electricity int64
	Water       int64
	Gas         int64
	Internet    int64
	Trash       int64
	Parking     int64

	OtherCharges    int64
	PreviousBalance int64
	AdvancePayment  int64
	Total           int64

	IsPaid    bool
	DueDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UtilityTotal sums the six utility components.
func (b *Bill) UtilityTotal() int64 {
	return b.Electricity + b.Water + b.Gas + b.Internet + b.Trash + b.Parking
}

// OtherCharge is an ad hoc line item owned by exactly one bill. The owning
// bill's OtherCharges field must equal the sum of its charges at all times.
type OtherCharge struct {
	ID          uuid.UUID
	BillID      uuid.UUID
	Name        string
	Amount      int64
	Description *string
	CreatedAt   time.Time
}
