package domain

import (
	"time"

	"github.com/google/uuid"
)

// Settlement is the computed view of a tenancy closure. Preview and commit
// produce the same figures; only the commit flips the tenant to closed and
// zeroes the ledger. The actual money movement happens outside the system.
type Settlement struct {
	TenantID          uuid.UUID
	Outstanding       int64
	RemainingAdvance  int64
	RemainingDeposit  int64
	PotentialRefund   int64
	FinalBalanceDue   int64
	DepositDeductions int64
	Reason            string
	Committed         bool
	ComputedAt        time.Time
}
