package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the ledger account for a tenancy: the standing credit
// (AdvancePayment), the held SecurityDeposit, and the active flag that gates
// monthly generation and settlement. AdvancePayment and SecurityDeposit are
// never negative. Version guards read-modify-write updates to the ledger
// fields.
type Tenant struct {
	ID          uuid.UUID
	ApartmentID uuid.UUID
	FullName    string
	Email       string
	Phone       *string
	MoveInDate  time.Time

	AdvancePayment  int64
	SecurityDeposit int64
	IsActive        bool

	ElectricityEnabled bool
	WaterEnabled       bool
	GasEnabled         bool
	InternetEnabled    bool
	TrashEnabled       bool
	ParkingEnabled     bool

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantWithApartment pairs a tenant with its unit for bill generation,
// which needs the base rent alongside the ledger state.
type TenantWithApartment struct {
	Tenant    Tenant
	Apartment Apartment
}
