package domain

import (
	"time"

	"github.com/google/uuid"
)

// Apartment carries the unit's base rent and its standard utility rate card.
// Bill generation does not read the rate card today; it feeds the pricing
// seam in the billing package once per-unit rates are switched on.
type Apartment struct {
	ID         uuid.UUID
	UnitNumber string
	Address    string
	BaseRent   int64

	ElectricityRate int64
	WaterRate       int64
	GasRate         int64
	InternetRate    int64
	TrashRate       int64
	ParkingRate     int64

	CreatedAt time.Time
}
