package billing

import "github.com/rentledger/rentledger/internal/domain"

// Components holds everything that goes into a bill's total. Zero values
// stand in for absent fields, so a partially filled struct sums correctly.
type Components struct {
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
}

// GrossSum is the charge side only: rent, utilities, other charges and the
// carried previous balance, before any credit is applied.
func (c Components) GrossSum() int64 {
	return c.Rent + c.Electricity + c.Water + c.Gas + c.Internet + c.Trash + c.Parking +
		c.OtherCharges + c.PreviousBalance
}

// BillTotal nets the applied advance against the gross sum, floored at
// zero. Pure; the single source of truth for every stored total.
func BillTotal(c Components) int64 {
	return max0(c.GrossSum() - c.AdvancePayment)
}

func componentsOf(b *domain.Bill) Components {
	return Components{
		Rent:            b.Rent,
		Electricity:     b.Electricity,
		Water:           b.Water,
		Gas:             b.Gas,
		Internet:        b.Internet,
		Trash:           b.Trash,
		Parking:         b.Parking,
		OtherCharges:    b.OtherCharges,
		PreviousBalance: b.PreviousBalance,
		AdvancePayment:  b.AdvancePayment,
	}
}

func max0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
