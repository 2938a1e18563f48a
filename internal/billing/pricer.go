package billing

import "github.com/rentledger/rentledger/internal/domain"

// UtilityAmounts are the per-component amounts applied to a freshly
// generated bill.
type UtilityAmounts struct {
	Electricity int64
	Water       int64
	Gas         int64
	Internet    int64
	Trash       int64
	Parking     int64
}

// UtilityPricer decides the utility components at generation time. The
// default is ZeroPricer: components start at zero and are filled in after
// meter readings, even though the apartment carries a standard rate card
// and the tenant carries enabled flags. RateCardPricer is the alternative
// that reads both.
type UtilityPricer interface {
	Price(t domain.Tenant, a domain.Apartment) UtilityAmounts
}

type ZeroPricer struct{}

func (ZeroPricer) Price(domain.Tenant, domain.Apartment) UtilityAmounts {
	return UtilityAmounts{}
}

// RateCardPricer applies the apartment's standard rates for every utility
// the tenant has enabled.
type RateCardPricer struct{}

func (RateCardPricer) Price(t domain.Tenant, a domain.Apartment) UtilityAmounts {
	var u UtilityAmounts
	if t.ElectricityEnabled {
		u.Electricity = a.ElectricityRate
	}
	if t.WaterEnabled {
		u.Water = a.WaterRate
	}
	if t.GasEnabled {
		u.Gas = a.GasRate
	}
	if t.InternetEnabled {
		u.Internet = a.InternetRate
	}
	if t.TrashEnabled {
		u.Trash = a.TrashRate
	}
	if t.ParkingEnabled {
		u.Parking = a.ParkingRate
	}
	return u
}
