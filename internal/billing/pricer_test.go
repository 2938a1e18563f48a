package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentledger/rentledger/internal/domain"
)

func TestZeroPricer(t *testing.T) {
	tenant := domain.Tenant{ElectricityEnabled: true, WaterEnabled: true}
	apt := domain.Apartment{ElectricityRate: 4500, WaterRate: 1200}

	// Enabled flags and rates are both ignored; components start at zero.
	assert.Equal(t, UtilityAmounts{}, ZeroPricer{}.Price(tenant, apt))
}

func TestRateCardPricer(t *testing.T) {
	apt := domain.Apartment{
		ElectricityRate: 4500,
		WaterRate:       1200,
		GasRate:         800,
		InternetRate:    3000,
		TrashRate:       500,
		ParkingRate:     2000,
	}

	tests := []struct {
		name   string
		tenant domain.Tenant
		want   UtilityAmounts
	}{
		{
			name:   "nothing enabled",
			tenant: domain.Tenant{},
			want:   UtilityAmounts{},
		},
		{
			name: "subset enabled",
			tenant: domain.Tenant{
				ElectricityEnabled: true,
				InternetEnabled:    true,
			},
			want: UtilityAmounts{Electricity: 4500, Internet: 3000},
		},
		{
			name: "everything enabled",
			tenant: domain.Tenant{
				ElectricityEnabled: true,
				WaterEnabled:       true,
				GasEnabled:         true,
				InternetEnabled:    true,
				TrashEnabled:       true,
				ParkingEnabled:     true,
			},
			want: UtilityAmounts{
				Electricity: 4500,
				Water:       1200,
				Gas:         800,
				Internet:    3000,
				Trash:       500,
				Parking:     2000,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RateCardPricer{}.Price(tc.tenant, apt))
		})
	}
}
