package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentledger/rentledger/internal/domain"
)

func TestSettlementFigures(t *testing.T) {
	tests := []struct {
		name                 string
		advance              int64
		deposit              int64
		billed               int64
		paid                 int64
		deductions           int64
		wantOutstanding      int64
		wantRemainingAdvance int64
		wantRemainingDeposit int64
		wantRefund           int64
		wantDue              int64
	}{
		{
			name:    "debt exceeds credit, deposit partially deducted",
			advance: 50000, deposit: 200000,
			billed: 300000, paid: 75000, deductions: 30000,
			wantOutstanding:      225000,
			wantRemainingAdvance: 0,
			wantRemainingDeposit: 170000,
			wantRefund:           170000,
			wantDue:              175000,
		},
		{
			name:    "credit covers debt, full deposit refund minus deductions",
			advance: 100000, deposit: 200000,
			billed: 180000, paid: 100000, deductions: 20000,
			wantOutstanding:      80000,
			wantRemainingAdvance: 20000,
			wantRemainingDeposit: 180000,
			wantRefund:           200000,
			wantDue:              0,
		},
		{
			name:    "overpaid history leaves no outstanding",
			advance: 40000, deposit: 100000,
			billed: 90000, paid: 120000, deductions: 0,
			wantOutstanding:      0,
			wantRemainingAdvance: 40000,
			wantRemainingDeposit: 100000,
			wantRefund:           140000,
			wantDue:              0,
		},
		{
			name:    "deductions exceeding the deposit floor at zero",
			advance: 0, deposit: 50000,
			billed: 0, paid: 0, deductions: 80000,
			wantOutstanding:      0,
			wantRemainingAdvance: 0,
			wantRemainingDeposit: 0,
			wantRefund:           0,
			wantDue:              0,
		},
		{
			name:    "clean exit, nothing owed either way except deposit",
			advance: 0, deposit: 120000,
			billed: 500000, paid: 500000, deductions: 0,
			wantOutstanding:      0,
			wantRemainingAdvance: 0,
			wantRemainingDeposit: 120000,
			wantRefund:           120000,
			wantDue:              0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			outstanding, remAdvance, remDeposit, refund, due := settlementFigures(
				tc.advance, tc.deposit, tc.billed, tc.paid, tc.deductions,
			)
			assert.Equal(t, tc.wantOutstanding, outstanding, "outstanding")
			assert.Equal(t, tc.wantRemainingAdvance, remAdvance, "remaining advance")
			assert.Equal(t, tc.wantRemainingDeposit, remDeposit, "remaining deposit")
			assert.Equal(t, tc.wantRefund, refund, "refund")
			assert.Equal(t, tc.wantDue, due, "balance due")
			assert.GreaterOrEqual(t, outstanding, int64(0))
			assert.GreaterOrEqual(t, refund, int64(0))
			assert.GreaterOrEqual(t, due, int64(0))
		})
	}
}

func TestClosureInputValidate(t *testing.T) {
	require.NoError(t, ClosureInput{DepositDeductions: 0}.validate())
	require.NoError(t, ClosureInput{DepositDeductions: 30000, Reason: "carpet damage"}.validate())

	err := ClosureInput{DepositDeductions: -1}.validate()
	require.ErrorIs(t, err, domain.ErrNegativeAmount)
}
