package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/domain"
)

type settlementService interface {
	PreviewClosure(ctx context.Context, tenantID uuid.UUID, in billing.ClosureInput) (*domain.Settlement, error)
	ProcessClosure(ctx context.Context, tenantID uuid.UUID, in billing.ClosureInput) (*domain.Settlement, error)
}

type SettlementHandler struct {
	settlements settlementService
}

func NewSettlementHandler(settlements settlementService) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

func (h *SettlementHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/tenants/{id}/settlement/preview", h.Preview)
	mux.HandleFunc("POST /api/v1/tenants/{id}/settlement/process", h.Process)
}

type closureRequest struct {
	Deductions string `json:"deductions"`
	Reason     string `json:"reason"`
}

type settlementView struct {
	TenantID          string `json:"tenant_id"`
	Outstanding       string `json:"outstanding"`
	RemainingAdvance  string `json:"remaining_advance"`
	RemainingDeposit  string `json:"remaining_deposit"`
	PotentialRefund   string `json:"potential_refund"`
	FinalBalanceDue   string `json:"final_balance_due"`
	DepositDeductions string `json:"deposit_deductions"`
	Reason            string `json:"reason,omitempty"`
	Committed         bool   `json:"committed"`
}

func toSettlementView(s *domain.Settlement) settlementView {
	return settlementView{
		TenantID:          s.TenantID.String(),
		Outstanding:       domain.FormatAmount(s.Outstanding),
		RemainingAdvance:  domain.FormatAmount(s.RemainingAdvance),
		RemainingDeposit:  domain.FormatAmount(s.RemainingDeposit),
		PotentialRefund:   domain.FormatAmount(s.PotentialRefund),
		FinalBalanceDue:   domain.FormatAmount(s.FinalBalanceDue),
		DepositDeductions: domain.FormatAmount(s.DepositDeductions),
		Reason:            s.Reason,
		Committed:         s.Committed,
	}
}

func (h *SettlementHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.settlements.PreviewClosure)
}

func (h *SettlementHandler) Process(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.settlements.ProcessClosure)
}

func (h *SettlementHandler) handle(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, tenantID uuid.UUID, in billing.ClosureInput) (*domain.Settlement, error),
) {
	tenantID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req closureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	deductions := int64(0)
	if req.Deductions != "" {
		var err error
		deductions, err = domain.ParseAmount(req.Deductions)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "deductions", Message: "must be a valid decimal amount"}})
			return
		}
	}

	settlement, err := fn(r.Context(), tenantID, billing.ClosureInput{
		DepositDeductions: deductions,
		Reason:            req.Reason,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toSettlementView(settlement))
}
