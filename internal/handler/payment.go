package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/domain"
)

type paymentService interface {
	RecordPayment(ctx context.Context, in billing.RecordPaymentInput) (*domain.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListTenantPayments(ctx context.Context, tenantID uuid.UUID) ([]domain.Payment, error)
	EditPayment(ctx context.Context, id uuid.UUID, method domain.PaymentMethod, reference, notes *string) (*domain.Payment, error)
}

type PaymentHandler struct {
	payments paymentService
}

func NewPaymentHandler(payments paymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/payments", h.RecordPayment)
	mux.HandleFunc("GET /api/v1/payments/{id}", h.GetPayment)
	mux.HandleFunc("PATCH /api/v1/payments/{id}", h.EditPayment)
	mux.HandleFunc("GET /api/v1/tenants/{id}/payments", h.ListTenantPayments)
}

type recordPaymentRequest struct {
	TenantID  string  `json:"tenant_id"`
	Amount    string  `json:"amount"`
	PaidAt    *string `json:"paid_at"`
	Method    string  `json:"method"`
	Reference *string `json:"reference"`
	Notes     *string `json:"notes"`
}

type paymentView struct {
	ID               string  `json:"id"`
	TenantID         string  `json:"tenant_id"`
	Amount           string  `json:"amount"`
	PaidAt           string  `json:"paid_at"`
	RemainingBalance string  `json:"remaining_balance"`
	Method           string  `json:"method"`
	Reference        *string `json:"reference,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

func toPaymentView(p *domain.Payment) paymentView {
	return paymentView{
		ID:               p.ID.String(),
		TenantID:         p.TenantID.String(),
		Amount:           domain.FormatAmount(p.Amount),
		PaidAt:           p.PaidAt.Format(time.RFC3339),
		RemainingBalance: domain.FormatAmount(p.RemainingBalance),
		Method:           string(p.Method),
		Reference:        p.Reference,
		Notes:            p.Notes,
	}
}

func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		fields = append(fields, FieldError{Field: "tenant_id", Message: "must be a valid UUID"})
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		fields = append(fields, FieldError{Field: "amount", Message: "must be a valid decimal amount"})
	}
	method := domain.PaymentMethod(req.Method)
	if req.Method == "" {
		method = domain.PaymentMethodCash
	} else if !method.IsValid() {
		fields = append(fields, FieldError{Field: "method", Message: "must be cash, bank_transfer, check, or other"})
	}
	var paidAt *time.Time
	if req.PaidAt != nil {
		t, err := time.Parse(time.RFC3339, *req.PaidAt)
		if err != nil {
			fields = append(fields, FieldError{Field: "paid_at", Message: "must be RFC 3339"})
		} else {
			paidAt = &t
		}
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	payment, err := h.payments.RecordPayment(r.Context(), billing.RecordPaymentInput{
		TenantID:  tenantID,
		Amount:    amount,
		PaidAt:    paidAt,
		Method:    method,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toPaymentView(payment))
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toPaymentView(payment))
}

type editPaymentRequest struct {
	Method    string  `json:"method"`
	Reference *string `json:"reference"`
	Notes     *string `json:"notes"`
}

func (h *PaymentHandler) EditPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req editPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	payment, err := h.payments.EditPayment(r.Context(), id, domain.PaymentMethod(req.Method), req.Reference, req.Notes)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toPaymentView(payment))
}

func (h *PaymentHandler) ListTenantPayments(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.payments.ListTenantPayments(r.Context(), tenantID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	views := make([]paymentView, 0, len(payments))
	for i := range payments {
		views = append(views, toPaymentView(&payments[i]))
	}
	RespondSuccess(w, http.StatusOK, views)
}
