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

type billingService interface {
	RunMonthly(ctx context.Context) (*billing.RunReport, error)
	GenerateForMonth(ctx context.Context, year int, month time.Month) (*billing.RunReport, error)
	GenerateForTenant(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, dueDate time.Time) (*domain.Bill, error)
	GetBill(ctx context.Context, billID uuid.UUID) (*domain.Bill, error)
	ListTenantBills(ctx context.Context, tenantID uuid.UUID) ([]domain.Bill, error)
	MarkBillPaid(ctx context.Context, billID uuid.UUID) (*domain.Bill, error)
	AddCharge(ctx context.Context, billID uuid.UUID, in billing.AddChargeInput) (*domain.OtherCharge, *domain.Bill, error)
	RemoveCharge(ctx context.Context, billID, chargeID uuid.UUID) (*domain.Bill, error)
	ListBillCharges(ctx context.Context, billID uuid.UUID) ([]domain.OtherCharge, error)
}

type BillHandler struct {
	billing billingService
}

func NewBillHandler(billing billingService) *BillHandler {
	return &BillHandler{billing: billing}
}

func (h *BillHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/billing/run", h.RunMonthly)
	mux.HandleFunc("POST /api/v1/billing/generate", h.GenerateForMonth)
	mux.HandleFunc("POST /api/v1/tenants/{id}/bills", h.GenerateForTenant)
	mux.HandleFunc("GET /api/v1/tenants/{id}/bills", h.ListTenantBills)
	mux.HandleFunc("GET /api/v1/bills/{id}", h.GetBill)
	mux.HandleFunc("POST /api/v1/bills/{id}/mark-paid", h.MarkPaid)
	mux.HandleFunc("POST /api/v1/bills/{id}/charges", h.AddCharge)
	mux.HandleFunc("GET /api/v1/bills/{id}/charges", h.ListCharges)
	mux.HandleFunc("DELETE /api/v1/bills/{id}/charges/{chargeId}", h.RemoveCharge)
}

type billView struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenant_id"`
	ApartmentID     string `json:"apartment_id"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	Rent            string `json:"rent"`
	Electricity     string `json:"electricity"`
	Water           string `json:"water"`
	Gas             string `json:"gas"`
	Internet        string `json:"internet"`
	Trash           string `json:"trash"`
	Parking         string `json:"parking"`
	OtherCharges    string `json:"other_charges"`
	PreviousBalance string `json:"previous_balance"`
	AdvancePayment  string `json:"advance_payment"`
	Total           string `json:"total"`
	IsPaid          bool   `json:"is_paid"`
	DueDate         string `json:"due_date"`
}

func toBillView(b *domain.Bill) billView {
	return billView{
		ID:              b.ID.String(),
		TenantID:        b.TenantID.String(),
		ApartmentID:     b.ApartmentID.String(),
		Year:            b.Year,
		Month:           int(b.Month),
		Rent:            domain.FormatAmount(b.Rent),
		Electricity:     domain.FormatAmount(b.Electricity),
		Water:           domain.FormatAmount(b.Water),
		Gas:             domain.FormatAmount(b.Gas),
		Internet:        domain.FormatAmount(b.Internet),
		Trash:           domain.FormatAmount(b.Trash),
		Parking:         domain.FormatAmount(b.Parking),
		OtherCharges:    domain.FormatAmount(b.OtherCharges),
		PreviousBalance: domain.FormatAmount(b.PreviousBalance),
		AdvancePayment:  domain.FormatAmount(b.AdvancePayment),
		Total:           domain.FormatAmount(b.Total),
		IsPaid:          b.IsPaid,
		DueDate:         b.DueDate.Format("2006-01-02"),
	}
}

type runReportView struct {
	Year     int               `json:"year"`
	Month    int               `json:"month"`
	DueDate  string            `json:"due_date"`
	Bills    []billOutcomeView `json:"bills"`
	Failures []tenantFailView  `json:"failures"`
}

type billOutcomeView struct {
	TenantID string `json:"tenant_id"`
	BillID   string `json:"bill_id"`
	Total    string `json:"total"`
	IsPaid   bool   `json:"is_paid"`
}

type tenantFailView struct {
	TenantID string `json:"tenant_id"`
	Error    string `json:"error"`
}

func toRunReportView(r *billing.RunReport) runReportView {
	v := runReportView{
		Year:     r.Year,
		Month:    int(r.Month),
		DueDate:  r.DueDate.Format("2006-01-02"),
		Bills:    []billOutcomeView{},
		Failures: []tenantFailView{},
	}
	for _, b := range r.Bills {
		v.Bills = append(v.Bills, billOutcomeView{
			TenantID: b.TenantID.String(),
			BillID:   b.BillID.String(),
			Total:    domain.FormatAmount(b.Total),
			IsPaid:   b.IsPaid,
		})
	}
	for _, f := range r.Failures {
		v.Failures = append(v.Failures, tenantFailView{
			TenantID: f.TenantID.String(),
			Error:    f.Err.Error(),
		})
	}
	return v
}

func (h *BillHandler) RunMonthly(w http.ResponseWriter, r *http.Request) {
	report, err := h.billing.RunMonthly(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRunReportView(report))
}

type generateMonthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (h *BillHandler) GenerateForMonth(w http.ResponseWriter, r *http.Request) {
	var req generateMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	report, err := h.billing.GenerateForMonth(r.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRunReportView(report))
}

type generateTenantBillRequest struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	DueDate string `json:"due_date"`
}

func (h *BillHandler) GenerateForTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req generateTenantBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "due_date", Message: "must be YYYY-MM-DD"}})
		return
	}

	bill, err := h.billing.GenerateForTenant(r.Context(), tenantID, req.Year, time.Month(req.Month), dueDate)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toBillView(bill))
}

func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	billID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	bill, err := h.billing.GetBill(r.Context(), billID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBillView(bill))
}

func (h *BillHandler) ListTenantBills(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	bills, err := h.billing.ListTenantBills(r.Context(), tenantID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	views := make([]billView, 0, len(bills))
	for i := range bills {
		views = append(views, toBillView(&bills[i]))
	}
	RespondSuccess(w, http.StatusOK, views)
}

func (h *BillHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	billID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	bill, err := h.billing.MarkBillPaid(r.Context(), billID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBillView(bill))
}

type addChargeRequest struct {
	Name        string  `json:"name"`
	Amount      string  `json:"amount"`
	Description *string `json:"description"`
}

type chargeView struct {
	ID          string  `json:"id"`
	BillID      string  `json:"bill_id"`
	Name        string  `json:"name"`
	Amount      string  `json:"amount"`
	Description *string `json:"description,omitempty"`
}

func toChargeView(c *domain.OtherCharge) chargeView {
	return chargeView{
		ID:          c.ID.String(),
		BillID:      c.BillID.String(),
		Name:        c.Name,
		Amount:      domain.FormatAmount(c.Amount),
		Description: c.Description,
	}
}

func (h *BillHandler) AddCharge(w http.ResponseWriter, r *http.Request) {
	billID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req addChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "amount", Message: "must be a valid decimal amount"}})
		return
	}

	charge, bill, err := h.billing.AddCharge(r.Context(), billID, billing.AddChargeInput{
		Name:        req.Name,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, map[string]any{
		"charge": toChargeView(charge),
		"bill":   toBillView(bill),
	})
}

func (h *BillHandler) ListCharges(w http.ResponseWriter, r *http.Request) {
	billID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	charges, err := h.billing.ListBillCharges(r.Context(), billID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	views := make([]chargeView, 0, len(charges))
	for i := range charges {
		views = append(views, toChargeView(&charges[i]))
	}
	RespondSuccess(w, http.StatusOK, views)
}

func (h *BillHandler) RemoveCharge(w http.ResponseWriter, r *http.Request) {
	billID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	chargeID, ok := pathUUID(w, r, "chargeId")
	if !ok {
		return
	}

	bill, err := h.billing.RemoveCharge(r.Context(), billID, chargeID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBillView(bill))
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: name, Message: "must be a valid UUID"}})
		return uuid.Nil, false
	}
	return id, true
}
