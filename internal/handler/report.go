package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
	"github.com/rentledger/rentledger/internal/logging"
	"github.com/rentledger/rentledger/internal/report"
)

type reportService interface {
	GetBill(ctx context.Context, billID uuid.UUID) (*domain.Bill, error)
	ListBillCharges(ctx context.Context, billID uuid.UUID) ([]domain.OtherCharge, error)
	GetTenantWithApartment(ctx context.Context, tenantID uuid.UUID) (*domain.TenantWithApartment, error)
	ListMonthBills(ctx context.Context, year int, month time.Month) ([]domain.Bill, error)
}

type ReportHandler struct {
	billing reportService
}

func NewReportHandler(billing reportService) *ReportHandler {
	return &ReportHandler{billing: billing}
}

func (h *ReportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/bills/{id}/statement.pdf", h.BillStatementPDF)
	mux.HandleFunc("GET /api/v1/reports/bills.xlsx", h.MonthBillsXLSX)
}

func (h *ReportHandler) BillStatementPDF(w http.ResponseWriter, r *http.Request) {
	billID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	bill, err := h.billing.GetBill(r.Context(), billID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	tw, err := h.billing.GetTenantWithApartment(r.Context(), bill.TenantID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	charges, err := h.billing.ListBillCharges(r.Context(), billID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	pdfBytes, err := report.BuildBillPDF(bill, &tw.Tenant, &tw.Apartment, charges)
	if err != nil {
		log := logging.FromContext(r.Context())
		log.Error("statement pdf build failed", "bill_id", billID, "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="statement-%d-%02d.pdf"`, bill.Year, int(bill.Month)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfBytes); err != nil {
		log := logging.FromContext(r.Context())
		log.Error("statement pdf write failed", "bill_id", billID, "error", err)
	}
}

func (h *ReportHandler) MonthBillsXLSX(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "year", Message: "required integer"}})
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "month", Message: "required integer"}})
		return
	}

	bills, err := h.billing.ListMonthBills(r.Context(), year, time.Month(month))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	xlsxBytes, err := report.BuildMonthXLSX(year, month, bills)
	if err != nil {
		log := logging.FromContext(r.Context())
		log.Error("month report build failed", "year", year, "month", month, "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="bills-%d-%02d.xlsx"`, year, month))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(xlsxBytes); err != nil {
		log := logging.FromContext(r.Context())
		log.Error("month report write failed", "year", year, "month", month, "error", err)
	}
}
