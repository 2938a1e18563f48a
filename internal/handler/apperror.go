package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidMonth    = &AppError{http.StatusBadRequest, "INVALID_MONTH", "Month must be between 1 and 12"}
	ErrInvalidYear     = &AppError{http.StatusBadRequest, "INVALID_YEAR", "Year is out of range"}
	ErrInvalidAmount   = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrNegativeAmount  = &AppError{http.StatusBadRequest, "NEGATIVE_AMOUNT", "Amount must not be negative"}
	ErrInvalidMethod   = &AppError{http.StatusBadRequest, "INVALID_PAYMENT_METHOD", "Invalid payment method"}
	ErrTenantInactive  = &AppError{http.StatusUnprocessableEntity, "TENANT_INACTIVE", "Tenant is not active"}
	ErrTenantClosed    = &AppError{http.StatusConflict, "TENANT_ALREADY_CLOSED", "Tenant account already closed"}
	ErrBillAlreadyPaid = &AppError{http.StatusConflict, "BILL_ALREADY_PAID", "Bill already marked as paid"}
	ErrChargeNotOnBill = &AppError{http.StatusUnprocessableEntity, "CHARGE_NOT_ON_BILL", "Charge does not belong to this bill"}
	ErrVersionConflict = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
)
