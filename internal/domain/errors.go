package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrTenantInactive  = errors.New("tenant is not active")
	ErrTenantClosed    = errors.New("tenant account already closed")
	ErrInvalidMonth    = errors.New("month must be between 1 and 12")
	ErrInvalidYear     = errors.New("year is out of range")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrBillAlreadyPaid = errors.New("bill already marked as paid")
	ErrChargeNotOnBill = errors.New("charge does not belong to this bill")
	ErrVersionConflict = errors.New("optimistic lock conflict")
	ErrInvalidRequest  = errors.New("invalid request")
)
