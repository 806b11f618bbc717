package domain

import "errors"

var (
	ErrInvalidWindow            = errors.New("invalid booking window")
	ErrSpotNotFound             = errors.New("spot not found")
	ErrSpotUnavailable          = errors.New("spot unavailable for the requested window")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrInsufficientFunds        = errors.New("insufficient wallet balance")
	ErrPaymentDeclined          = errors.New("card payment declined")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrInvalidState             = errors.New("operation not allowed in current booking state")
	ErrReconciliationRequired   = errors.New("payment settled but booking commit failed; manual reconciliation required")
	ErrBookingNotFound          = errors.New("booking not found")
	ErrForbidden                = errors.New("booking belongs to another user")
	ErrPaymentMethodNotFound    = errors.New("payment method not found")
	ErrInvalidCardMetadata      = errors.New("invalid card metadata")
	ErrInvalidID                = errors.New("invalid id")
)
