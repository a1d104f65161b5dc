package errors

import "errors"

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

// Booking workflow failures. Callers attach detail with fmt.Errorf("%w: ...").
var (
	ErrNotFound                 = errors.New("not found")
	ErrInvalidState             = errors.New("operation is not allowed in the current state")
	ErrExpired                  = errors.New("reservation has expired")
	ErrValidation               = errors.New("validation failed")
	ErrPaymentDeclined          = errors.New("payment was declined")
	ErrPaymentMethodUnavailable = errors.New("payment method is not available for user")
	ErrReferentialConflict      = errors.New("entity has active dependents")
	ErrInsufficientInventory    = errors.New("not enough seats available")
	ErrSeatUnavailable          = errors.New("seat is not available")
	ErrCheckInTooEarly          = errors.New("check-in is not available yet")
	ErrCheckInClosed            = errors.New("check-in window has closed")
	ErrConflict                 = errors.New("resource already exists")
	ErrDuplicateRequest         = errors.New("request is already being processed")
)
