package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStateTransition indicates an operation attempted from a
	// payment status that forbids it
	ErrInvalidStateTransition = errors.New("invalid payment state transition")

	// ErrMissingEntitlement indicates a revert attempted on a payment
	// with no entitlement quantity baseline
	ErrMissingEntitlement = errors.New("payment has no entitlement quantity set")
)

// InvalidDeliveredQuantityError is returned when a gateway record
// carries no payout amount for a status that requires one
type InvalidDeliveredQuantityError struct {
	RemoteID   string
	StatusCode string
}

func (e *InvalidDeliveredQuantityError) Error() string {
	return fmt.Sprintf("invalid delivered quantity for record %q (status %q)", e.RemoteID, e.StatusCode)
}

// NewInvalidDeliveredQuantityError creates a new InvalidDeliveredQuantityError
func NewInvalidDeliveredQuantityError(remoteID, statusCode string) *InvalidDeliveredQuantityError {
	return &InvalidDeliveredQuantityError{RemoteID: remoteID, StatusCode: statusCode}
}

// InvalidPaymentStatusError is returned when a gateway record carries
// an unrecognized status code
type InvalidPaymentStatusError struct {
	RemoteID   string
	StatusCode string
}

func (e *InvalidPaymentStatusError) Error() string {
	return fmt.Sprintf("unrecognized payment gateway status %q for record %s", e.StatusCode, e.RemoteID)
}

// NewInvalidPaymentStatusError creates a new InvalidPaymentStatusError
func NewInvalidPaymentStatusError(remoteID, statusCode string) *InvalidPaymentStatusError {
	return &InvalidPaymentStatusError{RemoteID: remoteID, StatusCode: statusCode}
}
