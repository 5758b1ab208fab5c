package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that a write was based on a stale view of the entity history.
var ErrConflict = errors.New("conflicting write")

// ErrOverpayment indicates that a new payment exceeds the remaining invoice balance.
var ErrOverpayment = errors.New("payment exceeds remaining balance")

// ErrInternal is returned when a lower layer failed in a way the caller cannot fix.
var ErrInternal = errors.New("internal error")

// ValidationError describes malformed input rejected at a mutation boundary.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// OverpaymentError is returned when a new payment would push the paid total above the invoice total.
type OverpaymentError struct {
	InvoiceID string
	Attempted decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("%s: invoice %s has %s remaining, payment of %s rejected",
		ErrOverpayment.Error(), e.InvoiceID, e.Remaining.StringFixed(2), e.Attempted.StringFixed(2))
}

// Is lets errors.Is(err, ErrOverpayment) match.
func (e *OverpaymentError) Is(target error) bool {
	return target == ErrOverpayment
}

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError. A nil cause on a 5xx code is replaced by ErrInternal
// so callers can still match it.
func NewAppError(code int, message string, err error) *AppError {
	if err == nil && code >= http.StatusInternalServerError {
		err = ErrInternal
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NewConflictError creates an AppError wrapping ErrConflict.
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrConflict}
}

// NewNotFoundError creates an AppError wrapping ErrNotFound.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: resource + " not found", Err: ErrNotFound}
}
