package utils

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrGatewayError         = errors.New("payment gateway error")
	ErrDatabaseError        = errors.New("database error")
	ErrMissingSignature     = errors.New("missing signature header")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	ErrUnauthorized         = errors.New("unauthorized")
)

// Both are validation errors to callers.
var (
	ErrInvalidTransition = fmt.Errorf("%w: invalid subscription status transition", ErrValidation)
	ErrRenewNotAllowed   = fmt.Errorf("%w: only cancelled subscriptions can be renewed", ErrValidation)
)

// FieldError carries field-level detail for a validation failure. It
// matches ErrValidation under errors.Is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}
