package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation         = errors.New("validation failed")
	ErrDebtNotFound       = errors.New("debt not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrRateUnavailable    = errors.New("exchange rate unavailable")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeDebtNotFound       = "DEBT_NOT_FOUND"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeRateUnavailable    = "RATE_UNAVAILABLE"
	ErrCodeEmailAlreadyExists = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapValidation(field, reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("field %s: %s", field, reason),
		ErrValidation,
	)
}

func WrapDebtNotFound(debtID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDebtNotFound,
		fmt.Sprintf("Debt with ID %s not found", debtID),
		ErrDebtNotFound,
	)
}

func WrapInvalidTransition(current, requested string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("cannot move debt from %s to %s", current, requested),
		ErrInvalidTransition,
	)
}

func WrapRateUnavailable(from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeRateUnavailable,
		fmt.Sprintf("no exchange rate has been obtained for %s/%s", from, to),
		ErrRateUnavailable,
	)
}

func WrapEmailAlreadyExists(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeEmailAlreadyExists,
		fmt.Sprintf("email %s is already registered", email),
		ErrEmailAlreadyExists,
	)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCredentials,
		"incorrect email or password",
		ErrInvalidCredentials,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
