package apperrors

import "errors"

// Generic errors the middleware maps to status codes
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Fee errors
var (
	ErrFeeTypeNotFound         = errors.New("fee type not found")
	ErrFeeTypeAlreadyExists    = errors.New("fee type with this code already exists")
	ErrFeeTypeInUse            = errors.New("fee type is used by fee definitions and cannot be deleted")
	ErrFeeDefinitionNotFound   = errors.New("fee definition not found")
	ErrFeeDefinitionInUse      = errors.New("fee definition has assignments or payment items and cannot be deleted")
	ErrFeeAssignmentNotFound   = errors.New("fee assignment not found")
	ErrPaymentItemNotFound     = errors.New("payment item not found")
	ErrPaymentScheduleNotFound = errors.New("payment schedule not found")
)

// School structure errors
var (
	ErrClassNotFound         = errors.New("class not found")
	ErrDivisionNotFound      = errors.New("division not found")
	ErrDivisionAlreadyExists = errors.New("division with this name already exists in the class")
	ErrDivisionHasStudents   = errors.New("division has enrolled students and cannot be deleted")
	ErrBusStopNotFound       = errors.New("bus stop not found")
)

// Wallet errors
var (
	ErrWalletNotFound         = errors.New("wallet not found")
	ErrWalletInactive         = errors.New("wallet is not active")
	ErrInsufficientBalance    = errors.New("insufficient wallet balance")
	ErrDailyLimitExceeded     = errors.New("daily spending limit exceeded")
	ErrInvalidTopupAmount     = errors.New("invalid topup amount")
	ErrInvalidPurchaseDetails = errors.New("invalid purchase details")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
