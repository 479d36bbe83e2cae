// Package errors provides custom error types for the subtracker API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}

	ErrInvalidAPIKey      = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrAdminNotConfigured = &AppError{Code: "ADMIN_NOT_CONFIGURED", Message: "Admin endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput        = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound            = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer      = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrInvalidReference    = &AppError{Code: "INVALID_REFERENCE", Message: "A referenced record does not exist", StatusCode: http.StatusBadRequest}
	ErrConstraintViolation = &AppError{Code: "CONSTRAINT_VIOLATION", Message: "The change violates a data constraint", StatusCode: http.StatusConflict}
	ErrServiceUnavailable  = &AppError{Code: "SERVICE_UNAVAILABLE", Message: "Could not connect to the database", StatusCode: http.StatusServiceUnavailable}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrDuplicatePhone = &AppError{Code: "DUPLICATE_PHONE", Message: "A user with this phone number already exists", StatusCode: http.StatusConflict}
	ErrUserInUse      = &AppError{Code: "USER_IN_USE", Message: "User still has accounts, tokens or transactions", StatusCode: http.StatusConflict}
)

// Bank account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Bank account not found", StatusCode: http.StatusNotFound}
	ErrAccountExists   = &AppError{Code: "ACCOUNT_EXISTS", Message: "User already has a bank account", StatusCode: http.StatusConflict}
	ErrAccountInUse    = &AppError{Code: "ACCOUNT_IN_USE", Message: "Bank account is used by existing transactions", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name and type already exists", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound      = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType   = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrInvalidTransactionSource = &AppError{Code: "INVALID_TRANSACTION_SOURCE", Message: "Unsupported transaction source", StatusCode: http.StatusBadRequest}
	ErrCategoryTypeMismatch     = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Transaction type does not match the category type", StatusCode: http.StatusBadRequest}
	ErrAmountSignMismatch       = &AppError{Code: "AMOUNT_SIGN_MISMATCH", Message: "Income must be positive, expense negative and transfers non-zero", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount            = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must have at most two decimal places and fit in 13 integer digits", StatusCode: http.StatusBadRequest}
)

// Ledger errors.
var (
	ErrInvalidLedgerFile = &AppError{Code: "INVALID_LEDGER_FILE", Message: "Upload a UTF-8 encoded .ledger file", StatusCode: http.StatusBadRequest}
	ErrEmptyLedger       = &AppError{Code: "EMPTY_LEDGER", Message: "The ledger file contains no transactions", StatusCode: http.StatusBadRequest}
	ErrNoTransactions    = &AppError{Code: "NO_TRANSACTIONS", Message: "No transactions found for the specified date range", StatusCode: http.StatusNotFound}
)
