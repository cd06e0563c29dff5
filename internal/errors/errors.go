// Package errors provides custom error types for the fincoach client core.
// All store-, analysis- and coordinator-layer errors should use AppError so
// callers can branch on a stable code while the UI shows a readable message.
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

// Core taxonomy.
var (
	ErrUnauthenticated = &AppError{Code: "UNAUTHENTICATED", Message: "Not authenticated - please login again", StatusCode: http.StatusUnauthorized}
	ErrUnavailable     = &AppError{Code: "UNAVAILABLE", Message: "Cannot reach the backing store", StatusCode: http.StatusServiceUnavailable}
	ErrInvalidRequest  = &AppError{Code: "INVALID_REQUEST", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound        = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConflict        = &AppError{Code: "CONFLICT", Message: "Store constraint violation", StatusCode: http.StatusConflict}
	ErrInternal        = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Authentication errors.
var (
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid phone number or password", StatusCode: http.StatusUnauthorized}
	ErrDuplicatePhone     = &AppError{Code: "DUPLICATE_PHONE", Message: "A user with this phone number already exists", StatusCode: http.StatusConflict}
)

// Entity not-found errors.
var (
	ErrUserNotFound           = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrProfileNotFound        = &AppError{Code: "PROFILE_NOT_FOUND", Message: "User profile not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrRecommendationNotFound = &AppError{Code: "RECOMMENDATION_NOT_FOUND", Message: "Recommendation not found", StatusCode: http.StatusNotFound}
	ErrBudgetNotFound         = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found or you do not have permission to update it", StatusCode: http.StatusNotFound}
	ErrAccountNotFound        = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Bank account not found", StatusCode: http.StatusNotFound}
	ErrTaxRecordNotFound      = &AppError{Code: "TAX_RECORD_NOT_FOUND", Message: "Tax record not found", StatusCode: http.StatusNotFound}
	ErrSchemeNotFound         = &AppError{Code: "SCHEME_NOT_FOUND", Message: "Government scheme not found", StatusCode: http.StatusNotFound}
	ErrApplicationNotFound    = &AppError{Code: "APPLICATION_NOT_FOUND", Message: "Scheme application not found", StatusCode: http.StatusNotFound}
	ErrActionNotFound         = &AppError{Code: "ACTION_NOT_FOUND", Message: "Scheduled action not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Transaction type must be income or expense", StatusCode: http.StatusBadRequest}
)

// Scheduled-action errors.
var (
	ErrInvalidStatusChange = &AppError{Code: "INVALID_STATUS_CHANGE", Message: "Scheduled action cannot move to the requested status", StatusCode: http.StatusBadRequest}
)

// Remote-analysis errors.
var (
	ErrAnalysisNotFound    = &AppError{Code: "ANALYSIS_NOT_FOUND", Message: "No analysis found for this user", StatusCode: http.StatusNotFound}
	ErrAnalysisUnavailable = &AppError{Code: "ANALYSIS_UNAVAILABLE", Message: "Cannot reach the analysis service", StatusCode: http.StatusServiceUnavailable}
	ErrAnalysisFailed      = &AppError{Code: "ANALYSIS_FAILED", Message: "Analysis failed", StatusCode: http.StatusBadGateway}
	ErrAnalysisTimeout     = &AppError{Code: "ANALYSIS_TIMEOUT", Message: "Analysis timeout", StatusCode: http.StatusGatewayTimeout}
)
