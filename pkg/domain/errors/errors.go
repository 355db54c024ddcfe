package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the planning core and its outer surfaces
const (
	CodeDataInsufficient       = "DATA_INSUFFICIENT"
	CodeInvalidCalendarWeek    = "INVALID_CALENDAR_WEEK"
	CodeModelFitting           = "MODEL_FITTING_FAILED"
	CodeMissingTechnology      = "MISSING_TECHNOLOGY"
	CodeEnhancementUnavailable = "ENHANCEMENT_UNAVAILABLE"
	CodeUnsupportedModelType   = "UNSUPPORTED_MODEL_TYPE"
	CodeValidationError        = "VALIDATION_ERROR"
	CodeNotFound               = "RESOURCE_NOT_FOUND"
	CodeInternalError          = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrDataInsufficient       = &AppError{Code: CodeDataInsufficient}
	ErrInvalidCalendar        = &AppError{Code: CodeInvalidCalendarWeek}
	ErrModelFitting           = &AppError{Code: CodeModelFitting}
	ErrMissingTechnology      = &AppError{Code: CodeMissingTechnology}
	ErrEnhancementUnavailable = &AppError{Code: CodeEnhancementUnavailable}
	ErrUnsupportedModel       = &AppError{Code: CodeUnsupportedModelType}
	ErrValidationFailed       = &AppError{Code: CodeValidationError}
	ErrResourceNotFound       = &AppError{Code: CodeNotFound}
)

// AppError is a coded error carrying an HTTP status for the API surface
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a single detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap attaches the underlying cause
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates a new AppError
func NewAppError(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ErrInsufficientData reports too few observations for a computation
func ErrInsufficientData(message string) *AppError {
	return NewAppError(CodeDataInsufficient, message, http.StatusUnprocessableEntity)
}

// ErrInvalidCalendarWeek reports a (year, week) pair that is not a valid ISO week
func ErrInvalidCalendarWeek(year, week int) *AppError {
	return NewAppError(CodeInvalidCalendarWeek,
		fmt.Sprintf("invalid ISO calendar week: year %d, week %d", year, week),
		http.StatusBadRequest).
		WithDetail("year", fmt.Sprint(year)).
		WithDetail("week", fmt.Sprint(week))
}

// ErrModelFittingFailed reports a per-product model failure
func ErrModelFittingFailed(productID int64, err error) *AppError {
	return NewAppError(CodeModelFitting,
		fmt.Sprintf("model fitting failed for product %d", productID),
		http.StatusUnprocessableEntity).
		WithDetail("product_id", fmt.Sprint(productID)).
		Wrap(err)
}

// ErrNoTechnology reports a product with no bill of materials
func ErrNoTechnology(productID int64) *AppError {
	return NewAppError(CodeMissingTechnology,
		fmt.Sprintf("no technology defined for product %d", productID),
		http.StatusUnprocessableEntity).
		WithDetail("product_id", fmt.Sprint(productID))
}

// ErrEnhancementNotAvailable reports an optional enrichment source that failed
func ErrEnhancementNotAvailable(what string, err error) *AppError {
	return NewAppError(CodeEnhancementUnavailable,
		fmt.Sprintf("%s unavailable", what),
		http.StatusServiceUnavailable).
		Wrap(err)
}

// ErrUnsupportedModelType reports an unknown or unavailable forecasting model
func ErrUnsupportedModelType(model, reason string) *AppError {
	return NewAppError(CodeUnsupportedModelType,
		fmt.Sprintf("unsupported model type %q: %s", model, reason),
		http.StatusBadRequest).
		WithDetail("model_type", model)
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrInternal creates an internal error
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message, http.StatusInternalServerError)
}

// AsAppError extracts an AppError from err, mapping unknown errors to internal ones
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus == 0 {
			appErr.HTTPStatus = http.StatusInternalServerError
		}
		return appErr
	}
	return ErrInternal("").Wrap(err)
}
