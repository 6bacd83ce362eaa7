package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried in the error_code extension
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeViewNotFound     = "VIEW_NOT_FOUND"
	CodeChartNotFound    = "CHART_NOT_FOUND"
	CodeAssetNotFound    = "ASSET_NOT_FOUND"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents one invalid request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// NotFoundError reports a missing resource such as a disabled endpoint
func NotFoundError(resource string) *APIError {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ViewNotFound lists the known views alongside the rejected name
func ViewNotFound(view string, views []string) *APIError {
	return NewWithDetails(
		http.StatusNotFound,
		CodeViewNotFound,
		fmt.Sprintf("View '%s' not found", view),
		map[string]interface{}{"views": views},
	)
}

// ChartNotFound reports a chart missing from a view, or one the current
// selection left empty.
func ChartNotFound(view, chart, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("Chart '%s' not found in view '%s'", chart, view)
	}
	return NewWithDetails(
		http.StatusNotFound,
		CodeChartNotFound,
		message,
		map[string]interface{}{"view": view, "chart": chart},
	)
}

// AssetNotFound reports a static asset that is not configured
func AssetNotFound(asset string) *APIError {
	return NewWithDetails(
		http.StatusNotFound,
		CodeAssetNotFound,
		fmt.Sprintf("Asset '%s' not found", asset),
		map[string]interface{}{"asset": asset},
	)
}

// NewInternalError creates a simple internal server error
func NewInternalError(message string) *APIError {
	return New(http.StatusInternalServerError, CodeInternal, message)
}
