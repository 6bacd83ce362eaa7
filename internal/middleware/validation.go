package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"deliverydash/internal/config"
	apierrors "deliverydash/internal/errors"
	"deliverydash/pkg/contracts/domain"
)

// FilterQuery is the sidebar selection as it arrives on the query string
type FilterQuery struct {
	Before  string   `json:"before" validate:"omitempty,datetime=2006-01-02"`
	Traffic []string `json:"traffic" validate:"dive,traffic"`
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	v := validator.New()

	v.RegisterValidation("traffic", isTrafficLevel)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryParamValidator{
		validator:    v,
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateStruct validates a struct and returns validation errors
func (v *QueryParamValidator) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// ValidateFilter reads before and traffic from the query string on top of
// defaults. An absent traffic parameter keeps the default selection; a
// present but empty one ("traffic=") selects nothing.
func (v *QueryParamValidator) ValidateFilter(w http.ResponseWriter, r *http.Request, defaults domain.Filter) (domain.Filter, bool) {
	query := r.URL.Query()

	fq := FilterQuery{Before: strings.TrimSpace(query.Get("before"))}
	raw, selected := query["traffic"]
	fq.Traffic = make([]string, 0, len(raw))
	for _, value := range raw {
		if value = strings.TrimSpace(value); value != "" {
			fq.Traffic = append(fq.Traffic, value)
		}
	}

	if err := v.ValidateStruct(fq); err != nil {
		v.logger.WarnContext(r.Context(), "invalid filter",
			slog.String("query", r.URL.RawQuery),
			slog.String("error", err.Error()),
		)
		v.errorHandler.HandleError(w, r, err)
		return domain.Filter{}, false
	}

	filter := domain.Filter{
		Before:  defaults.Before,
		Traffic: slices.Clone(defaults.Traffic),
	}
	if fq.Before != "" {
		// already validated against the same layout
		before, _ := time.Parse(config.DateLayout, fq.Before)
		filter.Before = before
	}
	if selected {
		filter.Traffic = fq.Traffic
	}
	return filter, true
}

// ValidateInt validates an integer query parameter
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max int, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}

	if intValue < min || intValue > max {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be between %d and %d", param, min, max)))
		return 0, false
	}

	return intValue, true
}

// ValidateEnum validates an enum query parameter
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	if slices.Contains(allowed, value) {
		return value, true
	}

	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, param)
	case "traffic":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(domain.TrafficLevels, ", "))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isTrafficLevel accepts the four traffic densities
func isTrafficLevel(fl validator.FieldLevel) bool {
	return slices.Contains(domain.TrafficLevels, fl.Field().String())
}
