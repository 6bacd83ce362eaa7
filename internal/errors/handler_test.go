package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverydash/internal/dataprocessing"
	"deliverydash/internal/shared/testutil"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestNewErrorHandler(t *testing.T) {
	for _, includeStack := range []bool{true, false} {
		t.Run(strconv.FormatBool(includeStack), func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			handler := NewErrorHandler(logger, includeStack)

			assert.Equal(t, includeStack, handler.includeStack)
			assert.NotNil(t, handler.logger)
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	coercion := &dataprocessing.CoercionError{
		Row:    3,
		Column: "Delivery_person_Age",
		Value:  "thirty",
		Err:    strconv.ErrSyntax,
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
		wantExt    map[string]interface{}
		wantLevel  slog.Level
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "dataset missing",
			err:        fmt.Errorf("load: %w", fmt.Errorf("%w: %w", dataprocessing.ErrDatasetUnavailable, fs.ErrNotExist)),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataNotFound,
			wantTitle:  "Dataset Unavailable",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "coercion failure",
			err:        fmt.Errorf("clean: %w", coercion),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataCorrupted,
			wantTitle:  "Dataset Corrupted",
			wantExt: map[string]interface{}{
				"row":    float64(3),
				"column": "Delivery_person_Age",
				"value":  "thirty",
			},
			wantLevel: slog.LevelWarn,
		},
		{
			name:       "missing column",
			err:        &dataprocessing.MissingColumnError{Columns: []string{"City"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataCorrupted,
			wantExt:    map[string]interface{}{"columns": []interface{}{"City"}},
			wantTitle:  "Dataset Corrupted",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "malformed table",
			err:        fmt.Errorf("%w: ragged rows", dataprocessing.ErrDatasetMalformed),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataCorrupted,
			wantTitle:  "Dataset Corrupted",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "dataset error wrapped in an AppError",
			err:        NewDatasetError("company view", dataprocessing.ErrDatasetUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataNotFound,
			wantTitle:  "Dataset Unavailable",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "validation APIError",
			err:        ErrValidation("before", "before must be a date"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
			wantExt:    map[string]interface{}{"error_code": "VALIDATION_FAILED"},
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "unknown view",
			err:        ViewNotFound("weekly", []string{"company", "city"}),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Not Found",
			wantExt:    map[string]interface{}{"error_code": "VIEW_NOT_FOUND"},
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "empty chart",
			err:        ChartNotFound("city", "time_by_city", "The current selection leaves the chart without data"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Not Found",
			wantExt:    map[string]interface{}{"error_code": "CHART_NOT_FOUND", "detail": "The current selection leaves the chart without data"},
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "missing logo",
			err:        AssetNotFound("logo"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Not Found",
			wantExt:    map[string]interface{}{"error_code": "ASSET_NOT_FOUND"},
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "AppError not found",
			err:        NewNotFoundError("chart orders_by_day", nil),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Not Found",
			wantExt:    map[string]interface{}{"error_type": "NOT_FOUND"},
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "export failure",
			err:        NewExportError("write workbook", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
			wantTitle:  "Internal Server Error",
			wantLevel:  slog.LevelError,
		},
		{
			name:       "plain not found message",
			err:        errors.New("logo not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Resource Not Found",
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/views/company", nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-1"))
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/views/company", body["instance"])
			assert.Equal(t, "req-1", body["trace_id"])
			assert.NotContains(t, body, "stack")
			for k, v := range tt.wantExt {
				assert.Equal(t, v, body[k], "extension %s", k)
			}

			testutil.AssertLogContains(t, logs, tt.wantLevel, "request failed")
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		logger, logs := testutil.NewTestLogger(t)
		rec := httptest.NewRecorder()

		NewErrorHandler(logger, false).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

		assert.Zero(t, rec.Body.Len())
		assert.Zero(t, logs.Count())
	})

	t.Run("stack in development", func(t *testing.T) {
		logger, _ := testutil.NewTestLogger(t)
		rec := httptest.NewRecorder()

		NewErrorHandler(logger, true).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))

		assert.Contains(t, decodeBody(t, rec), "stack")
	})
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{name: "production", includeStack: false},
		{name: "development", includeStack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, tt.includeStack)

			rec := httptest.NewRecorder()
			handler.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/company", nil), "nil map")

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, TypeInternal, body["type"])
			if tt.includeStack {
				assert.Equal(t, "nil map", body["panic"])
				assert.Contains(t, body, "stack")
			} else {
				assert.NotContains(t, body, "panic")
			}
			testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
		})
	}
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeBody(t, rec)["type"])

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/views/company", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}

func TestErrorHandler_JSON(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.JSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusAccepted, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestGetStackTrace(t *testing.T) {
	assert.Contains(t, getStackTrace(), "TestGetStackTrace")
}
