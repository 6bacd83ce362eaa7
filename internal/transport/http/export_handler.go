package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"deliverydash/internal/config"
	apierrors "deliverydash/internal/errors"
	"deliverydash/internal/middleware"
	"deliverydash/pkg/contracts/domain"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler serves the cleaned dataset and the views as downloads
type ExportHandler struct {
	service      ExportService
	validator    *middleware.QueryParamValidator
	defaults     domain.Filter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates an export handler
func NewExportHandler(service ExportService, validator *middleware.QueryParamValidator, dashboard config.DashboardConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		defaults:     dashboard.DefaultFilter(),
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/cleaned.csv", h.CleanedCSV)
	r.Get("/dashboard.xlsx", h.DashboardWorkbook)
	r.Get("/{view}.xlsx", h.ViewWorkbook)

	return r
}

// CleanedCSV handles GET /api/export/cleaned.csv
func (h *ExportHandler) CleanedCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.CleanedCSV(r.Context(), &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.send(w, r, "cleaned.csv", contentTypeCSV, &buf)
}

// ViewWorkbook handles GET /api/export/{view}.xlsx
func (h *ExportHandler) ViewWorkbook(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	if !slices.Contains(domain.Views, view) {
		h.errorHandler.HandleError(w, r, apierrors.ViewNotFound(view, domain.Views))
		return
	}

	filter, ok := h.validator.ValidateFilter(w, r, h.defaults)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ViewWorkbook(r.Context(), view, filter, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.send(w, r, fmt.Sprintf("%s-%s.xlsx", view, time.Now().Format("20060102")), contentTypeXLSX, &buf)
}

// DashboardWorkbook handles GET /api/export/dashboard.xlsx
func (h *ExportHandler) DashboardWorkbook(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.validator.ValidateFilter(w, r, h.defaults)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.DashboardWorkbook(r.Context(), filter, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.send(w, r, fmt.Sprintf("dashboard-%s.xlsx", time.Now().Format("20060102")), contentTypeXLSX, &buf)
}

// send writes a finished file as an attachment
func (h *ExportHandler) send(w http.ResponseWriter, r *http.Request, filename, contentType string, buf *bytes.Buffer) {
	h.logger.InfoContext(r.Context(), "serving export",
		slog.String("request_id", chimw.GetReqID(r.Context())),
		slog.String("filename", filename),
		slog.Int("bytes", buf.Len()),
	)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
