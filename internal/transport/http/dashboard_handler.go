package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"deliverydash/internal/charts"
	"deliverydash/internal/config"
	apierrors "deliverydash/internal/errors"
	"deliverydash/internal/infrastructure"
	"deliverydash/internal/middleware"
	"deliverydash/pkg/contracts/domain"
)

// Chart image size bounds in pixels
const (
	minChartSize = 200
	maxChartSize = 2000
)

// maxTopN bounds the courier ranking length
const maxTopN = 50

// DashboardHandler serves the views as JSON, their charts as images and the
// company map as GeoJSON
type DashboardHandler struct {
	service      DashboardService
	validator    *middleware.QueryParamValidator
	defaults     domain.Filter
	topN         int
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler. Filters absent from the
// query string fall back to the dashboard defaults.
func NewDashboardHandler(service DashboardService, validator *middleware.QueryParamValidator, dashboard config.DashboardConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	topN := dashboard.TopN
	if topN <= 0 {
		topN = config.DefaultTopN
	}
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		defaults:     dashboard.DefaultFilter(),
		topN:         topN,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON), h.ViewCtx).Get("/views/{view}", h.GetView)
	r.With(h.ViewCtx).Get("/charts/{view}/{chart}", h.GetChart)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/maps/deliveries.geojson", h.GetDeliveryMap)

	return r
}

// ViewCtx rejects unknown view names
func (h *DashboardHandler) ViewCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view := chi.URLParam(r, "view")
		if !slices.Contains(domain.Views, view) {
			h.errorHandler.HandleError(w, r, apierrors.ViewNotFound(view, domain.Views))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetView handles GET /api/views/{view}
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")

	filter, ok := h.validator.ValidateFilter(w, r, h.defaults)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "building view",
		slog.String("request_id", chimw.GetReqID(r.Context())),
		slog.String("view", view),
		slog.Time("before", filter.Before),
		slog.Any("traffic", filter.Traffic),
	)
	infrastructure.SetSpanAttributes(r.Context(), map[string]interface{}{
		"dashboard.view":    view,
		"dashboard.traffic": len(filter.Traffic),
	})

	var (
		result interface{}
		err    error
	)
	switch view {
	case domain.ViewCompany:
		result, err = h.service.Company(r.Context(), filter)
	case domain.ViewCouriers:
		top, ok := h.validator.ValidateInt(w, r, "top", 1, maxTopN, h.topN)
		if !ok {
			return
		}
		result, err = h.service.CouriersTop(r.Context(), filter, top)
	case domain.ViewRestaurants:
		result, err = h.service.Restaurants(r.Context(), filter)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// GetChart handles GET /api/charts/{view}/{chart}?format=svg|png
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	chartID := chi.URLParam(r, "chart")

	format, ok := h.validator.ValidateEnum(w, r, "format", charts.Formats, string(charts.FormatSVG))
	if !ok {
		return
	}
	width, ok := h.validator.ValidateInt(w, r, "width", minChartSize, maxChartSize, charts.DefaultOptions.Width)
	if !ok {
		return
	}
	height, ok := h.validator.ValidateInt(w, r, "height", minChartSize, maxChartSize, charts.DefaultOptions.Height)
	if !ok {
		return
	}
	filter, ok := h.validator.ValidateFilter(w, r, h.defaults)
	if !ok {
		return
	}

	all, err := h.service.Charts(r.Context(), view, filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	chart, found := domain.FindChart(all, chartID)
	if !found {
		h.errorHandler.HandleError(w, r, apierrors.ChartNotFound(view, chartID, ""))
		return
	}

	var buf bytes.Buffer
	err = charts.Render(&buf, chart, charts.Format(format), charts.Options{Width: width, Height: height})
	switch {
	case errors.Is(err, charts.ErrNoData):
		h.errorHandler.HandleError(w, r, apierrors.ChartNotFound(view, chartID, "The current selection leaves the chart without data"))
		return
	case err != nil:
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("failed to render chart", err).
			WithContext("chart", chartID))
		return
	}

	w.Header().Set("Content-Type", charts.ContentType(charts.Format(format)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetDeliveryMap handles GET /api/maps/deliveries.geojson. Each feature is
// the median delivery location of one city and traffic pair.
func (h *DashboardHandler) GetDeliveryMap(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.validator.ValidateFilter(w, r, h.defaults)
	if !ok {
		return
	}

	view, err := h.service.Company(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, MarkersToGeoJSON(view.Map))
}

// MarkersToGeoJSON converts map markers to a feature collection
func MarkersToGeoJSON(markers []domain.MapMarker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Location.Lon, m.Location.Lat})
		f.Properties["city"] = m.City
		f.Properties["traffic"] = m.Traffic
		fc.Append(f)
	}
	return fc
}
