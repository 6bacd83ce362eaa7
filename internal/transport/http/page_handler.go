package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"slices"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"deliverydash/internal/config"
	apierrors "deliverydash/internal/errors"
	"deliverydash/internal/middleware"
	"deliverydash/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var viewTitles = map[string]string{
	domain.ViewCompany:     "Company",
	domain.ViewCouriers:    "Couriers",
	domain.ViewRestaurants: "Restaurants",
}

// PageOptions configures the HTML pages
type PageOptions struct {
	Dashboard  config.DashboardConfig
	LogoFile   string
	LiveReload bool
}

// PageHandler renders the three dashboard pages and serves the logo
type PageHandler struct {
	service      DashboardService
	validator    *middleware.QueryParamValidator
	opts         PageOptions
	defaults     domain.Filter
	topN         int
	page         *template.Template
	printer      *message.Printer
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler parses the embedded page template
func NewPageHandler(service DashboardService, validator *middleware.QueryParamValidator, opts PageOptions, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*PageHandler, error) {
	page, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	topN := opts.Dashboard.TopN
	if topN <= 0 {
		topN = config.DefaultTopN
	}

	return &PageHandler{
		service:      service,
		validator:    validator,
		opts:         opts,
		defaults:     opts.Dashboard.DefaultFilter(),
		topN:         topN,
		page:         page,
		printer:      message.NewPrinter(language.English),
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
	}, nil
}

// Routes returns the page routes
func (h *PageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/"+domain.ViewCompany, http.StatusTemporaryRedirect)
	})
	for _, view := range domain.Views {
		r.Get("/"+view, h.ServeView(view))
	}
	r.Get("/assets/logo", h.ServeLogo)
	return r
}

// ServeLogo handles GET /assets/logo
func (h *PageHandler) ServeLogo(w http.ResponseWriter, r *http.Request) {
	if !h.logoAvailable() {
		h.errorHandler.HandleError(w, r, apierrors.AssetNotFound("logo"))
		return
	}
	http.ServeFile(w, r, h.opts.LogoFile)
}

func (h *PageHandler) logoAvailable() bool {
	if h.opts.LogoFile == "" {
		return false
	}
	info, err := os.Stat(h.opts.LogoFile)
	return err == nil && !info.IsDir()
}

// ServeView renders one dashboard page
func (h *PageHandler) ServeView(view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, ok := h.validator.ValidateFilter(w, r, h.defaults)
		if !ok {
			return
		}

		data, err := h.build(r, view, filter)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := h.page.Execute(&buf, data); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to render page",
				slog.String("view", view),
				slog.String("error", err.Error()))
			h.errorHandler.HandleError(w, r, apierrors.NewInternalError("Error rendering page"))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
	}
}

type pageData struct {
	View          string
	Title         string
	Meta          string
	Before        string
	SliderMin     string
	SliderMax     string
	Traffic       []trafficOption
	Nav           []navItem
	Tiles         []tile
	Charts        []chartRef
	Tables        []table
	Links         pageLinks
	LogoAvailable bool
	LiveReload    bool
}

type trafficOption struct {
	Level    string
	Selected bool
}

type navItem struct {
	Title  string
	URL    string
	Active bool
}

type tile struct {
	Label string
	Value string
}

type chartRef struct {
	Title   string
	URL     string
	HasData bool
}

type table struct {
	Title  string
	Header []string
	Rows   [][]string
}

type pageLinks struct {
	Workbook  string
	Dashboard string
	Map       string
}

func (h *PageHandler) build(r *http.Request, view string, filter domain.Filter) (*pageData, error) {
	ctx := r.Context()
	query := filterQuery(filter)

	data := &pageData{
		View:          view,
		Title:         viewTitles[view],
		LogoAvailable: h.logoAvailable(),
		LiveReload:    h.opts.LiveReload,
		Links: pageLinks{
			Workbook:  "/api/export/" + view + ".xlsx?" + query,
			Dashboard: "/api/export/dashboard.xlsx?" + query,
		},
	}

	lo, hi := h.opts.Dashboard.SliderBounds()
	data.SliderMin = lo.Format(config.DateLayout)
	if !filter.Before.IsZero() {
		data.Before = filter.Before.Format(config.DateLayout)
		if filter.Before.After(hi) {
			hi = filter.Before
		}
	}
	data.SliderMax = hi.Format(config.DateLayout)

	options := h.opts.Dashboard.TrafficOptions
	if len(options) == 0 {
		options = domain.TrafficLevels
	}
	for _, level := range options {
		data.Traffic = append(data.Traffic, trafficOption{Level: level, Selected: slices.Contains(filter.Traffic, level)})
	}
	for _, v := range domain.Views {
		data.Nav = append(data.Nav, navItem{Title: viewTitles[v], URL: "/" + v + "?" + query, Active: v == view})
	}

	var (
		meta   domain.ViewMeta
		charts []domain.Chart
	)
	switch view {
	case domain.ViewCompany:
		v, err := h.service.Company(ctx, filter)
		if err != nil {
			return nil, err
		}
		meta, charts = v.ViewMeta, v.Charts
		h.companyPage(data, v)
		data.Links.Map = "/api/maps/deliveries.geojson?" + query
	case domain.ViewCouriers:
		v, err := h.service.CouriersTop(ctx, filter, h.topN)
		if err != nil {
			return nil, err
		}
		meta, charts = v.ViewMeta, v.Charts
		h.courierPage(data, v)
	case domain.ViewRestaurants:
		v, err := h.service.Restaurants(ctx, filter)
		if err != nil {
			return nil, err
		}
		meta, charts = v.ViewMeta, v.Charts
		h.restaurantPage(data, v)
	}

	data.Meta = h.printer.Sprintf("%d of %d cleaned orders selected (%d rows loaded), generated %s",
		meta.RowsFiltered, meta.RowsCleaned, meta.RowsLoaded, meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	for _, c := range charts {
		data.Charts = append(data.Charts, chartRef{
			Title:   c.Title,
			URL:     "/api/charts/" + view + "/" + c.ID + "?" + query,
			HasData: chartHasData(c),
		})
	}
	return data, nil
}

func (h *PageHandler) companyPage(data *pageData, v *domain.CompanyView) {
	data.Tiles = []tile{
		{Label: "Orders", Value: h.count(v.RowsFiltered)},
		{Label: "Order days", Value: h.count(len(v.OrdersByDay))},
		{Label: "Weeks", Value: h.count(len(v.OrdersByWeek))},
	}

	share := table{Title: "Orders by traffic density", Header: []string{"Traffic", "Orders", "Share"}}
	for _, s := range v.TrafficShare {
		share.Rows = append(share.Rows, []string{s.Traffic, h.count(s.Orders), h.percent(s.Share)})
	}

	weekly := table{Title: "Orders per courier by week", Header: []string{"Week", "Orders", "Couriers", "Orders per courier"}}
	for _, w := range v.OrdersPerCourierByWeek {
		weekly.Rows = append(weekly.Rows, []string{w.Week, h.count(w.Orders), h.count(w.Couriers), h.decimal(w.OrdersPerCourier)})
	}

	markers := table{Title: "Median delivery locations", Header: []string{"City", "Traffic", "Latitude", "Longitude"}}
	for _, m := range v.Map {
		markers.Rows = append(markers.Rows, []string{m.City, m.Traffic, h.printer.Sprintf("%.6f", m.Location.Lat), h.printer.Sprintf("%.6f", m.Location.Lon)})
	}

	data.Tables = []table{share, weekly, markers}
}

func (h *PageHandler) courierPage(data *pageData, v *domain.CourierView) {
	data.Tiles = []tile{
		{Label: "Oldest courier", Value: h.metric(v.Age.Max)},
		{Label: "Youngest courier", Value: h.metric(v.Age.Min)},
		{Label: "Best vehicle condition", Value: h.metric(v.VehicleCondition.Max)},
		{Label: "Worst vehicle condition", Value: h.metric(v.VehicleCondition.Min)},
	}

	speeds := func(title string, rows []domain.CourierSpeed) table {
		t := table{Title: title, Header: []string{"City", "Courier", "Mean time (min)"}}
		for _, s := range rows {
			t.Rows = append(t.Rows, []string{s.City, s.CourierID, h.decimal(s.MeanTime)})
		}
		return t
	}

	data.Tables = []table{
		speeds("Fastest couriers", v.Fastest),
		speeds("Slowest couriers", v.Slowest),
		h.groupTable("Rating by traffic density", []string{"Traffic"}, v.RatingByTraffic),
		h.groupTable("Rating by weather", []string{"Weather"}, v.RatingByWeather),
	}
}

func (h *PageHandler) restaurantPage(data *pageData, v *domain.RestaurantView) {
	data.Tiles = []tile{
		{Label: "Unique couriers", Value: h.count(v.UniqueCouriers)},
		{Label: "Mean distance (km)", Value: h.metric(v.MeanDistanceKm)},
		{Label: "Festival mean time", Value: h.metric(v.FestivalMeanTime)},
		{Label: "Festival time std", Value: h.metric(v.FestivalStdTime)},
		{Label: "Regular mean time", Value: h.metric(v.RegularMeanTime)},
		{Label: "Regular time std", Value: h.metric(v.RegularStdTime)},
	}
	data.Tables = []table{
		h.groupTable("Delivery time by city and order type", []string{"City", "Order type"}, v.TimeByCityAndOrderType),
	}
}

func (h *PageHandler) groupTable(title string, keys []string, groups []domain.GroupStat) table {
	t := table{Title: title, Header: append(append([]string{}, keys...), "Orders", "Mean", "Std")}
	for _, g := range groups {
		row := append(append([]string{}, g.Keys...), h.count(g.Count), h.metric(g.Mean), h.metric(g.Std))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (h *PageHandler) count(n int) string {
	return h.printer.Sprintf("%d", n)
}

func (h *PageHandler) decimal(v float64) string {
	return h.printer.Sprintf("%.2f", v)
}

func (h *PageHandler) percent(v float64) string {
	return h.printer.Sprintf("%.1f%%", v*100)
}

func (h *PageHandler) metric(m domain.Metric) string {
	if !m.Valid {
		return "-"
	}
	return h.decimal(m.Value)
}

// filterQuery encodes a filter so that it reads back unchanged; an empty
// traffic selection stays empty instead of falling back to the default
func filterQuery(f domain.Filter) string {
	q := url.Values{}
	if !f.Before.IsZero() {
		q.Set("before", f.Before.Format(config.DateLayout))
	}
	if len(f.Traffic) == 0 {
		q.Set("traffic", "")
	}
	for _, t := range f.Traffic {
		q.Add("traffic", t)
	}
	return q.Encode()
}

func chartHasData(c domain.Chart) bool {
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v != 0 {
				return true
			}
		}
	}
	return false
}
