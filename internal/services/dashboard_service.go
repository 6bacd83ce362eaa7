package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"deliverydash/internal/dataprocessing"
	apierrors "deliverydash/internal/errors"
	"deliverydash/internal/infrastructure"
	"deliverydash/pkg/contracts/domain"
)

// DashboardOptions configures a DashboardService
type DashboardOptions struct {
	// DataFile is the dataset path, read again on every request
	DataFile string
	// TopN is the number of couriers per city in the ranking tables
	TopN    int
	Tracer  trace.Tracer
	Metrics *infrastructure.Metrics
	Logger  *slog.Logger
}

// DashboardService builds the three dashboard views. Nothing is cached:
// each call loads, cleans, filters and aggregates the dataset file.
type DashboardService struct {
	dataFile string
	topN     int
	tracer   trace.Tracer
	metrics  *infrastructure.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewDashboardService creates a dashboard service
func NewDashboardService(opts DashboardOptions) *DashboardService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	if opts.TopN <= 0 {
		opts.TopN = dataprocessing.DefaultTopN
	}

	opts.Logger.Info("DashboardService initialized",
		slog.String("data_file", opts.DataFile),
		slog.Int("top_n", opts.TopN))

	return &DashboardService{
		dataFile: opts.DataFile,
		topN:     opts.TopN,
		tracer:   opts.Tracer,
		metrics:  opts.Metrics,
		logger:   infrastructure.WithComponent(opts.Logger, "dashboard"),
		now:      time.Now,
	}
}

// aggregateFunc computes one view from the filtered orders
type aggregateFunc func(ctx context.Context, meta domain.ViewMeta, orders []domain.Order) error

// Cleaned loads and cleans the dataset without filtering
func (s *DashboardService) Cleaned(ctx context.Context) ([]domain.Order, dataprocessing.CleanReport, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.cleaned")
	defer span.End()

	orders, report, err := s.loadAndClean(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, report, err
	}
	return orders, report, nil
}

// Company builds the company view
func (s *DashboardService) Company(ctx context.Context, f domain.Filter) (*domain.CompanyView, error) {
	var view *domain.CompanyView
	err := s.pipeline(ctx, domain.ViewCompany, f, func(ctx context.Context, meta domain.ViewMeta, orders []domain.Order) error {
		view = &domain.CompanyView{
			ViewMeta:               meta,
			OrdersByDay:            dataprocessing.OrdersByDay(orders),
			TrafficShare:           dataprocessing.TrafficOrderShare(orders),
			TrafficByCity:          dataprocessing.TrafficOrderCity(orders),
			OrdersByWeek:           dataprocessing.OrdersByWeek(orders),
			OrdersPerCourierByWeek: dataprocessing.OrdersPerCourierByWeek(orders),
			Map:                    dataprocessing.MedianDeliveryLocations(orders),
		}
		view.Charts = CompanyCharts(view)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Couriers builds the courier view with the configured ranking size
func (s *DashboardService) Couriers(ctx context.Context, f domain.Filter) (*domain.CourierView, error) {
	return s.CouriersTop(ctx, f, s.topN)
}

// CouriersTop builds the courier view ranking n couriers per city
func (s *DashboardService) CouriersTop(ctx context.Context, f domain.Filter, n int) (*domain.CourierView, error) {
	if n <= 0 {
		n = s.topN
	}

	var view *domain.CourierView
	err := s.pipeline(ctx, domain.ViewCouriers, f, func(ctx context.Context, meta domain.ViewMeta, orders []domain.Order) error {
		view = &domain.CourierView{
			ViewMeta:         meta,
			Age:              dataprocessing.AgeRange(orders),
			VehicleCondition: dataprocessing.VehicleConditionRange(orders),
			RatingByCourier:  dataprocessing.RatingByCourier(orders),
			RatingByTraffic:  dataprocessing.RatingByTraffic(orders),
			RatingByWeather:  dataprocessing.RatingByWeather(orders),
			Fastest:          dataprocessing.TopCouriers(orders, true, n),
			Slowest:          dataprocessing.TopCouriers(orders, false, n),
		}
		view.Charts = CourierCharts(view)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Restaurants builds the restaurant view
func (s *DashboardService) Restaurants(ctx context.Context, f domain.Filter) (*domain.RestaurantView, error) {
	var view *domain.RestaurantView
	err := s.pipeline(ctx, domain.ViewRestaurants, f, func(ctx context.Context, meta domain.ViewMeta, orders []domain.Order) error {
		view = &domain.RestaurantView{
			ViewMeta:               meta,
			UniqueCouriers:         dataprocessing.UniqueCouriers(orders),
			MeanDistanceKm:         dataprocessing.MeanDistance(orders),
			TimeByCity:             dataprocessing.TimeByCity(orders),
			TimeByCityAndOrderType: dataprocessing.TimeByCityAndOrderType(orders),
			DistanceByCity:         dataprocessing.MeanDistanceByCity(orders),
			TimeByCityAndTraffic:   dataprocessing.TimeByCityAndTraffic(orders),
		}

		tiles := []struct {
			target    *domain.Metric
			flag      string
			statistic dataprocessing.TimeStatistic
		}{
			{&view.FestivalMeanTime, domain.FestivalYes, dataprocessing.AvgTime},
			{&view.FestivalStdTime, domain.FestivalYes, dataprocessing.StdTime},
			{&view.RegularMeanTime, domain.FestivalNo, dataprocessing.AvgTime},
			{&view.RegularStdTime, domain.FestivalNo, dataprocessing.StdTime},
		}
		for _, tile := range tiles {
			m, err := dataprocessing.FestivalTime(orders, tile.flag, tile.statistic)
			if err != nil {
				return fmt.Errorf("festival %s %s: %w", tile.flag, tile.statistic, err)
			}
			*tile.target = m
		}

		view.Charts = RestaurantCharts(view)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// View builds the named view
func (s *DashboardService) View(ctx context.Context, name string, f domain.Filter) (interface{}, error) {
	var (
		view interface{}
		err  error
	)
	switch name {
	case domain.ViewCompany:
		view, err = s.Company(ctx, f)
	case domain.ViewCouriers:
		view, err = s.Couriers(ctx, f)
	case domain.ViewRestaurants:
		view, err = s.Restaurants(ctx, f)
	default:
		return nil, viewNotFound(name)
	}
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Charts returns the chart descriptions of the named view
func (s *DashboardService) Charts(ctx context.Context, name string, f domain.Filter) ([]domain.Chart, error) {
	view, err := s.View(ctx, name, f)
	if err != nil {
		return nil, err
	}

	switch v := view.(type) {
	case *domain.CompanyView:
		return v.Charts, nil
	case *domain.CourierView:
		return v.Charts, nil
	case *domain.RestaurantView:
		return v.Charts, nil
	}
	return nil, nil
}

// pipeline runs load, clean and filter for view, then hands the filtered
// orders to aggregate. Every stage gets its own span and the run is
// recorded on the pipeline metrics.
func (s *DashboardService) pipeline(ctx context.Context, view string, f domain.Filter, aggregate aggregateFunc) (err error) {
	ctx, span := s.tracer.Start(ctx, "pipeline."+view, trace.WithAttributes(
		attribute.String("view", view),
		attribute.StringSlice("filter.traffic", f.Traffic),
	))
	defer span.End()

	start := time.Now()
	run := infrastructure.PipelineRun{View: view, Dropped: map[string]int{}}
	defer func() {
		run.Duration = time.Since(start)
		run.Err = err
		s.metrics.RecordPipelineRun(ctx, run)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			s.logger.ErrorContext(ctx, "pipeline failed",
				slog.String("view", view),
				slog.String("error", err.Error()))
		}
	}()

	orders, report, err := s.loadAndClean(ctx)
	run.Loaded = report.RowsIn
	run.Dropped[infrastructure.DropReasonSentinel] = report.DroppedSentinel
	run.Dropped[infrastructure.DropReasonMultipleDeliveries] = report.DroppedMultipleDeliveries
	if err != nil {
		return err
	}

	_, filterSpan := s.tracer.Start(ctx, "pipeline.filter")
	visible := dataprocessing.ApplyFilter(orders, f)
	filterSpan.SetAttributes(
		attribute.Int("rows.in", len(orders)),
		attribute.Int("rows.out", len(visible)),
	)
	filterSpan.End()
	run.Dropped[infrastructure.DropReasonFilter] = len(orders) - len(visible)

	meta := domain.ViewMeta{
		View:         view,
		Filter:       f,
		RowsLoaded:   report.RowsIn,
		RowsCleaned:  report.RowsOut,
		RowsFiltered: len(visible),
		GeneratedAt:  s.now().UTC(),
	}

	aggCtx, aggSpan := s.tracer.Start(ctx, "pipeline.aggregate")
	err = aggregate(aggCtx, meta, visible)
	if err != nil {
		infrastructure.RecordError(aggCtx, err)
	}
	aggSpan.End()
	if err != nil {
		return apierrors.NewDatasetError("aggregation failed", err).WithContext("view", view)
	}

	s.logger.DebugContext(ctx, "pipeline completed",
		slog.String("view", view),
		slog.Int("rows_loaded", meta.RowsLoaded),
		slog.Int("rows_cleaned", meta.RowsCleaned),
		slog.Int("rows_filtered", meta.RowsFiltered),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (s *DashboardService) loadAndClean(ctx context.Context) ([]domain.Order, dataprocessing.CleanReport, error) {
	loadCtx, loadSpan := s.tracer.Start(ctx, "pipeline.load", trace.WithAttributes(
		attribute.String("data_file", s.dataFile),
	))
	df, err := dataprocessing.LoadFile(loadCtx, s.dataFile)
	if err != nil {
		infrastructure.RecordError(loadCtx, err)
		loadSpan.End()
		return nil, dataprocessing.CleanReport{}, apierrors.NewDatasetError("failed to load dataset", err).
			WithContext("data_file", s.dataFile)
	}
	loadSpan.SetAttributes(attribute.Int("rows", df.Nrow()))
	loadSpan.End()

	cleanCtx, cleanSpan := s.tracer.Start(ctx, "pipeline.clean")
	defer cleanSpan.End()

	orders, report, err := dataprocessing.Clean(df)
	if err != nil {
		infrastructure.RecordError(cleanCtx, err)
		return nil, report, apierrors.NewDatasetError("failed to clean dataset", err)
	}
	cleanSpan.SetAttributes(
		attribute.Int("rows.in", report.RowsIn),
		attribute.Int("rows.out", report.RowsOut),
		attribute.Int("dropped.sentinel", report.DroppedSentinel),
		attribute.Int("dropped.multiple_deliveries", report.DroppedMultipleDeliveries),
	)
	if report.MalformedSentinels > 0 {
		s.logger.WarnContext(ctx, "dataset holds sentinels without trailing space",
			slog.Int("rows", report.MalformedSentinels))
	}
	return orders, report, nil
}
