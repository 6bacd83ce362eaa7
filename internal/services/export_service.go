package services

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	apierrors "deliverydash/internal/errors"
	"deliverydash/internal/exporter"
	"deliverydash/internal/infrastructure"
	"deliverydash/pkg/contracts/domain"
)

// ExportService writes the cleaned dataset and the views as files
type ExportService struct {
	dashboard *DashboardService
	logger    *slog.Logger
}

// NewExportService creates an export service on top of dashboard
func NewExportService(dashboard *DashboardService, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		dashboard: dashboard,
		logger:    infrastructure.WithComponent(logger, "export"),
	}
}

// CleanedCSV writes the cleaned, unfiltered dataset as CSV
func (s *ExportService) CleanedCSV(ctx context.Context, w io.Writer) error {
	orders, report, err := s.dashboard.Cleaned(ctx)
	if err != nil {
		return err
	}

	if err := exporter.WriteOrdersCSV(w, orders); err != nil {
		return apierrors.NewExportError("failed to write cleaned csv", err)
	}

	s.logger.InfoContext(ctx, "cleaned dataset exported",
		slog.String("format", "csv"),
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut))
	return nil
}

// ViewWorkbook writes one view as an XLSX workbook
func (s *ExportService) ViewWorkbook(ctx context.Context, view string, f domain.Filter, w io.Writer) error {
	sheets, err := s.viewSheets(ctx, view, f)
	if err != nil {
		return err
	}
	return s.writeWorkbook(ctx, view, sheets, w)
}

// DashboardWorkbook writes all three views into one workbook. The views are
// built concurrently and each reads the dataset file on its own.
func (s *ExportService) DashboardWorkbook(ctx context.Context, f domain.Filter, w io.Writer) error {
	parts := make([][]exporter.Sheet, len(domain.Views))

	g, gctx := errgroup.WithContext(ctx)
	for i, view := range domain.Views {
		g.Go(func() error {
			sheets, err := s.viewSheets(gctx, view, f)
			if err != nil {
				return err
			}
			parts[i] = sheets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var sheets []exporter.Sheet
	for _, p := range parts {
		sheets = append(sheets, p...)
	}
	return s.writeWorkbook(ctx, "dashboard", sheets, w)
}

func (s *ExportService) viewSheets(ctx context.Context, view string, f domain.Filter) ([]exporter.Sheet, error) {
	switch view {
	case domain.ViewCompany:
		v, err := s.dashboard.Company(ctx, f)
		if err != nil {
			return nil, err
		}
		return exporter.CompanySheets(v), nil
	case domain.ViewCouriers:
		v, err := s.dashboard.Couriers(ctx, f)
		if err != nil {
			return nil, err
		}
		return exporter.CourierSheets(v), nil
	case domain.ViewRestaurants:
		v, err := s.dashboard.Restaurants(ctx, f)
		if err != nil {
			return nil, err
		}
		return exporter.RestaurantSheets(v), nil
	default:
		return nil, viewNotFound(view)
	}
}

func (s *ExportService) writeWorkbook(ctx context.Context, name string, sheets []exporter.Sheet, w io.Writer) error {
	if err := exporter.WriteWorkbook(w, sheets); err != nil {
		return apierrors.NewExportError("failed to write workbook", err).WithContext("workbook", name)
	}

	s.logger.InfoContext(ctx, "workbook exported",
		slog.String("workbook", name),
		slog.Int("sheets", len(sheets)))
	return nil
}
