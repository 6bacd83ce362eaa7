package http

import (
	"context"
	"io"

	"deliverydash/pkg/contracts/domain"
)

// DashboardService builds the dashboard views
type DashboardService interface {
	Company(ctx context.Context, f domain.Filter) (*domain.CompanyView, error)
	CouriersTop(ctx context.Context, f domain.Filter, n int) (*domain.CourierView, error)
	Restaurants(ctx context.Context, f domain.Filter) (*domain.RestaurantView, error)
	Charts(ctx context.Context, view string, f domain.Filter) ([]domain.Chart, error)
}

// ExportService writes the cleaned dataset and the views as files
type ExportService interface {
	CleanedCSV(ctx context.Context, w io.Writer) error
	ViewWorkbook(ctx context.Context, view string, f domain.Filter, w io.Writer) error
	DashboardWorkbook(ctx context.Context, f domain.Filter, w io.Writer) error
}
