package infrastructure

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Drop reasons reported on pipeline_rows_dropped_total
const (
	DropReasonSentinel           = "sentinel"
	DropReasonMultipleDeliveries = "multiple_deliveries"
	DropReasonFilter             = "filter"
)

// Metrics holds the instruments recorded by the HTTP layer and the pipeline
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Pipeline metrics
	PipelineRunsTotal   metric.Int64Counter
	PipelineDuration    metric.Float64Histogram
	PipelineRowsLoaded  metric.Int64Counter
	PipelineRowsDropped metric.Int64Counter

	// Live reload metrics
	DatasetChanges   metric.Int64Counter
	WebSocketClients metric.Int64UpDownCounter
}

// PipelineRun describes one load, clean, filter and aggregate pass
type PipelineRun struct {
	View     string
	Duration time.Duration
	Loaded   int
	// Dropped maps a drop reason to the rows it removed
	Dropped map[string]int
	Err     error
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var errs []error

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	updown := func(name, desc string) metric.Int64UpDownCounter {
		c, err := meter.Int64UpDownCounter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}

	m.HTTPRequestsTotal = counter("http_requests_total", "Total number of HTTP requests")
	m.HTTPRequestDuration = seconds("http_request_duration_seconds", "HTTP request duration in seconds")
	m.HTTPActiveRequests = updown("http_active_requests", "Number of active HTTP requests")

	m.PipelineRunsTotal = counter("pipeline_runs_total", "Total number of dataset pipeline runs")
	m.PipelineDuration = seconds("pipeline_duration_seconds", "Dataset pipeline duration in seconds")
	m.PipelineRowsLoaded = counter("pipeline_rows_loaded_total", "Rows read from the dataset file")
	m.PipelineRowsDropped = counter("pipeline_rows_dropped_total", "Rows removed by cleaning or filtering")

	m.DatasetChanges = counter("dataset_changes_total", "Dataset file changes observed on disk")
	m.WebSocketClients = updown("websocket_clients", "Number of connected live reload clients")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordPipelineRun records the outcome of one pipeline pass
func (m *Metrics) RecordPipelineRun(ctx context.Context, run PipelineRun) {
	if m == nil {
		return
	}

	status := "success"
	if run.Err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("view", run.View),
		attribute.String("status", status),
	)

	m.PipelineRunsTotal.Add(ctx, 1, attrs)
	m.PipelineDuration.Record(ctx, run.Duration.Seconds(), attrs)
	m.PipelineRowsLoaded.Add(ctx, int64(run.Loaded), metric.WithAttributes(attribute.String("view", run.View)))

	for reason, n := range run.Dropped {
		if n == 0 {
			continue
		}
		m.PipelineRowsDropped.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("view", run.View),
			attribute.String("reason", reason),
		))
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("pipeline.metrics_recorded",
			trace.WithAttributes(
				attribute.String("view", run.View),
				attribute.Bool("success", run.Err == nil),
				attribute.Float64("duration_seconds", run.Duration.Seconds()),
			),
		)
	}
}

// RecordDatasetChange counts one observed change of the dataset file
func (m *Metrics) RecordDatasetChange(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.DatasetChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordWebSocketClients adjusts the connected client gauge by delta
func (m *Metrics) RecordWebSocketClients(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketClients.Add(ctx, delta)
}
