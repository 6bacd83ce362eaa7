// Command cleaner runs the loading and cleaning stages over a dataset file
// and writes the cleaned table as CSV or XLSX.
//
//	cleaner -in train.csv -out cleaned.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"deliverydash/internal/config"
	"deliverydash/internal/dataprocessing"
	"deliverydash/internal/exporter"
	"deliverydash/internal/infrastructure"
	"deliverydash/internal/validation"
	"deliverydash/pkg/contracts/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	}
	cfg.Logging.Output = "stdout"

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		logger = slog.Default()
	}

	defaultIn := cfg.Paths.DataFile
	if paths, err := cfg.GetPaths(); err == nil {
		defaultIn = paths.DataFile
	}

	if err := run(context.Background(), os.Args[1:], defaultIn, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("Cleaning failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run parses args, cleans the input file and writes the output file
func run(ctx context.Context, args []string, defaultIn string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("cleaner", flag.ContinueOnError)
	in := fs.String("in", defaultIn, "dataset to clean (.csv or .xlsx)")
	out := fs.String("out", "cleaned.csv", "output file (.csv or .xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateTableFile(*in); err != nil {
		return fmt.Errorf("input: %w: %w", dataprocessing.ErrDatasetUnavailable, err)
	}
	format, err := validator.ValidateOutputFile(*out)
	if err != nil {
		return err
	}

	start := time.Now()
	df, err := dataprocessing.LoadFile(ctx, *in)
	if err != nil {
		return fmt.Errorf("load %s: %w", *in, err)
	}
	orders, report, err := dataprocessing.Clean(df)
	if err != nil {
		return fmt.Errorf("clean %s: %w", *in, err)
	}

	if err := writeOutput(*out, format, orders, logger); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	logger.InfoContext(ctx, "Dataset cleaned",
		slog.String("input", *in),
		slog.String("output", *out),
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("dropped_sentinel", report.DroppedSentinel),
		slog.Int("dropped_multiple_deliveries", report.DroppedMultipleDeliveries),
		slog.Int("malformed_sentinels", report.MalformedSentinels),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// writeOutput encodes orders into the validated output format
func writeOutput(path, format string, orders []domain.Order, logger *slog.Logger) error {
	if format == validation.FormatXLSX {
		return exporter.WriteWorkbookFile(path, []exporter.Sheet{exporter.OrdersSheet(orders)})
	}
	return exporter.NewCSVWriter(logger).WriteOrders(path, orders)
}
