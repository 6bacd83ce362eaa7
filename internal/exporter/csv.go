package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"deliverydash/internal/dataprocessing"
	"deliverydash/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes CSV files to disk
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file, replacing any previous content
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	return writeFile(filePath, func(out io.Writer) error {
		stream, err := NewStreamWriter(out, options.Headers, options.BOMPrefix)
		if err != nil {
			return err
		}
		for i, record := range options.Records {
			if err := stream.WriteRecord(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		return stream.Flush()
	})
}

// WriteOrders writes the cleaned dataset in the raw column layout
func (w *CSVWriter) WriteOrders(filePath string, orders []domain.Order) error {
	records := dataprocessing.OrderRecords(orders)
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   records[0],
		Records:   records[1:],
		BOMPrefix: true,
	})
}

// writeFile creates filePath and its parent directories, hands the file to
// write and reports the first write or close error.
func writeFile(filePath string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// StreamWriter writes CSV records to any writer, e.g. an HTTP response
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and headers and returns a writer
// for the records that follow
func NewStreamWriter(out io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush writes any buffered records and reports the first write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

// WriteOrdersCSV streams the cleaned dataset to out with a BOM
func WriteOrdersCSV(out io.Writer, orders []domain.Order) error {
	records := dataprocessing.OrderRecords(orders)

	stream, err := NewStreamWriter(out, records[0], true)
	if err != nil {
		return err
	}
	for _, record := range records[1:] {
		if err := stream.WriteRecord(record); err != nil {
			return fmt.Errorf("failed to write order %s: %w", record[0], err)
		}
	}
	return stream.Flush()
}
