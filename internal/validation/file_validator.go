package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNotWritable is returned when an output directory cannot take new files
	ErrNotWritable = errors.New("not writable")
)

// Table formats understood by the loader and the exporters
const (
	FormatCSV  = ".csv"
	FormatXLSX = ".xlsx"
)

// FileValidator checks the dataset and output paths handed to the commands
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// TableFormat returns the normalized extension of a table file, or
// ErrUnsupportedFormat
func TableFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case FormatCSV, FormatXLSX:
		return ext, nil
	default:
		return "", fmt.Errorf("%w %q, want .csv or .xlsx", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ValidateTableFile checks that path names a readable CSV or XLSX file.
// Errors from os are wrapped so callers can test for fs.ErrNotExist.
func (v *FileValidator) ValidateTableFile(path string) error {
	if _, err := TableFormat(path); err != nil {
		return err
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return fmt.Errorf("file %s is a temporary Excel file: %w", path, ErrUnsupportedFormat)
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile checks the extension of an output table and prepares
// its directory. It returns the normalized format.
func (v *FileValidator) ValidateOutputFile(path string) (string, error) {
	format, err := TableFormat(path)
	if err != nil {
		return "", fmt.Errorf("output: %w", err)
	}
	if err := v.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return "", err
	}
	return format, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// write a throwaway file; permission bits lie on some filesystems
	scratch, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s: %w: %v", dir, ErrNotWritable, err)
	}
	name := scratch.Name()
	scratch.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
