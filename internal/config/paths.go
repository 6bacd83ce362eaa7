package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved, absolute file system locations used by the
// dashboard. It is the single source of truth for file paths.
type Paths struct {
	BaseDir  string
	DataFile string
	LogoFile string
	LogsDir  string
}

// GetPaths resolves the configured paths. Relative entries are joined to
// BaseDir, which itself defaults to the working directory.
func (c *Config) GetPaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:  base,
		DataFile: resolve(c.Paths.DataFile),
		LogoFile: resolve(c.Paths.LogoFile),
		LogsDir:  resolve(c.Paths.LogsDir),
	}, nil
}

// EnsureDirectories creates the directories the dashboard writes to
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.LogsDir,
	}

	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs where every path resolved to
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("dataset", p.DataFile),
			slog.Bool("dataset_exists", FileExists(p.DataFile)),
			slog.String("logo", p.LogoFile),
			slog.Bool("logo_exists", FileExists(p.LogoFile)),
		))
}
