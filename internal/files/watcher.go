package files

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	apierrors "deliverydash/internal/errors"
	"deliverydash/internal/infrastructure"
)

// relevantOps are the events that can change what the dataset file holds
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Change describes one settled change of the dataset file
type Change struct {
	Path string
	// Operation is the fsnotify operation of the last event, e.g. "WRITE"
	Operation string
	Events    int
}

// ChangeFunc is called once per settled change
type ChangeFunc func(ctx context.Context, change Change)

// DatasetWatcher reports changes of one file
type DatasetWatcher struct {
	path     string
	debounce time.Duration
	onChange ChangeFunc
	watcher  *fsnotify.Watcher
	metrics  *infrastructure.Metrics
	logger   *slog.Logger
}

// NewDatasetWatcher starts watching the directory of path. metrics may be nil.
func NewDatasetWatcher(path string, debounce time.Duration, onChange ChangeFunc, metrics *infrastructure.Metrics, logger *slog.Logger) (*DatasetWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, apierrors.NewWatchError(fmt.Sprintf("invalid dataset path %q", path), err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apierrors.NewWatchError("failed to create file watcher", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, apierrors.NewWatchError("failed to watch dataset directory", err).
			WithContext("dir", filepath.Dir(abs))
	}

	return &DatasetWatcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		watcher:  watcher,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "dataset_watcher"),
	}, nil
}

// Path returns the absolute path of the watched file
func (w *DatasetWatcher) Path() string {
	return w.path
}

// Run delivers changes until ctx is done or the watcher is closed
func (w *DatasetWatcher) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Watching dataset file",
		slog.String("path", w.path),
		slog.Duration("debounce", w.debounce))

	var (
		timer   *time.Timer
		settled <-chan time.Time
		pending Change
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&relevantOps == 0 || filepath.Clean(event.Name) != w.path {
				continue
			}

			pending.Path = w.path
			pending.Operation = event.Op.String()
			pending.Events++

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			settled = timer.C

		case <-settled:
			settled = nil
			change := pending
			pending = Change{}

			changeCtx := infrastructure.EnsureTraceID(ctx)
			w.metrics.RecordDatasetChange(changeCtx, change.Operation)
			w.logger.InfoContext(changeCtx, "Dataset file changed",
				slog.String("path", change.Path),
				slog.String("operation", change.Operation),
				slog.Int("events", change.Events))

			if w.onChange != nil {
				w.onChange(changeCtx, change)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "File watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close stops the underlying watcher and makes Run return
func (w *DatasetWatcher) Close() error {
	return w.watcher.Close()
}
