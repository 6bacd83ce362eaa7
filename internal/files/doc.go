// Package files watches the dataset file on disk.
//
// DatasetWatcher follows the directory holding the file rather than the file
// itself, so saves that replace the file through a rename are still seen.
// Bursts of events are collapsed into one change once the file has been quiet
// for the debounce interval.
//
//	w, err := files.NewDatasetWatcher(path, 500*time.Millisecond, onChange, metrics, logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	go w.Run(ctx)
package files
