// Package shared groups helpers used across the dashboard packages.
//
// The testutil subpackage holds the sample delivery dataset fixtures and a
// buffered slog handler for asserting on log records:
//
//	func TestSomething(t *testing.T) {
//		logger, handler := testutil.NewTestLogger(t)
//		dataFile := testutil.WriteSampleDataset(t)
//		// ...
//		testutil.AssertLogContains(t, handler, slog.LevelInfo, "Dataset loaded")
//	}
package shared
