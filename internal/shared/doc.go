// Package shared holds helpers used across the dashboard packages that do
// not belong to any one layer.
//
// The testutil subpackage provides:
//
//   - A capturing slog handler for asserting on log output
//   - Dataset fixtures written to a temporary data directory
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    dir := testutil.WriteDataDir(t)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelWarn, "duplicate company")
//	}
//
// Nothing here may import business packages; shared sits below every
// other internal package.
package shared
