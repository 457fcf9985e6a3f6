// Package services implements the business logic between the HTTP
// handlers and the data files.
//
// # Services
//
//	- DatasetRepository: loads metric tables, sector means and metric
//	  definitions from the data directory behind an LRU cache that is
//	  invalidated when a file's modification time or size changes
//	- DashboardService: builds per-company dashboards, dataset similarity
//	  indexes and sector benchmarks
//	- HealthService: health, readiness, liveness and version reporting
//
// # Dataflow
//
// A dashboard request resolves the sector membership from the membership
// dataset and the sector averages from the sector means file (or from the
// membership dataset when no file is configured). Each dataset is then
// evaluated concurrently with errgroup:
//
//	for each dataset (parallel):
//	    table := repo.Table(dataset)
//	    if ticker not in table: section{found: false}
//	    index := similarity.ComputeWithOptions(table, threshold, opts)
//	    rows  := one row per metric with a present value
//
// Sections are returned in configured order regardless of completion
// order.
//
// # Errors
//
// Services return sentinel errors wrapped with context:
//
//	if errors.Is(err, services.ErrTickerNotFound) { ... }
//	if errors.Is(err, domain.ErrNotFound) { ... }   // any lookup failure
//
// Data files that cannot be opened surface the underlying fs error, so
// errors.Is(err, fs.ErrNotExist) holds for a missing dataset file.
//
// # Logging
//
// Every service takes a *slog.Logger and derives a component logger from
// it. Context-aware methods (InfoContext, ErrorContext, ...) are used so
// the trace id handler can attach trace_id.
package services
