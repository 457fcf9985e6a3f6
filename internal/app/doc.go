// Package app wires the dashboard server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Resolve paths and create the reports and logs directories
//	2. Initialize OpenTelemetry and the analytics instruments
//	3. Create the dataset repository, dashboard and health services
//	4. Build the chi router and middleware chain
//	5. Configure the HTTP server
//
// # Routes
//
// Everything lives under /api: health and version probes, the Prometheus
// scrape endpoint, datasets, similarity indexes, company dashboards,
// sector benchmarks and metric definitions. Unknown routes answer with
// RFC 7807 problem details.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down within
// the configured shutdown timeout.
package app
