package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"companylens/internal/config"
	"companylens/internal/exporter"
	"companylens/internal/infrastructure"
	"companylens/internal/services"
	"companylens/internal/validation"
	"companylens/pkg/contracts/domain"
)

type reportOptions struct {
	Ticker    string
	Threshold float64
	// SignAware is nil unless -sign-aware was given, leaving the
	// configured value in force.
	SignAware *bool
	Out       string
}

func main() {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	opts, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	if err := run(ctx, cfg, opts, os.Stdout, logger); err != nil {
		logger.Error("Report failed", slog.String("ticker", opts.Ticker), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// parseFlags reads the command line. A negative threshold means "use the
// configured default".
func parseFlags(fs *flag.FlagSet, args []string) (reportOptions, error) {
	var opts reportOptions
	var signAware bool
	fs.StringVar(&opts.Ticker, "ticker", "", "company ticker to report on (required)")
	fs.Float64Var(&opts.Threshold, "threshold", -1, "relative difference threshold (defaults to the configured value)")
	fs.BoolVar(&signAware, "sign-aware", false, "never group values of opposite sign (defaults to the configured value)")
	fs.StringVar(&opts.Out, "out", "", "write the dashboard to this CSV file (relative paths go to the reports directory)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "sign-aware" {
			opts.SignAware = &signAware
		}
	})
	if opts.Ticker == "" {
		return opts, errors.New("-ticker is required")
	}
	return opts, nil
}

func run(ctx context.Context, cfg *config.Config, opts reportOptions, stdout io.Writer, logger *slog.Logger) error {
	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}

	metrics := infrastructure.NoopAnalyticsMetrics()
	repo, err := services.NewDatasetRepository(cfg.Analysis, paths, metrics, logger)
	if err != nil {
		return err
	}
	svc, err := services.NewDashboardService(repo, cfg.Analysis, metrics, logger)
	if err != nil {
		return err
	}

	query := services.QueryOptions{SignAware: opts.SignAware}
	if opts.Threshold >= 0 {
		query.Threshold = &opts.Threshold
	}

	dashboard, err := svc.CompanyDashboard(ctx, opts.Ticker, query)
	if err != nil {
		return err
	}

	if err := printDashboard(stdout, dashboard); err != nil {
		return err
	}

	if opts.Out != "" {
		target := paths.ReportFile(opts.Out)
		if err := validation.NewFileValidator(logger).ValidateOutputDirectory(filepath.Dir(target)); err != nil {
			return err
		}
		written, err := exporter.NewCSVWriter(paths, logger).WriteDashboard(opts.Out, dashboard)
		if err != nil {
			return err
		}
		logger.Info("Dashboard exported", slog.String("path", written))
	}
	return nil
}

func printDashboard(w io.Writer, d *domain.Dashboard) error {
	fmt.Fprintf(w, "%s (%s) threshold=%s sign_aware=%t\n\n",
		d.Ticker, sectorLabel(d.Sector), exporter.FormatValue(d.Threshold), d.SignAware)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tMETRIC\tVALUE\tSIMILAR\tINDUSTRY AVG")
	for _, record := range exporter.DashboardRecords(d) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", record[0], record[1], record[2], record[3], record[4])
	}
	return tw.Flush()
}

func sectorLabel(sector string) string {
	if sector == "" {
		return "no sector"
	}
	return sector
}
