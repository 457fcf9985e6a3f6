package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"companylens/internal/benchmark"
	"companylens/internal/config"
	"companylens/internal/dataprocessing"
	"companylens/internal/exporter"
	"companylens/internal/infrastructure"
	"companylens/internal/similarity"
	api "companylens/pkg/contracts/api/v1"
	"companylens/pkg/contracts/domain"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.]{2,10}$`)

// indexCacheSize bounds the number of similarity indexes kept per service.
const indexCacheSize = 64

// DatasetSource is the data access the dashboard service depends on.
// DatasetRepository is the production implementation.
type DatasetSource interface {
	Datasets() config.DatasetList
	Table(ctx context.Context, name string) (*LoadedTable, error)
	SectorAverages(ctx context.Context) (domain.SectorAverages, bool, error)
	Definitions(ctx context.Context) (*dataprocessing.MetricDefinitions, error)
}

// QueryOptions overrides the configured analysis settings for one call.
// Nil fields fall back to the configuration.
type QueryOptions struct {
	Threshold *float64
	SignAware *bool
	Strategy  similarity.Strategy
}

// indexKey identifies a computed similarity index. LoadedAt changes
// whenever the dataset file is re-read, which retires older entries.
type indexKey struct {
	dataset   string
	loadedAt  time.Time
	threshold float64
	signAware bool
	strategy  similarity.Strategy
}

// DashboardService derives dashboards, similarity indexes and benchmarks
// from the configured datasets.
type DashboardService struct {
	source  DatasetSource
	cfg     config.AnalysisConfig
	indexes *lru.Cache[indexKey, domain.SimilarityIndex]
	metrics *infrastructure.AnalyticsMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewDashboardService creates a dashboard service. metrics may be nil.
func NewDashboardService(source DatasetSource, cfg config.AnalysisConfig, metrics *infrastructure.AnalyticsMetrics, logger *slog.Logger) (*DashboardService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	indexes, err := lru.New[indexKey, domain.SimilarityIndex](indexCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create similarity cache: %w", err)
	}
	return &DashboardService{
		source:  source,
		cfg:     cfg,
		indexes: indexes,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dashboard_service")),
		now:     time.Now,
	}, nil
}

// NormalizeTicker trims and upper-cases ticker and checks its format.
func NormalizeTicker(ticker string) (string, error) {
	t := domain.NormalizeCompany(ticker)
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	return t, nil
}

// resolve applies opts over the configured defaults and validates the
// threshold.
func (s *DashboardService) resolve(opts QueryOptions) (float64, similarity.Options, error) {
	threshold := s.cfg.Threshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
		return 0, similarity.Options{}, &domain.ValidationError{
			Field:   "threshold",
			Message: fmt.Sprintf("threshold must be a finite number >= 0, got %v", threshold),
			Value:   threshold,
			Err:     similarity.ErrNegativeThreshold,
		}
	}

	simOpts := similarity.Options{SignAware: s.cfg.SignAware, Strategy: opts.Strategy}
	if opts.SignAware != nil {
		simOpts.SignAware = *opts.SignAware
	}
	return threshold, simOpts, nil
}

// CompanyDashboard builds the dashboard of ticker across every configured
// dataset. Datasets are evaluated concurrently; sections keep configured
// order. A dataset that fails to load yields a section carrying the error
// while the others are still built; the call fails only when every dataset
// fails. A ticker present in no dataset returns ErrTickerNotFound.
func (s *DashboardService) CompanyDashboard(ctx context.Context, ticker string, opts QueryOptions) (*domain.Dashboard, error) {
	company, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	threshold, simOpts, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	membership, averages := s.sectorContext(ctx)
	defs, err := s.source.Definitions(ctx)
	if err != nil {
		return nil, err
	}

	datasets := s.source.Datasets()
	sections := make([]domain.DashboardSection, len(datasets))
	loadErrs := make([]error, len(datasets))

	g, gctx := errgroup.WithContext(ctx)
	for i, ds := range datasets {
		g.Go(func() error {
			section, loadErr, err := s.section(gctx, ds, company, threshold, simOpts, membership, averages, defs)
			if err != nil {
				return err
			}
			sections[i] = section
			loadErrs[i] = loadErr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := allFailed(loadErrs); err != nil {
		return nil, err
	}

	dashboard := &domain.Dashboard{
		Ticker:      company,
		Threshold:   threshold,
		SignAware:   simOpts.SignAware,
		Sections:    sections,
		GeneratedAt: s.now().UTC(),
	}
	if sector, ok := benchmark.SectorOf(company, membership); ok {
		dashboard.Sector = sector
	}

	if !dashboard.Found() {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, company)
	}

	s.logger.InfoContext(ctx, "dashboard built",
		slog.String("ticker", company),
		slog.Float64("threshold", threshold),
		slog.Bool("sign_aware", simOpts.SignAware),
		slog.Int("sections", len(sections)))

	return dashboard, nil
}

// allFailed returns the first error when every entry of errs is non-nil.
func allFailed(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		if err == nil {
			return nil
		}
	}
	return errs[0]
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// section builds the section of one dataset. A load failure is reported as
// loadErr with the section's Error set; err is reserved for failures that
// abort the whole dashboard.
func (s *DashboardService) section(ctx context.Context, ds config.DatasetConfig, company string, threshold float64, opts similarity.Options, membership domain.SectorMembership, averages domain.SectorAverages, defs *dataprocessing.MetricDefinitions) (section domain.DashboardSection, loadErr error, err error) {
	section = domain.DashboardSection{Dataset: ds.Name, Title: ds.Title, Rows: []domain.MetricRow{}}

	loaded, err := s.source.Table(ctx, ds.Name)
	if err != nil {
		if isContextError(err) {
			return section, nil, err
		}
		s.logger.WarnContext(ctx, "dataset unavailable for dashboard",
			slog.String("dataset", ds.Name),
			slog.String("error", err.Error()))
		section.Error = fmt.Sprintf("Error loading %s", ds.Title)
		return section, err, nil
	}
	row, ok := loaded.Table.Row(company)
	if !ok {
		return section, nil, nil
	}
	section.Found = true

	index, err := s.index(ctx, loaded, threshold, opts)
	if err != nil {
		return section, nil, err
	}

	benchmarks := benchmark.Resolve(company, membership, averages, loaded.Table.Metrics)
	s.recordBenchmarks(ctx, benchmarks)

	for _, metric := range loaded.Table.Metrics {
		v, ok := row.Value(metric).Get()
		if !ok {
			continue
		}
		peers := index.Similar(company, metric)
		similar := make([]string, len(peers))
		copy(similar, peers)

		section.Rows = append(section.Rows, domain.MetricRow{
			Metric:           metric,
			Value:            exporter.FormatValue(v),
			RawValue:         v,
			SimilarCompanies: similar,
			IndustryAverage:  exporter.FormatValue(benchmarks[metric]),
			Benchmark:        benchmarks[metric],
			Definition:       defs.Definition(metric),
		})
	}
	return section, nil, nil
}

// index returns the similarity index of loaded, computing it at most once
// per file version and option set.
func (s *DashboardService) index(ctx context.Context, loaded *LoadedTable, threshold float64, opts similarity.Options) (domain.SimilarityIndex, error) {
	key := indexKey{
		dataset:   loaded.Dataset.Name,
		loadedAt:  loaded.LoadedAt,
		threshold: threshold,
		signAware: opts.SignAware,
		strategy:  opts.Strategy,
	}
	if idx, ok := s.indexes.Get(key); ok {
		return idx, nil
	}

	start := time.Now()
	idx, err := similarity.ComputeWithOptions(loaded.Table, threshold, opts)
	s.metrics.RecordSimilarity(ctx, loaded.Dataset.Name, opts.Strategy.String(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("similarity for %s: %w", loaded.Dataset.Name, err)
	}

	s.indexes.Add(key, idx)
	return idx, nil
}

// sectorContext returns the sector membership and the sector averages.
// Averages come from the sector means file when one exists and are
// computed from the membership dataset otherwise. Sources that fail to
// load leave membership or averages empty, so benchmarks become
// unavailable instead of failing the request.
func (s *DashboardService) sectorContext(ctx context.Context) (domain.SectorMembership, domain.SectorAverages) {
	var table *domain.MetricTable
	if s.cfg.MembershipDataset != "" {
		loaded, err := s.source.Table(ctx, s.cfg.MembershipDataset)
		if err != nil {
			s.logger.WarnContext(ctx, "sector membership unavailable",
				slog.String("dataset", s.cfg.MembershipDataset),
				slog.String("error", err.Error()))
		} else {
			table = loaded.Table
		}
	}
	membership := benchmark.MembershipFromTable(table)

	averages, ok, err := s.source.SectorAverages(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "sector averages unavailable",
			slog.String("error", err.Error()))
		ok = false
	}
	switch {
	case !ok:
		averages = benchmark.AveragesFromTable(table)
	case s.cfg.FillMissingAverages:
		averages = benchmark.Merge(averages, benchmark.AveragesFromTable(table))
	}
	return membership, averages
}

func (s *DashboardService) recordBenchmarks(ctx context.Context, result domain.BenchmarkResult) {
	available := 0
	for _, b := range result {
		if b.Available {
			available++
		}
	}
	s.metrics.RecordBenchmark(ctx, available, len(result)-available)
}

// Similarity returns the full similarity index of one dataset. The index is
// a copy; callers may modify it without affecting cached results.
func (s *DashboardService) Similarity(ctx context.Context, dataset string, opts QueryOptions) (*api.SimilarityResponse, error) {
	threshold, simOpts, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}
	loaded, err := s.source.Table(ctx, dataset)
	if err != nil {
		return nil, err
	}
	index, err := s.index(ctx, loaded, threshold, simOpts)
	if err != nil {
		return nil, err
	}
	return &api.SimilarityResponse{
		Dataset:   loaded.Dataset.Name,
		Threshold: threshold,
		SignAware: simOpts.SignAware,
		Companies: loaded.Table.Len(),
		Index:     index.Clone(),
	}, nil
}

// Benchmark resolves the sector benchmark of ticker for every metric of
// every dataset that contains it.
func (s *DashboardService) Benchmark(ctx context.Context, ticker string) (*api.BenchmarkResponse, error) {
	company, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	membership, averages := s.sectorContext(ctx)

	datasets := s.source.Datasets()
	loadErrs := make([]error, len(datasets))
	var metrics []string
	seen := make(map[string]bool)
	found := false
	for i, ds := range datasets {
		loaded, err := s.source.Table(ctx, ds.Name)
		if err != nil {
			if isContextError(err) {
				return nil, err
			}
			loadErrs[i] = err
			continue
		}
		if !loaded.Table.HasCompany(company) {
			continue
		}
		found = true
		for _, m := range loaded.Table.Metrics {
			if !seen[m] {
				seen[m] = true
				metrics = append(metrics, m)
			}
		}
	}
	if err := allFailed(loadErrs); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, company)
	}

	result := benchmark.Resolve(company, membership, averages, metrics)
	s.recordBenchmarks(ctx, result)

	resp := &api.BenchmarkResponse{Ticker: company, Benchmarks: result}
	if sector, ok := benchmark.SectorOf(company, membership); ok {
		resp.Sector = sector
	}
	return resp, nil
}

// Datasets summarises every configured dataset.
func (s *DashboardService) Datasets(ctx context.Context) ([]domain.DatasetSummary, error) {
	datasets := s.source.Datasets()
	summaries := make([]domain.DatasetSummary, 0, len(datasets))
	for _, ds := range datasets {
		loaded, err := s.source.Table(ctx, ds.Name)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.DatasetSummary{
			Name:      ds.Name,
			Title:     ds.Title,
			File:      ds.File,
			Companies: loaded.Table.Len(),
			Metrics:   loaded.Table.Metrics,
			LoadedAt:  loaded.LoadedAt,
		})
	}
	return summaries, nil
}

// Definition looks up a metric definition. Unknown metrics report false
// with the NoDefinition text.
func (s *DashboardService) Definition(ctx context.Context, metric string) (domain.MetricDefinition, bool, error) {
	defs, err := s.source.Definitions(ctx)
	if err != nil {
		return domain.MetricDefinition{}, false, err
	}
	def, ok := defs.Lookup(metric)
	if !ok {
		return domain.MetricDefinition{Name: metric, Definition: dataprocessing.NoDefinition}, false, nil
	}
	return def, true, nil
}
