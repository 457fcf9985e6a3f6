package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"companylens/internal/config"
	"companylens/internal/dataprocessing"
	"companylens/internal/infrastructure"
	"companylens/pkg/contracts/domain"
)

// Dataset load outcomes recorded on the dataset_loads_total counter.
const (
	loadResultHit    = "hit"
	loadResultLoaded = "loaded"
	loadResultError  = "error"
)

// Cache keys for the non-table sources.
const (
	sectorMeansKey = "sector_means"
	definitionsKey = "definitions"
)

// cacheEntry is a parsed file together with the file state it was parsed
// from. A changed modification time or size makes the entry stale.
type cacheEntry struct {
	modTime  time.Time
	size     int64
	loadedAt time.Time
	value    any
}

// LoadedTable is a metric table and the time it was read from disk.
type LoadedTable struct {
	Dataset  config.DatasetConfig
	Table    *domain.MetricTable
	LoadedAt time.Time
}

// DatasetRepository reads the configured data files and caches the parsed
// results by path.
type DatasetRepository struct {
	cfg     config.AnalysisConfig
	paths   *config.Paths
	cache   *lru.Cache[string, cacheEntry]
	group   singleflight.Group
	metrics *infrastructure.AnalyticsMetrics
	logger  *slog.Logger
}

// NewDatasetRepository creates a repository over the data directory in
// paths. metrics may be nil.
func NewDatasetRepository(cfg config.AnalysisConfig, paths *config.Paths, metrics *infrastructure.AnalyticsMetrics, logger *slog.Logger) (*DatasetRepository, error) {
	if paths == nil {
		return nil, fmt.Errorf("dataset repository requires resolved paths")
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = len(cfg.Datasets) + 2
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset cache: %w", err)
	}

	repo := &DatasetRepository{
		cfg:     cfg,
		paths:   paths,
		cache:   cache,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "dataset_repository"),
	}

	repo.logger.Info("dataset repository initialized",
		slog.String("data_dir", paths.DataDir),
		slog.Any("datasets", cfg.Datasets.Names()),
		slog.Int("cache_size", size))

	return repo, nil
}

// Datasets returns the configured datasets in order.
func (r *DatasetRepository) Datasets() config.DatasetList {
	return r.cfg.Datasets
}

// Table loads the named dataset. Unknown names return ErrDatasetNotFound.
func (r *DatasetRepository) Table(ctx context.Context, name string) (*LoadedTable, error) {
	ds, ok := r.cfg.Datasets.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}

	opts := dataprocessing.ParseOptions{
		Name:          ds.Name,
		CompanyColumn: r.cfg.CompanyColumn,
		SectorColumn:  r.cfg.SectorColumn,
		Logger:        r.logger,
	}
	entry, err := r.load(ctx, ds.Name, r.paths.DataFile(ds.File), func(path string) (any, error) {
		return dataprocessing.LoadMetricTable(path, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", ds.Name, err)
	}

	return &LoadedTable{
		Dataset:  ds,
		Table:    entry.value.(*domain.MetricTable),
		LoadedAt: entry.loadedAt,
	}, nil
}

// SectorAverages loads the sector means file. The boolean is false when no
// file is configured or the configured file does not exist.
func (r *DatasetRepository) SectorAverages(ctx context.Context) (domain.SectorAverages, bool, error) {
	if r.cfg.SectorMeansFile == "" {
		return nil, false, nil
	}

	entry, err := r.load(ctx, sectorMeansKey, r.paths.DataFile(r.cfg.SectorMeansFile), func(path string) (any, error) {
		return dataprocessing.LoadSectorMeans(path)
	})
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.DebugContext(ctx, "sector means file not found",
			slog.String("file", r.cfg.SectorMeansFile))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load sector means: %w", err)
	}
	return entry.value.(domain.SectorAverages), true, nil
}

// Definitions loads the metric definitions file. A missing file yields an
// empty set.
func (r *DatasetRepository) Definitions(ctx context.Context) (*dataprocessing.MetricDefinitions, error) {
	if r.paths.DefinitionsFile == "" {
		return dataprocessing.NewMetricDefinitions(nil), nil
	}

	entry, err := r.load(ctx, definitionsKey, r.paths.DefinitionsFile, func(path string) (any, error) {
		return dataprocessing.LoadDefinitions(path)
	})
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.DebugContext(ctx, "definitions file not found",
			slog.String("file", r.paths.DefinitionsFile))
		return dataprocessing.NewMetricDefinitions(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	return entry.value.(*dataprocessing.MetricDefinitions), nil
}

// Ready reports whether the data directory can be read.
func (r *DatasetRepository) Ready() error {
	info, err := os.Stat(r.paths.DataDir)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", r.paths.DataDir)
	}
	if _, err := os.ReadDir(r.paths.DataDir); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	return nil
}

// Invalidate drops every cached file.
func (r *DatasetRepository) Invalidate() {
	r.cache.Purge()
}

// load returns the cached entry for path when the file is unchanged and
// parses it otherwise. Concurrent loads of the same path share one parse.
func (r *DatasetRepository) load(ctx context.Context, name, path string, parse func(string) (any, error)) (cacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return cacheEntry{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		r.metrics.RecordDatasetLoad(ctx, name, loadResultError)
		return cacheEntry{}, err
	}

	if entry, ok := r.cache.Get(path); ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		r.metrics.RecordDatasetLoad(ctx, name, loadResultHit)
		return entry, nil
	}

	v, err, _ := r.group.Do(path, func() (interface{}, error) {
		start := time.Now()
		value, err := parse(path)
		if err != nil {
			return nil, err
		}
		entry := cacheEntry{
			modTime:  info.ModTime(),
			size:     info.Size(),
			loadedAt: time.Now(),
			value:    value,
		}
		r.cache.Add(path, entry)

		r.logger.InfoContext(ctx, "data file loaded",
			slog.String("name", name),
			slog.String("path", path),
			slog.Duration("duration", time.Since(start)))
		return entry, nil
	})
	if err != nil {
		r.metrics.RecordDatasetLoad(ctx, name, loadResultError)
		infrastructure.WithError(r.logger, err).ErrorContext(ctx, "failed to load data file",
			slog.String("name", name),
			slog.String("path", path))
		return cacheEntry{}, err
	}

	r.metrics.RecordDatasetLoad(ctx, name, loadResultLoaded)
	return v.(cacheEntry), nil
}
