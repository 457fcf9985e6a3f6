package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "CLENS"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against BaseDir, or the executable directory when BaseDir is empty.
type PathsConfig struct {
	BaseDir         string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir         string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir      string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
	LogsDir         string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	DefinitionsFile string `yaml:"definitions_file" envconfig:"DEFINITIONS_FILE" default:"definitions.json"`
}

// DatasetConfig names one financial statement table and its source file
// (relative to the data directory).
type DatasetConfig struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	File  string `yaml:"file"`
}

// AnalysisConfig contains similarity and benchmark settings
type AnalysisConfig struct {
	Threshold float64 `yaml:"threshold" envconfig:"THRESHOLD" default:"0.1"`
	SignAware bool    `yaml:"sign_aware" envconfig:"SIGN_AWARE" default:"false"`
	// Datasets is "name=file" pairs from the environment, e.g.
	// "financial_data=financial_data.csv,cash_flow=cash_flow.csv".
	Datasets          DatasetList `yaml:"datasets" envconfig:"DATASETS" default:"financial_data=financial_data.csv,balance_sheets=balance_sheets.csv,cash_flow=cash_flow.csv"`
	SectorMeansFile   string      `yaml:"sector_means_file" envconfig:"SECTOR_MEANS_FILE" default:"sector_means.csv"`

	// FillMissingAverages fills sectors and metrics the sector means file
	// lacks with means computed from the membership dataset.
	FillMissingAverages bool `yaml:"fill_missing_averages" envconfig:"FILL_MISSING_AVERAGES" default:"false"`

	MembershipDataset string `yaml:"membership_dataset" envconfig:"MEMBERSHIP_DATASET" default:"financial_data"`
	CompanyColumn     string `yaml:"company_column" envconfig:"COMPANY_COLUMN" default:"ticker"`
	SectorColumn      string `yaml:"sector_column" envconfig:"SECTOR_COLUMN" default:"sector"`
	CacheSize         int    `yaml:"cache_size" envconfig:"CACHE_SIZE" default:"16"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
}

// DatasetList is an ordered list of datasets. It decodes from the
// environment as comma separated name=file pairs.
type DatasetList []DatasetConfig

// Decode implements envconfig.Decoder
func (d *DatasetList) Decode(value string) error {
	var out DatasetList
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, file, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(file) == "" {
			return fmt.Errorf("invalid dataset entry %q, want name=file", part)
		}
		name = strings.TrimSpace(name)
		out = append(out, DatasetConfig{Name: name, Title: titleFromName(name), File: strings.TrimSpace(file)})
	}
	*d = out
	return nil
}

// Names returns dataset names in configured order.
func (d DatasetList) Names() []string {
	out := make([]string, len(d))
	for i, ds := range d {
		out[i] = ds.Name
	}
	return out
}

// Files returns dataset file names in configured order.
func (d DatasetList) Files() []string {
	out := make([]string, len(d))
	for i, ds := range d {
		out[i] = ds.File
	}
	return out
}

// Find looks a dataset up by name.
func (d DatasetList) Find(name string) (DatasetConfig, bool) {
	for _, ds := range d {
		if ds.Name == name {
			return ds, true
		}
	}
	return DatasetConfig{}, false
}

// titleFromName turns "balance_sheets" into "Balance Sheets".
func titleFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	for i := range cfg.Analysis.Datasets {
		if cfg.Analysis.Datasets[i].Title == "" {
			cfg.Analysis.Datasets[i].Title = titleFromName(cfg.Analysis.Datasets[i].Name)
		}
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config. A value explicitly set
// in the environment wins; otherwise the file value replaces the default.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if !envSet("SERVER_PORT") && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if !envSet("SERVER_READ_TIMEOUT") && fileConfig.Server.ReadTimeout != 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if !envSet("SERVER_WRITE_TIMEOUT") && fileConfig.Server.WriteTimeout != 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if !envSet("SECURITY_ALLOWED_ORIGINS") && len(fileConfig.Security.AllowedOrigins) > 0 {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if !envSet("LOGGING_LEVEL") && fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if !envSet("LOGGING_OUTPUT") && fileConfig.Logging.Output != "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if !envSet("PATHS_BASE_DIR") && fileConfig.Paths.BaseDir != "" {
		envConfig.Paths.BaseDir = fileConfig.Paths.BaseDir
	}
	if !envSet("PATHS_DATA_DIR") && fileConfig.Paths.DataDir != "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if !envSet("PATHS_DEFINITIONS_FILE") && fileConfig.Paths.DefinitionsFile != "" {
		envConfig.Paths.DefinitionsFile = fileConfig.Paths.DefinitionsFile
	}
	if !envSet("ANALYSIS_THRESHOLD") && fileConfig.Analysis.Threshold != 0 {
		envConfig.Analysis.Threshold = fileConfig.Analysis.Threshold
	}
	if !envSet("ANALYSIS_SIGN_AWARE") && fileConfig.Analysis.SignAware {
		envConfig.Analysis.SignAware = true
	}
	if !envSet("ANALYSIS_DATASETS") && len(fileConfig.Analysis.Datasets) > 0 {
		envConfig.Analysis.Datasets = fileConfig.Analysis.Datasets
	}
	if !envSet("ANALYSIS_SECTOR_MEANS_FILE") && fileConfig.Analysis.SectorMeansFile != "" {
		envConfig.Analysis.SectorMeansFile = fileConfig.Analysis.SectorMeansFile
	}
	if !envSet("ANALYSIS_FILL_MISSING_AVERAGES") && fileConfig.Analysis.FillMissingAverages {
		envConfig.Analysis.FillMissingAverages = true
	}
	if !envSet("ANALYSIS_MEMBERSHIP_DATASET") && fileConfig.Analysis.MembershipDataset != "" {
		envConfig.Analysis.MembershipDataset = fileConfig.Analysis.MembershipDataset
	}
	if !envSet("TELEMETRY_TRACE_EXPORTER") && fileConfig.Telemetry.TraceExporter != "" {
		envConfig.Telemetry.TraceExporter = fileConfig.Telemetry.TraceExporter
	}

	return envConfig
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + key)
	return ok
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	// Logs are always JSON
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	validOutputs := map[string]bool{"console": true, "file": true, "both": true}
	if !validOutputs[c.Logging.Output] {
		return fmt.Errorf("invalid logging output: %s", c.Logging.Output)
	}

	if c.Analysis.Threshold < 0 {
		return fmt.Errorf("analysis threshold must be non-negative, got %v", c.Analysis.Threshold)
	}

	if len(c.Analysis.Datasets) == 0 {
		return fmt.Errorf("at least one dataset must be configured")
	}

	seen := make(map[string]bool, len(c.Analysis.Datasets))
	for _, ds := range c.Analysis.Datasets {
		if ds.Name == "" || ds.File == "" {
			return fmt.Errorf("dataset entries need both name and file")
		}
		if seen[ds.Name] {
			return fmt.Errorf("duplicate dataset %q", ds.Name)
		}
		seen[ds.Name] = true
	}

	if c.Analysis.MembershipDataset != "" && !seen[c.Analysis.MembershipDataset] {
		return fmt.Errorf("membership dataset %q is not configured", c.Analysis.MembershipDataset)
	}

	if c.Analysis.CacheSize <= 0 {
		return fmt.Errorf("analysis cache size must be positive")
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}

	return nil
}

// getConfigFilePath returns the configuration file path
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
