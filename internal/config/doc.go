// Package config provides centralized configuration management for the
// dashboard service. It loads configuration from multiple sources, validates
// it and exposes a typed Config that is passed explicitly to every component
// that needs it; nothing in the module reads ambient configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (CLENS_CONFIG, default ./config.yaml)
//	3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CLENS_<SECTION>_<FIELD>:
//
//	CLENS_SERVER_PORT=8080
//	CLENS_LOGGING_LEVEL=debug
//	CLENS_PATHS_DATA_DIR=/srv/combined_data
//	CLENS_ANALYSIS_THRESHOLD=0.1
//	CLENS_ANALYSIS_DATASETS=financial_data=financial_data.csv,cash_flow=cash_flow.csv
//
// # Path Management
//
// ResolvePaths turns the configured relative paths into absolute ones,
// anchored at PathsConfig.BaseDir or the executable directory:
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	table := paths.DataFile("cash_flow.csv")
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
