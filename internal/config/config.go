package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Fetch    FetchConfig    `yaml:"fetch" envconfig:"FETCH"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/edpulse.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DownloadsDir string `yaml:"downloads_dir" envconfig:"DOWNLOADS_DIR" default:"data/downloads"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
}

// FetchConfig contains snapshot retrieval configuration
type FetchConfig struct {
	SnapshotURLY1     string  `yaml:"snapshot_url_y1" envconfig:"SNAPSHOT_URL_Y1"`
	SnapshotURLY2     string  `yaml:"snapshot_url_y2" envconfig:"SNAPSHOT_URL_Y2"`
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" default:"1"`
}

// AnalysisConfig contains the reconciliation analysis parameters. The
// exclusion threshold is configuration, not a hardcoded policy constant.
type AnalysisConfig struct {
	YearY1        int      `yaml:"year_y1" envconfig:"YEAR_Y1" default:"2019"`
	YearY2        int      `yaml:"year_y2" envconfig:"YEAR_Y2" default:"2022"`
	LayoutY1      string   `yaml:"layout_y1" envconfig:"LAYOUT_Y1" default:"wide"`
	LayoutY2      string   `yaml:"layout_y2" envconfig:"LAYOUT_Y2" default:"long"`
	GroupCode     string   `yaml:"group_code" envconfig:"GROUP_CODE" default:"0001"`
	GroupName     string   `yaml:"group_name" envconfig:"GROUP_NAME" default:"District of Columbia Public Schools"`
	Grades        []string `yaml:"grades" envconfig:"GRADES" default:"9,10,11,12"`
	MinEnrollment int      `yaml:"min_enrollment" envconfig:"MIN_ENROLLMENT" default:"10"`
}

// Load loads configuration from environment variables and an optional YAML
// config file. Values set in the file override the environment; struct tag
// defaults fill whatever neither sets.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("EDP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile reads a YAML configuration file
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// mergeConfigs overlays file values onto the env-derived config. A file
// value only applies where it is set; env vars (and tag defaults already
// materialized into envCfg) win for everything the file leaves blank.
func mergeConfigs(fileCfg, envCfg Config) Config {
	merged := envCfg

	overlayString(&merged.Logging.Level, fileCfg.Logging.Level)
	overlayString(&merged.Logging.Format, fileCfg.Logging.Format)
	overlayString(&merged.Logging.Output, fileCfg.Logging.Output)
	overlayString(&merged.Logging.FilePath, fileCfg.Logging.FilePath)

	overlayString(&merged.Paths.DownloadsDir, fileCfg.Paths.DownloadsDir)
	overlayString(&merged.Paths.ReportsDir, fileCfg.Paths.ReportsDir)

	overlayString(&merged.Fetch.SnapshotURLY1, fileCfg.Fetch.SnapshotURLY1)
	overlayString(&merged.Fetch.SnapshotURLY2, fileCfg.Fetch.SnapshotURLY2)
	if fileCfg.Fetch.RequestsPerSecond > 0 {
		merged.Fetch.RequestsPerSecond = fileCfg.Fetch.RequestsPerSecond
	}

	if fileCfg.Analysis.YearY1 > 0 {
		merged.Analysis.YearY1 = fileCfg.Analysis.YearY1
	}
	if fileCfg.Analysis.YearY2 > 0 {
		merged.Analysis.YearY2 = fileCfg.Analysis.YearY2
	}
	overlayString(&merged.Analysis.LayoutY1, fileCfg.Analysis.LayoutY1)
	overlayString(&merged.Analysis.LayoutY2, fileCfg.Analysis.LayoutY2)
	overlayString(&merged.Analysis.GroupCode, fileCfg.Analysis.GroupCode)
	overlayString(&merged.Analysis.GroupName, fileCfg.Analysis.GroupName)
	if len(fileCfg.Analysis.Grades) > 0 {
		merged.Analysis.Grades = fileCfg.Analysis.Grades
	}
	if fileCfg.Analysis.MinEnrollment > 0 {
		merged.Analysis.MinEnrollment = fileCfg.Analysis.MinEnrollment
	}

	return merged
}

func overlayString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

// validate checks the configuration invariants
func (c *Config) validate() error {
	if c.Analysis.YearY1 == c.Analysis.YearY2 {
		return fmt.Errorf("analysis years must be two distinct years, got %d twice", c.Analysis.YearY1)
	}
	if c.Analysis.GroupCode == "" {
		return fmt.Errorf("analysis group code must not be empty")
	}
	if len(c.Analysis.Grades) == 0 {
		return fmt.Errorf("analysis grade subset must not be empty")
	}
	if c.Analysis.MinEnrollment < 0 {
		return fmt.Errorf("minimum enrollment threshold must not be negative, got %d", c.Analysis.MinEnrollment)
	}
	for _, layout := range []string{c.Analysis.LayoutY1, c.Analysis.LayoutY2} {
		switch layout {
		case "wide", "long":
		default:
			return fmt.Errorf("unsupported snapshot layout %q", layout)
		}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}
	return nil
}
