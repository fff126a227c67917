// =============================================================================
// Order Report Summary - Configuration Module
// =============================================================================
//
// This module loads the run configuration. Values come from, in order of
// precedence:
//
//   1. Environment variables prefixed with ORDERS_ (ORDERS_DATA_DIR, ...)
//   2. The YAML configuration file (config.yaml by default)
//   3. Built-in defaults (see Default)
//
// A missing configuration file is not an error; defaults apply. A file that
// exists but cannot be parsed is. The merged result is validated before use.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ORDERS"

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.yaml"

// ErrConfigExists is returned by WriteDefault when the target already exists.
var ErrConfigExists = errors.New("configuration file already exists")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds every setting of a run.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// DataDir is scanned for daily order reports.
	// Default: "./data"
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`

	// ReportsDir receives one <YYYY_MM_DD>_report.xlsx per input report.
	// Default: "./reports"
	ReportsDir string `mapstructure:"reports_dir" yaml:"reports_dir" validate:"required"`

	// ErrorsDir receives one <YYYY_MM_DD>_errors.json per report that had
	// invalid rows.
	// Default: "./data/validation_errors"
	ErrorsDir string `mapstructure:"errors_dir" yaml:"errors_dir" validate:"required"`

	// SummaryPath is the summary workbook written at the end of a run.
	// Default: "./Summary.xlsx"
	SummaryPath string `mapstructure:"summary_path" yaml:"summary_path" validate:"required"`

	// TempDir holds chart images while the summary is assembled. It is
	// removed at the end of a run.
	// Default: "./temp"
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir" validate:"required"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// FilePattern selects report files in DataDir by name.
	// Default: "^\d{4}_\d{2}_\d{2}\.xlsx$"
	FilePattern string `mapstructure:"file_pattern" yaml:"file_pattern" validate:"required"`

	// DateLayout parses the report date from the file stem (Go time layout).
	// Default: "2006_01_02"
	DateLayout string `mapstructure:"date_layout" yaml:"date_layout" validate:"required"`

	// =========================================================================
	// PRICING AND CHART SETTINGS
	// =========================================================================

	// TaxRate is applied to every net price.
	// Default: 0.23
	TaxRate float64 `mapstructure:"tax_rate" yaml:"tax_rate" validate:"gte=0"`

	// ChartScale is the fraction of a chart's pixel size used when it is
	// embedded in the summary.
	// Default: 0.2
	ChartScale float64 `mapstructure:"chart_scale" yaml:"chart_scale" validate:"gt=0,lte=1"`

	// ChartWidth and ChartHeight are the rendered chart size in pixels.
	// Default: 1024 x 512
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width" validate:"gt=0"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height" validate:"gt=0"`

	// =========================================================================
	// RUN SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects human readable ("console") or structured ("json") logs.
	// Default: "console"
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	// CleanOutputs removes report workbooks and error files of previous runs
	// before processing.
	// Default: true
	CleanOutputs bool `mapstructure:"clean_outputs" yaml:"clean_outputs"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:      "./data",
		ReportsDir:   "./reports",
		ErrorsDir:    "./data/validation_errors",
		SummaryPath:  "./Summary.xlsx",
		TempDir:      "./temp",
		FilePattern:  `^\d{4}_\d{2}_\d{2}\.xlsx$`,
		DateLayout:   "2006_01_02",
		TaxRate:      0.23,
		ChartScale:   0.2,
		ChartWidth:   1024,
		ChartHeight:  512,
		LogLevel:     "info",
		LogFormat:    "console",
		CleanOutputs: true,
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file at path, applies environment overrides
// and validates the result. An empty path means DefaultPath.
//
// PARAMETERS:
//   - path: The YAML configuration file. It does not have to exist.
//
// RETURNS:
//   - The merged configuration.
//   - An error if the file cannot be parsed or a value is invalid.
func Load(path string) (*Config, error) {
	v := viper.New()
	if err := Bind(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Bind prepares v with defaults, environment overrides and, when it exists,
// the configuration file at path. Command flags may be bound to v afterwards.
func Bind(v *viper.Viper, path string) error {
	if path == "" {
		path = DefaultPath
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides apply even when
// the key is absent from the file.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("reports_dir", d.ReportsDir)
	v.SetDefault("errors_dir", d.ErrorsDir)
	v.SetDefault("summary_path", d.SummaryPath)
	v.SetDefault("temp_dir", d.TempDir)
	v.SetDefault("file_pattern", d.FilePattern)
	v.SetDefault("date_layout", d.DateLayout)
	v.SetDefault("tax_rate", d.TaxRate)
	v.SetDefault("chart_scale", d.ChartScale)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("clean_outputs", d.CleanOutputs)
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that FilePattern compiles.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := regexp.Compile(c.FilePattern); err != nil {
		return fmt.Errorf("file_pattern: %w", err)
	}
	return nil
}

// =============================================================================
// WRITING
// =============================================================================

// WriteDefault writes the built-in configuration to path as YAML. It refuses
// to replace an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
