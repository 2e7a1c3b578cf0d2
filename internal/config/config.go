// =============================================================================
// Bid Sheet Importer - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration from
// config.yaml. Every setting has a default, so an empty file (or no file at
// all) yields a working sqlite setup.
//
// OVERRIDES (applied after the file, before validation):
//   DATABASE_URL         : database.dsn
//   BIDSHEET_DB_DRIVER   : database.driver
//   BIDSHEET_INPUT_DIR   : input_dir
//
// A .env file in the working directory is loaded into the environment by the
// CLI before the configuration is read.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/bidsheet-importer/internal/vendor"
	"github.com/ginjaninja78/bidsheet-importer/internal/xlsxparser"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for vendor workbooks (*.xlsx).
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// =========================================================================
	// STORAGE SETTINGS
	// =========================================================================

	Database DatabaseConfig `yaml:"database"`

	// Archive receives each successfully ingested workbook.
	Archive ArchiveConfig `yaml:"archive"`

	// =========================================================================
	// LOGGING AND METRICS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// MetricsFile, when set, receives ingestion metrics in the Prometheus
	// text format after every ingest command (node-exporter textfile
	// collector).
	MetricsFile string `yaml:"metrics_file"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ContinueOnError determines whether to continue with the next workbook
	// when one fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// =========================================================================
	// SHEET FORMAT
	// =========================================================================

	// Vendors is the ordered vendor roster. A filename resolves to the first
	// vendor whose name it contains.
	// Default: the built-in roster.
	Vendors []string `yaml:"vendors"`

	// Layout locates the header block and the item table.
	Layout LayoutConfig `yaml:"layout"`

	// HeaderAliases replaces the accepted header labels of item fields,
	// keyed by field name (e.g. "size").
	//
	// Example:
	//   header_aliases:
	//     size: ["SIZE", "SIZE (W X H)", "DIMENSIONS"]
	HeaderAliases map[string][]string `yaml:"header_aliases"`
}

// DatabaseConfig selects the SQL database.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// DSN is a file path for sqlite or a connection URL for postgres.
	// Default: "./bidsheets.db"
	DSN string `yaml:"dsn"`
}

// ArchiveConfig selects where ingested workbooks are kept.
type ArchiveConfig struct {
	// Driver is "fs", "s3" or "none".
	// Default: "fs"
	Driver string `yaml:"driver"`

	// FSRoot is the root directory of the fs driver.
	// Default: "./input_archive"
	FSRoot string `yaml:"fs_root"`

	// S3 settings. Credentials come from the static keys when both are set,
	// otherwise from the default AWS credential chain.
	S3Bucket          string `yaml:"s3_bucket"`
	S3Region          string `yaml:"s3_region"`
	S3Endpoint        string `yaml:"s3_endpoint"`
	S3PathStyle       bool   `yaml:"s3_path_style"`
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
}

// LayoutConfig mirrors xlsxparser.Layout. Empty fields keep the default.
type LayoutConfig struct {
	TitleCell           string   `yaml:"title_cell"`
	ShipDateCell        string   `yaml:"ship_date_cell"`
	ArrivalDateCell     string   `yaml:"arrival_date_cell"`
	ShipMethodCell      string   `yaml:"ship_method_cell"`
	LiveDateCell        string   `yaml:"live_date_cell"`
	DownDateCell        string   `yaml:"down_date_cell"`
	DiscardDateCell     string   `yaml:"discard_date_cell"`
	OverageShipDateCell string   `yaml:"overage_ship_date_cell"`
	NoteCells           []string `yaml:"note_cells"`

	// HeaderRow is the 1-based row of the item table header.
	HeaderRow int `yaml:"header_row"`

	// LastColumn is the 1-based last column of the item table.
	LastColumn int `yaml:"last_column"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or fails validation.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(&config)
}

// DefaultMainConfig returns the configuration used when no file exists.
// Environment overrides still apply.
func DefaultMainConfig() (*MainConfig, error) {
	return finish(&MainConfig{})
}

func finish(config *MainConfig) (*MainConfig, error) {
	applyEnvOverrides(config)
	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyEnvOverrides copies environment settings over the file values.
func applyEnvOverrides(config *MainConfig) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.DSN = v
		// A URL DSN without an explicit driver is a postgres URL.
		if config.Database.Driver == "" && (strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://")) {
			config.Database.Driver = "postgres"
		}
	}
	if v := os.Getenv("BIDSHEET_DB_DRIVER"); v != "" {
		config.Database.Driver = v
	}
	if v := os.Getenv("BIDSHEET_INPUT_DIR"); v != "" {
		config.InputDir = v
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.Database.Driver == "" {
		config.Database.Driver = "sqlite"
	}
	if config.Database.DSN == "" && config.Database.Driver == "sqlite" {
		config.Database.DSN = "./bidsheets.db"
	}
	if config.Archive.Driver == "" {
		config.Archive.Driver = "fs"
	}
	if config.Archive.FSRoot == "" {
		config.Archive.FSRoot = "./input_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.ContinueOnError == nil {
		yes := true
		config.ContinueOnError = &yes
	}
	if len(config.Vendors) == 0 {
		config.Vendors = append([]string(nil), vendor.DefaultRoster...)
	}

	defaults := xlsxparser.DefaultLayout()
	l := &config.Layout
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&l.TitleCell, defaults.TitleCell},
		{&l.ShipDateCell, defaults.ShipDateCell},
		{&l.ArrivalDateCell, defaults.ArrivalDateCell},
		{&l.ShipMethodCell, defaults.ShipMethodCell},
		{&l.LiveDateCell, defaults.LiveDateCell},
		{&l.DownDateCell, defaults.DownDateCell},
		{&l.DiscardDateCell, defaults.DiscardDateCell},
		{&l.OverageShipDateCell, defaults.OverageShipDateCell},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
	if len(l.NoteCells) == 0 {
		l.NoteCells = append([]string(nil), defaults.NoteCells...)
	}
	if l.HeaderRow == 0 {
		l.HeaderRow = defaults.HeaderRow
	}
	if l.LastColumn == 0 {
		l.LastColumn = defaults.LastColumn
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	var errs []error

	switch config.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or postgres, got %q", config.Database.Driver))
	}
	if config.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required (or set DATABASE_URL)"))
	}

	switch config.Archive.Driver {
	case "fs", "none":
	case "s3":
		if config.Archive.S3Bucket == "" {
			errs = append(errs, errors.New("archive.s3_bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("archive.driver must be fs, s3 or none, got %q", config.Archive.Driver))
	}

	if _, err := ParseLogLevel(config.LogLevel); err != nil {
		errs = append(errs, err)
	}

	l := config.Layout
	cells := append([]string{
		l.TitleCell, l.ShipDateCell, l.ArrivalDateCell, l.ShipMethodCell,
		l.LiveDateCell, l.DownDateCell, l.DiscardDateCell, l.OverageShipDateCell,
	}, l.NoteCells...)
	for _, ref := range cells {
		if _, _, err := excelize.CellNameToCoordinates(ref); err != nil {
			errs = append(errs, fmt.Errorf("layout: invalid cell %q", ref))
		}
	}
	if l.HeaderRow < 1 {
		errs = append(errs, fmt.Errorf("layout.header_row must be at least 1, got %d", l.HeaderRow))
	}
	if l.LastColumn < 2 {
		errs = append(errs, fmt.Errorf("layout.last_column must be at least 2, got %d", l.LastColumn))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	// Create the input directory if it doesn't exist.
	if err := os.MkdirAll(config.InputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", config.InputDir, err)
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// SheetLayout returns the configured layout for the sheet parser.
func (c *MainConfig) SheetLayout() xlsxparser.Layout {
	l := c.Layout
	return xlsxparser.Layout{
		TitleCell:           l.TitleCell,
		ShipDateCell:        l.ShipDateCell,
		ArrivalDateCell:     l.ArrivalDateCell,
		ShipMethodCell:      l.ShipMethodCell,
		LiveDateCell:        l.LiveDateCell,
		DownDateCell:        l.DownDateCell,
		DiscardDateCell:     l.DiscardDateCell,
		OverageShipDateCell: l.OverageShipDateCell,
		NoteCells:           append([]string(nil), l.NoteCells...),
		HeaderRow:           l.HeaderRow,
		LastColumn:          l.LastColumn,
	}
}

// ShouldContinueOnError reports whether a batch keeps going after a failure.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// ParseLogLevel converts "debug", "info", "warn" or "error" to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}
