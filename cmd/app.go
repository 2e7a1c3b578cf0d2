package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ginjaninja78/bidsheet-importer/internal/archive"
	"github.com/ginjaninja78/bidsheet-importer/internal/config"
	"github.com/ginjaninja78/bidsheet-importer/internal/ingest"
	"github.com/ginjaninja78/bidsheet-importer/internal/store"
)

// =============================================================================
// SHARED COMMAND SETUP
// =============================================================================

// loadConfig reads --config. When the flag was left at its default and the
// file does not exist, the built-in defaults are used instead.
func loadConfig() (*config.MainConfig, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if errors.Is(err, os.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
		return config.DefaultMainConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger for cfg; --verbose forces debug.
func newLogger(cfg *config.MainConfig) ingest.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil || verbose {
		level = slog.LevelDebug
	}
	return ingest.NewLogger(os.Stderr, level)
}

// openStore connects to the configured database and makes sure the schema
// exists. The caller closes the store.
func openStore(ctx context.Context, cfg *config.MainConfig) (*store.SQLStore, error) {
	s, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// openArchive builds the archive store from the configuration.
func openArchive(ctx context.Context, cfg *config.MainConfig) (archive.Store, error) {
	a := cfg.Archive
	return archive.Open(ctx, archive.Config{
		Driver: archive.Driver(a.Driver),
		FSRoot: a.FSRoot,
		S3: archive.S3Config{
			Bucket:          a.S3Bucket,
			Region:          a.S3Region,
			Endpoint:        a.S3Endpoint,
			PathStyle:       a.S3PathStyle,
			AccessKeyID:     a.S3AccessKeyID,
			SecretAccessKey: a.S3SecretAccessKey,
		},
	})
}
