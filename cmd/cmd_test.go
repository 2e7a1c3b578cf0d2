package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bidsheet-importer/internal/ingest"
	"github.com/ginjaninja78/bidsheet-importer/internal/store"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("2 of 3 workbook(s) failed, first: %w", ingest.ErrDuplicateProject), 3},
		{ingest.ErrVendorNotFound, 2},
		{ingest.ErrMalformedSheet, 2},
		{ingest.ErrStorageFailure, 1},
		{errors.New("failed to load main config"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), tt.err.Error())
	}
}

func TestParseProjectID(t *testing.T) {
	id, err := parseProjectID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		_, err := parseProjectID(bad)
		assert.Error(t, err, bad)
	}
}

// writeBidSheet saves a minimal vendor workbook to dir/name.
func writeBidSheet(t *testing.T, dir, name, title string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := []struct {
		cell   string
		values []any
	}{
		{"A1", []any{title}},
		{"A4", []any{"Ship Date: 03/01/2024"}},
		{"A11", []any{"ITEM DESCRIPTION", "SIZE", "MATERIAL", "DISTRO QUANTITY", "PRICE POINT"}},
		{"A12", []any{"Banners"}},
		{"A13", []any{"Vinyl Banner", "3x6", "13oz Vinyl", 150, 12.5}},
	}
	for _, r := range rows {
		require.NoError(t, f.SetSheetRow(sheet, r.cell, &r.values))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// runCLI executes the root command with args against a throwaway config.
func runCLI(t *testing.T, configPath string, args ...string) error {
	t.Helper()
	dryRun, filePath, noArchive, historyLimit, showFormat, strict = false, "", false, 50, "text", false
	rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
	return rootCmd.ExecuteContext(context.Background())
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("input_dir: "+filepath.Join(dir, "in")+"\n"), 0o644))

	good := writeBidSheet(t, dir, "Quad_Acme.xlsx", "Acme")
	require.NoError(t, runCLI(t, configPath, "validate", good))

	unknown := writeBidSheet(t, dir, "Nobody_Acme.xlsx", "Acme")
	assert.ErrorContains(t, runCLI(t, configPath, "validate", good, unknown), "1 of 2")
}

func TestIngestCommand(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BIDSHEET_DB_DRIVER", "")
	t.Setenv("BIDSHEET_INPUT_DIR", "")

	root := t.TempDir()
	input := filepath.Join(root, "input")
	archiveRoot := filepath.Join(root, "archive")
	dbPath := filepath.Join(root, "bids.db")
	require.NoError(t, os.MkdirAll(input, 0o755))

	configPath := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
input_dir: %s
database:
  driver: sqlite
  dsn: %s
archive:
  driver: fs
  fs_root: %s
`, input, dbPath, archiveRoot)), 0o644))

	src := writeBidSheet(t, input, "Duggal_Acme.xlsx", "Acme Spring Promo")
	writeBidSheet(t, input, "Nobody_Acme.xlsx", "Acme Spring Promo")

	err := runCLI(t, configPath, "ingest")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrVendorNotFound)

	// The imported workbook moved to the archive; the failed one stayed.
	assert.NoFileExists(t, src)
	assert.FileExists(t, filepath.Join(input, "Nobody_Acme.xlsx"))
	logs, _ := filepath.Glob(filepath.Join(input, "error_log_*.txt"))
	assert.Len(t, logs, 1)
	archived, _ := filepath.Glob(filepath.Join(archiveRoot, "duggal", "*", "*", "*-Duggal_Acme.xlsx"))
	assert.Len(t, archived, 1)

	s, err := store.Open(context.Background(), store.DriverSQLite, dbPath)
	require.NoError(t, err)
	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, store.Counts{Vendors: 1, Projects: 1, Groups: 1, Items: 1}, counts)

	// Importing the same project again is rejected.
	writeBidSheet(t, input, "Duggal_Acme_v2.xlsx", "Acme Spring Promo")
	err = runCLI(t, configPath, "ingest", "--file", filepath.Join(input, "Duggal_Acme_v2.xlsx"))
	assert.ErrorIs(t, err, ingest.ErrDuplicateProject)
	assert.Equal(t, 3, exitCode(err))

	require.NoError(t, runCLI(t, configPath, "history"))
	require.NoError(t, runCLI(t, configPath, "search", "banner", "--size", "3X6"))
	require.NoError(t, runCLI(t, configPath, "show", "1"))
	require.NoError(t, runCLI(t, configPath, "show", "1", "--format", "xml"))
	assert.Error(t, runCLI(t, configPath, "show", "1", "--format", "json"))
	require.NoError(t, runCLI(t, configPath, "delete", "1"))
	assert.ErrorIs(t, runCLI(t, configPath, "show", "1"), store.ErrNotFound)
}
