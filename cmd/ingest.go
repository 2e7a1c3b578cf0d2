// =============================================================================
// Bid Sheet Importer - Ingest Command
// =============================================================================
//
// This file defines the 'ingest' command, the main command of the importer.
// It runs the ingestion pipeline over the workbooks in the input directory.
//
// COMMAND USAGE:
//   bidsheet ingest [flags]
//
// FLAGS:
//   --file        : Ingest only this workbook
//   --dry-run     : Run the whole pipeline, then roll the transaction back
//   --no-archive  : Leave ingested workbooks in the input directory
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Open the database (creating the schema if needed) and the archive
//   3. Discover workbooks in the input directory
//   4. For each workbook, in name order:
//      a. Resolve the vendor from the file name
//      b. Read the first worksheet
//      c. Extract the project, groups and items
//      d. Store everything in one transaction
//      e. Archive the workbook
//   5. Write the error log and metrics file
//   6. Print a summary
//
// Workbooks run one after another. Two imports of the same project racing
// each other are still safe: the database rejects the second one.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bidsheet-importer/internal/ingest"
	"github.com/ginjaninja78/bidsheet-importer/internal/metrics"
	"github.com/ginjaninja78/bidsheet-importer/internal/vendor"
	"github.com/ginjaninja78/bidsheet-importer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun rolls every import back after it has been fully written.
var dryRun bool

// filePath is the path to a single workbook to ingest.
var filePath string

// noArchive leaves ingested workbooks where they are.
var noArchive bool

// =============================================================================
// INGEST COMMAND DEFINITION
// =============================================================================

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import vendor workbooks into the database",
	Long: `The ingest command scans the input directory for .xlsx workbooks, works
out the vendor of each from its file name, and stores the project, its item
groups and its items.

Each workbook is imported atomically: on any error nothing of it is stored.
A project that was already imported for the same vendor is rejected.

On success:
  - The workbook is moved to the archive (unless --no-archive or --dry-run)

On error:
  - The workbook remains in the input directory
  - An error log is written to the input directory
  - Processing continues with the next workbook (see continue_on_error)`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the full import, then roll it back")
	ingestCmd.Flags().StringVar(&filePath, "file", "", "Path to a single workbook to ingest")
	ingestCmd.Flags().BoolVar(&noArchive, "no-archive", false, "Do not archive ingested workbooks")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runIngest orchestrates a batch.
func runIngest(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== Bid Sheet Importer ===")
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(mainConfig)

	fields, err := ingest.OverrideAliases(ingest.DefaultFields(), mainConfig.HeaderAliases)
	if err != nil {
		return fmt.Errorf("invalid header_aliases: %w", err)
	}

	// =========================================================================
	// STEP 2: OPEN STORAGE AND ARCHIVE
	// =========================================================================

	db, err := openStore(ctx, mainConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	fm := utils.NewFileManager(mainConfig.InputDir, nil)
	if !dryRun && !noArchive {
		if fm.Archive, err = openArchive(ctx, mainConfig); err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
	}

	recorder := metrics.NewRecorder()
	ingester := ingest.New(db, ingest.Config{
		Resolver: vendor.NewResolver(mainConfig.Vendors),
		Layout:   mainConfig.SheetLayout(),
		Fields:   fields,
		Logger:   logger,
		Metrics:  recorder,
		DryRun:   dryRun,
	})

	// =========================================================================
	// STEP 3: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		inputFiles = []string{filePath}
	} else {
		if inputFiles, err = fm.DiscoverInputFiles(); err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}
	if len(inputFiles) == 0 {
		fmt.Println("No workbooks found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d workbook(s) to ingest\n", len(inputFiles))
	if dryRun {
		fmt.Println("Dry run: nothing will be committed")
	}

	// =========================================================================
	// STEP 4: INGEST SEQUENTIALLY
	// =========================================================================

	var (
		successCount int
		failures     []utils.ErrorLogEntry
		firstErr     error
	)
	for _, file := range inputFiles {
		name := filepath.Base(file)
		result, err := ingester.IngestFile(ctx, file)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			failures = append(failures, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     name,
				ErrorKind:    string(ingest.KindOf(err)),
				ErrorMessage: err.Error(),
				RunID:        ingest.RunIDOf(err),
			})
			fmt.Printf("  ✗ %s: %v\n", name, err)
			if !mainConfig.ShouldContinueOnError() {
				break
			}
			continue
		}

		successCount++
		fmt.Printf("  ✓ %s -> %s / %q (%d groups, %d items)\n",
			name, result.VendorName, result.ProjectName, result.Groups, result.Items)

		if !dryRun {
			location, err := fm.ArchiveInputFile(ctx, result.VendorName, file)
			if err != nil {
				// The import is committed; a failed archive only leaves the file behind.
				logger.Warn("Run %s: %v", result.RunID, err)
			} else if location != file {
				logger.Debug("Archived %s to %s", name, location)
			}
		}
	}

	// =========================================================================
	// STEP 5: ERROR LOG AND METRICS
	// =========================================================================

	if logPath, err := utils.WriteErrorLog(failures, mainConfig.InputDir); err != nil {
		logger.Error("%v", err)
	} else if logPath != "" {
		fmt.Printf("\nErrors have been logged to %s\n", logPath)
	}
	if mainConfig.MetricsFile != "" {
		if err := recorder.WriteTextfile(mainConfig.MetricsFile); err != nil {
			logger.Error("%v", err)
		}
	}

	// =========================================================================
	// STEP 6: PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Ingestion Complete ===")
	fmt.Printf("Total workbooks: %d\n", len(inputFiles))
	fmt.Printf("Successful:      %d\n", successCount)
	fmt.Printf("Errors:          %d\n", len(failures))
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime))

	if firstErr != nil {
		if len(inputFiles) == 1 {
			return firstErr
		}
		return fmt.Errorf("%d of %d workbook(s) failed, first: %w", len(failures), len(inputFiles), firstErr)
	}
	return nil
}
