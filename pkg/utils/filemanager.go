// =============================================================================
// Bid Sheet Importer - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for batch ingestion:
//   - Workbook discovery in the input directory
//   - Archival of successfully ingested workbooks
//   - Error log generation for failed workbooks
//
// ARCHIVAL STRATEGY:
//   - A workbook is handed to the configured archive after it imports
//     successfully, then removed from the input directory
//   - Failed workbooks remain in their original location
//   - An error log describing the failures is written to the input directory
//   - With the "none" archive driver workbooks are left in place
//
// =============================================================================

package utils

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/bidsheet-importer/internal/archive"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations around an ingestion batch.
type FileManager struct {
	// InputDir is the directory where vendor workbooks are dropped.
	InputDir string

	// Archive receives successfully ingested workbooks.
	Archive archive.Store

	now func() time.Time
}

// NewFileManager creates a new FileManager for inputDir backed by store.
func NewFileManager(inputDir string, store archive.Store) *FileManager {
	return &FileManager{
		InputDir: inputDir,
		Archive:  store,
		now:      time.Now,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the workbooks in the input directory.
//
// Only regular files ending in .xlsx (any case) are returned. Office lock
// files ("~$Book.xlsx") are skipped. The result is sorted by name so batches
// run in a stable order.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		files = append(files, filepath.Join(fm.InputDir, name))
	}
	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an ingested workbook into the archive.
//
// PARAMETERS:
//   - ctx: Passed to the archive backend.
//   - vendorName: The vendor the workbook was attributed to.
//   - filePath: The path to the workbook.
//
// RETURNS:
//   - The archive location, or filePath when archiving is disabled.
//   - An error if archival fails. The original file is kept in that case.
func (fm *FileManager) ArchiveInputFile(ctx context.Context, vendorName, filePath string) (string, error) {
	if fm.Archive == nil || fm.Archive.Driver() == archive.DriverNone {
		return filePath, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for archiving: %w", filePath, err)
	}
	key := archive.Key(vendorName, filepath.Base(filePath), fm.now())
	location, err := fm.Archive.Put(ctx, key, f)
	_ = f.Close()
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filePath, err)
	}

	if err := os.Remove(filePath); err != nil {
		return location, fmt.Errorf("archived to %s but failed to remove original: %w", location, err)
	}
	return location, nil
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents one failed workbook.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorKind    string
	ErrorMessage string
	RunID        string
}

// WriteErrorLog writes error entries to a log file.
//
// PARAMETERS:
//   - entries: The error entries to write.
//   - outputDir: The directory to write the log file.
//
// RETURNS:
//   - The path to the error log file, or "" when there is nothing to log.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	// Generate log file name.
	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	// Write header.
	fmt.Fprintf(writer, "Bid Sheet Importer - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	// Write each entry.
	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Kind:     %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorKind,
			entry.ErrorMessage)
		if entry.RunID != "" {
			fmt.Fprintf(writer, "  Run ID:         %s\n", entry.RunID)
		}
		writer.WriteString("\n")
	}

	// Write footer.
	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}
