// =============================================================================
// Bid Sheet Importer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Bid Sheet Importer CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   bidsheet ingest    - Import every workbook in the input directory
//   bidsheet history   - List imported projects
//   bidsheet search    - Search imported items
//   bidsheet show      - Show one project
//   bidsheet delete    - Delete one project
//   bidsheet validate  - Check workbooks without importing them
//   bidsheet version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/xlsxparser  : workbook loading, header block, row classification
//   - internal/ingest      : the ingestion pipeline and its error kinds
//   - internal/store       : SQL persistence (sqlite or postgres)
//   - internal/archive     : source workbook archive (fs or s3)
//   - internal/validation  : database-free workbook checks
//   - internal/xmlwriter   : XML export of a stored project
//   - internal/metrics     : Prometheus ingestion metrics
//   - internal/config      : config.yaml loading
//   - pkg/utils            : input discovery, archival and error logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bidsheet-importer/cmd"
)

func main() {
	cmd.Execute()
}
