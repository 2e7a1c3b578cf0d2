// =============================================================================
// Bid Sheet Importer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (bidsheet)
//   ├── ingestCmd   (bidsheet ingest)
//   ├── historyCmd  (bidsheet history)
//   ├── searchCmd   (bidsheet search)
//   ├── showCmd     (bidsheet show)
//   ├── deleteCmd   (bidsheet delete)
//   ├── validateCmd (bidsheet validate)
//   └── versionCmd  (bidsheet version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading a .env file into the environment
//   3. Mapping failures to process exit codes
//
// EXIT CODES:
//   0 success
//   1 storage failure or any other error
//   2 vendor not found or malformed sheet
//   3 duplicate project
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bidsheet-importer/internal/ingest"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bidsheet",
	Short: "Bid Sheet Importer - Load vendor pricing workbooks into a searchable database",
	Long: `Bid Sheet Importer reads vendor pricing workbooks (.xlsx) and stores their
project header, item groups and priced items in a relational database.

Key Features:
  - Vendor attribution from the workbook file name
  - Header-driven column mapping with configurable aliases
  - All-or-nothing imports: a workbook is either fully stored or not at all
  - Duplicate detection per vendor and project name
  - Item search across every imported project

Example Usage:
  bidsheet ingest                         # Import every workbook in the input directory
  bidsheet ingest --file Duggal_Acme.xlsx # Import one workbook
  bidsheet search banner --size "24 x 36" # Find matching items, cheapest first
  bidsheet history                        # List imported projects
  bidsheet validate Quad_Acme.xlsx        # Check a workbook without importing it`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, ingest.ErrDuplicateProject):
		return 3
	case errors.Is(err, ingest.ErrVendorNotFound), errors.Is(err, ingest.ErrMalformedSheet):
		return 2
	default:
		return 1
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file; built-in defaults apply when the default file is absent",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	cobra.OnInitialize(loadDotEnv)
}

// loadDotEnv copies a .env file from the working directory into the process
// environment. Variables that are already set win; a missing file is fine.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}
}
