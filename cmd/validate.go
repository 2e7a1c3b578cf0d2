// =============================================================================
// Bid Sheet Importer - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks workbooks without
// opening the database.
//
// COMMAND USAGE:
//   bidsheet validate [--strict] <workbook.xlsx>...
//
// For each workbook it reports whether the file name names a vendor, whether
// the header block and item header are usable, and which rows or cells an
// import would drop or coerce.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bidsheet-importer/internal/ingest"
	"github.com/ginjaninja78/bidsheet-importer/internal/validation"
	"github.com/ginjaninja78/bidsheet-importer/internal/vendor"
	"github.com/ginjaninja78/bidsheet-importer/internal/xlsxparser"
)

// strict treats warnings as failures.
var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate <workbook.xlsx>...",
	Short: "Check workbooks without importing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
}

func runValidate(paths []string) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	fields, err := ingest.OverrideAliases(ingest.DefaultFields(), mainConfig.HeaderAliases)
	if err != nil {
		return fmt.Errorf("invalid header_aliases: %w", err)
	}

	resolver := vendor.NewResolver(mainConfig.Vendors)
	validator := validation.NewValidatorWithOptions(mainConfig.SheetLayout(), fields,
		validation.ValidationOptions{TreatWarningsAsErrors: strict})

	failed := 0
	for _, path := range paths {
		name := filepath.Base(path)
		fmt.Printf("=== %s ===\n", name)

		vendorName, err := resolver.Resolve(name)
		if err != nil {
			fmt.Printf("  ✗ %v\n\n", err)
			failed++
			continue
		}

		sheet, err := xlsxparser.Open(path)
		if err != nil {
			fmt.Printf("  ✗ cannot read workbook: %v\n\n", err)
			failed++
			continue
		}

		res := validator.Validate(sheet)
		fmt.Printf("Vendor:  %s\nProject: %s\nGroups:  %d\nItems:   %d\n\n", vendorName, res.ProjectName, res.Groups, res.Items)
		fmt.Println(validation.FormatErrors(res.Errors))
		if !res.IsValid {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d workbook(s) failed validation", failed, len(paths))
	}
	return nil
}
