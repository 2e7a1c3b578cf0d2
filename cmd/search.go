// =============================================================================
// Bid Sheet Importer - Search Command
// =============================================================================
//
// COMMAND USAGE:
//   bidsheet search <text> [--size S] [--material M] [--code C]
//                          [--vendor V] [--group G] [--page N]
//
// Finds items whose description contains <text>, cheapest first, twenty per
// page. Size, code, vendor and group must match exactly (ignoring case);
// material is a substring match.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bidsheet-importer/internal/store"
	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

var searchQuery store.ItemQuery

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search imported items by description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := searchQuery
		q.Text = strings.Join(args, " ")
		return runSearch(cmd.Context(), q)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	f := searchCmd.Flags()
	f.StringVar(&searchQuery.Size, "size", "", "Exact size, e.g. \"24 x 36\"")
	f.StringVar(&searchQuery.Material, "material", "", "Material substring")
	f.StringVar(&searchQuery.Code, "code", "", "Exact code number")
	f.StringVar(&searchQuery.Vendor, "vendor", "", "Vendor name")
	f.StringVar(&searchQuery.Group, "group", "", "Item group name")
	f.IntVar(&searchQuery.Page, "page", 1, "Result page, 20 items per page")
}

func runSearch(ctx context.Context, q store.ItemQuery) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(ctx, mainConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	page, err := db.SearchItems(ctx, q)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		fmt.Printf("No items match %q (page %d).\n", q.Text, page.Page)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOTAL\tPRICE\tQTY\tDESCRIPTION\tSIZE\tMATERIAL\tVENDOR\tPROJECT\tGROUP")
	for _, hit := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%s\t%s\t%s\t%s\t%s\n",
			hit.TotalPrice.StringFixed(2), hit.PricePoint.StringFixed(2), hit.DistroQuantity,
			types.StringValue(hit.Description), types.StringValue(hit.Size), types.StringValue(hit.Material),
			hit.VendorName, hit.ProjectName, hit.GroupName)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nPage %d", page.Page)
	if len(page.Items) == store.SearchPageSize {
		fmt.Printf(" (more with --page %d)", page.Page+1)
	}
	fmt.Println()
	return nil
}
