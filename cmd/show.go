// =============================================================================
// Bid Sheet Importer - Show and Delete Commands
// =============================================================================
//
// COMMAND USAGE:
//   bidsheet show <project-id> [--format text|xml]
//   bidsheet delete <project-id>
//
// 'show' prints a project's header block followed by its groups and items,
// or the whole project as an XML document.
// 'delete' removes a project together with its groups and items; the vendor
// is kept.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
	"github.com/ginjaninja78/bidsheet-importer/internal/xmlwriter"
)

// showFormat is "text" or "xml".
var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project with its groups and items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProjectID(args[0])
		if err != nil {
			return err
		}
		return runShow(cmd.Context(), id)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project with its groups and items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProjectID(args[0])
		if err != nil {
			return err
		}
		return runDelete(cmd.Context(), id)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)

	showCmd.Flags().StringVar(&showFormat, "format", "text", "Output format: text or xml")
}

func parseProjectID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid project id %q", s)
	}
	return id, nil
}

func runShow(ctx context.Context, id int64) error {
	if showFormat != "text" && showFormat != "xml" {
		return fmt.Errorf("unknown format %q, want text or xml", showFormat)
	}
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(ctx, mainConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	detail, err := db.GetProject(ctx, id)
	if err != nil {
		return fmt.Errorf("project %d: %w", id, err)
	}
	if showFormat == "xml" {
		_, err := os.Stdout.Write(xmlwriter.Generate(detail))
		return err
	}

	p := detail.Project
	fmt.Printf("Project:           %s\n", p.Name)
	fmt.Printf("Vendor:            %s\n", detail.VendorName)
	fmt.Printf("Imported:          %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	for _, d := range []struct {
		label string
		value *string
	}{
		{"Ship date", p.ShipDate},
		{"Arrival date", p.ArrivalDate},
		{"Ship method", p.ShipMethod},
		{"Live date", p.LiveDate},
		{"Down date", p.DownDate},
		{"Discard date", p.DiscardDate},
		{"Overage ship date", p.OverageShipDate},
	} {
		if d.value != nil {
			fmt.Printf("%-18s %s\n", d.label+":", *d.value)
		}
	}
	if p.GraphicNotes != nil {
		fmt.Printf("Graphic notes:\n%s\n", *p.GraphicNotes)
	}

	byGroup := make(map[int64][]types.Item)
	for _, item := range detail.Items {
		byGroup[item.GroupID] = append(byGroup[item.GroupID], item)
	}
	for _, g := range detail.Groups {
		fmt.Printf("\n== %s ==\n", g.Name)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DESCRIPTION\tSIZE\tMATERIAL\tQTY\tPRICE\tTOTAL")
		for _, item := range byGroup[g.ID] {
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\t%s\n",
				types.StringValue(item.Description), types.StringValue(item.Size), types.StringValue(item.Material),
				item.DistroQuantity, item.PricePoint.StringFixed(2), item.TotalPrice.StringFixed(2))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func runDelete(ctx context.Context, id int64) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(ctx, mainConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("project %d: %w", id, err)
	}
	fmt.Printf("Deleted project %d\n", id)
	return nil
}
