// =============================================================================
// Bid Sheet Importer - History Command
// =============================================================================
//
// COMMAND USAGE:
//   bidsheet history [--limit N]
//
// Lists imported projects, newest first, with their vendor and row counts.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bidsheet-importer/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List imported projects, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum number of projects to list (0 for all)")
}

func runHistory(ctx context.Context) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(ctx, mainConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	projects, err := db.ListProjects(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects have been imported yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVENDOR\tPROJECT\tLIVE DATE\tGROUPS\tITEMS\tIMPORTED")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			p.ID, p.VendorName, p.Name, types.StringValue(p.LiveDate),
			p.GroupCount, p.ItemCount, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
