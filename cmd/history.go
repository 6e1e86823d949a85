/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	historyDBPath string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded apply runs",
	Long: `List the apply runs recorded in the database, most recent first.
With a run ID, show the per-unit outcomes of that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(setting(cmd, "db", "db"))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		if len(args) == 1 {
			outcomes, err := db.RunOutcomes(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load run: %w", err)
			}
			if len(outcomes) == 0 {
				fmt.Printf("No outcomes recorded for run %s.\n", args[0])
				return nil
			}
			fmt.Fprintln(w, "UNIT\tNODE\tSTATUS\tOVERFLOW\tDETAIL")
			for _, o := range outcomes {
				overflow := ""
				if o.OverflowPercent > 0 {
					overflow = fmt.Sprintf("+%d%%", o.OverflowPercent)
				}
				detail := o.Reason
				if o.HyperlinkWarning != "" {
					detail = "hyperlinks: " + o.HyperlinkWarning
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.UnitID, o.NodeID, o.Status, overflow, truncate(detail, 60))
			}
			return w.Flush()
		}

		runs, err := db.ListRuns(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		fmt.Fprintln(w, "ID\tDOCUMENT\tAPPLIED\tERRORS\tWARNINGS\tWHEN")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID, r.Document, r.SuccessCount, r.ErrorCount, r.WarningCount,
				r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDBPath, "db", defaultDBPath, "Database path")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show (0 for all)")
}
