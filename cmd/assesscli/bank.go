package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"career-assess/internal/questionbank"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Show question pool statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, _ := cmd.Flags().GetBool("offline")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig(offline)
		if err != nil {
			return err
		}
		bank, err := questionbank.LoadDefault(cfg.QuestionCounts())
		if err != nil {
			return err
		}
		stats := bank.Stats()

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INSTRUMENT\tPOOL\tSELECT\tSTRATA")
		for _, st := range stats {
			strata := "-"
			if len(st.Strata) > 0 {
				keys := make([]string, 0, len(st.Strata))
				for k := range st.Strata {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				strata = ""
				for i, k := range keys {
					if i > 0 {
						strata += " "
					}
					strata += fmt.Sprintf("%s=%d", k, st.Strata[k])
				}
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", st.Instrument, st.PoolSize, st.SelectCount, strata)
		}
		return w.Flush()
	},
}

func init() {
	bankCmd.Flags().Bool("json", false, "Print statistics as JSON")
}
