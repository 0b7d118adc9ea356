package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"career-assess/internal/domain"
)

var resultCmd = &cobra.Command{
	Use:   "result [instrument]",
	Short: "Show stored results for a user",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		userID, _ := cmd.Flags().GetString("user")
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := buildDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.close()

		var results []domain.Result
		if len(args) == 1 {
			instrument, err := instrumentArg(args)
			if err != nil {
				return err
			}
			result, err := d.results.GetResult(ctx, userID, instrument)
			if err != nil {
				return err
			}
			results = append(results, result)
		} else {
			results, err = d.results.ListResults(ctx, userID)
			if err != nil {
				return err
			}
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		if len(results) == 0 {
			fmt.Printf("Belum ada hasil untuk %s.\n", userID)
			return nil
		}
		for _, r := range results {
			printResult(r)
		}
		return nil
	},
}

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Re-project stored results into the candidate profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		userID, _ := cmd.Flags().GetString("user")

		d, err := buildDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.close()

		synced, err := d.results.ResyncProfile(ctx, userID)
		fmt.Printf("%d hasil diproyeksikan ke profil %s\n", synced, userID)
		return err
	},
}

func init() {
	resultCmd.Flags().Bool("json", false, "Print results as JSON")
}

func printResult(r domain.Result) {
	fmt.Printf("\n== Hasil %s (%s) ==\n", r.Instrument.DisplayName(), r.CompletedAt.Format("2006-01-02 15:04"))
	switch {
	case r.Payload.MBTI != nil:
		p := r.Payload.MBTI
		fmt.Printf("Tipe: %s - %s\n%s\n", p.TypeCode, p.Title, p.Description)
		for _, pair := range domain.TraitPairs {
			fmt.Printf("  %s: %d / %s: %d\n", pair.First, p.Tally[pair.First], pair.Second, p.Tally[pair.Second])
		}
	case r.Payload.Kraepelin != nil:
		p := r.Payload.Kraepelin
		for _, a := range p.Aspects {
			fmt.Printf("  %-12s %3d/%-3d %5.1f%% %s\n", a.Aspect.Label(), a.Total, a.Max, a.Percent, a.Band)
		}
		fmt.Println(p.Summary)
	case r.Payload.PAPI != nil:
		p := r.Payload.PAPI
		names := make([]string, 0, len(p.Dominant))
		for _, d := range p.Dominant {
			names = append(names, fmt.Sprintf("%s %s (%d)", d.Code, d.Name, d.Count))
		}
		if len(names) > 0 {
			fmt.Println("Dominan: " + strings.Join(names, ", "))
		}
		fmt.Println(p.Summary)
	}
}
