/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jacobarthurs/myplan/internal/analyzer"
	"github.com/jacobarthurs/myplan/internal/profile"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in rules",
	Long: `List the static and plan rules in evaluation order, with the rule
settings currently in effect from the config file.`,
	Example: `  myplan rules`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := profile.LoadRules()
		if err != nil {
			return err
		}
		return printRules(os.Stdout, cfg)
	},
}

func printRules(w io.Writer, cfg analyzer.Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Static rules (query text)")
	for _, r := range analyzer.StaticRules() {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", strings.ToUpper(r.Severity.String()), r.Title, r.Pattern)
	}

	fmt.Fprintln(tw, "\nPlan rules (per row)")
	for _, r := range analyzer.PlanRules() {
		fmt.Fprintf(tw, "  %s\t%s\t\n", strings.ToUpper(r.Severity.String()), r.Title)
	}

	fmt.Fprintf(tw, "\nrow_scan_threshold: %d\n", cfg.RowScanThreshold)
	fmt.Fprintf(tw, "flag_unused_candidates: %t\n", cfg.FlagUnusedCandidates)

	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
