/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jacobarthurs/myplan/internal/comparator"
	"github.com/jacobarthurs/myplan/internal/output"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file1] [file2]",
	Short: "Compare two query plans",
	Long: `Compare the analysis of two queries or plans: plan rows side-by-side,
findings resolved and introduced, and the change in estimated rows scanned.

Inputs can be SQL files, or JSON files (EXPLAIN rows).
Files don't need to be the same type. Either file (but not both) can be "-" to read from stdin.
If no files are provided, enters interactive mode.

For SQL input, a database connection is required to fetch the plan with EXPLAIN.`,
	Example: `  # Compare two SQL files
  myplan compare old.sql new.sql --db "user:pass@tcp(localhost:3306)/shop"

  # Use saved profile
  myplan compare old.sql new.sql --profile prod

  # Mix input types
  myplan compare prod-plan.json new-query.sql --profile dev

  # Read one plan from stdin
  cat old.sql | myplan compare - new.sql --profile dev

  # Interactive mode
  myplan compare`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		threshold, _ := cmd.Flags().GetFloat64("threshold")

		if err := output.ValidateFormat(format); err != nil {
			return err
		}
		if threshold < 0 {
			return fmt.Errorf("invalid threshold %.2f: must not be negative", threshold)
		}

		var oldFile, newFile string
		if len(args) > 0 {
			oldFile = args[0]
		}
		if len(args) > 1 {
			newFile = args[1]
		}
		if oldFile == "-" && newFile == "-" {
			return fmt.Errorf("only one input can be read from stdin")
		}

		opts, err := readSourceOptions(cmd)
		if err != nil {
			return err
		}

		result, planErr := compareInputs(cmd.Context(), oldFile, newFile, threshold, opts)
		if planErr != nil && !errors.Is(planErr, ErrPlanUnavailable) {
			return planErr
		}

		switch format {
		case output.FormatJSON:
			err = output.RenderJSON(os.Stdout, result)
		case output.FormatText:
			err = output.RenderComparisonText(os.Stdout, result)
		}
		if err != nil {
			return err
		}

		return planErr
	},
}

// compareInputs analyzes both inputs and diffs them. A plan that cannot be
// fetched does not stop the comparison; the returned error then wraps
// ErrPlanUnavailable and the result is still usable.
func compareInputs(ctx context.Context, oldFile, newFile string, threshold float64, opts sourceOptions) (comparator.ComparisonResult, error) {
	oldResult, oldErr := analyzeInput(ctx, oldFile, "old ", opts)
	if oldErr != nil && !errors.Is(oldErr, ErrPlanUnavailable) {
		return comparator.ComparisonResult{}, fmt.Errorf("old input: %w", oldErr)
	}
	newResult, newErr := analyzeInput(ctx, newFile, "new ", opts)
	if newErr != nil && !errors.Is(newErr, ErrPlanUnavailable) {
		return comparator.ComparisonResult{}, fmt.Errorf("new input: %w", newErr)
	}

	c := &comparator.Comparator{Threshold: threshold}
	result := c.Compare(oldResult, newResult)

	switch {
	case oldErr != nil:
		return result, fmt.Errorf("old input: %w", oldErr)
	case newErr != nil:
		return result, fmt.Errorf("new input: %w", newErr)
	}
	return result, nil
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addSourceFlags(compareCmd)
	compareCmd.Flags().Float64P("threshold", "t", comparator.SignificanceThresholdPct, "Percent change in estimated rows below which a row counts as unchanged")
}
