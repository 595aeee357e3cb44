/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jacobarthurs/myplan/internal/analyzer"
	"github.com/jacobarthurs/myplan/internal/output"
	"github.com/jacobarthurs/myplan/internal/plan"
	"github.com/jacobarthurs/myplan/internal/profile"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var ErrPlanUnavailable = errors.New("plan unavailable")

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single query",
	Long: `Analyze a single SQL query and its execution plan and report performance findings.

Input can be a SQL file, or a JSON file holding EXPLAIN rows.
Use "-" to read from stdin. If no file is provided, enters interactive mode.

For SQL input, the plan is fetched with EXPLAIN when a database is configured
(--db, --profile, default profile, or MYPLAN_DSN / MYSQL_* environment).
Without one, only the query text is checked. The query itself is never executed.`,
	Example: `  # Analyze from file
  myplan analyze query.sql --db "user:pass@tcp(localhost:3306)/shop"

  # Use saved profile
  myplan analyze query.sql --profile prod

  # Analyze captured EXPLAIN rows together with their query
  myplan analyze explain.json --query query.sql

  # Read from stdin
  cat query.sql | myplan analyze -

  # Interactive mode
  myplan analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := output.ValidateFormat(format); err != nil {
			return err
		}

		opts, err := readSourceOptions(cmd)
		if err != nil {
			return err
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		result, planErr := analyzeInput(cmd.Context(), file, "", opts)
		if planErr != nil && !errors.Is(planErr, ErrPlanUnavailable) {
			return planErr
		}

		switch format {
		case output.FormatJSON:
			err = output.RenderJSON(os.Stdout, result)
		case output.FormatText:
			err = output.RenderAnalysisText(os.Stdout, result)
		}
		if err != nil {
			return err
		}

		return planErr
	},
}

type sourceOptions struct {
	db        string
	dialect   string
	profile   string
	queryFile string
	timeout   time.Duration
	rules     analyzer.Config
}

func readSourceOptions(cmd *cobra.Command) (sourceOptions, error) {
	var opts sourceOptions
	opts.db, _ = cmd.Flags().GetString("db")
	opts.dialect, _ = cmd.Flags().GetString("dialect")
	opts.profile, _ = cmd.Flags().GetString("profile")
	opts.timeout, _ = cmd.Flags().GetDuration("timeout")
	if cmd.Flags().Lookup("query") != nil {
		opts.queryFile, _ = cmd.Flags().GetString("query")
	}

	rules, err := profile.LoadRules()
	if err != nil {
		return sourceOptions{}, err
	}
	opts.rules = rules

	return opts, nil
}

// analyzeInput resolves one input and runs the engine on it. When the plan
// cannot be fetched the static result is still returned, together with an
// error wrapping ErrPlanUnavailable.
func analyzeInput(ctx context.Context, file, label string, opts sourceOptions) (analyzer.AnalysisResult, error) {
	logger := zerolog.Ctx(ctx)

	in, err := plan.Resolve(file, label)
	if err != nil {
		return analyzer.AnalysisResult{}, err
	}

	if in.Kind == plan.InputJSON {
		var query string
		if opts.queryFile != "" {
			query, err = plan.ReadQuery(opts.queryFile)
			if err != nil {
				return analyzer.AnalysisResult{}, fmt.Errorf("reading query file: %w", err)
			}
		}
		return analyzer.Run(query, in.Rows, opts.rules), nil
	}

	target, err := profile.ResolveTarget(opts.db, opts.dialect, opts.profile)
	if err != nil {
		return analyzer.AnalysisResult{}, err
	}
	if target.IsZero() {
		logger.Info().Msg("no database configured, running static analysis only")
		return analyzer.Run(in.Query, nil, opts.rules), nil
	}
	target.Timeout = opts.timeout

	rows, err := plan.Execute(ctx, target, in.Query)
	if err != nil {
		logger.Warn().Err(err).Str("dialect", target.Dialect).Msg("could not fetch execution plan")
		result := analyzer.Run(in.Query, nil, opts.rules)
		result.PlanError = err.Error()
		return result, fmt.Errorf("%w: %w", ErrPlanUnavailable, err)
	}

	return analyzer.Run(in.Query, rows, opts.rules), nil
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("db", "d", "", "Database DSN (MySQL go-sql-driver format or PostgreSQL URL)")
	cmd.Flags().String("dialect", "", "Database dialect: mysql, mariadb, postgres (default: from the DSN scheme, else mysql)")
	cmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	cmd.Flags().Duration("timeout", 30*time.Second, "Timeout for fetching the plan")
	cmd.MarkFlagsMutuallyExclusive("db", "profile")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addSourceFlags(analyzeCmd)
	analyzeCmd.Flags().StringP("query", "q", "", "SQL file for JSON plan input")
}
