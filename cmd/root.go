/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

var rootCmd = &cobra.Command{
	Use:          "myplan",
	SilenceUsage: true,
	Short:        "Analyze and compare MySQL query plans",
	Long: `myplan is a CLI tool for finding performance problems in SQL queries.

It combines static checks on the query text with rules evaluated against the
database's own EXPLAIN output, and reports findings ranked by severity.
Supports MySQL/MariaDB and PostgreSQL, with SQL and JSON input formats.`,
	Example: `  # Analyze a single query
  myplan analyze query.sql --profile prod

  # Compare two plans
  myplan compare old.sql new.sql

  # Setup connection profiles
  myplan init`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFiles(); err != nil {
			return err
		}

		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}

		level, _ := cmd.Flags().GetString("log-level")
		logger := setupLogging(level)
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()

	switch {
	case errors.Is(err, ErrPlanUnavailable):
		os.Exit(2)
	case err != nil:
		os.Exit(1)
	}
}

// loadEnvFiles loads a .env file from the working directory if present.
func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

func setupLogging(level string) zerolog.Logger {
	zerolog.DurationFieldUnit = time.Millisecond

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.WarnLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    color.NoColor,
	}).
		Level(logLevel).
		With().
		Timestamp()

	if logLevel == zerolog.DebugLevel {
		logger = logger.Caller()
	}

	return logger.Logger()
}
