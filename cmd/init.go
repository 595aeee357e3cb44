/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"

	"github.com/jacobarthurs/myplan/internal/profile"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with default rule settings",
	Long: `Create profiles.yaml in the user config directory (for example
~/.config/myplan/profiles.yaml) with the default rule settings.

The config file stores named database connection profiles so you don't need
to pass a DSN on every invocation, and the thresholds used by the plan rules.
If a config file already exists, it will not be overwritten.`,
	Example: `  # Create default config
  myplan init

  # Overwrite existing config
  myplan init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := profile.Init(force)
		if err != nil {
			return err
		}

		fmt.Printf("Created config at %s\n", path)
		fmt.Println("Run 'myplan profile add <name> <dsn>' to add a connection profile.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
}
