// Package commands implements the carpool command-line interface.
package commands

import (
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "carpool",
		Short:   "Carpool cost tracking and settlement",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "carpool.yaml", "path to the YAML config file")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSettleCommand())

	return rootCmd
}
