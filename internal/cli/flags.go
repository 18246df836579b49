// Package cli provides the command-line interface for listenspec.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/listenspec/listenspec/internal/config"
)

// AddPersistentFlags adds the flags shared by every subcommand.
func AddPersistentFlags(cmd *cobra.Command, cfg *config.Config) {
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Suppress informational output")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Show debug output")
	pf.StringVar(&cfg.ConfigPath, "config", "", "Daemon YAML config file to read listen_interfaces from")
	pf.StringArrayVar(&cfg.Sets, "set", nil, "Override a config file key (key=value, repeatable)")
}

// addSpecFlags adds the spec-input flags shared by the spec-consuming
// subcommands.
func addSpecFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVarP(&cfg.SpecFile, "file", "f", "", "Read specs from a file (one per line, # comments)")
}
