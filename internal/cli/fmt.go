// Package cli provides the fmt subcommand for listenspec.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/listenspec/listenspec/internal/config"
	"github.com/listenspec/listenspec/internal/endpoint"
)

// NewFmtCmd creates the fmt subcommand.
func NewFmtCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [spec...]",
		Short: "Print listen specifications in canonical form",
		Long: `Parse listen specification strings and print them back canonically:
whitespace and dropped entries removed, IPv6 devices bracketed, one line
per input string. Running fmt on its own output is a no-op.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cfg, args)
		},
	}

	addSpecFlags(cmd, cfg)

	return cmd
}

func runFmt(cfg *config.Config, args []string) error {
	_, specs, err := setup(cfg, args)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("no listen specification given: pass one as an argument, via --file, or via --config")
	}

	for _, spec := range specs {
		entries := endpoint.Parse(spec)
		fmt.Println(endpoint.Format(entries, endpoint.IsIPv6Literal))
	}

	return nil
}
