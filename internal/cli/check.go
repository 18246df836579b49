// Package cli provides the check subcommand for listenspec.
package cli

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenspec/listenspec/internal/config"
	"github.com/listenspec/listenspec/internal/endpoint"
	"github.com/listenspec/listenspec/internal/logging"
	"github.com/listenspec/listenspec/internal/strutil"
)

// NewCheckCmd creates the check subcommand.
func NewCheckCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [spec...]",
		Short: "Parse listen specifications and show what survives",
		Long: `Parse listen specification strings and print the surviving entries.

check applies the daemon's exact parsing rules: a missing colon abandons
the rest of the string, while an entry with a bad port only drops that
entry. The canonical form shows what the daemon would actually use.

Exits non-zero when a non-empty input yields no valid endpoints.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cfg, args)
		},
	}

	addSpecFlags(cmd, cfg)
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "Output format: text or json")
	cmd.Flags().StringVar(&cfg.ReportPath, "report", "", "Write a JSON report to this path")

	return cmd
}

func runCheck(cfg *config.Config, args []string) error {
	logger, specs, err := setup(cfg, args)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("no listen specification given: pass one as an argument, via --file, or via --config")
	}

	results, entries := parseSpecs(specs)
	report := logging.BuildReport(runInfo(cfg, "check"), results, nil)

	if cfg.Output == "json" {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printCheckText(results)
	}

	logConfigExtras(cfg, logger)
	logger.Info("Parsed %s", endpoint.Summary(entries))

	if err := maybeWriteReport(cfg, logger, report); err != nil {
		return err
	}

	return requireEndpoints(specs, entries)
}

func printCheckText(results []logging.SpecResult) {
	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("input:     %s\n", res.Input)
		fmt.Printf("canonical: %s\n", res.Canonical)
		for _, e := range res.Entries {
			line := fmt.Sprintf("  device=%q port=%d", e.Device, e.Port)
			if e.SSL {
				line += " ssl"
			}
			fmt.Println(line)
		}
		if len(res.Entries) == 0 {
			fmt.Println("  (no valid endpoints)")
		}
	}
}

// logConfigExtras reports the sibling daemon-config keys when present, so
// checking a config file covers them too.
func logConfigExtras(cfg *config.Config, logger *logging.StderrLogger) {
	if cfg.Outgoing != "" {
		ifaces := strutil.CommaList(cfg.Outgoing)
		logger.Info("Outgoing interfaces: %s", strings.Join(ifaces, ", "))
	}
	if cfg.Bootstrap != "" {
		nodes := strutil.CommaPortList(cfg.Bootstrap)
		parts := make([]string, 0, len(nodes))
		for _, n := range nodes {
			parts = append(parts, net.JoinHostPort(n.Host, strconv.Itoa(n.Port)))
		}
		logger.Info("Bootstrap nodes: %s", strings.Join(parts, ", "))
	}
}

// requireEndpoints fails the run when parsing produced nothing from input
// that was not empty to begin with.
func requireEndpoints(specs []string, entries []endpoint.Entry) error {
	if len(entries) > 0 {
		return nil
	}
	for _, spec := range specs {
		if strings.TrimSpace(spec) != "" {
			if len(specs) == 1 {
				return fmt.Errorf("no valid endpoints in %q", spec)
			}
			return fmt.Errorf("no valid endpoints in %d specifications", len(specs))
		}
	}
	return nil
}
