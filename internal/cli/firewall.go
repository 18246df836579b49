// Package cli provides the firewall subcommand for listenspec.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/listenspec/listenspec/internal/config"
	"github.com/listenspec/listenspec/internal/firewall"
	"github.com/listenspec/listenspec/internal/interactive"
)

// NewFirewallCmd creates the firewall subcommand.
func NewFirewallCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firewall [spec...]",
		Short: "Open nftables accept rules for the specified endpoints",
		Long: `Install one nftables accept rule per endpoint and protocol so the
configured listeners are reachable. The rules live in their own inet
table and never touch other tables; running firewall again replaces the
previous rule set.

Needs root. Shows the rules and asks for confirmation unless --yes.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFirewall(cfg, args)
		},
	}

	addSpecFlags(cmd, cfg)
	cmd.Flags().StringVar(&cfg.Protocol, "protocol", "both", "Protocols to accept: tcp, udp, or both")
	cmd.Flags().BoolVar(&cfg.Remove, "remove", false, "Remove the listenspec table and exit")
	cmd.Flags().BoolVarP(&cfg.Yes, "yes", "y", false, "Apply without asking for confirmation")

	return cmd
}

func runFirewall(cfg *config.Config, args []string) error {
	if err := checkPlatform(); err != nil {
		return err
	}

	logger, specs, err := setup(cfg, args)
	if err != nil {
		return err
	}

	fw := firewall.New(firewall.Config{
		Protocol: cfg.Protocol,
		Logger:   logger,
	})

	if cfg.Remove {
		if err := checkPrivileges(); err != nil {
			return err
		}
		if err := fw.Remove(); err != nil {
			return fmt.Errorf("removing nftables rules: %w", err)
		}
		logger.Info("Removed nftables table %q", firewall.TableName)
		return nil
	}

	if len(specs) == 0 {
		return fmt.Errorf("no listen specification given: pass one as an argument, via --file, or via --config")
	}
	_, entries := parseSpecs(specs)
	if len(entries) == 0 {
		return fmt.Errorf("no valid endpoints to open")
	}

	lines := firewall.Preview(entries, cfg.Protocol)
	if len(lines) == 0 {
		return fmt.Errorf("no concrete ports to open: all ports are assigned at bind time")
	}
	logger.Info("Rules for table %q:", firewall.TableName)
	for _, line := range lines {
		logger.Info("  %s", line)
	}

	if err := checkPrivileges(); err != nil {
		return err
	}

	if !cfg.Yes {
		prompter := interactive.New(os.Stdin, os.Stderr)
		if !prompter.Confirm(fmt.Sprintf("Install %d rules?", len(lines))) {
			logger.Info("Aborted")
			return nil
		}
	}

	count, err := fw.Apply(entries)
	if err != nil {
		return fmt.Errorf("applying nftables rules: %w", err)
	}

	logger.Info("Installed %d rules in table %q", count, firewall.TableName)
	logger.Info("Remove with: listenspec firewall --remove")
	return nil
}
