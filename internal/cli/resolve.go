// Package cli provides the resolve subcommand for listenspec.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenspec/listenspec/internal/config"
	"github.com/listenspec/listenspec/internal/endpoint"
	"github.com/listenspec/listenspec/internal/logging"
	"github.com/listenspec/listenspec/internal/resolve"
	"github.com/listenspec/listenspec/internal/strutil"
)

// NewResolveCmd creates the resolve subcommand.
func NewResolveCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [spec...]",
		Short: "Expand listen specifications to concrete bind addresses",
		Long: `Expand each endpoint to the concrete addresses it would bind to.

Empty devices expand to the wildcard addresses, IP literals to
themselves, local interface names to their assigned addresses, and
anything else is resolved as a hostname against the upstream DNS server.
Interface names that do not exist locally fall through to DNS.

When a --config daemon file provides bootstrap_nodes, those hosts are
resolved as well.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, cfg, args)
		},
	}

	addSpecFlags(cmd, cfg)
	cmd.Flags().StringVar(&cfg.DNSUpstream, "nameserver", "", "Upstream DNS server for hostname devices (IP[:port])")
	cmd.Flags().StringVar(&cfg.NetNS, "netns", "", "Run interface lookups inside a named network namespace")
	cmd.Flags().BoolVar(&cfg.NoIPv6, "no-ipv6", false, "Skip IPv6 addresses")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "Output format: text or json")
	cmd.Flags().StringVar(&cfg.ReportPath, "report", "", "Write a JSON report to this path")

	return cmd
}

func runResolve(cmd *cobra.Command, cfg *config.Config, args []string) error {
	logger, specs, err := setup(cfg, args)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("no listen specification given: pass one as an argument, via --file, or via --config")
	}

	results, entries := parseSpecs(specs)
	if len(entries) == 0 {
		return fmt.Errorf("no valid endpoints to resolve")
	}

	resolver := resolve.New(resolve.Options{
		Nameserver: cfg.Nameserver(),
		NetNS:      cfg.NetNS,
		NoIPv6:     cfg.NoIPv6,
		Logger:     logger,
	})

	ctx := cmd.Context()
	bindings, err := resolver.Resolve(ctx, entries)
	if err != nil {
		return fmt.Errorf("resolving endpoints: %w", err)
	}

	// Bootstrap nodes from a daemon config resolve too: they are plain
	// host:port pairs, so they ride the same pipeline.
	var bootstrap []resolve.Binding
	if cfg.Bootstrap != "" {
		nodes := strutil.CommaPortList(cfg.Bootstrap)
		extra := make([]endpoint.Entry, 0, len(nodes))
		for _, n := range nodes {
			extra = append(extra, endpoint.Entry{Device: n.Host, Port: n.Port})
		}
		bootstrap, err = resolver.Resolve(ctx, extra)
		if err != nil {
			return fmt.Errorf("resolving bootstrap nodes: %w", err)
		}
	}

	report := logging.BuildReport(runInfo(cfg, "resolve"), results, bindingInfos(bindings))

	if cfg.Output == "json" {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printBindings(bindings)
		if len(bootstrap) > 0 {
			fmt.Println()
			fmt.Println("bootstrap nodes:")
			printBindings(bootstrap)
		}
	}

	total := 0
	for _, b := range bindings {
		total += len(b.Addrs)
	}
	logger.Info("Resolved %d endpoints to %d addresses", len(bindings), total)

	return maybeWriteReport(cfg, logger, report)
}

func printBindings(bindings []resolve.Binding) {
	for _, b := range bindings {
		addrs := make([]string, 0, len(b.Addrs))
		for _, ip := range b.Addrs {
			addrs = append(addrs, ip.String())
		}
		joined := strings.Join(addrs, ", ")
		if joined == "" {
			joined = "(no addresses)"
		}

		line := fmt.Sprintf("%-22s %-9s %s", b.Entry.String(), b.Source, joined)
		if len(b.CNAMEs) > 0 {
			line += fmt.Sprintf("  (via %s)", strings.Join(b.CNAMEs, " → "))
		}
		fmt.Println(line)
	}
}

func bindingInfos(bindings []resolve.Binding) []logging.BindingInfo {
	infos := make([]logging.BindingInfo, 0, len(bindings))
	for _, b := range bindings {
		addrs := make([]string, 0, len(b.Addrs))
		for _, ip := range b.Addrs {
			addrs = append(addrs, ip.String())
		}
		infos = append(infos, logging.BindingInfo{
			Endpoint:  b.Entry.String(),
			Source:    b.Source,
			Addresses: addrs,
			CNAMEs:    b.CNAMEs,
		})
	}
	return infos
}
