// Package cli provides the root command and subcommands for listenspec.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/listenspec/listenspec/internal/config"
	"github.com/listenspec/listenspec/internal/endpoint"
	"github.com/listenspec/listenspec/internal/logging"
	"github.com/listenspec/listenspec/internal/session"
)

// NewRootCmd creates the root command for listenspec.
func NewRootCmd(version ...string) *cobra.Command {
	ver := "dev"
	if len(version) > 0 && version[0] != "" {
		ver = version[0]
	}
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "listenspec",
		Short: "Parse, resolve, and apply listen-interface specifications",
		Long: `listenspec works with the comma-separated listen specification strings
used in daemon configuration, such as "0.0.0.0:6881,[::1]:6881s".

Each entry names a device (interface, IP literal, or hostname), a port,
and an optional trailing 's' marking the endpoint as SSL. listenspec
parses these strings exactly the way the daemon does, shows which entries
survive, expands them to concrete bind addresses, and can open matching
firewall rules or watch the named ports for incoming traffic.

Specs come from positional arguments, --file (one spec per line), or the
listen_interfaces key of a --config YAML file, in that order.

Example:
  listenspec check "eth0:6881, [::1]:6881s"
  listenspec resolve --nameserver 1.1.1.1 "router.example.com:6881"
  sudo listenspec firewall --protocol tcp "0.0.0.0:6881"
  sudo listenspec watch --duration 60 "eth0:6881"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddPersistentFlags(cmd, cfg)

	cmd.AddCommand(NewCheckCmd(cfg))
	cmd.AddCommand(NewFmtCmd(cfg))
	cmd.AddCommand(NewResolveCmd(cfg))
	cmd.AddCommand(NewFirewallCmd(cfg))
	cmd.AddCommand(NewWatchCmd(cfg, ver))
	cmd.AddCommand(NewVersionCmd(ver))
	cmd.AddCommand(NewCompletionCmd())

	return cmd
}

// setup finalizes the configuration for a subcommand run: the config file
// and --set overrides are applied, the result is validated, and the spec
// strings are collected from positional args, --file, and the config file,
// in that order of preference.
func setup(cfg *config.Config, args []string) (*logging.StderrLogger, []string, error) {
	if err := applyConfigFile(cfg); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.NewStderrLogger(cfg.Quiet, cfg.Verbose)

	runID, err := session.GenerateRunID()
	if err != nil {
		return nil, nil, err
	}
	cfg.RunID = runID

	specs := append([]string(nil), args...)
	if cfg.SpecFile != "" {
		fromFile, err := endpoint.LoadFile(cfg.SpecFile)
		if err != nil {
			return nil, nil, err
		}
		specs = append(specs, fromFile...)
	}
	if len(specs) == 0 {
		specs = cfg.Specs
	}

	return logger, specs, nil
}

// applyConfigFile loads --config (when given), applies --set overrides on
// top, and fills unset Config fields from the result. Flags always win.
func applyConfigFile(cfg *config.Config) error {
	if cfg.ConfigPath == "" && len(cfg.Sets) == 0 {
		return nil
	}

	f := &config.File{}
	if cfg.ConfigPath != "" {
		loaded, err := config.LoadFile(cfg.ConfigPath)
		if err != nil {
			return err
		}
		f = loaded
	}
	for _, arg := range cfg.Sets {
		if err := f.Set(arg); err != nil {
			return err
		}
	}

	cfg.ApplyFile(f)
	return nil
}

// parseSpecs runs each specification string through the endpoint parser.
func parseSpecs(specs []string) ([]logging.SpecResult, []endpoint.Entry) {
	results := make([]logging.SpecResult, 0, len(specs))
	var entries []endpoint.Entry
	for _, spec := range specs {
		parsed := endpoint.Parse(spec)
		results = append(results, logging.NewSpecResult(spec, parsed))
		entries = append(entries, parsed...)
	}
	return results, entries
}

func runInfo(cfg *config.Config, command string) logging.RunInfo {
	return logging.RunInfo{
		ID:         cfg.RunID,
		Timestamp:  time.Now(),
		Command:    command,
		ConfigFile: cfg.ConfigPath,
	}
}

// printJSON writes an indented report to stdout.
func printJSON(report logging.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// maybeWriteReport writes the report file when --report was given.
func maybeWriteReport(cfg *config.Config, logger *logging.StderrLogger, report logging.Report) error {
	if cfg.ReportPath == "" {
		return nil
	}
	if err := logging.WriteReport(cfg.ReportPath, report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("Report written to %s", cfg.ReportPath)
	return nil
}

// checkPrivileges verifies we have sufficient privileges to change kernel state.
func checkPrivileges() error {
	if os.Getuid() != 0 {
		return fmt.Errorf("this command needs root privileges: run with sudo")
	}
	return nil
}

// checkPlatform ensures we're running on Linux.
func checkPlatform() error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("nftables and packet capture need Linux")
	}
	return nil
}
