// Package cli provides the watch subcommand for listenspec.
package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/listenspec/listenspec/internal/capture"
	"github.com/listenspec/listenspec/internal/config"
	"github.com/listenspec/listenspec/internal/endpoint"
	"github.com/listenspec/listenspec/internal/logging"
	"github.com/listenspec/listenspec/internal/session"
)

// NewWatchCmd creates the watch subcommand.
func NewWatchCmd(cfg *config.Config, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [spec...]",
		Short: "Watch the specified ports for incoming traffic",
		Long: `Capture traffic to the endpoints' ports on one interface and print a
line for each new source. TCP connection attempts (SYN) always print;
repeat traffic from a known source prints only with --verbose.

Packets are also written to a pcapng capture file and a JSON report is
written at the end, unless disabled.

Needs root. Runs until interrupted, or for --duration seconds.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cfg, version, args)
		},
	}

	addSpecFlags(cmd, cfg)
	cmd.Flags().StringVar(&cfg.Iface, "iface", "", "Interface to capture on (default: first interface named in the specs)")
	cmd.Flags().StringVar(&cfg.PcapPath, "pcap", "", "Capture file path (default: ./listenspec-<id>-<timestamp>.pcapng)")
	cmd.Flags().BoolVar(&cfg.NoPcap, "no-pcap", false, "Skip the capture file")
	cmd.Flags().StringVar(&cfg.ReportPath, "report", "", "Report file path (default: ./listenspec-<id>-<timestamp>.json)")
	cmd.Flags().BoolVar(&cfg.NoReport, "no-report", false, "Skip the JSON report file")
	cmd.Flags().IntVar(&cfg.Duration, "duration", 0, "Stop after this many seconds (0 = until interrupted)")

	return cmd
}

func runWatch(cfg *config.Config, version string, args []string) error {
	if err := checkPlatform(); err != nil {
		return err
	}
	if err := checkPrivileges(); err != nil {
		return err
	}

	logger, specs, err := setup(cfg, args)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("no listen specification given: pass one as an argument, via --file, or via --config")
	}

	results, entries := parseSpecs(specs)
	ports := endpoint.Ports(entries)
	if len(ports) == 0 {
		return fmt.Errorf("no concrete ports to watch")
	}

	iface, err := watchInterface(cfg, entries)
	if err != nil {
		return err
	}

	pcapPath := ""
	if !cfg.NoPcap {
		pcapPath = cfg.PcapPath
		if pcapPath == "" {
			pcapPath = session.DefaultPcapPath(cfg.RunID)
		}
	}

	eventLogger := logging.NewEventLogger(logger)
	eventLogger.Start()

	pcapCapture := capture.New(capture.Config{
		Interface: iface,
		FilePath:  pcapPath,
		Ports:     ports,
		Logger:    logger,
		Events:    eventLogger.EventCh(),
		Comment:   capture.BuildSectionComment(version, cfg.RunID, iface, ports, specs),
	})

	startTime := time.Now()
	if err := pcapCapture.Start(); err != nil {
		eventLogger.Stop()
		return fmt.Errorf("starting capture: %w", err)
	}
	logger.WatchStart(iface, ports, pcapPath)

	// Wait for a signal or the duration timer.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var timerC <-chan time.Time
	if cfg.Duration > 0 {
		timer := time.NewTimer(time.Duration(cfg.Duration) * time.Second)
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case sig := <-sigChan:
		logger.Debug("Received signal: %v", sig)
	case <-timerC:
		logger.Debug("Watch duration elapsed")
	}

	duration := time.Since(startTime)

	if err := pcapCapture.Stop(); err != nil {
		logger.Debug("Capture stop error: %v", err)
	}
	eventLogger.Stop()

	summary := eventLogger.GetSummary()
	logger.PrintWatchSummary(duration, summary, eventLogger.GetSources())

	if cfg.NoReport {
		return nil
	}

	reportPath := cfg.ReportPath
	if reportPath == "" {
		reportPath = session.DefaultReportPath(cfg.RunID)
	}

	report := logging.BuildReport(runInfo(cfg, "watch"), results, nil)
	report.Watch = &logging.WatchInfo{
		Interface:     iface,
		Ports:         ports,
		DurationSecs:  duration.Seconds(),
		Packets:       summary.TotalPackets,
		SYNPackets:    summary.SYNPackets,
		TCPPackets:    summary.TCPPackets,
		UDPPackets:    summary.UDPPackets,
		UniqueSources: summary.UniqueSources,
		PcapFile:      pcapPath,
	}

	if err := logging.WriteReport(reportPath, report); err != nil {
		logger.Error("Failed to write report: %v", err)
		return nil
	}
	logger.Info("Report written to %s", reportPath)

	return nil
}

// watchInterface picks the capture interface: the --iface flag when given,
// otherwise the first spec device that names a local interface.
func watchInterface(cfg *config.Config, entries []endpoint.Entry) (string, error) {
	if cfg.Iface != "" {
		return cfg.Iface, nil
	}
	for _, e := range entries {
		if e.Device == "" || net.ParseIP(e.Device) != nil {
			continue
		}
		if _, err := net.InterfaceByName(e.Device); err == nil {
			return e.Device, nil
		}
	}
	return "", fmt.Errorf("no capture interface: name one with --iface or use an interface device in the spec")
}
