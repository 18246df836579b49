// Package logging provides output formatting and event aggregation for
// listenspec.
package logging

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// StderrLogger provides formatted output to stderr.
type StderrLogger struct {
	out     io.Writer
	quiet   bool
	verbose bool
}

// NewStderrLogger creates a new StderrLogger.
func NewStderrLogger(quiet, verbose bool) *StderrLogger {
	return &StderrLogger{
		out:     os.Stderr,
		quiet:   quiet,
		verbose: verbose,
	}
}

// Info logs an informational message.
func (l *StderrLogger) Info(format string, args ...interface{}) {
	if l.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "[listenspec] %s\n", msg)
}

// Debug logs a debug message (only if verbose is enabled).
func (l *StderrLogger) Debug(format string, args ...interface{}) {
	if l.quiet || !l.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "[listenspec] DEBUG: %s\n", msg)
}

// Error logs an error message.
func (l *StderrLogger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "[listenspec] Error: %s\n", msg)
}

// Separator prints a visual separator line.
func (l *StderrLogger) Separator() {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, "[listenspec] ───────────────────────────────────────────────")
}

// WatchStart logs the start of a packet watch.
func (l *StderrLogger) WatchStart(iface string, ports []uint16, pcapPath string) {
	if l.quiet {
		return
	}
	strs := make([]string, len(ports))
	for i, p := range ports {
		strs[i] = strconv.Itoa(int(p))
	}
	l.Info("Watching %s for traffic to ports %s", iface, strings.Join(strs, ", "))
	if pcapPath != "" {
		l.Info("Capture file: %s", pcapPath)
	}
	l.Separator()
}

// PacketEvent logs a matching packet in real-time.
func (l *StderrLogger) PacketEvent(protocol, flag string, src net.IP, srcPort, dstPort uint16, seenCount int) {
	if l.quiet {
		return
	}

	ts := time.Now().Format("15:04:05")
	proto := strings.ToUpper(protocol)

	// Verbose: show seen count
	countSuffix := ""
	if l.verbose && seenCount > 1 {
		countSuffix = fmt.Sprintf(" [seen %dx]", seenCount)
	} else if l.verbose && seenCount <= 1 {
		countSuffix = " [first seen]"
	}

	if flag != "" {
		fmt.Fprintf(l.out, "[listenspec] %s %s  %-4s %s:%d → :%d%s\n",
			ts, proto, flag, src, srcPort, dstPort, countSuffix)
	} else {
		fmt.Fprintf(l.out, "[listenspec] %s %s  %s:%d → :%d%s\n",
			ts, proto, src, srcPort, dstPort, countSuffix)
	}
}

// PrintWatchSummary prints the watch-end summary to stderr.
func (l *StderrLogger) PrintWatchSummary(duration time.Duration, s Summary, sources []SourceInfo) {
	if l.quiet {
		return
	}

	l.Separator()
	l.Info("Watch finished (duration %.1fs)", duration.Seconds())
	l.Info("Packets: %d matched (%d syn, %d tcp, %d udp), %d unique sources",
		s.TotalPackets, s.SYNPackets, s.TCPPackets, s.UDPPackets, s.UniqueSources)

	if len(sources) > 0 {
		l.Info("  Sources:")
		for _, src := range sources {
			l.Info("    %s:%d → :%d/%s ×%d", src.IP, src.SrcPort, src.DstPort, src.Protocol, src.Count)
		}
	}
}
