// Package config provides the unified configuration struct for listenspec.
package config

import (
	"fmt"
	"net"
	"strconv"
)

// Config holds all parsed CLI state for a listenspec run.
type Config struct {
	// Input selection
	Specs      []string // positional listen-interface strings
	SpecFile   string   // --file path (one spec per line)
	ConfigPath string   // --config YAML path
	Sets       []string // raw --set key=value overrides

	// Output options
	Output     string // text or json
	ReportPath string // --report path for the JSON report
	Quiet      bool
	Verbose    bool

	// Resolution options
	DNSUpstream string // --nameserver value, IP with optional port
	NetNS       string // named network namespace for interface lookups
	NoIPv6      bool

	// Firewall options
	Protocol string // tcp, udp, or both
	Remove   bool
	Yes      bool

	// Watch options
	Iface    string // capture interface override
	PcapPath string
	NoPcap   bool // skip the capture file
	NoReport bool // skip the JSON report file
	Duration int  // capture duration in seconds (0 = until interrupted)

	// Config-file-only keys (no flag equivalents)
	Outgoing  string // outgoing_interfaces value
	Bootstrap string // bootstrap_nodes value

	// Derived values (set after parsing)
	RunID string // generated 4-char hex
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Output {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid output format %q: use text or json", c.Output)
	}

	switch c.Protocol {
	case "", "tcp", "udp", "both":
	default:
		return fmt.Errorf("invalid protocol %q: use tcp, udp, or both", c.Protocol)
	}

	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative (got %d)", c.Duration)
	}

	// Check DNS upstream if set
	if c.DNSUpstream != "" {
		host, port, err := net.SplitHostPort(c.DNSUpstream)
		if err != nil {
			host, port = c.DNSUpstream, ""
		}
		if ip := net.ParseIP(host); ip == nil {
			return fmt.Errorf("invalid DNS upstream IP: %s", c.DNSUpstream)
		}
		if port != "" {
			n, err := strconv.Atoi(port)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("invalid DNS upstream port: %s", c.DNSUpstream)
			}
		}
	}

	return nil
}

// Nameserver returns the configured DNS upstream as a dialable host:port,
// defaulting the port to 53. Empty if no upstream is configured.
func (c *Config) Nameserver() string {
	if c.DNSUpstream == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(c.DNSUpstream); err == nil {
		return c.DNSUpstream
	}
	return net.JoinHostPort(c.DNSUpstream, "53")
}
