package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/listenspec/listenspec/internal/strutil"
)

// File mirrors the YAML configuration file. Unknown keys are tolerated so a
// daemon config can be pointed at directly.
type File struct {
	ListenInterfaces   string `yaml:"listen_interfaces"`
	OutgoingInterfaces string `yaml:"outgoing_interfaces"`
	BootstrapNodes     string `yaml:"bootstrap_nodes"`
	DNSUpstream        string `yaml:"dns_upstream"`
	Output             string `yaml:"output"`
	NetNS              string `yaml:"netns"`
	Quiet              bool   `yaml:"quiet"`
	Verbose            bool   `yaml:"verbose"`
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	f, err := ParseFile(content)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return f, nil
}

// ParseFile parses YAML content into a File.
func ParseFile(content []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Set applies a single key=value override to the file values.
func (f *File) Set(arg string) error {
	if strings.IndexByte(arg, '=') < 0 {
		return fmt.Errorf("invalid --set %q: want key=value", arg)
	}
	key, value := strutil.SplitOnce(arg, '=')

	switch key {
	case "listen_interfaces":
		f.ListenInterfaces = value
	case "outgoing_interfaces":
		f.OutgoingInterfaces = value
	case "bootstrap_nodes":
		f.BootstrapNodes = value
	case "dns_upstream":
		f.DNSUpstream = value
	case "output":
		f.Output = value
	case "netns":
		f.NetNS = value
	case "quiet", "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid --set %q: want a boolean value", arg)
		}
		if key == "quiet" {
			f.Quiet = b
		} else {
			f.Verbose = b
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// ApplyFile fills unset fields of c from the file values. Flags win over
// file values, so only empty (or false) fields are filled in.
func (c *Config) ApplyFile(f *File) {
	if len(c.Specs) == 0 && f.ListenInterfaces != "" {
		c.Specs = []string{f.ListenInterfaces}
	}
	if c.DNSUpstream == "" {
		c.DNSUpstream = f.DNSUpstream
	}
	if c.Output == "" {
		c.Output = f.Output
	}
	if c.NetNS == "" {
		c.NetNS = f.NetNS
	}
	if !c.Quiet {
		c.Quiet = f.Quiet
	}
	if !c.Verbose {
		c.Verbose = f.Verbose
	}
	c.Outgoing = f.OutgoingInterfaces
	c.Bootstrap = f.BootstrapNodes
}
