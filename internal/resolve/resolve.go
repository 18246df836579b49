// Package resolve expands parsed listen endpoints into the concrete
// addresses they would bind to.
package resolve

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/vishvananda/netlink"

	"github.com/listenspec/listenspec/internal/endpoint"
	"github.com/listenspec/listenspec/internal/logging"
)

// Device classification sources.
const (
	SourceWildcard  = "wildcard"  // empty device: bind all addresses
	SourceLiteral   = "literal"   // device is an IP address
	SourceInterface = "interface" // device is a local interface name
	SourceDNS       = "dns"       // device resolved as a hostname
)

// Binding pairs an endpoint with the addresses it would bind to.
type Binding struct {
	Entry  endpoint.Entry
	Source string
	Addrs  []net.IP
	CNAMEs []string // intermediate CNAME targets for DNS-resolved devices
}

// Options holds the configuration for creating a Resolver.
type Options struct {
	Nameserver string // upstream DNS server as host:port; empty = system default
	NetNS      string // named network namespace for interface lookups
	NoIPv6     bool
	Logger     *logging.StderrLogger
}

// Resolver expands endpoint entries into bindings.
type Resolver struct {
	nameserver string
	netns      string
	noIPv6     bool
	logger     *logging.StderrLogger
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	return &Resolver{
		nameserver: opts.Nameserver,
		netns:      opts.NetNS,
		noIPv6:     opts.NoIPv6,
		logger:     opts.Logger,
	}
}

// Resolve expands each entry into a Binding. Interface names that do not
// exist locally fall through to DNS resolution.
func (r *Resolver) Resolve(ctx context.Context, entries []endpoint.Entry) ([]Binding, error) {
	bindings := make([]Binding, 0, len(entries))

	for _, e := range entries {
		b := Binding{Entry: e, Source: Classify(e.Device)}

		switch b.Source {
		case SourceWildcard:
			b.Addrs = WildcardAddrs(r.noIPv6)

		case SourceLiteral:
			// Explicit literals are kept even when IPv6 expansion is off.
			b.Addrs = []net.IP{net.ParseIP(e.Device)}

		default:
			addrs, err := r.interfaceAddrs(e.Device)
			if err == nil {
				b.Source = SourceInterface
				b.Addrs = addrs
				break
			}
			if !strings.Contains(err.Error(), "not found") {
				return nil, fmt.Errorf("looking up interface %s: %w", e.Device, err)
			}

			r.logger.Debug("no interface %q, trying DNS", e.Device)
			ips, cnames, err := r.queryHost(ctx, e.Device)
			if err != nil {
				return nil, fmt.Errorf("resolving %s: %w", e.Device, err)
			}
			b.Source = SourceDNS
			b.Addrs = ips
			b.CNAMEs = cnames
		}

		bindings = append(bindings, b)
	}

	return bindings, nil
}

// Classify reports how a device string will be interpreted: an empty device
// is a wildcard, an IP literal binds itself, and anything else is a name
// (interface first, DNS as fallback).
func Classify(device string) string {
	if device == "" {
		return SourceWildcard
	}
	if net.ParseIP(device) != nil {
		return SourceLiteral
	}
	return SourceInterface
}

// WildcardAddrs returns the addresses an empty device expands to.
func WildcardAddrs(noIPv6 bool) []net.IP {
	addrs := []net.IP{net.IPv4zero}
	if !noIPv6 {
		addrs = append(addrs, net.IPv6zero)
	}
	return addrs
}

// interfaceAddrs lists the addresses of a local interface, optionally inside
// a named network namespace.
func (r *Resolver) interfaceAddrs(device string) ([]net.IP, error) {
	if r.netns == "" {
		return lookupInterface(device, r.noIPv6)
	}

	var ips []net.IP
	err := withNetNS(r.netns, func() error {
		var err error
		ips, err = lookupInterface(device, r.noIPv6)
		return err
	})
	return ips, err
}

// lookupInterface returns the addresses assigned to a named link.
func lookupInterface(device string, noIPv6 bool) ([]net.IP, error) {
	link, err := netlink.LinkByName(device)
	if err != nil {
		return nil, err
	}

	family := netlink.FAMILY_ALL
	if noIPv6 {
		family = netlink.FAMILY_V4
	}

	addrs, err := netlink.AddrList(link, family)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", err)
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, addr := range addrs {
		ips = append(ips, addr.IP)
	}
	return ips, nil
}
