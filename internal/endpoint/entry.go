// Package endpoint parses and formats the listen-interface specification
// string used in daemon configuration: a comma-separated list of entries such
// as "0.0.0.0:6881,[::1]:6881s", each naming a device or address, a port, and
// an optional trailing 's' marking the endpoint as SSL.
package endpoint

import "fmt"

// PortInvalid marks an entry whose port token was missing, malformed, or out
// of range. Parse never emits entries carrying it.
const PortInvalid = -1

// Entry is one requested listen point from a specification string.
type Entry struct {
	Device string // interface name, IPv4/hostname literal, or IPv6 literal without brackets
	Port   int    // 0-65535, or PortInvalid
	SSL    bool   // entry carried the trailing trust marker 's'
}

// String renders the entry in canonical specification form, bracketing IPv6
// literal devices.
func (e Entry) String() string {
	return Format([]Entry{e}, IsIPv6Literal)
}

// Ports returns the distinct ports named by entries, in first-appearance
// order. Port 0 asks the OS to pick and names no concrete port, so it is
// excluded.
func Ports(entries []Entry) []uint16 {
	var ports []uint16
	seen := make(map[uint16]struct{})
	for _, e := range entries {
		if e.Port <= 0 {
			continue
		}
		p := uint16(e.Port)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		ports = append(ports, p)
	}
	return ports
}

// Summary returns a short human-readable count of entries, e.g.
// "3 endpoints (1 ssl)".
func Summary(entries []Entry) string {
	ssl := 0
	for _, e := range entries {
		if e.SSL {
			ssl++
		}
	}

	switch {
	case len(entries) == 1 && ssl == 0:
		return "1 endpoint"
	case ssl == 0:
		return fmt.Sprintf("%d endpoints", len(entries))
	default:
		return fmt.Sprintf("%d endpoints (%d ssl)", len(entries), ssl)
	}
}
