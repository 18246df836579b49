package endpoint

import (
	"net/netip"
	"strconv"
	"strings"
)

// Format renders entries back into specification form, the inverse of Parse
// up to whitespace and trailing garbage. isV6 decides whether a device must
// be wrapped in square brackets; pass IsIPv6Literal unless the caller has its
// own address subsystem. Ports are not re-validated.
func Format(entries []Entry, isV6 func(device string) bool) string {
	var b strings.Builder

	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}

		if isV6(e.Device) {
			b.WriteByte('[')
			b.WriteString(e.Device)
			b.WriteByte(']')
		} else {
			b.WriteString(e.Device)
		}

		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Port))
		if e.SSL {
			b.WriteByte('s')
		}
	}

	return b.String()
}

// IsIPv6Literal reports whether device parses as an IPv6 address literal,
// including v4-mapped and zoned forms. It is the default bracket predicate
// for Format.
func IsIPv6Literal(device string) bool {
	addr, err := netip.ParseAddr(device)
	return err == nil && addr.Is6()
}
