package strutil

import (
	"net"
	"strconv"
	"strings"
)

// HostPort is one "host:port" item from a comma-separated list, with the
// host stripped of surrounding IPv6 brackets.
type HostPort struct {
	Host string
	Port int
}

// String renders the pair in dialable form, re-bracketing IPv6 hosts.
func (hp HostPort) String() string {
	return net.JoinHostPort(hp.Host, strconv.Itoa(hp.Port))
}

// CommaList splits a comma-separated configuration value into items with
// surrounding whitespace removed. Interior empty items are preserved
// ("a,,b" yields three items); a trailing comma does not produce one.
func CommaList(s string) []string {
	var out []string

	start := 0
	for start < len(s) {
		for start < len(s) && IsSpace(s[start]) {
			start++
		}

		end := strings.IndexByte(s[start:], ',')
		if end == -1 {
			end = len(s)
		} else {
			end += start
		}

		softEnd := end
		for softEnd > start && IsSpace(s[softEnd-1]) {
			softEnd--
		}

		out = append(out, s[start:softEnd])
		start = end + 1
	}

	return out
}

// CommaPortList splits a comma-separated list of "host:port" items. The port
// is taken after the last colon in each item, so bare IPv6 hosts work with or
// without brackets; brackets are stripped from the host. Items without a
// colon are silently dropped, and a non-numeric port reads as 0. This is the
// forgiving sibling of the listen-interface parser, for values like DHT
// bootstrap node lists where best-effort extraction is wanted.
func CommaPortList(s string) []HostPort {
	var out []HostPort

	start := 0
	for start < len(s) {
		for start < len(s) && IsSpace(s[start]) {
			start++
		}

		end := strings.IndexByte(s[start:], ',')
		if end == -1 {
			end = len(s)
		} else {
			end += start
		}

		colon := strings.LastIndexByte(s[:end], ':')
		if colon > start {
			port := atoiPrefix(s[colon+1 : end])

			softEnd := colon
			for softEnd > start && IsSpace(s[softEnd-1]) {
				softEnd--
			}

			// Strip square brackets so IPv6 hosts come out bare.
			if s[start] == '[' {
				start++
			}
			if softEnd > start && s[softEnd-1] == ']' {
				softEnd--
			}

			out = append(out, HostPort{Host: s[start:softEnd], Port: port})
		}

		start = end + 1
	}

	return out
}

// atoiPrefix parses the leading integer of s after optional whitespace and
// sign, ignoring any trailing text. Returns 0 when no digits are present.
func atoiPrefix(s string) int {
	i := 0
	for i < len(s) && IsSpace(s[i]) {
		i++
	}

	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}

	k := j
	for k < len(s) && IsDigit(s[k]) {
		k++
	}
	if k == j {
		return 0
	}

	n, err := strconv.Atoi(s[i:k])
	if err != nil {
		return 0
	}
	return n
}
