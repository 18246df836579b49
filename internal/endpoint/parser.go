package endpoint

import (
	"strconv"

	"github.com/listenspec/listenspec/internal/strutil"
)

// Parse scans a listen-interface specification string into entries. It never
// fails: an entry with a bad port is dropped and scanning continues with the
// next one, while a missing ':' separator abandons the rest of the string and
// returns whatever was accumulated up to that point. Callers that need to
// tell the two apart have to re-format the result and compare. Whitespace is
// permitted between tokens but not inside them.
func Parse(raw string) []Entry {
	var out []Entry

	start := 0
	for start < len(raw) {
		for start < len(raw) && strutil.IsSpace(raw[start]) {
			start++
		}
		if start == len(raw) {
			return out
		}

		var e Entry

		if raw[start] == '[' {
			start++
			// Bracketed IPv6 literal: everything up to ']' is the device.
			devStart := start
			for start < len(raw) && raw[start] != ']' {
				start++
			}
			e.Device = raw[devStart:start]

			// Tolerate stray characters between ']' and the colon.
			for start < len(raw) && raw[start] != ':' {
				start++
			}
		} else {
			devStart := start
			for start < len(raw) && !strutil.IsSpace(raw[start]) && raw[start] != ':' {
				start++
			}
			e.Device = raw[devStart:start]
		}

		for start < len(raw) && strutil.IsSpace(raw[start]) {
			start++
		}

		// A missing port separator is a structural defect: the remainder of
		// the string is considered unparseable, not just this entry.
		if start == len(raw) || raw[start] != ':' {
			return out
		}
		start++

		for start < len(raw) && strutil.IsSpace(raw[start]) {
			start++
		}

		portStart := start
		for start < len(raw) && strutil.IsDigit(raw[start]) && raw[start] != ',' {
			start++
		}
		port := raw[portStart:start]

		if len(port) == 0 || len(port) > 5 {
			e.Port = PortInvalid
		} else {
			n, err := strconv.Atoi(port)
			if err != nil || n < 0 || n > 65535 {
				n = PortInvalid
			}
			e.Port = n
		}

		for start < len(raw) && strutil.IsSpace(raw[start]) {
			start++
		}

		if start < len(raw) && raw[start] == 's' {
			e.SSL = true
			start++
		}

		// Anything else before the separator is trailing garbage on this
		// entry; it does not affect the next one.
		for start < len(raw) && raw[start] != ',' {
			start++
		}

		if e.Port >= 0 {
			out = append(out, e)
		}

		if start < len(raw) && raw[start] == ',' {
			start++
		}
	}

	return out
}
