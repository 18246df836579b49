// Package strutil provides the byte-level string helpers shared by the
// listen-interface parsers: character classification, quoted-aware splitting,
// and the comma-separated list forms that appear in daemon configuration
// values.
package strutil

// IsSpace reports whether c is one of the six whitespace bytes the
// configuration grammar skips: space, tab, newline, carriage return,
// form feed, vertical tab.
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
