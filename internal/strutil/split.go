package strutil

// SplitOnce splits s at the first occurrence of sep and returns the two
// halves, excluding the separator itself. When s begins with a double quote
// (and sep is not itself a double quote), everything up to and including the
// closing quote is protected: a sep inside that span is not a split point.
// Quotes are kept verbatim in head; only the first quoted span is protected.
// If sep never occurs, head is all of s and rest is empty.
func SplitOnce(s string, sep byte) (head, rest string) {
	if s == "" {
		return "", ""
	}

	// Phase 1: walk past a leading quoted span, stopping on the closing quote.
	pos := 0
	if s[0] == '"' && sep != '"' {
		for i := 1; i < len(s); i++ {
			pos = i
			if s[i] == '"' {
				break
			}
		}
	}

	// Phase 2: scan for the separator from wherever phase 1 stopped.
	for pos < len(s) && s[pos] != sep {
		pos++
	}
	if pos == len(s) {
		return s, ""
	}
	return s[:pos], s[pos+1:]
}
