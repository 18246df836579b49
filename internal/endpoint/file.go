package endpoint

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads listen specification strings from a file, one per line.
// Blank lines and lines starting with '#' are skipped.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spec file %q: %w", path, err)
	}
	defer f.Close()

	var specs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading spec file %q: %w", path, err)
	}

	return specs, nil
}
