// Package capture provides port-filtered packet capture for listenspec
// watches.
package capture

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildSectionComment returns a comment string for the pcapng section header.
func BuildSectionComment(version, runID, iface string, ports []uint16, specs []string) string {
	var sb strings.Builder

	if version != "" {
		fmt.Fprintf(&sb, "listenspec %s | run %s\n", version, runID)
	} else {
		fmt.Fprintf(&sb, "listenspec | run %s\n", runID)
	}
	fmt.Fprintf(&sb, "interface: %s\n", iface)

	portStrs := make([]string, len(ports))
	for i, p := range ports {
		portStrs[i] = strconv.Itoa(int(p))
	}
	fmt.Fprintf(&sb, "ports: %s\n", strings.Join(portStrs, ", "))

	if len(specs) > 0 {
		fmt.Fprintf(&sb, "specs: %s\n", strings.Join(specs, ", "))
	}

	return sb.String()
}
