// Package session provides run ID generation and artifact naming.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateRunID returns a random 4-character hex string (e.g., "a3f8").
// Run IDs distinguish artifacts from repeated invocations; artifact names
// also carry a timestamp, so collisions are harmless.
func GenerateRunID() (string, error) {
	bytes := make([]byte, 2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating run ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// ArtifactName returns a timestamped artifact file name for a run.
func ArtifactName(runID, ext string) string {
	ts := time.Now().Format("20060102-150405")
	return fmt.Sprintf("listenspec-%s-%s.%s", runID, ts, ext)
}

// DefaultReportPath returns the default JSON report path for a run.
func DefaultReportPath(runID string) string {
	return "./" + ArtifactName(runID, "json")
}

// DefaultPcapPath returns the default packet capture path for a run.
func DefaultPcapPath(runID string) string {
	return "./" + ArtifactName(runID, "pcapng")
}
