package session

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateRunID(t *testing.T) {
	// Generate multiple IDs and verify format
	seen := make(map[string]bool)
	hexPattern := regexp.MustCompile(`^[0-9a-f]{4}$`)

	for i := 0; i < 100; i++ {
		id, err := GenerateRunID()
		if err != nil {
			t.Fatalf("GenerateRunID() returned error: %v", err)
		}

		if !hexPattern.MatchString(id) {
			t.Errorf("GenerateRunID() = %q, want 4-char hex string", id)
		}
		seen[id] = true
	}

	// 100 draws from 65536 values should not all collapse to one.
	if len(seen) < 2 {
		t.Errorf("GenerateRunID() produced no variation across 100 draws")
	}
}

func TestArtifactName(t *testing.T) {
	pattern := regexp.MustCompile(`^listenspec-a3f8-\d{8}-\d{6}\.json$`)
	got := ArtifactName("a3f8", "json")
	if !pattern.MatchString(got) {
		t.Errorf("ArtifactName() = %q, want listenspec-a3f8-<timestamp>.json", got)
	}
}

func TestDefaultPaths(t *testing.T) {
	report := DefaultReportPath("a3f8")
	if !strings.HasPrefix(report, "./listenspec-a3f8-") || !strings.HasSuffix(report, ".json") {
		t.Errorf("DefaultReportPath() = %q", report)
	}

	pcap := DefaultPcapPath("a3f8")
	if !strings.HasPrefix(pcap, "./listenspec-a3f8-") || !strings.HasSuffix(pcap, ".pcapng") {
		t.Errorf("DefaultPcapPath() = %q", pcap)
	}
}
