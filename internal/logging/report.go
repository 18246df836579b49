package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/listenspec/listenspec/internal/endpoint"
)

// Report is the top-level structure for the JSON report file.
type Report struct {
	Run      RunInfo       `json:"run"`
	Specs    []SpecResult  `json:"specs"`
	Bindings []BindingInfo `json:"bindings,omitempty"`
	Watch    *WatchInfo    `json:"watch,omitempty"`
	Summary  SummaryInfo   `json:"summary"`
}

// RunInfo holds metadata about the listenspec invocation.
type RunInfo struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Command    string    `json:"command"`
	ConfigFile string    `json:"config_file,omitempty"`
}

// SpecResult holds the parse result for a single input string.
type SpecResult struct {
	Input     string      `json:"input"`
	Canonical string      `json:"canonical"`
	Entries   []EntryInfo `json:"entries"`
}

// EntryInfo represents a single parsed endpoint in the report.
type EntryInfo struct {
	Device string `json:"device"`
	Port   int    `json:"port"`
	SSL    bool   `json:"ssl"`
}

// BindingInfo represents a resolved bind address set in the report.
type BindingInfo struct {
	Endpoint  string   `json:"endpoint"`
	Source    string   `json:"source"`
	Addresses []string `json:"addresses"`
	CNAMEs    []string `json:"cnames,omitempty"`
}

// WatchInfo holds the results of a packet watch.
type WatchInfo struct {
	Interface     string   `json:"interface"`
	Ports         []uint16 `json:"ports"`
	DurationSecs  float64  `json:"duration_secs"`
	Packets       int      `json:"packets"`
	SYNPackets    int      `json:"syn_packets"`
	TCPPackets    int      `json:"tcp_packets"`
	UDPPackets    int      `json:"udp_packets"`
	UniqueSources int      `json:"unique_sources"`
	PcapFile      string   `json:"pcap_file,omitempty"`
}

// SummaryInfo holds summary statistics for the report.
type SummaryInfo struct {
	Specs      int `json:"specs"`
	Entries    int `json:"entries"`
	SSLEntries int `json:"ssl_entries"`
	Bindings   int `json:"bindings,omitempty"`
}

// NewSpecResult converts a parse result into its report form.
func NewSpecResult(input string, entries []endpoint.Entry) SpecResult {
	infos := make([]EntryInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, EntryInfo{Device: e.Device, Port: e.Port, SSL: e.SSL})
	}
	return SpecResult{
		Input:     input,
		Canonical: endpoint.Format(entries, endpoint.IsIPv6Literal),
		Entries:   infos,
	}
}

// BuildReport constructs a Report from run info and results.
func BuildReport(run RunInfo, specs []SpecResult, bindings []BindingInfo) Report {
	if specs == nil {
		specs = []SpecResult{}
	}

	summary := SummaryInfo{
		Specs:    len(specs),
		Bindings: len(bindings),
	}
	for _, sr := range specs {
		summary.Entries += len(sr.Entries)
		for _, e := range sr.Entries {
			if e.SSL {
				summary.SSLEntries++
			}
		}
	}

	return Report{
		Run:      run,
		Specs:    specs,
		Bindings: bindings,
		Summary:  summary,
	}
}

// WriteReport writes the JSON report to the specified path atomically.
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON report: %w", err)
	}

	// Write atomically: write to .tmp, then rename
	dir := filepath.Dir(path)
	tmpPath := path + ".tmp"

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report directory %s: %w", dir, err)
	}

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing temporary report file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Fallback: if rename fails (e.g., cross-device), just write directly
		os.Remove(tmpPath)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing report file: %w", err)
		}
	}

	return nil
}
