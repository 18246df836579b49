package resolve

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miekg/dns"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com.", "example.com"},
		{"Example.COM", "example.com"},
		{"TRACKER.Example.Com.", "tracker.example.com"},
		{"example.com", "example.com"},
	}

	for _, tt := range tests {
		if got := normalizeDomain(tt.in); got != tt.want {
			t.Errorf("normalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAppendAnswers(t *testing.T) {
	answers := []dns.RR{
		&dns.CNAME{
			Hdr:    dns.RR_Header{Name: "tracker.example.com.", Rrtype: dns.TypeCNAME, Class: dns.ClassINET},
			Target: "Edge.Example.COM.",
		},
		&dns.A{
			Hdr: dns.RR_Header{Name: "edge.example.com.", Rrtype: dns.TypeA, Class: dns.ClassINET},
			A:   net.ParseIP("192.0.2.10").To4(),
		},
		&dns.AAAA{
			Hdr:  dns.RR_Header{Name: "edge.example.com.", Rrtype: dns.TypeAAAA, Class: dns.ClassINET},
			AAAA: net.ParseIP("2001:db8::10"),
		},
		// Unrelated record types are ignored.
		&dns.TXT{
			Hdr: dns.RR_Header{Name: "edge.example.com.", Rrtype: dns.TypeTXT, Class: dns.ClassINET},
			Txt: []string{"v=spf1 -all"},
		},
	}

	ips, cnames := appendAnswers(answers, nil, nil)

	gotIPs := make([]string, len(ips))
	for i, ip := range ips {
		gotIPs[i] = ip.String()
	}
	if diff := cmp.Diff([]string{"192.0.2.10", "2001:db8::10"}, gotIPs); diff != "" {
		t.Errorf("appendAnswers() IPs mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"edge.example.com"}, cnames); diff != "" {
		t.Errorf("appendAnswers() CNAMEs mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendAnswers_Accumulates(t *testing.T) {
	first := []dns.RR{
		&dns.A{
			Hdr: dns.RR_Header{Name: "a.example.com.", Rrtype: dns.TypeA, Class: dns.ClassINET},
			A:   net.ParseIP("192.0.2.1").To4(),
		},
	}
	second := []dns.RR{
		&dns.AAAA{
			Hdr:  dns.RR_Header{Name: "a.example.com.", Rrtype: dns.TypeAAAA, Class: dns.ClassINET},
			AAAA: net.ParseIP("2001:db8::1"),
		},
	}

	ips, cnames := appendAnswers(first, nil, nil)
	ips, cnames = appendAnswers(second, ips, cnames)

	if len(ips) != 2 {
		t.Errorf("accumulated IPs = %d, want 2", len(ips))
	}
	if len(cnames) != 0 {
		t.Errorf("accumulated CNAMEs = %d, want 0", len(cnames))
	}
}
