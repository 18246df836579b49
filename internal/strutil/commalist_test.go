package strutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommaList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "eth0", []string{"eth0"}},
		{"two items", "eth0,eth1", []string{"eth0", "eth1"}},
		{"spaces trimmed", " eth0 , eth1 ", []string{"eth0", "eth1"}},
		{"tabs trimmed", "eth0,\teth1,\neth2", []string{"eth0", "eth1", "eth2"}},
		{"interior empty preserved", "a,,b", []string{"a", "", "b"}},
		{"trailing comma ignored", "a,", []string{"a"}},
		{"only spaces", " ", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommaList(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CommaList(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestCommaPortList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []HostPort
	}{
		{"empty", "", nil},
		{
			"two hosts",
			"router.example.com:6881,dht.example.org:6881",
			[]HostPort{{"router.example.com", 6881}, {"dht.example.org", 6881}},
		},
		{
			"bracketed ipv6",
			"[::1]:6881",
			[]HostPort{{"::1", 6881}},
		},
		{
			"bare ipv6 splits at last colon",
			"::1:6881",
			[]HostPort{{"::1", 6881}},
		},
		{
			"surrounding spaces",
			" [2001:db8::1]:6881 , example.com:80",
			[]HostPort{{"2001:db8::1", 6881}, {"example.com", 80}},
		},
		{"no colon dropped", "host", nil},
		{"second item without colon dropped", "a:1,b", []HostPort{{"a", 1}}},
		{"colon at start dropped", ":80", nil},
		{"non-numeric port reads zero", "host:abc", []HostPort{{"host", 0}}},
		{"port with spaces", "host: 80 ", []HostPort{{"host", 80}}},
		{"port with trailing text", "host:80x", []HostPort{{"host", 80}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommaPortList(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CommaPortList(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestHostPortString(t *testing.T) {
	tests := []struct {
		hp   HostPort
		want string
	}{
		{HostPort{"example.com", 80}, "example.com:80"},
		{HostPort{"::1", 6881}, "[::1]:6881"},
		{HostPort{"10.0.0.1", 0}, "10.0.0.1:0"},
	}

	for _, tt := range tests {
		if got := tt.hp.String(); got != tt.want {
			t.Errorf("HostPort%v.String() = %q, want %q", tt.hp, got, tt.want)
		}
	}
}

func TestAtoiPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"42", 42},
		{"  42", 42},
		{"42abc", 42},
		{"-7", -7},
		{"+7", 7},
		{"abc", 0},
		{"-", 0},
		{"99999999999999999999", 0},
	}

	for _, tt := range tests {
		if got := atoiPrefix(tt.in); got != tt.want {
			t.Errorf("atoiPrefix(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
