package capture

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/listenspec/listenspec/internal/logging"
)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		t.Fatalf("serializing packet: %v", err)
	}
	return buf.Bytes()
}

func tcpPacket(t *testing.T, dstPort uint16, syn, ack bool) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IPv4(192, 0, 2, 10).To4(),
		DstIP:    net.IPv4(192, 0, 2, 1).To4(),
	}
	tcp := &layers.TCP{
		SrcPort: 43210,
		DstPort: layers.TCPPort(dstPort),
		SYN:     syn,
		ACK:     ack,
		Window:  65535,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("setting checksum layer: %v", err)
	}
	return serialize(t, eth, ip, tcp)
}

func udpPacket(t *testing.T, dstPort uint16) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(192, 0, 2, 10).To4(),
		DstIP:    net.IPv4(192, 0, 2, 1).To4(),
	}
	udp := &layers.UDP{
		SrcPort: 43210,
		DstPort: layers.UDPPort(dstPort),
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("setting checksum layer: %v", err)
	}
	return serialize(t, eth, ip, udp, gopacket.Payload([]byte("d1:ad2:id20:")))
}

func tcp6Packet(t *testing.T, dstPort uint16) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv6,
	}
	ip := &layers.IPv6{
		Version:    6,
		HopLimit:   64,
		NextHeader: layers.IPProtocolTCP,
		SrcIP:      net.ParseIP("2001:db8::10"),
		DstIP:      net.ParseIP("2001:db8::1"),
	}
	tcp := &layers.TCP{
		SrcPort: 43210,
		DstPort: layers.TCPPort(dstPort),
		SYN:     true,
		Window:  65535,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("setting checksum layer: %v", err)
	}
	return serialize(t, eth, ip, tcp)
}

func TestMatchPacket(t *testing.T) {
	ports := map[uint16]struct{}{6881: {}, 6882: {}}

	tests := []struct {
		name     string
		data     []byte
		wantOK   bool
		wantType logging.EventType
		wantProt string
	}{
		{
			name:     "tcp syn to watched port",
			data:     tcpPacket(t, 6881, true, false),
			wantOK:   true,
			wantType: logging.EventTCPSYN,
			wantProt: "tcp",
		},
		{
			name:     "tcp syn-ack is not a connection attempt",
			data:     tcpPacket(t, 6881, true, true),
			wantOK:   true,
			wantType: logging.EventTCP,
			wantProt: "tcp",
		},
		{
			name:     "tcp data to watched port",
			data:     tcpPacket(t, 6882, false, true),
			wantOK:   true,
			wantType: logging.EventTCP,
			wantProt: "tcp",
		},
		{
			name:   "tcp to unwatched port",
			data:   tcpPacket(t, 22, true, false),
			wantOK: false,
		},
		{
			name:     "udp to watched port",
			data:     udpPacket(t, 6881),
			wantOK:   true,
			wantType: logging.EventUDP,
			wantProt: "udp",
		},
		{
			name:   "udp to unwatched port",
			data:   udpPacket(t, 53),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := matchPacket(tt.data, ports)
			if ok != tt.wantOK {
				t.Fatalf("matchPacket ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ev.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", ev.Type, tt.wantType)
			}
			if ev.Protocol != tt.wantProt {
				t.Errorf("Protocol = %q, want %q", ev.Protocol, tt.wantProt)
			}
		})
	}
}

func TestMatchPacket_Addresses(t *testing.T) {
	ports := map[uint16]struct{}{6881: {}}

	ev, ok := matchPacket(tcpPacket(t, 6881, true, false), ports)
	if !ok {
		t.Fatal("matchPacket ok = false, want true")
	}
	if want := net.IPv4(192, 0, 2, 10); !ev.SrcIP.Equal(want) {
		t.Errorf("SrcIP = %v, want %v", ev.SrcIP, want)
	}
	if want := net.IPv4(192, 0, 2, 1); !ev.DstIP.Equal(want) {
		t.Errorf("DstIP = %v, want %v", ev.DstIP, want)
	}
	if ev.SrcPort != 43210 {
		t.Errorf("SrcPort = %d, want 43210", ev.SrcPort)
	}
	if ev.DstPort != 6881 {
		t.Errorf("DstPort = %d, want 6881", ev.DstPort)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestMatchPacket_IPv6(t *testing.T) {
	ports := map[uint16]struct{}{6881: {}}

	ev, ok := matchPacket(tcp6Packet(t, 6881), ports)
	if !ok {
		t.Fatal("matchPacket ok = false, want true")
	}
	if ev.Type != logging.EventTCPSYN {
		t.Errorf("Type = %v, want %v", ev.Type, logging.EventTCPSYN)
	}
	if want := net.ParseIP("2001:db8::10"); !ev.SrcIP.Equal(want) {
		t.Errorf("SrcIP = %v, want %v", ev.SrcIP, want)
	}
}

func TestMatchPacket_NonIP(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		SourceProtAddress: []byte{192, 0, 2, 10},
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte{192, 0, 2, 1},
	}
	data := serialize(t, eth, arp)

	if _, ok := matchPacket(data, map[uint16]struct{}{6881: {}}); ok {
		t.Error("matchPacket matched a non-IP frame")
	}
}

func TestBuildSectionComment(t *testing.T) {
	got := BuildSectionComment("0.3.0", "a1b2", "eth0", []uint16{6881, 6882}, []string{"eth0:6881,eth0:6882s"})
	want := "listenspec 0.3.0 | run a1b2\n" +
		"interface: eth0\n" +
		"ports: 6881, 6882\n" +
		"specs: eth0:6881,eth0:6882s\n"
	if got != want {
		t.Errorf("BuildSectionComment = %q, want %q", got, want)
	}
}

func TestBuildSectionComment_Minimal(t *testing.T) {
	got := BuildSectionComment("", "a1b2", "lo", []uint16{80}, nil)
	want := "listenspec | run a1b2\n" +
		"interface: lo\n" +
		"ports: 80\n"
	if got != want {
		t.Errorf("BuildSectionComment = %q, want %q", got, want)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{1536, "1.5 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
