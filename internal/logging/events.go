package logging

import (
	"net"
	"time"
)

// EventType identifies the type of observed packet.
type EventType int

const (
	// EventTCPSYN is an inbound TCP connection attempt (SYN without ACK).
	EventTCPSYN EventType = iota
	// EventTCP is any other TCP segment to a watched port.
	EventTCP
	// EventUDP is a UDP datagram to a watched port.
	EventUDP
)

// Event represents a packet observed during a watch.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Protocol  string // "tcp" or "udp"
	SrcIP     net.IP
	SrcPort   uint16
	DstIP     net.IP
	DstPort   uint16
}

// IsSYN returns true for TCP connection attempts. SYNs are always printed,
// even when duplicate suppression applies to other traffic.
func (e *Event) IsSYN() bool {
	return e.Type == EventTCPSYN
}
