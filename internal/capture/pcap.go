package capture

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"golang.org/x/sys/unix"

	"github.com/listenspec/listenspec/internal/logging"
)

// Capture watches an interface for traffic to a set of destination ports,
// emits an event per matching packet, and optionally writes the matches to
// a pcapng file.
type Capture struct {
	iface    string
	filePath string
	ports    map[uint16]struct{}
	logger   *logging.StderrLogger
	events   chan<- logging.Event
	comment  string

	fd     int
	file   *os.File
	writer *pcapgo.NgWriter
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	count  atomic.Int64
}

// Config holds configuration for creating a Capture.
type Config struct {
	Interface string
	FilePath  string   // output pcapng path; empty disables the file
	Ports     []uint16 // destination ports to match
	Logger    *logging.StderrLogger
	Events    chan<- logging.Event // optional event stream
	Comment   string               // pcapng section comment
}

// New creates a new Capture instance.
func New(cfg Config) *Capture {
	ctx, cancel := context.WithCancel(context.Background())
	ports := make(map[uint16]struct{}, len(cfg.Ports))
	for _, p := range cfg.Ports {
		ports[p] = struct{}{}
	}
	return &Capture{
		iface:    cfg.Interface,
		filePath: cfg.FilePath,
		ports:    ports,
		logger:   cfg.Logger,
		events:   cfg.Events,
		comment:  cfg.Comment,
		fd:       -1,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start opens the capture socket and begins watching packets.
func (c *Capture) Start() error {
	// Open raw AF_PACKET socket
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return fmt.Errorf("creating raw socket: %w", err)
	}
	c.fd = fd

	// Get interface index
	iface, err := net.InterfaceByName(c.iface)
	if err != nil {
		unix.Close(fd)
		c.fd = -1
		return fmt.Errorf("getting interface %s: %w", c.iface, err)
	}

	// Bind to the specific interface
	sa := unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, &sa); err != nil {
		unix.Close(fd)
		c.fd = -1
		return fmt.Errorf("binding to interface %s: %w", c.iface, err)
	}

	// Set promiscuous mode
	mreq := unix.PacketMreq{
		Ifindex: int32(iface.Index),
		Type:    unix.PACKET_MR_PROMISC,
	}
	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, &mreq); err != nil {
		c.logger.Debug("Warning: could not set promiscuous mode on %s: %v", c.iface, err)
	}

	// Set read timeout so we can check context cancellation periodically
	tv := unix.Timeval{Sec: 1}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		c.logger.Debug("Warning: could not set socket timeout: %v", err)
	}

	if c.filePath != "" {
		if err := c.openWriter(); err != nil {
			unix.Close(fd)
			c.fd = -1
			return err
		}
	}

	c.logger.Debug("watch started on %s (%d ports)", c.iface, len(c.ports))

	c.wg.Add(1)
	go c.captureLoop()

	return nil
}

// openWriter creates the pcapng output file.
func (c *Capture) openWriter() error {
	f, err := os.Create(c.filePath)
	if err != nil {
		return fmt.Errorf("creating pcap file %s: %w", c.filePath, err)
	}
	c.file = f

	intf := pcapgo.NgInterface{
		Name:       c.iface,
		LinkType:   layers.LinkTypeEthernet,
		SnapLength: 65535,
	}
	opts := pcapgo.NgWriterOptions{
		SectionInfo: pcapgo.NgSectionInfo{
			Application: "listenspec",
			Comment:     c.comment,
		},
	}
	w, err := pcapgo.NewNgWriterInterface(f, intf, opts)
	if err != nil {
		f.Close()
		os.Remove(c.filePath)
		return fmt.Errorf("creating pcapng writer: %w", err)
	}
	c.writer = w
	return nil
}

// captureLoop reads packets from the raw socket, keeping only those
// destined for a watched port.
func (c *Capture) captureLoop() {
	defer c.wg.Done()

	buf := make([]byte, 65536)

	for {
		if c.ctx.Err() != nil {
			return
		}

		n, _, err := unix.Recvfrom(c.fd, buf, 0)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if isTimeout(err) {
				continue
			}
			c.logger.Debug("watch read error: %v", err)
			continue
		}

		if n == 0 {
			continue
		}

		// The read buffer is reused; matching packets get their own copy.
		data := make([]byte, n)
		copy(data, buf[:n])

		ev, ok := matchPacket(data, c.ports)
		if !ok {
			continue
		}
		c.count.Add(1)

		if c.writer != nil {
			ci := gopacket.CaptureInfo{
				Timestamp:     ev.Timestamp,
				CaptureLength: n,
				Length:        n,
			}
			if err := c.writer.WritePacket(ci, data); err != nil {
				c.logger.Debug("pcap write error: %v", err)
			}
		}

		if c.events != nil {
			select {
			case c.events <- ev:
			case <-c.ctx.Done():
				return
			}
		}
	}
}

// matchPacket decodes a frame and reports whether it is TCP or UDP traffic
// to one of the watched ports.
func matchPacket(data []byte, ports map[uint16]struct{}) (logging.Event, bool) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	var srcIP, dstIP net.IP
	if ipLayer := packet.Layer(layers.LayerTypeIPv4); ipLayer != nil {
		ip := ipLayer.(*layers.IPv4)
		srcIP, dstIP = ip.SrcIP, ip.DstIP
	} else if ipLayer := packet.Layer(layers.LayerTypeIPv6); ipLayer != nil {
		ip := ipLayer.(*layers.IPv6)
		srcIP, dstIP = ip.SrcIP, ip.DstIP
	} else {
		return logging.Event{}, false
	}

	if tcpLayer := packet.Layer(layers.LayerTypeTCP); tcpLayer != nil {
		tcp := tcpLayer.(*layers.TCP)
		dport := uint16(tcp.DstPort)
		if _, ok := ports[dport]; !ok {
			return logging.Event{}, false
		}
		evType := logging.EventTCP
		if tcp.SYN && !tcp.ACK {
			evType = logging.EventTCPSYN
		}
		return logging.Event{
			Timestamp: time.Now(),
			Type:      evType,
			Protocol:  "tcp",
			SrcIP:     srcIP,
			SrcPort:   uint16(tcp.SrcPort),
			DstIP:     dstIP,
			DstPort:   dport,
		}, true
	}

	if udpLayer := packet.Layer(layers.LayerTypeUDP); udpLayer != nil {
		udp := udpLayer.(*layers.UDP)
		dport := uint16(udp.DstPort)
		if _, ok := ports[dport]; !ok {
			return logging.Event{}, false
		}
		return logging.Event{
			Timestamp: time.Now(),
			Type:      logging.EventUDP,
			Protocol:  "udp",
			SrcIP:     srcIP,
			SrcPort:   uint16(udp.SrcPort),
			DstIP:     dstIP,
			DstPort:   dport,
		}, true
	}

	return logging.Event{}, false
}

// Stop stops the watch, flushes the pcapng file if one was written, and
// reports stats.
func (c *Capture) Stop() error {
	c.cancel()
	c.wg.Wait()

	var firstErr error

	if c.fd >= 0 {
		unix.Close(c.fd)
		c.fd = -1
	}

	if c.writer != nil {
		if err := c.writer.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flushing pcapng: %w", err)
		}
	}

	if c.file != nil {
		if err := c.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing pcap file: %w", err)
		}
	}

	count := c.count.Load()
	if c.filePath != "" {
		if info, err := os.Stat(c.filePath); err == nil {
			c.logger.Info("Capture saved: %s (%s, %d packets)", c.filePath, formatSize(info.Size()), count)
		} else {
			c.logger.Info("Capture saved: %s (%d packets)", c.filePath, count)
		}
	}

	return firstErr
}

// Count returns the number of matched packets so far.
func (c *Capture) Count() int64 {
	return c.count.Load()
}

// htons converts a uint16 from host byte order to network byte order.
func htons(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

// isTimeout checks if an error is a socket timeout.
func isTimeout(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

// formatSize returns a human-readable file size string.
func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
