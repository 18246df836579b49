package logging

import (
	"context"
	"fmt"
	"sync"
)

// EventLogger aggregates packet events from the capture loop, handles
// real-time stderr output, and collects statistics for the watch summary.
type EventLogger struct {
	events  []Event
	mu      sync.Mutex
	logger  *StderrLogger
	eventCh chan Event
	seen    map[string]int // dedup key -> count
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEventLogger creates a new EventLogger.
func NewEventLogger(logger *StderrLogger) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		events:  make([]Event, 0, 256),
		logger:  logger,
		eventCh: make(chan Event, 1024),
		seen:    make(map[string]int),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// EventCh returns the channel for sending events to the logger.
func (el *EventLogger) EventCh() chan<- Event {
	return el.eventCh
}

// Start begins processing events in a background goroutine.
func (el *EventLogger) Start() {
	el.wg.Add(1)
	go func() {
		defer el.wg.Done()
		for {
			select {
			case <-el.ctx.Done():
				el.drain()
				return
			case ev, ok := <-el.eventCh:
				if !ok {
					return
				}
				el.processEvent(ev)
			}
		}
	}()
}

// Stop stops the event logger and waits for all events to be processed.
func (el *EventLogger) Stop() {
	el.cancel()
	el.wg.Wait()
}

// drain processes any remaining events in the channel after context cancellation.
func (el *EventLogger) drain() {
	for {
		select {
		case ev, ok := <-el.eventCh:
			if !ok {
				return
			}
			el.processEvent(ev)
		default:
			return
		}
	}
}

func (el *EventLogger) processEvent(ev Event) {
	el.mu.Lock()
	el.events = append(el.events, ev)

	key := fmt.Sprintf("%s:%s:%d", ev.Protocol, ev.SrcIP, ev.DstPort)
	el.seen[key]++
	seenCount := el.seen[key]
	el.mu.Unlock()

	el.printEvent(ev, seenCount)
}

func (el *EventLogger) printEvent(ev Event, seenCount int) {
	// Connection attempts always print; repeat traffic from the same source
	// is suppressed in non-verbose mode.
	if !ev.IsSYN() && seenCount > 1 && !el.logger.verbose {
		return
	}

	flag := ""
	if ev.IsSYN() {
		flag = "SYN"
	}
	el.logger.PacketEvent(ev.Protocol, flag, ev.SrcIP, ev.SrcPort, ev.DstPort, seenCount)
}

// GetEvents returns a copy of all accumulated events.
func (el *EventLogger) GetEvents() []Event {
	el.mu.Lock()
	defer el.mu.Unlock()
	result := make([]Event, len(el.events))
	copy(result, el.events)
	return result
}

// Summary holds watch statistics.
type Summary struct {
	TotalPackets  int
	SYNPackets    int
	TCPPackets    int
	UDPPackets    int
	UniqueSources int
	UniquePorts   int
}

// GetSummary computes summary statistics from all events.
func (el *EventLogger) GetSummary() Summary {
	el.mu.Lock()
	defer el.mu.Unlock()

	var s Summary
	sources := make(map[string]struct{})
	ports := make(map[uint16]struct{})

	for _, ev := range el.events {
		s.TotalPackets++
		switch ev.Type {
		case EventTCPSYN:
			s.SYNPackets++
			s.TCPPackets++
		case EventTCP:
			s.TCPPackets++
		case EventUDP:
			s.UDPPackets++
		}
		sources[ev.SrcIP.String()] = struct{}{}
		ports[ev.DstPort] = struct{}{}
	}

	s.UniqueSources = len(sources)
	s.UniquePorts = len(ports)
	return s
}

// SourceInfo holds summarized per-source information for the watch summary.
type SourceInfo struct {
	IP       string
	SrcPort  uint16
	DstPort  uint16
	Protocol string
	Count    int
}

// GetSources returns deduplicated source information for the watch summary.
func (el *EventLogger) GetSources() []SourceInfo {
	el.mu.Lock()
	defer el.mu.Unlock()

	byKey := make(map[string]*SourceInfo)
	var order []string

	for _, ev := range el.events {
		key := fmt.Sprintf("%s:%s:%d", ev.Protocol, ev.SrcIP, ev.DstPort)
		if src, ok := byKey[key]; ok {
			src.Count++
			continue
		}
		byKey[key] = &SourceInfo{
			IP:       ev.SrcIP.String(),
			SrcPort:  ev.SrcPort,
			DstPort:  ev.DstPort,
			Protocol: ev.Protocol,
			Count:    1,
		}
		order = append(order, key)
	}

	sources := make([]SourceInfo, 0, len(order))
	for _, key := range order {
		sources = append(sources, *byKey[key])
	}
	return sources
}
