// Package replay reassembles event-camera byte streams from packet captures.
// Cameras that stream RAW records over UDP are often recorded as pcap files;
// replaying concatenates the datagram payloads in capture order so the result
// decodes like an on-disk recording.
package replay

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// Packet is one captured datagram payload.
type Packet struct {
	Data      []byte
	Timestamp time.Time
}

// PacketReader yields captured packets in capture order. A nil packet with a
// nil error signals the end of the capture.
type PacketReader interface {
	NextPacket() (*Packet, error)
}

// Stats counts the traffic seen during one replay.
type Stats struct {
	mu      sync.Mutex
	packets int64
	bytes   int64
}

func (s *Stats) add(payloadLen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets++
	s.bytes += int64(payloadLen)
}

// Snapshot returns the packet and byte counts so far.
func (s *Stats) Snapshot() (packets, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packets, s.bytes
}

// Run drains src into w, concatenating payloads in capture order. Empty
// payloads are skipped. Run stops at end of capture or when ctx is cancelled.
func Run(ctx context.Context, src PacketReader, w io.Writer, stats *Stats) error {
	start := time.Now()
	var count int64
	for {
		select {
		case <-ctx.Done():
			log.Printf("Replay stopping on context cancellation (%d packets replayed)", count)
			return ctx.Err()
		default:
		}

		packet, err := src.NextPacket()
		if err != nil {
			return fmt.Errorf("reading capture: %w", err)
		}
		if packet == nil {
			log.Printf("Replay complete: %d packets in %v", count, time.Since(start))
			return nil
		}
		if len(packet.Data) == 0 {
			continue
		}

		if _, err := w.Write(packet.Data); err != nil {
			return fmt.Errorf("writing payload: %w", err)
		}
		count++
		if stats != nil {
			stats.add(len(packet.Data))
		}
		if count%10000 == 0 {
			log.Printf("Replay progress: %d packets", count)
		}
	}
}

// MockReader implements PacketReader from an in-memory packet list.
type MockReader struct {
	Packets []Packet
	index   int
}

func (m *MockReader) NextPacket() (*Packet, error) {
	if m.index >= len(m.Packets) {
		return nil, nil
	}
	packet := m.Packets[m.index]
	m.index++
	return &packet, nil
}
