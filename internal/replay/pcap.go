//go:build pcap
// +build pcap

package replay

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// fileReader adapts a gopacket source to the PacketReader interface,
// extracting the UDP payload of each captured frame.
type fileReader struct {
	source *gopacket.PacketSource
}

func (r *fileReader) NextPacket() (*Packet, error) {
	for {
		packet, ok := <-r.source.Packets()
		if !ok || packet == nil {
			return nil, nil
		}
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp, ok := udpLayer.(*layers.UDP)
		if !ok {
			continue
		}
		return &Packet{Data: udp.Payload, Timestamp: packet.Metadata().Timestamp}, nil
	}
}

// ReplayFile streams the UDP payloads of a pcap capture into w, filtered to
// the camera's port. Only available when building with the 'pcap' build tag.
func ReplayFile(ctx context.Context, pcapFile string, udpPort int, w io.Writer, stats *Stats) error {
	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return fmt.Errorf("failed to open PCAP file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filterStr := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filterStr); err != nil {
		return fmt.Errorf("failed to set BPF filter '%s': %w", filterStr, err)
	}
	log.Printf("PCAP BPF filter set: %s", filterStr)

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	return Run(ctx, &fileReader{source: source}, w, stats)
}
