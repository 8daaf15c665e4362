//go:build !pcap
// +build !pcap

package replay

import (
	"context"
	"fmt"
	"io"
)

// ReplayFile is a stub implementation when PCAP support is disabled.
// Build with -tags=pcap to enable pcap replay.
func ReplayFile(ctx context.Context, pcapFile string, udpPort int, w io.Writer, stats *Stats) error {
	return fmt.Errorf("PCAP support not enabled: rebuild with -tags=pcap to enable pcap replay")
}
