// pcap-replay reassembles the RAW byte stream of an event camera from a pcap
// capture of its UDP traffic. The output file decodes like an on-disk
// recording. Build with -tags=pcap to enable capture reading.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/eventcam/internal/event/decode"
	"github.com/banshee-data/eventcam/internal/replay"
)

var (
	pcapFile = flag.String("pcap", "", "PCAP capture file to replay")
	udpPort  = flag.Int("udp-port", 8888, "UDP port the camera streamed on")
	outFile  = flag.String("out", "", "Path for the reassembled recording")
	verify   = flag.Bool("verify", false, "Decode the reassembled recording after replay")
)

func main() {
	flag.Parse()

	if *pcapFile == "" || *outFile == "" {
		flag.Usage()
		log.Fatal("both -pcap and -out are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := os.Create(*outFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}

	var stats replay.Stats
	if err := replay.ReplayFile(ctx, *pcapFile, *udpPort, out, &stats); err != nil {
		out.Close()
		log.Fatalf("Replay failed: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("Failed to close output file: %v", err)
	}

	packets, bytes := stats.Snapshot()
	log.Printf("Reassembled %d packets (%d bytes) into %s", packets, bytes, *outFile)

	if *verify {
		decoder, err := decode.Open(*outFile)
		if err != nil {
			log.Fatalf("Verify failed to open recording: %v", err)
		}
		defer decoder.Close()

		var packetCount, recordCount int64
		for {
			packet, err := decoder.Next()
			if err != nil {
				log.Fatalf("Verify decode failed after %d packets: %v", packetCount, err)
			}
			if packet == nil {
				break
			}
			packetCount++
			recordCount += int64(packet.Body.RecordCount())
		}
		log.Printf("Verified: %d packets, %d records decoded cleanly", packetCount, recordCount)
	}
}
