package evdb

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/banshee-data/eventcam/internal/event"
	"github.com/banshee-data/eventcam/internal/event/decode"
)

// IngestSummary reports what one ingest run decoded and stored.
type IngestSummary struct {
	RecordingID string
	RunID       string
	Format      string
	Packets     int64
	Records     int64
	Duration    time.Duration
}

// Ingest decodes the recording at path end to end and stores its registry and
// per-stream aggregates in the index. The recording is streamed: only one
// packet is held in memory at a time, so file size does not matter.
func Ingest(db *DB, path string) (*IngestSummary, error) {
	decoder, err := decode.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer decoder.Close()

	var sizeBytes int64
	if info, err := os.Stat(path); err == nil {
		sizeBytes = info.Size()
	}

	recordingID, err := db.RecordRecording(path, decoder.Format().String(), sizeBytes)
	if err != nil {
		return nil, err
	}

	var streamRows []StreamRow
	for id, stream := range decoder.Streams() {
		streamRows = append(streamRows, StreamRow{
			StreamID: id,
			Content:  stream.Content.String(),
			Width:    stream.Width,
			Height:   stream.Height,
		})
	}
	if err := db.RecordStreams(recordingID, streamRows); err != nil {
		return nil, err
	}

	start := time.Now()
	perStream := make(map[uint32]*StreamStats)
	var totalPackets, totalRecords int64
	for {
		packet, err := decoder.Next()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if packet == nil {
			break
		}
		stats := perStream[packet.StreamID]
		if stats == nil {
			stats = &StreamStats{StreamID: packet.StreamID}
			perStream[packet.StreamID] = stats
		}
		first, last, ok := event.TimeRange(packet.Body)
		if ok {
			if stats.PacketCount == 0 || first < stats.FirstT {
				stats.FirstT = first
			}
			if last > stats.LastT {
				stats.LastT = last
			}
		}
		stats.PacketCount++
		stats.RecordCount += int64(packet.Body.RecordCount())
		totalPackets++
		totalRecords += int64(packet.Body.RecordCount())
	}
	duration := time.Since(start)

	var statRows []StreamStats
	for _, stats := range perStream {
		statRows = append(statRows, *stats)
	}
	if err := db.RecordStreamStats(recordingID, statRows); err != nil {
		return nil, err
	}
	runID, err := db.RecordIngestRun(recordingID, duration, totalPackets, totalRecords)
	if err != nil {
		return nil, err
	}

	log.Printf("Ingested %s: %d packets, %d records in %v", path, totalPackets, totalRecords, duration)
	return &IngestSummary{
		RecordingID: recordingID,
		RunID:       runID,
		Format:      decoder.Format().String(),
		Packets:     totalPackets,
		Records:     totalRecords,
		Duration:    duration,
	}, nil
}
