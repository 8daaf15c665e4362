package evdb

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/eventcam/internal/event"
	"github.com/banshee-data/eventcam/internal/event/container"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRecordAndQueryRecording checks the recording/stream/stats round trip.
func TestRecordAndQueryRecording(t *testing.T) {
	db := newTestDB(t)

	recordingID, err := db.RecordRecording("/data/run1.aedat", "aedat", 1024)
	require.NoError(t, err)
	require.NotEmpty(t, recordingID)

	streams := []StreamRow{
		{StreamID: 0, Content: "events", Width: 640, Height: 480},
		{StreamID: 1, Content: "triggers"},
	}
	require.NoError(t, db.RecordStreams(recordingID, streams))

	stats := []StreamStats{
		{StreamID: 0, PacketCount: 10, RecordCount: 5000, FirstT: 100, LastT: 900},
	}
	require.NoError(t, db.RecordStreamStats(recordingID, stats))

	runID, err := db.RecordIngestRun(recordingID, 250*time.Millisecond, 10, 5000)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	recordings, err := db.Recordings()
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, recordingID, recordings[0].RecordingID)
	assert.Equal(t, "aedat", recordings[0].Format)
	assert.Equal(t, int64(1024), recordings[0].SizeBytes)

	gotStats, err := db.StatsForRecording(recordingID)
	require.NoError(t, err)
	require.Len(t, gotStats, 1)
	assert.Equal(t, int64(5000), gotStats[0].RecordCount)
	assert.Equal(t, uint64(900), gotStats[0].LastT)
}

// writeTestRecording writes a two-block AEDAT file with an events stream and
// a trigger stream.
func writeTestRecording(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(container.AEDAT_MAGIC)
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.WriteByte(uint8(event.ContentEvents))
	binary.Write(&buf, binary.LittleEndian, uint16(64))
	binary.Write(&buf, binary.LittleEndian, uint16(64))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	buf.WriteByte(uint8(event.ContentTriggers))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(0))

	writeBlock := func(streamID uint32, fields []byte) {
		payload := binary.LittleEndian.AppendUint32(nil, uint32(2+len(fields)))
		payload = binary.LittleEndian.AppendUint16(payload, container.FIELD_ELEMENTS)
		payload = append(payload, fields...)
		binary.Write(&buf, binary.LittleEndian, streamID)
		binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
		buf.Write(payload)
	}

	var events bytes.Buffer
	binary.Write(&events, binary.LittleEndian, uint32(2))
	for _, e := range []event.DvsEvent{{T: 100, X: 1, Y: 2, On: true}, {T: 200, X: 3, Y: 4, On: false}} {
		binary.Write(&events, binary.LittleEndian, e.T)
		binary.Write(&events, binary.LittleEndian, e.X)
		binary.Write(&events, binary.LittleEndian, e.Y)
		if e.On {
			events.WriteByte(1)
		} else {
			events.WriteByte(0)
		}
	}
	writeBlock(0, events.Bytes())

	var triggers bytes.Buffer
	binary.Write(&triggers, binary.LittleEndian, uint32(1))
	binary.Write(&triggers, binary.LittleEndian, uint64(150))
	triggers.WriteByte(uint8(event.TriggerFrameBegin))
	writeBlock(1, triggers.Bytes())

	path := filepath.Join(dir, "run.aedat")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// TestIngest checks the decode-to-index pipeline end to end.
func TestIngest(t *testing.T) {
	db := newTestDB(t)
	path := writeTestRecording(t, t.TempDir())

	summary, err := Ingest(db, path)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if summary.Format != "aedat" {
		t.Errorf("expected aedat format, got %s", summary.Format)
	}
	if summary.Packets != 2 || summary.Records != 3 {
		t.Errorf("expected 2 packets / 3 records, got %d / %d", summary.Packets, summary.Records)
	}

	stats, err := db.StatsForRecording(summary.RecordingID)
	if err != nil {
		t.Fatalf("StatsForRecording failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 streams, got %d", len(stats))
	}
	byStream := map[uint32]StreamStats{}
	for _, s := range stats {
		byStream[s.StreamID] = s
	}
	if s := byStream[0]; s.RecordCount != 2 || s.FirstT != 100 || s.LastT != 200 {
		t.Errorf("events stream stats wrong: %+v", s)
	}
	if s := byStream[1]; s.RecordCount != 1 || s.FirstT != 150 {
		t.Errorf("trigger stream stats wrong: %+v", s)
	}
}

// TestMigrateUpAndVersion checks the migrations run against a fresh database.
func TestMigrateUpAndVersion(t *testing.T) {
	db := newTestDB(t)
	migrationsDir := filepath.Join("..", "..", "migrations")

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if dirty {
		t.Error("database should not be dirty after MigrateUp")
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
}
