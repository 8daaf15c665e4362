package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/eventcam/internal/event"
	"github.com/banshee-data/eventcam/internal/event/container"
	"github.com/banshee-data/eventcam/internal/event/estream"
	"github.com/banshee-data/eventcam/internal/fsutil"
)

// aedatRecording builds a one-stream AEDAT file with a single events block.
func aedatRecording(events []event.DvsEvent) []byte {
	var buf bytes.Buffer
	buf.WriteString(container.AEDAT_MAGIC)
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // stream id
	buf.WriteByte(uint8(event.ContentEvents))
	binary.Write(&buf, binary.LittleEndian, uint16(320))
	binary.Write(&buf, binary.LittleEndian, uint16(240))

	var fields bytes.Buffer
	binary.Write(&fields, binary.LittleEndian, uint32(len(events)))
	for _, e := range events {
		binary.Write(&fields, binary.LittleEndian, e.T)
		binary.Write(&fields, binary.LittleEndian, e.X)
		binary.Write(&fields, binary.LittleEndian, e.Y)
		if e.On {
			fields.WriteByte(1)
		} else {
			fields.WriteByte(0)
		}
	}
	payload := make([]byte, 0, 6+fields.Len())
	payload = binary.LittleEndian.AppendUint32(payload, uint32(2+fields.Len()))
	payload = binary.LittleEndian.AppendUint16(payload, container.FIELD_ELEMENTS)
	payload = append(payload, fields.Bytes()...)

	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func esRecording() []byte {
	var buf bytes.Buffer
	buf.WriteString(estream.ES_MAGIC)
	buf.Write([]byte{estream.ES_VERSION_MAJOR, 0, 0, 1}) // dvs
	binary.Write(&buf, binary.LittleEndian, uint16(640))
	binary.Write(&buf, binary.LittleEndian, uint16(480))
	rec := make([]byte, estream.DVS_RECORD_SIZE)
	binary.LittleEndian.PutUint64(rec[0:8], 10)
	rec[12] = 1
	buf.Write(rec)
	return buf.Bytes()
}

func memOpen(t *testing.T, name string, data []byte) *Decoder {
	t.Helper()
	fsys := fsutil.NewMemoryFileSystem()
	if err := fsys.WriteFile(name, data, 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	decoder, err := OpenFS(fsys, name)
	if err != nil {
		t.Fatalf("OpenFS failed: %v", err)
	}
	return decoder
}

// TestSniffFormats checks that each magic routes to the right decoder.
func TestSniffFormats(t *testing.T) {
	decoder := memOpen(t, "recording.aedat", aedatRecording(nil))
	if decoder.Format() != FormatAedat {
		t.Errorf("expected aedat, got %v", decoder.Format())
	}

	decoder = memOpen(t, "recording.es", esRecording())
	if decoder.Format() != FormatEventStream {
		t.Errorf("expected event-stream, got %v", decoder.Format())
	}
	kind, ok := decoder.EventStreamType()
	if !ok || kind != event.TypeDvs {
		t.Errorf("expected dvs type, got %v ok=%v", kind, ok)
	}
	width, height, ok := decoder.Geometry()
	if !ok || width != 640 || height != 480 {
		t.Errorf("geometry wrong: %dx%d ok=%v", width, height, ok)
	}

	decoder = memOpen(t, "recording.raw", []byte("% evt 2.0\n% format generic\n% end\n"))
	if decoder.Format() != FormatRaw {
		t.Errorf("expected raw, got %v", decoder.Format())
	}
	if _, _, ok := decoder.Geometry(); ok {
		t.Error("generic recordings have no geometry")
	}
}

// TestOpenUnrecognizedMagic checks the sniffing failure path.
func TestOpenUnrecognizedMagic(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	fsys.WriteFile("noise.bin", []byte("this is not a recording"), 0644)
	_, err := OpenFS(fsys, "noise.bin")
	var headerErr *event.HeaderError
	if !errors.As(err, &headerErr) {
		t.Fatalf("expected HeaderError, got %v", err)
	}
}

// TestOpenMissingFile checks that a bad path fails construction.
func TestOpenMissingFile(t *testing.T) {
	_, err := OpenFS(fsutil.NewMemoryFileSystem(), "no/such/recording.aedat")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

// TestExhaustionIdempotent checks that Next keeps returning nil after the
// first clean EOF without re-reading the file.
func TestExhaustionIdempotent(t *testing.T) {
	events := []event.DvsEvent{{T: 1, X: 2, Y: 3, On: true}}
	decoder := memOpen(t, "recording.aedat", aedatRecording(events))

	packet, err := decoder.Next()
	if err != nil || packet == nil {
		t.Fatalf("expected one packet, got %+v, %v", packet, err)
	}
	for i := 0; i < 3; i++ {
		packet, err := decoder.Next()
		if err != nil || packet != nil {
			t.Fatalf("call %d after EOF: got %+v, %v", i, packet, err)
		}
	}
}

// TestFailedStateSticks checks that an error latches the decoder and later
// calls re-surface the original failure.
func TestFailedStateSticks(t *testing.T) {
	data := aedatRecording(nil)
	data = append(data, []byte{0x00, 0x00, 0x00}...) // torn block header
	decoder := memOpen(t, "recording.aedat", data)

	if packet, err := decoder.Next(); err != nil || packet == nil {
		t.Fatalf("first packet should decode, got %+v, %v", packet, err)
	}
	_, err := decoder.Next()
	if !errors.Is(err, event.ErrMissingSizePrefix) {
		t.Fatalf("expected ErrMissingSizePrefix, got %v", err)
	}
	_, err = decoder.Next()
	if !errors.Is(err, event.ErrMissingSizePrefix) {
		t.Fatalf("latched error must wrap the original failure, got %v", err)
	}
}

// TestOpenRealFile checks Open end to end against an on-disk recording.
func TestOpenRealFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recording.aedat")
	if err := os.WriteFile(path, aedatRecording([]event.DvsEvent{{T: 4, X: 1, Y: 1, On: false}}), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	decoder, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer decoder.Close()

	packet, err := decoder.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if packet.Body.RecordCount() != 1 {
		t.Errorf("expected 1 record, got %d", packet.Body.RecordCount())
	}
	if err := decoder.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

// TestStreamsReadOnlyView checks the registry is exposed for introspection
// before iteration begins.
func TestStreamsReadOnlyView(t *testing.T) {
	decoder := memOpen(t, "recording.aedat", aedatRecording(nil))
	streams := decoder.Streams()
	if len(streams) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(streams))
	}
	stream := streams[0]
	if stream.Content != event.ContentEvents || stream.Width != 320 || stream.Height != 240 {
		t.Errorf("stream surface wrong: %+v", stream)
	}
}
