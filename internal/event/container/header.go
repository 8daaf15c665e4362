package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/eventcam/internal/event"
)

// parseHeader reads the container preamble and builds the stream registry.
// The registry is built exactly once; streams are immutable afterwards.
func parseHeader(r io.Reader, flavor Flavor) (map[uint32]event.Stream, error) {
	magic := make([]byte, len(flavor.Magic()))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, &event.HeaderError{Err: fmt.Errorf("reading magic: %w", err)}
	}
	if string(magic) != flavor.Magic() {
		return nil, &event.HeaderError{Err: fmt.Errorf("bad magic %q, want %q", magic, flavor.Magic())}
	}

	var rawCount [4]byte
	if _, err := io.ReadFull(r, rawCount[:]); err != nil {
		return nil, &event.HeaderError{Err: fmt.Errorf("reading stream count: %w", err)}
	}
	count := binary.LittleEndian.Uint32(rawCount[:])
	if count == 0 {
		return nil, &event.HeaderError{Err: errors.New("no streams declared")}
	}
	if count > MAX_STREAM_COUNT {
		return nil, &event.HeaderError{Err: fmt.Errorf("stream count %d exceeds limit %d", count, MAX_STREAM_COUNT)}
	}

	streams := make(map[uint32]event.Stream, count)
	descriptor := make([]byte, DESCRIPTOR_SIZE)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, descriptor); err != nil {
			return nil, &event.HeaderError{Err: fmt.Errorf("reading descriptor %d: %w", i, err)}
		}
		stream, err := parseDescriptor(descriptor)
		if err != nil {
			return nil, &event.HeaderError{Err: fmt.Errorf("descriptor %d: %w", i, err)}
		}
		if _, dup := streams[stream.ID]; dup {
			return nil, &event.HeaderError{Err: fmt.Errorf("duplicate stream id %d", stream.ID)}
		}
		streams[stream.ID] = stream
	}
	return streams, nil
}

// parseDescriptor decodes one 9-byte stream descriptor.
func parseDescriptor(data []byte) (event.Stream, error) {
	id := binary.LittleEndian.Uint32(data[0:4])
	kind := data[4]
	if kind > uint8(event.ContentTriggers) {
		return event.Stream{}, fmt.Errorf("unknown content kind %d", kind)
	}
	stream := event.Stream{
		ID:      id,
		Content: event.ContentKind(kind),
		Width:   binary.LittleEndian.Uint16(data[5:7]),
		Height:  binary.LittleEndian.Uint16(data[7:9]),
	}
	// Pixel-addressed content cannot be validated without a geometry.
	if stream.Content.PixelAddressed() && (stream.Width == 0 || stream.Height == 0) {
		return event.Stream{}, fmt.Errorf("stream %d: %s content requires a geometry, got %dx%d",
			id, stream.Content, stream.Width, stream.Height)
	}
	return stream, nil
}
