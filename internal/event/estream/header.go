package estream

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/eventcam/internal/event"
)

// Header is the file-wide metadata of an EVENT-STREAM or RAW recording: one
// sub-encoding and, for pixel-addressed encodings, one geometry.
type Header struct {
	Type   event.EventStreamType
	Width  uint16 // zero for generic recordings
	Height uint16
}

// HasGeometry reports whether the sub-encoding is pixel-addressed.
func (h Header) HasGeometry() bool {
	return h.Type != event.TypeGeneric
}

// parseEventStreamHeader reads the binary EVENT-STREAM preamble.
func parseEventStreamHeader(r *bufio.Reader) (Header, error) {
	magic := make([]byte, len(ES_MAGIC))
	if _, err := io.ReadFull(r, magic); err != nil {
		return Header{}, &event.HeaderError{Err: fmt.Errorf("reading magic: %w", err)}
	}
	if string(magic) != ES_MAGIC {
		return Header{}, &event.HeaderError{Err: fmt.Errorf("bad magic %q", magic)}
	}

	var version [3]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return Header{}, &event.HeaderError{Err: fmt.Errorf("reading version: %w", err)}
	}
	if version[0] != ES_VERSION_MAJOR {
		return Header{}, &event.HeaderError{Err: fmt.Errorf("unsupported version %d.%d.%d", version[0], version[1], version[2])}
	}

	kind, err := r.ReadByte()
	if err != nil {
		return Header{}, &event.HeaderError{Err: fmt.Errorf("reading stream type: %w", err)}
	}
	header := Header{Type: event.EventStreamType(kind)}
	switch header.Type {
	case event.TypeGeneric:
		return header, nil
	case event.TypeDvs, event.TypeAtis, event.TypeColor:
		var geometry [4]byte
		if _, err := io.ReadFull(r, geometry[:]); err != nil {
			return Header{}, &event.HeaderError{Err: fmt.Errorf("reading geometry: %w", err)}
		}
		header.Width = uint16(geometry[0]) | uint16(geometry[1])<<8
		header.Height = uint16(geometry[2]) | uint16(geometry[3])<<8
		if header.Width == 0 || header.Height == 0 {
			return Header{}, &event.HeaderError{Err: fmt.Errorf("%s stream requires a geometry, got %dx%d", header.Type, header.Width, header.Height)}
		}
		return header, nil
	default:
		return Header{}, &event.HeaderError{Err: fmt.Errorf("unknown stream type %d", kind)}
	}
}

// parseRawHeader reads the ASCII "%"-line preamble of a RAW recording.
// Unknown keys are ignored so that vendor-specific annotations survive.
func parseRawHeader(r *bufio.Reader) (Header, error) {
	header := Header{}
	sawFormat := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return Header{}, &event.HeaderError{Err: fmt.Errorf("reading header line: %w", err)}
		}
		line = strings.TrimRight(line, "\r\n")
		if line == RAW_END {
			break
		}
		if !strings.HasPrefix(line, RAW_LINE_PREFIX) {
			return Header{}, &event.HeaderError{Err: fmt.Errorf("malformed header line %q", line)}
		}
		key, value, _ := strings.Cut(strings.TrimPrefix(line, RAW_LINE_PREFIX), " ")
		switch key {
		case "evt":
			if value != "2.0" {
				return Header{}, &event.HeaderError{Err: fmt.Errorf("unsupported evt version %q", value)}
			}
		case "format":
			switch value {
			case "generic":
				header.Type = event.TypeGeneric
			case "dvs":
				header.Type = event.TypeDvs
			case "atis":
				header.Type = event.TypeAtis
			case "color":
				header.Type = event.TypeColor
			default:
				return Header{}, &event.HeaderError{Err: fmt.Errorf("unknown format %q", value)}
			}
			sawFormat = true
		case "geometry":
			if _, err := fmt.Sscanf(value, "%dx%d", &header.Width, &header.Height); err != nil {
				return Header{}, &event.HeaderError{Err: fmt.Errorf("malformed geometry %q", value)}
			}
		}
	}
	if !sawFormat {
		return Header{}, &event.HeaderError{Err: fmt.Errorf("header declares no format")}
	}
	if header.HasGeometry() && (header.Width == 0 || header.Height == 0) {
		return Header{}, &event.HeaderError{Err: fmt.Errorf("%s recording requires a geometry", header.Type)}
	}
	return Header{Type: header.Type, Width: header.Width, Height: header.Height}, nil
}
