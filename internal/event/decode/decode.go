// Package decode opens event-camera recordings and drives pull-based
// iteration over their packets. The container format is sniffed from the file
// magic; the per-format decoders live in the container and estream packages.
package decode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/banshee-data/eventcam/internal/event"
	"github.com/banshee-data/eventcam/internal/event/container"
	"github.com/banshee-data/eventcam/internal/event/estream"
	"github.com/banshee-data/eventcam/internal/fsutil"
)

// Format identifies the recording container.
type Format uint8

const (
	FormatAedat Format = iota
	FormatDat
	FormatEventStream
	FormatRaw
)

func (f Format) String() string {
	switch f {
	case FormatAedat:
		return "aedat"
	case FormatDat:
		return "dat"
	case FormatEventStream:
		return "event-stream"
	case FormatRaw:
		return "raw"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// cursor is the per-format pull iterator. Both implementations return
// (nil, nil) on clean end of file and leave terminal-state handling to the
// facade.
type cursor interface {
	Next() (*event.Packet, error)
}

type state uint8

const (
	stateReady state = iota
	stateExhausted
	stateFailed
)

// Decoder owns one recording's byte cursor. Iteration is single-threaded and
// synchronous: one Next call at a time, one block in memory at a time. Both
// terminal states stick: after clean end of file Next keeps returning
// (nil, nil) without re-reading the file, and after any error the decoder
// refuses to advance and must be discarded.
type Decoder struct {
	format  Format
	closer  io.Closer
	inner   cursor
	streams map[uint32]event.Stream
	esType  event.EventStreamType
	hasES   bool

	state state
	err   error
}

// Open opens the recording at path, normalizing the path first. The header
// and stream registry are parsed synchronously; a decoder is only returned
// once it is ready to iterate.
func Open(path string) (*Decoder, error) {
	return OpenFS(fsutil.OSFileSystem{}, path)
}

// OpenFS is Open against an explicit filesystem, used by tests to decode
// in-memory recordings.
func OpenFS(fsys fsutil.FileSystem, path string) (*Decoder, error) {
	normalized, err := fsutil.NormalizePath(path)
	if err != nil {
		return nil, fmt.Errorf("normalizing %q: %w", path, err)
	}
	file, err := fsys.Open(normalized)
	if err != nil {
		return nil, err
	}
	decoder, err := newDecoder(bufio.NewReader(file), file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return decoder, nil
}

func newDecoder(r *bufio.Reader, closer io.Closer) (*Decoder, error) {
	format, err := sniffFormat(r)
	if err != nil {
		return nil, err
	}

	d := &Decoder{format: format, closer: closer}
	switch format {
	case FormatAedat, FormatDat:
		flavor := container.FlavorAedat
		if format == FormatDat {
			flavor = container.FlavorDat
		}
		inner, err := container.NewDecoder(r, flavor)
		if err != nil {
			return nil, err
		}
		d.inner = inner
		d.streams = inner.Streams()
	case FormatEventStream, FormatRaw:
		flavor := estream.FlavorEventStream
		if format == FormatRaw {
			flavor = estream.FlavorRaw
		}
		inner, err := estream.NewDecoder(r, flavor)
		if err != nil {
			return nil, err
		}
		d.inner = inner
		d.esType = inner.Header().Type
		d.hasES = true
		stream := inner.Stream()
		d.streams = map[uint32]event.Stream{stream.ID: stream}
	}
	return d, nil
}

// sniffFormat identifies the container from the first bytes of the file
// without consuming them.
func sniffFormat(r *bufio.Reader) (Format, error) {
	prefix, err := r.Peek(len(container.AEDAT_MAGIC))
	if err != nil && len(prefix) == 0 {
		return 0, &event.HeaderError{Err: fmt.Errorf("reading magic: %w", err)}
	}
	switch {
	case bytes.HasPrefix(prefix, []byte(container.AEDAT_MAGIC)):
		return FormatAedat, nil
	case bytes.HasPrefix(prefix, []byte(container.DAT_MAGIC)):
		return FormatDat, nil
	case bytes.HasPrefix(prefix, []byte(estream.ES_MAGIC)):
		return FormatEventStream, nil
	case len(prefix) > 0 && prefix[0] == '%':
		return FormatRaw, nil
	default:
		return 0, &event.HeaderError{Err: fmt.Errorf("unrecognized magic %q", firstLine(prefix))}
	}
}

func firstLine(prefix []byte) []byte {
	if i := bytes.IndexByte(prefix, '\n'); i >= 0 {
		return prefix[:i]
	}
	return prefix
}

// Format returns the sniffed container format.
func (d *Decoder) Format() Format {
	return d.format
}

// Streams returns the id-to-stream registry. For EVENT-STREAM and RAW
// recordings it holds the single file-wide stream under id 0.
func (d *Decoder) Streams() map[uint32]event.Stream {
	return d.streams
}

// EventStreamType returns the file-wide sub-encoding for EVENT-STREAM and RAW
// recordings; ok is false for the block-framed containers.
func (d *Decoder) EventStreamType() (event.EventStreamType, bool) {
	return d.esType, d.hasES
}

// Geometry returns the file-wide geometry for EVENT-STREAM and RAW
// recordings; ok is false for generic recordings and block-framed containers.
func (d *Decoder) Geometry() (width, height uint16, ok bool) {
	if !d.hasES || d.esType == event.TypeGeneric {
		return 0, 0, false
	}
	stream := d.streams[0]
	return stream.Width, stream.Height, true
}

// Next returns the next decoded packet, (nil, nil) on clean end of stream, or
// an error. Errors are terminal: the decoder latches into a failed state and
// every later call re-surfaces the original failure.
func (d *Decoder) Next() (*event.Packet, error) {
	switch d.state {
	case stateExhausted:
		return nil, nil
	case stateFailed:
		return nil, fmt.Errorf("decoder already failed, discard it: %w", d.err)
	}

	packet, err := d.inner.Next()
	if err != nil {
		d.state = stateFailed
		d.err = err
		return nil, err
	}
	if packet == nil {
		d.state = stateExhausted
		return nil, nil
	}
	return packet, nil
}

// Close releases the underlying file handle. The decoder must not be used
// afterwards.
func (d *Decoder) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}
