package container

import (
	"fmt"
	"io"

	"github.com/banshee-data/eventcam/internal/event"
)

// Decoder pulls packets out of an AEDAT or DAT byte stream. It owns its
// reader exclusively; exactly one Next call is in flight at a time. Only the
// current block is held in memory, so arbitrarily large recordings decode in
// constant space.
type Decoder struct {
	r       io.Reader
	flavor  Flavor
	streams map[uint32]event.Stream
}

// NewDecoder parses the preamble from r and returns a decoder positioned on
// the first block.
func NewDecoder(r io.Reader, flavor Flavor) (*Decoder, error) {
	streams, err := parseHeader(r, flavor)
	if err != nil {
		return nil, err
	}
	return &Decoder{r: r, flavor: flavor, streams: streams}, nil
}

// Streams returns the id-to-stream registry parsed from the header. The
// returned map is shared; callers must not mutate it.
func (d *Decoder) Streams() map[uint32]event.Stream {
	return d.streams
}

// Next decodes the next block into a packet. It returns (nil, nil) on clean
// end of file. On a record error the reader is already positioned at the next
// block boundary (the whole block was consumed before decoding), so the
// failure is scoped to this call; framing errors poison the rest of the file.
func (d *Decoder) Next() (*event.Packet, error) {
	streamID, payload, err := nextBlock(d.r)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	stream, ok := d.streams[streamID]
	if !ok {
		return nil, fmt.Errorf("%w: block references unknown stream %d",
			event.ErrMissingSizePrefix, streamID)
	}

	flags, fields, err := openTable(payload)
	if err != nil {
		return nil, err
	}

	var body event.Body
	switch stream.Content {
	case event.ContentEvents:
		body, err = decodeEvents(stream, flags, fields)
	case event.ContentFrame:
		body, err = decodeFrame(stream, flags, fields)
	case event.ContentImus:
		body, err = decodeImus(flags, fields)
	case event.ContentTriggers:
		body, err = decodeTriggers(flags, fields)
	}
	if err != nil {
		return nil, err
	}
	return &event.Packet{StreamID: streamID, Body: body}, nil
}
