package estream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/banshee-data/eventcam/internal/event"
)

// Flavor selects which of the two headers to expect; the record layout after
// the header is shared.
type Flavor uint8

const (
	FlavorEventStream Flavor = iota
	FlavorRaw
)

func (f Flavor) String() string {
	if f == FlavorRaw {
		return "raw"
	}
	return "event-stream"
}

// Decoder pulls packets out of an EVENT-STREAM or RAW byte stream. The
// sub-encoding is fixed at open time from the header and never re-dispatched
// per packet. Records are batched into packets of at most RECORDS_PER_PACKET;
// a recording shorter than one batch decodes to a single packet in file order.
type Decoder struct {
	r      *bufio.Reader
	header Header
}

// NewDecoder parses the header from r and returns a decoder positioned on the
// first record.
func NewDecoder(r *bufio.Reader, flavor Flavor) (*Decoder, error) {
	var header Header
	var err error
	if flavor == FlavorRaw {
		header, err = parseRawHeader(r)
	} else {
		header, err = parseEventStreamHeader(r)
	}
	if err != nil {
		return nil, err
	}
	return &Decoder{r: r, header: header}, nil
}

// Header returns the file-wide stream metadata.
func (d *Decoder) Header() Header {
	return d.header
}

// Stream presents the file-wide metadata as a registry entry. These formats
// carry a single stream, conventionally id 0.
func (d *Decoder) Stream() event.Stream {
	return event.Stream{
		ID:      0,
		Content: event.ContentEvents,
		Width:   d.header.Width,
		Height:  d.header.Height,
	}
}

// Next decodes the next batch of records. It returns (nil, nil) on clean end
// of file; a partial trailing record is a fatal truncation error.
func (d *Decoder) Next() (*event.Packet, error) {
	var body event.Body
	var err error
	switch d.header.Type {
	case event.TypeGeneric:
		body, err = d.nextGeneric()
	case event.TypeDvs:
		body, err = d.nextDvs()
	case event.TypeAtis:
		body, err = d.nextAtis()
	case event.TypeColor:
		body, err = d.nextColor()
	default:
		return nil, fmt.Errorf("unknown stream type %d", d.header.Type)
	}
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	return &event.Packet{StreamID: 0, Body: body}, nil
}

// readRecord fills rec with the next fixed-width record. It reports done at a
// clean record boundary and event.ErrTruncatedRecord mid-record.
func (d *Decoder) readRecord(rec []byte) (done bool, err error) {
	n, err := io.ReadFull(d.r, rec)
	if err == io.EOF && n == 0 {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %d of %d bytes at end of file",
			event.ErrTruncatedRecord, n, len(rec))
	}
	return false, nil
}

func (d *Decoder) nextGeneric() (event.Body, error) {
	var events []event.GenericEvent
	var prefix [GENERIC_PREFIX_SIZE]byte
	for len(events) < RECORDS_PER_PACKET {
		done, err := d.readRecord(prefix[:])
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		length := binary.LittleEndian.Uint32(prefix[8:12])
		if length > MAX_GENERIC_PAYLOAD {
			return nil, fmt.Errorf("%w: generic payload of %d bytes exceeds limit %d",
				event.ErrTruncatedRecord, length, MAX_GENERIC_PAYLOAD)
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(d.r, payload); err != nil {
			return nil, fmt.Errorf("%w: generic payload declares %d bytes beyond end of file",
				event.ErrTruncatedRecord, length)
		}
		events = append(events, event.GenericEvent{
			T:       binary.LittleEndian.Uint64(prefix[0:8]),
			Payload: payload,
		})
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &event.EventsBatch{Generic: events}, nil
}

func (d *Decoder) nextDvs() (event.Body, error) {
	var events []event.DvsEvent
	var rec [DVS_RECORD_SIZE]byte
	for len(events) < RECORDS_PER_PACKET {
		done, err := d.readRecord(rec[:])
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		x := binary.LittleEndian.Uint16(rec[8:10])
		y := binary.LittleEndian.Uint16(rec[10:12])
		if err := event.CheckBounds(x, y, d.header.Width, d.header.Height); err != nil {
			return nil, err
		}
		on, err := event.DvsPolarityFromCode(rec[12])
		if err != nil {
			return nil, err
		}
		events = append(events, event.DvsEvent{
			T:  binary.LittleEndian.Uint64(rec[0:8]),
			X:  x,
			Y:  y,
			On: on,
		})
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &event.EventsBatch{Dvs: events}, nil
}

func (d *Decoder) nextAtis() (event.Body, error) {
	var events []event.AtisEvent
	var rec [ATIS_RECORD_SIZE]byte
	for len(events) < RECORDS_PER_PACKET {
		done, err := d.readRecord(rec[:])
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		x := binary.LittleEndian.Uint16(rec[8:10])
		y := binary.LittleEndian.Uint16(rec[10:12])
		if err := event.CheckBounds(x, y, d.header.Width, d.header.Height); err != nil {
			return nil, err
		}
		polarity, err := event.AtisPolarityFromCode(rec[12])
		if err != nil {
			return nil, err
		}
		events = append(events, event.AtisEvent{
			T:        binary.LittleEndian.Uint64(rec[0:8]),
			X:        x,
			Y:        y,
			Polarity: polarity,
		})
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &event.EventsBatch{Atis: events}, nil
}

func (d *Decoder) nextColor() (event.Body, error) {
	var events []event.ColorEvent
	var rec [COLOR_RECORD_SIZE]byte
	for len(events) < RECORDS_PER_PACKET {
		done, err := d.readRecord(rec[:])
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		x := binary.LittleEndian.Uint16(rec[8:10])
		y := binary.LittleEndian.Uint16(rec[10:12])
		if err := event.CheckBounds(x, y, d.header.Width, d.header.Height); err != nil {
			return nil, err
		}
		events = append(events, event.ColorEvent{
			T: binary.LittleEndian.Uint64(rec[0:8]),
			X: x,
			Y: y,
			R: rec[12],
			G: rec[13],
			B: rec[14],
		})
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &event.EventsBatch{Color: events}, nil
}
