package container

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/banshee-data/eventcam/internal/event"
)

// Record decoders for the four content kinds. Each takes the field bytes of an
// opened table plus the owning stream's metadata, and returns a fully owned
// packet body. Validation runs per record and fails the whole packet on the
// first bad record: partial batches are never returned.

// openVector checks the elements field and returns the raw record bytes. The
// byte length must be an exact multiple of the record size.
func openVector(flags uint16, fields []byte, recordSize int) ([]byte, int, error) {
	if flags&FIELD_ELEMENTS == 0 {
		return nil, 0, event.ErrEmptyEventsPacket
	}
	if len(fields) < 4 {
		return nil, 0, fmt.Errorf("%w: elements vector header", event.ErrTruncatedRecord)
	}
	count := int(binary.LittleEndian.Uint32(fields[0:4]))
	records := fields[4:]
	if count > math.MaxInt32 || len(records) != count*recordSize {
		return nil, 0, fmt.Errorf("%w: %d records of %d bytes declared, %d bytes present",
			event.ErrTruncatedRecord, count, recordSize, len(records))
	}
	return records, count, nil
}

// decodeEvents decodes an events table into a DVS batch, bounds-checking every
// event against the stream geometry.
func decodeEvents(stream event.Stream, flags uint16, fields []byte) (*event.EventsBatch, error) {
	records, count, err := openVector(flags, fields, EVENT_RECORD_SIZE)
	if err != nil {
		return nil, err
	}
	events := make([]event.DvsEvent, 0, count)
	for i := 0; i < count; i++ {
		rec := records[i*EVENT_RECORD_SIZE : (i+1)*EVENT_RECORD_SIZE]
		x := binary.LittleEndian.Uint16(rec[8:10])
		y := binary.LittleEndian.Uint16(rec[10:12])
		if err := event.CheckBounds(x, y, stream.Width, stream.Height); err != nil {
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
	return &event.EventsBatch{Dvs: events}, nil
}

// decodeFrame decodes a single-record frame table. The pixel buffer is
// channel-swapped from the on-disk BGR[A] order to RGB[A]; a frame recorded
// without pixels yields a zero-filled canvas of the declared shape.
func decodeFrame(stream event.Stream, flags uint16, fields []byte) (*event.FrameBody, error) {
	if len(fields) < FRAME_FIXED_SIZE {
		return nil, fmt.Errorf("%w: frame table of %d bytes", event.ErrTruncatedRecord, len(fields))
	}
	format, err := event.FrameFormatFromCode(fields[40])
	if err != nil {
		return nil, err
	}
	frame := event.Frame{
		T:              binary.LittleEndian.Uint64(fields[0:8]),
		BeginT:         binary.LittleEndian.Uint64(fields[8:16]),
		EndT:           binary.LittleEndian.Uint64(fields[16:24]),
		ExposureBeginT: binary.LittleEndian.Uint64(fields[24:32]),
		ExposureEndT:   binary.LittleEndian.Uint64(fields[32:40]),
		Format:         format,
		Width:          binary.LittleEndian.Uint16(fields[41:43]),
		Height:         binary.LittleEndian.Uint16(fields[43:45]),
		OffsetX:        int16(binary.LittleEndian.Uint16(fields[45:47])),
		OffsetY:        int16(binary.LittleEndian.Uint16(fields[47:49])),
	}
	want := int(frame.Width) * int(frame.Height) * format.Channels()
	if flags&FIELD_ELEMENTS == 0 {
		frame.Pixels = make([]byte, want)
		return &event.FrameBody{Frame: frame}, nil
	}

	rest := fields[FRAME_FIXED_SIZE:]
	if len(rest) < 4 {
		return nil, fmt.Errorf("%w: frame pixels header", event.ErrTruncatedRecord)
	}
	length := int(binary.LittleEndian.Uint32(rest[0:4]))
	if len(rest[4:]) != length {
		return nil, fmt.Errorf("%w: pixels declare %d bytes, %d present",
			event.ErrTruncatedRecord, length, len(rest[4:]))
	}
	if length != want {
		return nil, fmt.Errorf("frame pixel buffer is %d bytes, want %dx%dx%d=%d",
			length, frame.Width, frame.Height, format.Channels(), want)
	}
	frame.Pixels = make([]byte, length)
	copy(frame.Pixels, rest[4:])
	event.SwapRedBlue(frame.Pixels, format.Channels())
	return &event.FrameBody{Frame: frame}, nil
}

// decodeImus decodes an IMU table. IMU streams carry no geometry, so only the
// record framing is validated.
func decodeImus(flags uint16, fields []byte) (*event.ImuBatch, error) {
	records, count, err := openVector(flags, fields, IMU_RECORD_SIZE)
	if err != nil {
		return nil, err
	}
	samples := make([]event.ImuSample, 0, count)
	for i := 0; i < count; i++ {
		rec := records[i*IMU_RECORD_SIZE : (i+1)*IMU_RECORD_SIZE]
		samples = append(samples, event.ImuSample{
			T:              binary.LittleEndian.Uint64(rec[0:8]),
			Temperature:    math.Float32frombits(binary.LittleEndian.Uint32(rec[8:12])),
			AccelerometerX: math.Float32frombits(binary.LittleEndian.Uint32(rec[12:16])),
			AccelerometerY: math.Float32frombits(binary.LittleEndian.Uint32(rec[16:20])),
			AccelerometerZ: math.Float32frombits(binary.LittleEndian.Uint32(rec[20:24])),
			GyroscopeX:     math.Float32frombits(binary.LittleEndian.Uint32(rec[24:28])),
			GyroscopeY:     math.Float32frombits(binary.LittleEndian.Uint32(rec[28:32])),
			GyroscopeZ:     math.Float32frombits(binary.LittleEndian.Uint32(rec[32:36])),
			MagnetometerX:  math.Float32frombits(binary.LittleEndian.Uint32(rec[36:40])),
			MagnetometerY:  math.Float32frombits(binary.LittleEndian.Uint32(rec[40:44])),
			MagnetometerZ:  math.Float32frombits(binary.LittleEndian.Uint32(rec[44:48])),
		})
	}
	return &event.ImuBatch{Samples: samples}, nil
}

// decodeTriggers decodes a trigger table, checking every source code against
// the known enumeration.
func decodeTriggers(flags uint16, fields []byte) (*event.TriggerBatch, error) {
	records, count, err := openVector(flags, fields, TRIGGER_RECORD_SIZE)
	if err != nil {
		return nil, err
	}
	triggers := make([]event.Trigger, 0, count)
	for i := 0; i < count; i++ {
		rec := records[i*TRIGGER_RECORD_SIZE : (i+1)*TRIGGER_RECORD_SIZE]
		source, err := event.TriggerSourceFromCode(rec[8])
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, event.Trigger{
			T:      binary.LittleEndian.Uint64(rec[0:8]),
			Source: source,
		})
	}
	return &event.TriggerBatch{Triggers: triggers}, nil
}
