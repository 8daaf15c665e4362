// Package event defines the data model shared by every container decoder:
// streams, packets, and the record shapes produced by event-based vision
// sensors (pixel-change events, frames, IMU samples, triggers).
package event

import "fmt"

// ContentKind identifies the shape of records a stream carries.
type ContentKind uint8

const (
	ContentEvents ContentKind = iota
	ContentFrame
	ContentImus
	ContentTriggers
)

func (c ContentKind) String() string {
	switch c {
	case ContentEvents:
		return "events"
	case ContentFrame:
		return "frame"
	case ContentImus:
		return "imus"
	case ContentTriggers:
		return "triggers"
	default:
		return fmt.Sprintf("content(%d)", uint8(c))
	}
}

// PixelAddressed reports whether records of this kind carry x/y coordinates,
// and therefore whether the owning stream must declare a geometry.
func (c ContentKind) PixelAddressed() bool {
	return c == ContentEvents || c == ContentFrame
}

// Stream describes one logical channel within a recording. Streams are parsed
// once from the file header and never mutated afterwards; packets refer to
// them by id rather than by pointer.
type Stream struct {
	ID      uint32
	Content ContentKind
	Width   uint16 // zero for non pixel-addressed content
	Height  uint16
}

// EventStreamType is the file-wide sub-encoding of an EVENT-STREAM or RAW
// recording. It fixes the record layout for the whole file and is selected
// once at open time, not per packet.
type EventStreamType uint8

const (
	TypeGeneric EventStreamType = 0
	TypeDvs     EventStreamType = 1
	TypeAtis    EventStreamType = 2
	TypeColor   EventStreamType = 4
)

func (t EventStreamType) String() string {
	switch t {
	case TypeGeneric:
		return "generic"
	case TypeDvs:
		return "dvs"
	case TypeAtis:
		return "atis"
	case TypeColor:
		return "color"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// AtisPolarity is the 2-bit ATIS event code. Bit 0 carries the exposure flag,
// bit 1 the value: a plain DVS change when the exposure flag is clear, an
// exposure measurement boundary when it is set.
type AtisPolarity uint8

const (
	AtisOff           AtisPolarity = 0b00
	AtisExposureStart AtisPolarity = 0b01
	AtisOn            AtisPolarity = 0b10
	AtisExposureEnd   AtisPolarity = 0b11
)

// Exposure reports whether the event marks an exposure boundary rather than a
// polarity change.
func (p AtisPolarity) Exposure() bool { return p&0b01 != 0 }

// Value is the polarity bit (On / ExposureEnd).
func (p AtisPolarity) Value() bool { return p&0b10 != 0 }

// FrameFormat is the pixel layout of a decoded frame.
type FrameFormat uint8

const (
	FormatGray FrameFormat = iota
	FormatBgr
	FormatBgra
)

// Channels returns the bytes per pixel for the format.
func (f FrameFormat) Channels() int {
	switch f {
	case FormatGray:
		return 1
	case FormatBgr:
		return 3
	case FormatBgra:
		return 4
	default:
		return 0
	}
}

func (f FrameFormat) String() string {
	switch f {
	case FormatGray:
		return "L"
	case FormatBgr:
		return "RGB"
	case FormatBgra:
		return "RGBA"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// TriggerSource enumerates the ten causes a trigger record can report.
type TriggerSource uint8

const (
	TriggerTimestampReset TriggerSource = iota
	TriggerExternalSignalRisingEdge
	TriggerExternalSignalFallingEdge
	TriggerExternalSignalPulse
	TriggerExternalGeneratorRisingEdge
	TriggerExternalGeneratorFallingEdge
	TriggerFrameBegin
	TriggerFrameEnd
	TriggerExposureBegin
	TriggerExposureEnd

	triggerSourceCount // sentinel, keep last
)

func (s TriggerSource) String() string {
	names := [...]string{
		"timestamp_reset",
		"external_signal_rising_edge",
		"external_signal_falling_edge",
		"external_signal_pulse",
		"external_generator_rising_edge",
		"external_generator_falling_edge",
		"frame_begin",
		"frame_end",
		"exposure_begin",
		"exposure_end",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return fmt.Sprintf("source(%d)", uint8(s))
}

// GenericEvent is a timestamped opaque payload (EVENT-STREAM generic type).
type GenericEvent struct {
	T       uint64
	Payload []byte
}

// DvsEvent is a single pixel polarity change.
type DvsEvent struct {
	T    uint64
	X, Y uint16
	On   bool
}

// AtisEvent is a DVS change or exposure boundary from an ATIS sensor.
type AtisEvent struct {
	T        uint64
	X, Y     uint16
	Polarity AtisPolarity
}

// ColorEvent is a pixel change carrying an RGB sample.
type ColorEvent struct {
	T       uint64
	X, Y    uint16
	R, G, B uint8
}

// Frame is one conventional image capture. Pixels are row-major in RGB order
// (the on-disk BGR channel order is swapped during decode) and are never nil:
// a frame recorded without a pixel buffer decodes to a zero-filled canvas of
// Width*Height*Format.Channels() bytes.
type Frame struct {
	T                uint64
	BeginT           uint64
	EndT             uint64
	ExposureBeginT   uint64
	ExposureEndT     uint64
	Format           FrameFormat
	Width, Height    uint16
	OffsetX, OffsetY int16
	Pixels           []byte
}

// ImuSample is one inertial measurement record.
type ImuSample struct {
	T              uint64
	Temperature    float32
	AccelerometerX float32
	AccelerometerY float32
	AccelerometerZ float32
	GyroscopeX     float32
	GyroscopeY     float32
	GyroscopeZ     float32
	MagnetometerX  float32
	MagnetometerY  float32
	MagnetometerZ  float32
}

// Trigger is one discrete trigger record.
type Trigger struct {
	T      uint64
	Source TriggerSource
}

// Body is the decoded content of a packet: exactly one of the batch kinds
// below. The set of implementations is closed.
type Body interface {
	// RecordCount is the number of records carried by the body (1 for a frame).
	RecordCount() int
}

// EventsBatch holds decoded events in file order. Exactly one of the slices is
// populated, matching the sub-encoding of the producing stream.
type EventsBatch struct {
	Generic []GenericEvent
	Dvs     []DvsEvent
	Atis    []AtisEvent
	Color   []ColorEvent
}

func (b *EventsBatch) RecordCount() int {
	return len(b.Generic) + len(b.Dvs) + len(b.Atis) + len(b.Color)
}

// FrameBody wraps a single decoded frame.
type FrameBody struct {
	Frame Frame
}

func (b *FrameBody) RecordCount() int { return 1 }

// ImuBatch holds decoded IMU samples in file order.
type ImuBatch struct {
	Samples []ImuSample
}

func (b *ImuBatch) RecordCount() int { return len(b.Samples) }

// TriggerBatch holds decoded triggers in file order.
type TriggerBatch struct {
	Triggers []Trigger
}

func (b *TriggerBatch) RecordCount() int { return len(b.Triggers) }

// Packet is one decoded unit of data yielded by a single Next call. It is an
// owned value: the body never aliases decoder-internal buffers. StreamID
// refers back to the registry entry that produced it.
type Packet struct {
	StreamID uint32
	Body     Body
}
