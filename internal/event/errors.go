package event

import (
	"errors"
	"fmt"
)

// Error taxonomy. Header errors are fatal at open time, framing errors are
// fatal for the whole decode session (block boundaries can no longer be
// trusted), record errors fail the packet being decoded. Nothing is ever
// logged and swallowed: every failure is returned to the caller.

var (
	// ErrMissingSizePrefix reports a truncated or inconsistent block length
	// header. Once framing is lost the rest of the file is unreadable.
	ErrMissingSizePrefix = errors.New("missing packet size prefix")

	// ErrTruncatedRecord reports a partial fixed-width record at end of file.
	ErrTruncatedRecord = errors.New("truncated record")

	// ErrEmptyEventsPacket reports an embedded table whose elements field is
	// absent. An empty elements vector is valid; a missing field is not.
	ErrEmptyEventsPacket = errors.New("packet table has no elements field")
)

// HeaderError wraps a failure to parse the file preamble or a stream
// descriptor.
type HeaderError struct {
	Err error
}

func (e *HeaderError) Error() string { return fmt.Sprintf("invalid header: %v", e.Err) }
func (e *HeaderError) Unwrap() error { return e.Err }

// XOverflowError reports an event whose x coordinate is outside the declared
// stream width.
type XOverflowError struct {
	X     uint16
	Width uint16
}

func (e *XOverflowError) Error() string {
	return fmt.Sprintf("x overflow: x=%d width=%d", e.X, e.Width)
}

// YOverflowError reports an event whose y coordinate is outside the declared
// stream height.
type YOverflowError struct {
	Y      uint16
	Height uint16
}

func (e *YOverflowError) Error() string {
	return fmt.Sprintf("y overflow: y=%d height=%d", e.Y, e.Height)
}

// UnknownFrameFormatError reports a frame format code outside the Gray, Bgr
// and Bgra enumeration.
type UnknownFrameFormatError struct {
	Format uint8
}

func (e *UnknownFrameFormatError) Error() string {
	return fmt.Sprintf("unknown frame format %d", e.Format)
}

// UnknownTriggerSourceError reports a trigger source code outside the 0-9
// enumeration.
type UnknownTriggerSourceError struct {
	Source uint8
}

func (e *UnknownTriggerSourceError) Error() string {
	return fmt.Sprintf("unknown trigger source %d", e.Source)
}

// UnknownPolarityError reports an event polarity byte outside its enumeration
// (DVS accepts 0 and 1, ATIS the four 2-bit codes).
type UnknownPolarityError struct {
	Polarity uint8
}

func (e *UnknownPolarityError) Error() string {
	return fmt.Sprintf("unknown event polarity %d", e.Polarity)
}
