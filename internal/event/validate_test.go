package event

import (
	"bytes"
	"errors"
	"testing"
)

// TestCheckBounds checks the half-open coordinate ranges.
func TestCheckBounds(t *testing.T) {
	if err := CheckBounds(639, 479, 640, 480); err != nil {
		t.Fatalf("in-range coordinate rejected: %v", err)
	}

	err := CheckBounds(640, 0, 640, 480)
	var xErr *XOverflowError
	if !errors.As(err, &xErr) {
		t.Fatalf("expected XOverflowError, got %v", err)
	}
	if xErr.X != 640 || xErr.Width != 640 {
		t.Errorf("overflow details wrong: %+v", xErr)
	}

	err = CheckBounds(0, 480, 640, 480)
	var yErr *YOverflowError
	if !errors.As(err, &yErr) {
		t.Fatalf("expected YOverflowError, got %v", err)
	}
}

// TestFrameFormatCodes checks the closed format enumeration.
func TestFrameFormatCodes(t *testing.T) {
	cases := []struct {
		code     uint8
		format   FrameFormat
		channels int
	}{
		{0, FormatGray, 1},
		{1, FormatBgr, 3},
		{2, FormatBgra, 4},
	}
	for _, c := range cases {
		format, err := FrameFormatFromCode(c.code)
		if err != nil {
			t.Fatalf("code %d rejected: %v", c.code, err)
		}
		if format != c.format || format.Channels() != c.channels {
			t.Errorf("code %d: got %v with %d channels", c.code, format, format.Channels())
		}
	}

	_, err := FrameFormatFromCode(3)
	var formatErr *UnknownFrameFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected UnknownFrameFormatError, got %v", err)
	}
}

// TestTriggerSourceCodes checks the ten-value enumeration boundary.
func TestTriggerSourceCodes(t *testing.T) {
	for code := uint8(0); code < 10; code++ {
		if _, err := TriggerSourceFromCode(code); err != nil {
			t.Errorf("code %d rejected: %v", code, err)
		}
	}
	_, err := TriggerSourceFromCode(10)
	var sourceErr *UnknownTriggerSourceError
	if !errors.As(err, &sourceErr) {
		t.Fatalf("expected UnknownTriggerSourceError, got %v", err)
	}
}

// TestAtisPolarityBits checks the exposure-flag/value bit split.
func TestAtisPolarityBits(t *testing.T) {
	if AtisOff.Exposure() || AtisOff.Value() {
		t.Error("AtisOff must clear both bits")
	}
	if !AtisExposureStart.Exposure() || AtisExposureStart.Value() {
		t.Error("AtisExposureStart is exposure with value clear")
	}
	if AtisOn.Exposure() || !AtisOn.Value() {
		t.Error("AtisOn is non-exposure with value set")
	}
	if !AtisExposureEnd.Exposure() || !AtisExposureEnd.Value() {
		t.Error("AtisExposureEnd sets both bits")
	}
}

// TestSwapRedBlue checks the BGR/RGB channel swap is its own inverse.
func TestSwapRedBlue(t *testing.T) {
	disk := []byte{1, 2, 3, 4, 5, 6, 7, 8} // two BGRA pixels
	pixels := make([]byte, len(disk))
	copy(pixels, disk)

	SwapRedBlue(pixels, 4)
	want := []byte{3, 2, 1, 4, 7, 6, 5, 8}
	if !bytes.Equal(pixels, want) {
		t.Fatalf("swap produced %v, want %v", pixels, want)
	}

	SwapRedBlue(pixels, 4)
	if !bytes.Equal(pixels, disk) {
		t.Fatalf("double swap must restore disk order, got %v", pixels)
	}

	// Gray frames have no channel order to swap.
	gray := []byte{9, 8, 7}
	SwapRedBlue(gray, 1)
	if !bytes.Equal(gray, []byte{9, 8, 7}) {
		t.Fatalf("gray swap must be a no-op, got %v", gray)
	}
}
