package event

// Validation helpers applied inline while records are decoded. A failure
// aborts the whole packet (fail-fast): no partial batches are ever returned.

// CheckBounds validates an event coordinate against a stream geometry.
func CheckBounds(x, y, width, height uint16) error {
	if x >= width {
		return &XOverflowError{X: x, Width: width}
	}
	if y >= height {
		return &YOverflowError{Y: y, Height: height}
	}
	return nil
}

// FrameFormatFromCode maps an on-disk format code to a FrameFormat.
func FrameFormatFromCode(code uint8) (FrameFormat, error) {
	switch FrameFormat(code) {
	case FormatGray, FormatBgr, FormatBgra:
		return FrameFormat(code), nil
	default:
		return 0, &UnknownFrameFormatError{Format: code}
	}
}

// TriggerSourceFromCode maps an on-disk trigger source code to a
// TriggerSource.
func TriggerSourceFromCode(code uint8) (TriggerSource, error) {
	if TriggerSource(code) >= triggerSourceCount {
		return 0, &UnknownTriggerSourceError{Source: code}
	}
	return TriggerSource(code), nil
}

// DvsPolarityFromCode maps an on-disk polarity byte to the DVS on/off flag.
func DvsPolarityFromCode(code uint8) (bool, error) {
	switch code {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &UnknownPolarityError{Polarity: code}
	}
}

// AtisPolarityFromCode maps an on-disk polarity byte to the 2-bit ATIS code.
func AtisPolarityFromCode(code uint8) (AtisPolarity, error) {
	if code > uint8(AtisExposureEnd) {
		return 0, &UnknownPolarityError{Polarity: code}
	}
	return AtisPolarity(code), nil
}

// SwapRedBlue swaps the R and B channels of an interleaved pixel buffer in
// place. The on-disk frame order is BGR-like while decoded frames expose RGB,
// so decode applies this once per frame.
func SwapRedBlue(pixels []byte, channels int) {
	if channels < 3 {
		return
	}
	for i := 0; i+channels <= len(pixels); i += channels {
		pixels[i], pixels[i+2] = pixels[i+2], pixels[i]
	}
}
