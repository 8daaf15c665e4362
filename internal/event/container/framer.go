package container

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/banshee-data/eventcam/internal/event"
)

// nextBlock reads the next length-delimited block from the cursor. It returns
// io.EOF when the cursor sits exactly on a block boundary at end of file. A
// truncated block header, a declared length beyond the remaining bytes, or a
// length above the sanity bound all surface event.ErrMissingSizePrefix:
// framing errors are not recoverable because later boundaries cannot be
// trusted.
func nextBlock(r io.Reader) (streamID uint32, payload []byte, err error) {
	var header [BLOCK_HEADER_SIZE]byte
	n, err := io.ReadFull(r, header[:])
	if err == io.EOF && n == 0 {
		return 0, nil, io.EOF
	}
	if err != nil {
		return 0, nil, fmt.Errorf("%w: truncated block header (%d of %d bytes)",
			event.ErrMissingSizePrefix, n, BLOCK_HEADER_SIZE)
	}

	streamID = binary.LittleEndian.Uint32(header[0:4])
	size := binary.LittleEndian.Uint32(header[4:8])
	if size > MAX_BLOCK_SIZE {
		return 0, nil, fmt.Errorf("%w: declared block size %d exceeds limit %d",
			event.ErrMissingSizePrefix, size, MAX_BLOCK_SIZE)
	}

	payload = make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("%w: block declares %d bytes beyond end of file",
			event.ErrMissingSizePrefix, size)
	}
	return streamID, payload, nil
}

// openTable validates the embedded table's inner size prefix and returns the
// field-presence flags and the field bytes.
func openTable(payload []byte) (flags uint16, fields []byte, err error) {
	if len(payload) < TABLE_PREFIX_SIZE+TABLE_FLAGS_SIZE {
		return 0, nil, fmt.Errorf("%w: table of %d bytes", event.ErrMissingSizePrefix, len(payload))
	}
	inner := binary.LittleEndian.Uint32(payload[0:TABLE_PREFIX_SIZE])
	if int(inner) != len(payload)-TABLE_PREFIX_SIZE {
		return 0, nil, fmt.Errorf("%w: inner size %d, payload %d",
			event.ErrMissingSizePrefix, inner, len(payload)-TABLE_PREFIX_SIZE)
	}
	flags = binary.LittleEndian.Uint16(payload[TABLE_PREFIX_SIZE : TABLE_PREFIX_SIZE+TABLE_FLAGS_SIZE])
	return flags, payload[TABLE_PREFIX_SIZE+TABLE_FLAGS_SIZE:], nil
}
