// Package container decodes the block-framed recording containers (AEDAT and
// DAT). Both share one layout and differ only in their magic tag.
package container

/*
AEDAT / DAT Container Layout

Both containers multiplex several logical streams into one sequential byte
stream. All integers are little-endian.

FILE STRUCTURE:
├── Preamble
│   ├── Magic tag ("#!AER-DAT4.0\r\n" for AEDAT, "#!DAT2.0\r\n" for DAT)
│   ├── Stream count (4 bytes)
│   └── Stream descriptors (9 bytes each): id (4) + content kind (1) + width (2) + height (2)
└── Blocks, until end of file
    └── Each block: stream id (4) + payload length (4) + payload

BLOCK PAYLOAD (size-prefixed embedded table):
├── Inner size (4 bytes) - must equal the remaining payload length
├── Field-presence flags (2 bytes) - bit 0 = elements / pixels field present
└── Fields, by content kind:
    ├── Events:   count (4) + 13-byte records: t (8) + x (2) + y (2) + on (1)
    ├── Frame:    t, begin_t, end_t, exposure_begin_t, exposure_end_t (5 × 8)
    │             + format (1) + width (2) + height (2) + offset_x (2) + offset_y (2)
    │             + pixels field when present: length (4) + BGR[A]/gray bytes
    ├── Imus:     count (4) + 48-byte records: t (8) + 10 × float32
    └── Triggers: count (4) + 9-byte records: t (8) + source (1)

The inner size prefix lets a reader skip a whole block without parsing the
table. A block whose declared length exceeds the remaining file bytes is a
fatal framing error: once a length header cannot be trusted, neither can any
subsequent block boundary.

An absent elements field (flags bit clear) is distinct from a present-but-empty
vector (count = 0): the former fails the packet, the latter is a valid empty
batch.
*/

// Container layout constants. These define the fixed wire format shared by
// the AEDAT and DAT preambles and their block framing.
const (
	AEDAT_MAGIC = "#!AER-DAT4.0\r\n" // AEDAT preamble tag
	DAT_MAGIC   = "#!DAT2.0\r\n"     // DAT preamble tag

	DESCRIPTOR_SIZE  = 9          // Stream descriptor: id (4) + content kind (1) + width (2) + height (2)
	BLOCK_HEADER_SIZE = 8         // Block header: stream id (4) + payload length (4)
	MAX_STREAM_COUNT = 4096       // Sanity bound on the declared stream count
	MAX_BLOCK_SIZE   = 1 << 30    // Sanity bound on a declared block payload length

	TABLE_PREFIX_SIZE = 4 // Inner size prefix of the embedded table
	TABLE_FLAGS_SIZE  = 2 // Field-presence flags

	FIELD_ELEMENTS uint16 = 1 << 0 // Events/Imus/Triggers vector, or Frame pixel buffer

	EVENT_RECORD_SIZE   = 13 // t (8) + x (2) + y (2) + on (1)
	IMU_RECORD_SIZE     = 48 // t (8) + temperature + accelerometer/gyroscope/magnetometer xyz (10 × 4)
	TRIGGER_RECORD_SIZE = 9  // t (8) + source (1)
	FRAME_FIXED_SIZE    = 49 // 5 timestamps (40) + format (1) + width (2) + height (2) + offsets (4)
)

// Flavor selects which of the two container preambles to expect.
type Flavor uint8

const (
	FlavorAedat Flavor = iota
	FlavorDat
)

func (f Flavor) String() string {
	if f == FlavorDat {
		return "dat"
	}
	return "aedat"
}

// Magic returns the preamble tag for the flavor.
func (f Flavor) Magic() string {
	if f == FlavorDat {
		return DAT_MAGIC
	}
	return AEDAT_MAGIC
}
