// Package estream decodes the headerless-framing recording formats
// (EVENT-STREAM and RAW). Both carry a single file-wide stream whose
// sub-encoding is declared once in the header; records are fixed width and
// follow each other with no outer frame.
package estream

/*
EVENT-STREAM / RAW Layout

EVENT-STREAM header (binary):
├── Magic "Event Stream" (12 bytes)
├── Version (3 bytes, major.minor.patch; major must be 2)
├── Type (1 byte): 0 = generic, 1 = dvs, 2 = atis, 4 = color
└── Geometry for dvs/atis/color: width (2) + height (2), little-endian

RAW header (ASCII, one "% " line per entry, terminated by "% end"):
├── "% evt 2.0"
├── "% format dvs"            (generic | dvs | atis | color)
└── "% geometry 1280x720"     (required for dvs/atis/color)

RECORDS (fixed width, little-endian, no outer frame):
├── generic: t (8) + payload length (4) + payload bytes
├── dvs:     t (8) + x (2) + y (2) + on (1)                  = 13 bytes
├── atis:    t (8) + x (2) + y (2) + 2-bit polarity code (1) = 13 bytes
└── color:   t (8) + x (2) + y (2) + r (1) + g (1) + b (1)   = 15 bytes

Because there is no outer frame, the framer degenerates to "slice the next N
bytes", N fixed by the sub-encoding (generic records carry their own payload
length). A trailing partial record is a fatal truncation. Records are batched
into packets of at most RECORDS_PER_PACKET so that a Next call touches a
bounded amount of the file.
*/

// Stream-format layout constants.
const (
	ES_MAGIC         = "Event Stream" // EVENT-STREAM magic tag
	ES_VERSION_MAJOR = 2              // Supported EVENT-STREAM major version

	RAW_LINE_PREFIX = "% "    // RAW header line prefix
	RAW_END         = "% end" // RAW header terminator line

	DVS_RECORD_SIZE     = 13 // t (8) + x (2) + y (2) + on (1)
	ATIS_RECORD_SIZE    = 13 // t (8) + x (2) + y (2) + polarity code (1)
	COLOR_RECORD_SIZE   = 15 // t (8) + x (2) + y (2) + r + g + b
	GENERIC_PREFIX_SIZE = 12 // t (8) + payload length (4)

	MAX_GENERIC_PAYLOAD = 1 << 24 // Sanity bound on a generic record payload

	RECORDS_PER_PACKET = 4096 // Batch size of one decoded packet
)
