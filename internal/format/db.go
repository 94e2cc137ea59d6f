package format

import (
	"bytes"
	"fmt"
)

// DBRecord describes big data split across segments.
type DBRecord struct {
	NumBlocks       uint16
	BlocklistOffset uint32
}

// DecodeDB decodes a db header.
func DecodeDB(b []byte) (DBRecord, error) {
	if len(b) < DBMinSize {
		return DBRecord{}, fmt.Errorf("db: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:SignatureSize], DBSignature) {
		return DBRecord{}, fmt.Errorf("db: %w", ErrSignatureMismatch)
	}
	n, _ := u16(b, DBNumBlocksOffset)
	off, _ := u32(b, DBBlocklistOffset)
	return DBRecord{NumBlocks: n, BlocklistOffset: off}, nil
}

// IsDB reports whether b starts with the db signature.
func IsDB(b []byte) bool {
	return len(b) >= SignatureSize && bytes.Equal(b[:SignatureSize], DBSignature)
}
