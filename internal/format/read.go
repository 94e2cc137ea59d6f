package format

import (
	"encoding/binary"
	"math"
)

// u16 reads a little-endian uint16 at off, reporting ok=false when out of range.
func u16(b []byte, off int) (uint16, bool) {
	if off < 0 || off > len(b)-2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b[off:]), true
}

// u32 reads a little-endian uint32 at off, reporting ok=false when out of range.
func u32(b []byte, off int) (uint32, bool) {
	if off < 0 || off > len(b)-4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[off:]), true
}

// u64 reads a little-endian uint64 at off, reporting ok=false when out of range.
func u64(b []byte, off int) (uint64, bool) {
	if off < 0 || off > len(b)-8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b[off:]), true
}

// Slice returns b[off:off+n] if it fits, guarding against overflow.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) || n > math.MaxInt-off {
		return nil, false
	}
	end := off + n
	if end > len(b) {
		return nil, false
	}
	return b[off:end], true
}
