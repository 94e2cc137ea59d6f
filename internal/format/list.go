package format

import (
	"bytes"
	"fmt"
)

// SubkeyList is a decoded subkey index. For ri lists the offsets point at
// further lists rather than NK cells.
type SubkeyList struct {
	Kind    []byte
	Offsets []uint32
}

// Indirect reports whether the list is an ri index of lists.
func (l SubkeyList) Indirect() bool { return bytes.Equal(l.Kind, RISignature) }

// DecodeSubkeyList decodes an lf, lh, li or ri list.
func DecodeSubkeyList(b []byte) (SubkeyList, error) {
	if len(b) < ListHeaderSize {
		return SubkeyList{}, fmt.Errorf("subkey list: %w", ErrTruncated)
	}
	sig := b[:SignatureSize]
	count, _ := u16(b, SignatureSize)
	var stride int
	switch {
	case bytes.Equal(sig, LFSignature), bytes.Equal(sig, LHSignature):
		stride = LFEntrySize
	case bytes.Equal(sig, LISignature), bytes.Equal(sig, RISignature):
		stride = OffsetFieldSize
	default:
		return SubkeyList{}, fmt.Errorf("subkey list %q: %w", sig, ErrSignatureMismatch)
	}
	if _, ok := Slice(b, ListHeaderSize, int(count)*stride); !ok {
		return SubkeyList{}, fmt.Errorf("subkey list: %d entries: %w", count, ErrTruncated)
	}
	offs := make([]uint32, count)
	for i := range offs {
		offs[i], _ = u32(b, ListHeaderSize+i*stride)
	}
	return SubkeyList{Kind: sig, Offsets: offs}, nil
}

// DecodeValueList decodes a value list: count VK offsets with no header.
func DecodeValueList(b []byte, count uint32) ([]uint32, error) {
	if count > MaxValueCount {
		return nil, fmt.Errorf("value list: %d entries: %w", count, ErrSanityLimit)
	}
	if _, ok := Slice(b, 0, int(count)*OffsetFieldSize); !ok {
		return nil, fmt.Errorf("value list: %d entries: %w", count, ErrTruncated)
	}
	offs := make([]uint32, count)
	for i := range offs {
		offs[i], _ = u32(b, i*OffsetFieldSize)
	}
	return offs, nil
}
