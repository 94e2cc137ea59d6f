// Package format decodes the on-disk structures of Windows registry hive
// files: the REGF base block, hive bins, cells and the records they hold.
// All decoders are bounds-checked and never panic on hostile input.
package format

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// Header captures the subset of the REGF base block needed to walk a hive.
//
//	Offset  Size  Description
//	------  ----  -----------------------------------------------
//	 0x000   4    'r' 'e' 'g' 'f'
//	 0x004   4    Primary sequence number
//	 0x008   4    Secondary sequence number
//	 0x00C   8    Last write timestamp (FILETIME)
//	 0x014   4    Major version
//	 0x018   4    Minor version
//	 0x01C   4    Type (0 = primary)
//	 0x024   4    Root cell offset (relative to the first hbin)
//	 0x028   4    Total size of hbin data
//	 0x030  64    Embedded file name (UTF-16LE)
type Header struct {
	PrimarySequence   uint32
	SecondarySequence uint32
	LastWriteRaw      uint64
	MajorVersion      uint32
	MinorVersion      uint32
	Type              uint32
	RootCellOffset    uint32
	HiveBinsDataSize  uint32
	FileName          string
}

// Dirty reports whether the sequence numbers disagree, meaning the hive was
// not flushed cleanly and transaction logs may hold newer data.
func (h Header) Dirty() bool { return h.PrimarySequence != h.SecondarySequence }

// ParseHeader validates and extracts the REGF base block.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("regf header: %w (have %d, need %d)", ErrTruncated, len(b), HeaderSize)
	}
	if !bytes.Equal(b[:len(REGFSignature)], REGFSignature) {
		return Header{}, fmt.Errorf("regf header: %w", ErrSignatureMismatch)
	}
	h := Header{}
	h.PrimarySequence, _ = u32(b, REGFPrimarySeqOffset)
	h.SecondarySequence, _ = u32(b, REGFSecondarySeqOffset)
	h.LastWriteRaw, _ = u64(b, REGFTimeStampOffset)
	h.MajorVersion, _ = u32(b, REGFMajorVersionOffset)
	h.MinorVersion, _ = u32(b, REGFMinorVersionOffset)
	h.Type, _ = u32(b, REGFTypeOffset)
	h.RootCellOffset, _ = u32(b, REGFRootCellOffset)
	h.HiveBinsDataSize, _ = u32(b, REGFDataSizeOffset)
	if h.MajorVersion != 1 {
		return Header{}, fmt.Errorf("regf header: major version %d: %w", h.MajorVersion, ErrUnsupported)
	}
	if name, err := DecodeUTF16(b[REGFFileNameOffset : REGFFileNameOffset+REGFFileNameSize]); err == nil {
		h.FileName = name
	}
	return h, nil
}

// HBIN is the header of one hive bin.
type HBIN struct {
	FileOffset uint32
	Size       uint32
}

// ParseHBIN decodes the hive bin header at the start of b.
func ParseHBIN(b []byte) (HBIN, error) {
	if len(b) < HBINHeaderSize {
		return HBIN{}, fmt.Errorf("hbin: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:len(HBINSignature)], HBINSignature) {
		return HBIN{}, fmt.Errorf("hbin: %w", ErrSignatureMismatch)
	}
	off, _ := u32(b, HBINFileOffsetField)
	size, _ := u32(b, HBINSizeOffset)
	if size < HBINHeaderSize || size%HBINAlignment != 0 {
		return HBIN{}, fmt.Errorf("hbin: size 0x%X: %w", size, ErrSanityLimit)
	}
	return HBIN{FileOffset: off, Size: size}, nil
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16 decodes UTF-16LE bytes, stopping at the first NUL code unit.
func DecodeUTF16(b []byte) (string, error) {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			b = b[:i]
			break
		}
	}
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("utf16: %w", err)
	}
	return string(out), nil
}

// EncodeUTF16 encodes s as UTF-16LE without a terminator.
func EncodeUTF16(s string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(s))
}
