package format

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// NKRecord captures the fields of an NK (key node) record.
//
//	Offset  Size  Field
//	0x00    2     'n' 'k'
//	0x02    2     Flags (0x20 => compressed name)
//	0x04    8     Last write time (FILETIME)
//	0x10    4     Parent cell offset
//	0x14    4     Number of subkeys
//	0x1C    4     Subkey list offset
//	0x24    4     Number of values
//	0x28    4     Value list offset
//	0x2C    4     Security offset
//	0x30    4     Class name offset
//	0x48    2     Name length
//	0x4A    2     Class length
//	0x4C    n     Name bytes
type NKRecord struct {
	Flags            uint16
	LastWriteRaw     uint64
	ParentOffset     uint32
	SubkeyCount      uint32
	SubkeyListOffset uint32
	ValueCount       uint32
	ValueListOffset  uint32
	SecurityOffset   uint32
	ClassNameOffset  uint32
	ClassLength      uint16
	NameRaw          []byte
}

// NameIsCompressed reports whether the name is stored in 8-bit form.
func (nk NKRecord) NameIsCompressed() bool { return nk.Flags&NKFlagCompressedName != 0 }

// Name decodes the key name: Windows-1252 when compressed, UTF-16LE otherwise.
func (nk NKRecord) Name() (string, error) {
	return decodeName(nk.NameRaw, nk.NameIsCompressed())
}

// DecodeNK decodes an NK payload (cell data without the size prefix).
func DecodeNK(b []byte) (NKRecord, error) {
	if len(b) < NKMinSize {
		return NKRecord{}, fmt.Errorf("nk: %w (have %d, need %d)", ErrTruncated, len(b), NKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], NKSignature) {
		return NKRecord{}, fmt.Errorf("nk: %w", ErrSignatureMismatch)
	}
	nk := NKRecord{}
	nk.Flags, _ = u16(b, NKFlagsOffset)
	nk.LastWriteRaw, _ = u64(b, NKLastWriteOffset)
	nk.ParentOffset, _ = u32(b, NKParentOffset)
	nk.SubkeyCount, _ = u32(b, NKSubkeyCountOffset)
	nk.SubkeyListOffset, _ = u32(b, NKSubkeyListOffset)
	nk.ValueCount, _ = u32(b, NKValueCountOffset)
	nk.ValueListOffset, _ = u32(b, NKValueListOffset)
	nk.SecurityOffset, _ = u32(b, NKSecurityOffset)
	nk.ClassNameOffset, _ = u32(b, NKClassNameOffset)
	nameLen, _ := u16(b, NKNameLenOffset)
	nk.ClassLength, _ = u16(b, NKClassLenOffset)
	if nk.SubkeyCount > MaxSubkeyCount {
		return NKRecord{}, fmt.Errorf("nk: subkey count %d: %w", nk.SubkeyCount, ErrSanityLimit)
	}
	if nk.ValueCount > MaxValueCount {
		return NKRecord{}, fmt.Errorf("nk: value count %d: %w", nk.ValueCount, ErrSanityLimit)
	}
	name, ok := Slice(b, NKNameOffset, int(nameLen))
	if !ok {
		return NKRecord{}, fmt.Errorf("nk: name length %d: %w", nameLen, ErrTruncated)
	}
	nk.NameRaw = name
	return nk, nil
}

func decodeName(raw []byte, compressed bool) (string, error) {
	if compressed {
		out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("name: %w", err)
		}
		return string(out), nil
	}
	return DecodeUTF16(raw)
}

// EncodeCompressedName encodes s in Windows-1252. ok is false when s holds
// characters outside that code page and must be stored as UTF-16LE.
func EncodeCompressedName(s string) ([]byte, bool) {
	out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, false
	}
	return out, true
}
