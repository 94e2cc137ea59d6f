package format

import (
	"bytes"
	"fmt"
)

// VKRecord captures the fields of a VK (value) record.
//
//	Offset  Size  Field
//	0x00    2     'v' 'k'
//	0x02    2     Name length
//	0x04    4     Data length (high bit => data stored inline)
//	0x08    4     Data offset, or the data itself when inline
//	0x0C    4     Type
//	0x10    2     Flags (0x0001 => ASCII name)
//	0x14    n     Name bytes
type VKRecord struct {
	Type       uint32
	DataLength uint32
	DataOffset uint32
	Inline     bool
	Flags      uint16
	NameRaw    []byte
	inlineData [4]byte
}

// NameIsASCII reports whether the value name is stored in 8-bit form.
func (vk VKRecord) NameIsASCII() bool { return vk.Flags&VKFlagASCIIName != 0 }

// Name decodes the value name. An empty name is the key's default value.
func (vk VKRecord) Name() (string, error) {
	return decodeName(vk.NameRaw, vk.NameIsASCII())
}

// InlineData returns the payload of an inline value.
func (vk VKRecord) InlineData() []byte {
	n := min(int(vk.DataLength), len(vk.inlineData))
	return vk.inlineData[:n]
}

// DecodeVK decodes a VK payload.
func DecodeVK(b []byte) (VKRecord, error) {
	if len(b) < VKMinSize {
		return VKRecord{}, fmt.Errorf("vk: %w (have %d, need %d)", ErrTruncated, len(b), VKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], VKSignature) {
		return VKRecord{}, fmt.Errorf("vk: %w", ErrSignatureMismatch)
	}
	vk := VKRecord{}
	nameLen, _ := u16(b, VKNameLenOffset)
	rawLen, _ := u32(b, VKDataLenOffset)
	vk.DataOffset, _ = u32(b, VKDataOffOffset)
	vk.Type, _ = u32(b, VKTypeOffset)
	vk.Flags, _ = u16(b, VKFlagsOffset)
	vk.Inline = rawLen&VKDataInlineBit != 0
	vk.DataLength = rawLen & VKDataLengthMask
	if vk.Inline {
		copy(vk.inlineData[:], b[VKDataOffOffset:VKDataOffOffset+4])
		if vk.DataLength > 4 {
			return VKRecord{}, fmt.Errorf("vk: inline length %d: %w", vk.DataLength, ErrSanityLimit)
		}
	} else if vk.DataLength > MaxValueDataLen {
		return VKRecord{}, fmt.Errorf("vk: data length %d: %w", vk.DataLength, ErrSanityLimit)
	}
	name, ok := Slice(b, VKNameOffset, int(nameLen))
	if !ok {
		return VKRecord{}, fmt.Errorf("vk: name length %d: %w", nameLen, ErrTruncated)
	}
	vk.NameRaw = name
	return vk, nil
}
