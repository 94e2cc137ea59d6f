package hivefile

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/joshuapare/regkeys/internal/format"
	"github.com/joshuapare/regkeys/pkg/types"
)

// maxIndexDepth bounds ri nesting; real hives use a single level.
const maxIndexDepth = 2

type handle struct {
	hive   *Hive
	off    uint32
	nk     format.NKRecord
	name   string
	closed bool
}

func (k *handle) check() error {
	if k.closed {
		return types.ErrAlreadyClosed
	}
	if k.hive.closed {
		return ErrClosed
	}
	return nil
}

func (k *handle) FullName() string { return k.name }

func (k *handle) SubkeyCount() (int, error) {
	if err := k.check(); err != nil {
		return 0, err
	}
	return int(k.nk.SubkeyCount), nil
}

// children resolves the NK offsets of every direct subkey.
func (k *handle) children() ([]uint32, error) {
	if k.nk.SubkeyCount == 0 || k.nk.SubkeyListOffset == format.InvalidOffset {
		return nil, nil
	}
	out := make([]uint32, 0, k.nk.SubkeyCount)
	out, err := k.hive.collectList(k.nk.SubkeyListOffset, out, 0)
	if err != nil {
		return nil, err
	}
	if len(out) != int(k.nk.SubkeyCount) {
		return nil, &types.Error{
			Kind: types.ErrKindCorrupt,
			Msg:  fmt.Sprintf("%s: subkey list holds %d entries, key reports %d", k.name, len(out), k.nk.SubkeyCount),
		}
	}
	return out, nil
}

func (h *Hive) collectList(off uint32, out []uint32, depth int) ([]uint32, error) {
	b, err := h.cell(off)
	if err != nil {
		return nil, err
	}
	list, err := format.DecodeSubkeyList(b)
	if err != nil {
		return nil, classify(err)
	}
	if !list.Indirect() {
		return append(out, list.Offsets...), nil
	}
	if depth >= maxIndexDepth {
		return nil, classify(fmt.Errorf("ri nesting at 0x%X: %w", off, format.ErrSanityLimit))
	}
	for _, sub := range list.Offsets {
		if out, err = h.collectList(sub, out, depth+1); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (k *handle) SubkeyNames() ([]string, error) {
	if err := k.check(); err != nil {
		return nil, err
	}
	offs, err := k.children()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(offs))
	for _, off := range offs {
		nk, err := k.hive.nk(off)
		if err != nil {
			return nil, err
		}
		name, err := nk.Name()
		if err != nil {
			return nil, classify(err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (k *handle) OpenChild(name string) (types.Handle, error) {
	if err := k.check(); err != nil {
		return nil, err
	}
	return k.child(name)
}

func (k *handle) child(name string) (*handle, error) {
	offs, err := k.children()
	if err != nil {
		return nil, err
	}
	for _, off := range offs {
		nk, err := k.hive.nk(off)
		if err != nil {
			return nil, err
		}
		got, err := nk.Name()
		if err != nil {
			return nil, classify(err)
		}
		if strings.EqualFold(got, name) {
			return &handle{hive: k.hive, off: off, nk: nk, name: k.name + Separator + got}, nil
		}
	}
	return nil, types.NotFound(fmt.Sprintf("subkey %q not found under %s", name, k.name))
}

func (k *handle) values() ([]format.VKRecord, error) {
	if k.nk.ValueCount == 0 || k.nk.ValueListOffset == format.InvalidOffset {
		return nil, nil
	}
	b, err := k.hive.cell(k.nk.ValueListOffset)
	if err != nil {
		return nil, err
	}
	offs, err := format.DecodeValueList(b, k.nk.ValueCount)
	if err != nil {
		return nil, classify(err)
	}
	out := make([]format.VKRecord, 0, len(offs))
	for _, off := range offs {
		cell, err := k.hive.cell(off)
		if err != nil {
			return nil, err
		}
		vk, err := format.DecodeVK(cell)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, vk)
	}
	return out, nil
}

func (k *handle) ValueNames() ([]string, error) {
	if err := k.check(); err != nil {
		return nil, err
	}
	vks, err := k.values()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vks))
	for _, vk := range vks {
		name, err := vk.Name()
		if err != nil {
			return nil, classify(err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (k *handle) ReadValue(name string) (types.Value, error) {
	if err := k.check(); err != nil {
		return types.Value{}, err
	}
	vks, err := k.values()
	if err != nil {
		return types.Value{}, err
	}
	for _, vk := range vks {
		got, err := vk.Name()
		if err != nil {
			return types.Value{}, classify(err)
		}
		if !strings.EqualFold(got, name) {
			continue
		}
		data, err := k.hive.valueData(vk)
		if err != nil {
			return types.Value{}, err
		}
		return decodeValue(types.RegType(vk.Type), data)
	}
	return types.Value{}, types.ErrMissingValue
}

func (k *handle) Close() error {
	if k.closed {
		return types.ErrAlreadyClosed
	}
	k.closed = true
	return nil
}

func (h *Hive) valueData(vk format.VKRecord) ([]byte, error) {
	if vk.Inline {
		return vk.InlineData(), nil
	}
	if vk.DataLength == 0 {
		return []byte{}, nil
	}
	b, err := h.cell(vk.DataOffset)
	if err != nil {
		return nil, err
	}
	if vk.DataLength > format.DBBlockDataSize && format.IsDB(b) {
		return h.bigData(b, int(vk.DataLength))
	}
	if int(vk.DataLength) > len(b) {
		return nil, classify(fmt.Errorf("value data: need %d bytes, cell holds %d: %w", vk.DataLength, len(b), format.ErrTruncated))
	}
	return b[:vk.DataLength], nil
}

func (h *Hive) bigData(b []byte, length int) ([]byte, error) {
	db, err := format.DecodeDB(b)
	if err != nil {
		return nil, classify(err)
	}
	list, err := h.cell(db.BlocklistOffset)
	if err != nil {
		return nil, err
	}
	blocks, err := format.DecodeValueList(list, uint32(db.NumBlocks))
	if err != nil {
		return nil, classify(err)
	}
	out := make([]byte, 0, length)
	for _, off := range blocks {
		seg, err := h.cell(off)
		if err != nil {
			return nil, err
		}
		n := min(len(seg), format.DBBlockDataSize, length-len(out))
		out = append(out, seg[:n]...)
	}
	if len(out) != length {
		return nil, classify(fmt.Errorf("big data: assembled %d of %d bytes: %w", len(out), length, format.ErrTruncated))
	}
	return out, nil
}

func decodeValue(t types.RegType, data []byte) (types.Value, error) {
	switch t {
	case types.REG_SZ, types.REG_EXPAND_SZ, types.REG_LINK:
		s, err := format.DecodeUTF16(data)
		if err != nil {
			return types.Value{}, classify(err)
		}
		switch t {
		case types.REG_EXPAND_SZ:
			return types.ExpandStringValue(s), nil
		case types.REG_LINK:
			return types.LinkValue(s), nil
		}
		return types.StringValue(s), nil
	case types.REG_MULTI_SZ:
		ss, err := format.DecodeMultiString(data)
		if err != nil {
			return types.Value{}, classify(err)
		}
		return types.MultiStringValue(ss), nil
	case types.REG_DWORD:
		if len(data) < 4 {
			return types.Value{}, shortValue(t, data)
		}
		return types.DWORDValue(binary.LittleEndian.Uint32(data)), nil
	case types.REG_DWORD_BE:
		if len(data) < 4 {
			return types.Value{}, shortValue(t, data)
		}
		return types.DWORDBigEndianValue(binary.BigEndian.Uint32(data)), nil
	case types.REG_QWORD:
		if len(data) < 8 {
			return types.Value{}, shortValue(t, data)
		}
		return types.QWORDValue(binary.LittleEndian.Uint64(data)), nil
	default:
		return types.RawValue(t, data), nil
	}
}

func shortValue(t types.RegType, data []byte) error {
	return &types.Error{Kind: types.ErrKindCorrupt, Msg: fmt.Sprintf("%s value holds %d bytes", t, len(data))}
}
