// Package hivetest builds small, valid registry hive images in memory so
// tests can exercise the hive reader without fixture files.
//
//	img := hivetest.Build(hivetest.K("ROOT",
//	    hivetest.K("Software",
//	        hivetest.K("Vendor").With(hivetest.String("Path", `C:\app`)),
//	    ),
//	))
package hivetest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/regkeys/internal/format"
)

// Key is a key in the tree to be encoded.
type Key struct {
	Name    string
	Subkeys []*Key
	Values  []Value
}

// Value is a raw value record.
type Value struct {
	Name string
	Type uint32
	Data []byte
}

// K returns a key with the given children.
func K(name string, children ...*Key) *Key {
	return &Key{Name: name, Subkeys: children}
}

// With appends values to k and returns it.
func (k *Key) With(values ...Value) *Key {
	k.Values = append(k.Values, values...)
	return k
}

// String returns a REG_SZ value.
func String(name, s string) Value {
	b, err := format.EncodeString(s)
	if err != nil {
		panic(err)
	}
	return Value{Name: name, Type: 1, Data: b}
}

// MultiString returns a REG_MULTI_SZ value.
func MultiString(name string, ss ...string) Value {
	b, err := format.EncodeMultiString(ss)
	if err != nil {
		panic(err)
	}
	return Value{Name: name, Type: 7, Data: b}
}

// DWORD returns a REG_DWORD value.
func DWORD(name string, v uint32) Value {
	return Value{Name: name, Type: 4, Data: binary.LittleEndian.AppendUint32(nil, v)}
}

// DWORDBigEndian returns a REG_DWORD_BIG_ENDIAN value.
func DWORDBigEndian(name string, v uint32) Value {
	return Value{Name: name, Type: 5, Data: binary.BigEndian.AppendUint32(nil, v)}
}

// QWORD returns a REG_QWORD value.
func QWORD(name string, v uint64) Value {
	return Value{Name: name, Type: 11, Data: binary.LittleEndian.AppendUint64(nil, v)}
}

// Binary returns a REG_BINARY value.
func Binary(name string, b []byte) Value {
	return Value{Name: name, Type: 3, Data: b}
}

// ListKind selects the subkey index layout the builder emits.
type ListKind string

const (
	ListLF ListKind = "lf"
	ListLH ListKind = "lh"
	ListLI ListKind = "li"
	// ListRI emits an ri index with one li list per two children.
	ListRI ListKind = "ri"
)

type options struct {
	list  ListKind
	dirty bool
}

// Option configures Build.
type Option func(*options)

// WithList selects the subkey list layout (default lh).
func WithList(kind ListKind) Option { return func(o *options) { o.list = kind } }

// Dirty writes mismatched sequence numbers into the header.
func Dirty() Option { return func(o *options) { o.dirty = true } }

// Build encodes root and its subtree as a complete hive image with a single
// hive bin.
func Build(root *Key, opts ...Option) []byte {
	o := options{list: ListLH}
	for _, opt := range opts {
		opt(&o)
	}
	w := &writer{opts: o, bin: make([]byte, format.HBINHeaderSize)}
	rootOff := w.key(root, format.InvalidOffset, true)

	size := (len(w.bin) + format.HBINAlignment - 1) / format.HBINAlignment * format.HBINAlignment
	if pad := size - len(w.bin); pad > 0 {
		// Trailing free cell covering the rest of the bin.
		free := make([]byte, pad)
		if pad >= format.CellHeaderSize {
			binary.LittleEndian.PutUint32(free, uint32(pad))
		}
		w.bin = append(w.bin, free...)
	}
	copy(w.bin, format.HBINSignature)
	binary.LittleEndian.PutUint32(w.bin[format.HBINSizeOffset:], uint32(size))

	hdr := make([]byte, format.HeaderSize)
	copy(hdr, format.REGFSignature)
	seq2 := uint32(1)
	if o.dirty {
		seq2 = 0
	}
	binary.LittleEndian.PutUint32(hdr[format.REGFPrimarySeqOffset:], 1)
	binary.LittleEndian.PutUint32(hdr[format.REGFSecondarySeqOffset:], seq2)
	binary.LittleEndian.PutUint32(hdr[format.REGFMajorVersionOffset:], 1)
	binary.LittleEndian.PutUint32(hdr[format.REGFMinorVersionOffset:], 5)
	binary.LittleEndian.PutUint32(hdr[format.REGFRootCellOffset:], rootOff)
	binary.LittleEndian.PutUint32(hdr[format.REGFDataSizeOffset:], uint32(size))
	if name, err := format.EncodeUTF16(root.Name); err == nil {
		copy(hdr[format.REGFFileNameOffset:format.REGFFileNameOffset+format.REGFFileNameSize], name)
	}
	var sum uint32
	for i := 0; i < 0x1FC; i += 4 {
		sum ^= binary.LittleEndian.Uint32(hdr[i:])
	}
	binary.LittleEndian.PutUint32(hdr[0x1FC:], sum)

	return append(hdr, w.bin...)
}

// WriteFile builds root and writes it to a file in t.TempDir, returning the path.
func WriteFile(t testing.TB, root *Key, opts ...Option) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), strings.ToLower(root.Name)+".hive")
	if err := os.WriteFile(path, Build(root, opts...), 0o600); err != nil {
		t.Fatalf("write hive: %v", err)
	}
	return path
}

type writer struct {
	opts options
	bin  []byte
}

// alloc appends an allocated cell holding payload and returns its offset
// relative to the start of the bin area.
func (w *writer) alloc(payload []byte) uint32 {
	off := uint32(len(w.bin))
	size := (format.CellHeaderSize + len(payload) + 7) &^ 7
	cell := make([]byte, size)
	binary.LittleEndian.PutUint32(cell, uint32(-int32(size)))
	copy(cell[format.CellHeaderSize:], payload)
	w.bin = append(w.bin, cell...)
	return off
}

func (w *writer) put32(off uint32, field int, v uint32) {
	binary.LittleEndian.PutUint32(w.bin[int(off)+format.CellHeaderSize+field:], v)
}

func encodeName(name string) ([]byte, bool) {
	if b, ok := format.EncodeCompressedName(name); ok {
		return b, true
	}
	b, err := format.EncodeUTF16(name)
	if err != nil {
		panic(err)
	}
	return b, false
}

func (w *writer) key(k *Key, parent uint32, root bool) uint32 {
	name, compressed := encodeName(k.Name)
	nk := make([]byte, format.NKMinSize+len(name))
	copy(nk, format.NKSignature)
	var flags uint16
	if compressed {
		flags |= format.NKFlagCompressedName
	}
	if root {
		flags |= format.NKFlagRootKey
	}
	binary.LittleEndian.PutUint16(nk[format.NKFlagsOffset:], flags)
	binary.LittleEndian.PutUint64(nk[format.NKLastWriteOffset:], 0x01D9_0000_0000_0000)
	binary.LittleEndian.PutUint32(nk[format.NKParentOffset:], parent)
	binary.LittleEndian.PutUint32(nk[format.NKSubkeyListOffset:], format.InvalidOffset)
	binary.LittleEndian.PutUint32(nk[format.NKValueListOffset:], format.InvalidOffset)
	binary.LittleEndian.PutUint32(nk[format.NKSecurityOffset:], format.InvalidOffset)
	binary.LittleEndian.PutUint32(nk[format.NKClassNameOffset:], format.InvalidOffset)
	binary.LittleEndian.PutUint16(nk[format.NKNameLenOffset:], uint16(len(name)))
	copy(nk[format.NKNameOffset:], name)
	off := w.alloc(nk)

	if len(k.Subkeys) > 0 {
		children := make([]uint32, len(k.Subkeys))
		for i, c := range k.Subkeys {
			children[i] = w.key(c, off, false)
		}
		w.put32(off, format.NKSubkeyCountOffset, uint32(len(children)))
		w.put32(off, format.NKSubkeyListOffset, w.subkeyList(k.Subkeys, children))
	}
	if len(k.Values) > 0 {
		list := make([]byte, 0, len(k.Values)*format.OffsetFieldSize)
		for _, v := range k.Values {
			list = binary.LittleEndian.AppendUint32(list, w.value(v))
		}
		w.put32(off, format.NKValueCountOffset, uint32(len(k.Values)))
		w.put32(off, format.NKValueListOffset, w.alloc(list))
	}
	return off
}

func (w *writer) subkeyList(keys []*Key, offs []uint32) uint32 {
	switch w.opts.list {
	case ListLI:
		return w.alloc(indexList(format.LISignature, offs))
	case ListRI:
		var lists []uint32
		for i := 0; i < len(offs); i += 2 {
			lists = append(lists, w.alloc(indexList(format.LISignature, offs[i:min(i+2, len(offs))])))
		}
		return w.alloc(indexList(format.RISignature, lists))
	}
	b := append([]byte{}, format.LHSignature...)
	if w.opts.list == ListLF {
		b = append([]byte{}, format.LFSignature...)
	}
	b = binary.LittleEndian.AppendUint16(b, uint16(len(offs)))
	for i, off := range offs {
		b = binary.LittleEndian.AppendUint32(b, off)
		if w.opts.list == ListLF {
			var hint [4]byte
			copy(hint[:], keys[i].Name)
			b = append(b, hint[:]...)
		} else {
			b = binary.LittleEndian.AppendUint32(b, nameHash(keys[i].Name))
		}
	}
	return w.alloc(b)
}

func indexList(sig []byte, offs []uint32) []byte {
	b := append([]byte{}, sig...)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(offs)))
	for _, off := range offs {
		b = binary.LittleEndian.AppendUint32(b, off)
	}
	return b
}

// nameHash is the lh hash: h = h*37 + upper(rune).
func nameHash(name string) uint32 {
	var h uint32
	for _, r := range strings.ToUpper(name) {
		h = h*37 + uint32(r)
	}
	return h
}

func (w *writer) value(v Value) uint32 {
	name, compressed := encodeName(v.Name)
	vk := make([]byte, format.VKMinSize+len(name))
	copy(vk, format.VKSignature)
	binary.LittleEndian.PutUint16(vk[format.VKNameLenOffset:], uint16(len(name)))
	binary.LittleEndian.PutUint32(vk[format.VKTypeOffset:], v.Type)
	if compressed && len(name) > 0 {
		binary.LittleEndian.PutUint16(vk[format.VKFlagsOffset:], format.VKFlagASCIIName)
	}
	copy(vk[format.VKNameOffset:], name)

	n := uint32(len(v.Data))
	switch {
	case n <= 4:
		binary.LittleEndian.PutUint32(vk[format.VKDataLenOffset:], n|format.VKDataInlineBit)
		copy(vk[format.VKDataOffOffset:format.VKDataOffOffset+4], v.Data)
	case n > format.DBBlockDataSize:
		binary.LittleEndian.PutUint32(vk[format.VKDataLenOffset:], n)
		binary.LittleEndian.PutUint32(vk[format.VKDataOffOffset:], w.bigData(v.Data))
	default:
		binary.LittleEndian.PutUint32(vk[format.VKDataLenOffset:], n)
		binary.LittleEndian.PutUint32(vk[format.VKDataOffOffset:], w.alloc(v.Data))
	}
	return w.alloc(vk)
}

func (w *writer) bigData(data []byte) uint32 {
	var blocks []byte
	count := 0
	for i := 0; i < len(data); i += format.DBBlockDataSize {
		seg := data[i:min(i+format.DBBlockDataSize, len(data))]
		blocks = binary.LittleEndian.AppendUint32(blocks, w.alloc(seg))
		count++
	}
	list := w.alloc(blocks)
	db := append([]byte{}, format.DBSignature...)
	db = binary.LittleEndian.AppendUint16(db, uint16(count))
	db = binary.LittleEndian.AppendUint32(db, list)
	return w.alloc(db)
}
