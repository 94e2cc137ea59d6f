// Package hivefile implements types.Backend over an offline Windows registry
// hive file (the "regf" format used by SYSTEM, SOFTWARE, NTUSER.DAT, ...).
//
// The hive is mapped read-only. Handles decode their NK record once on open
// and walk subkey and value lists on demand.
package hivefile

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/joshuapare/regkeys/internal/format"
	"github.com/joshuapare/regkeys/internal/mmfile"
	"github.com/joshuapare/regkeys/pkg/types"
)

// Separator is the path separator used in hive key names.
const Separator = `\`

// DefaultMaxCellSize bounds any single cell the reader will accept.
const DefaultMaxCellSize = 16 << 20

// ErrClosed reports use of a hive after Close.
var ErrClosed = &types.Error{Kind: types.ErrKindState, Msg: "hivefile: hive closed"}

// Options configures how a hive is presented.
type Options struct {
	// MountPoint replaces the root key's name as the prefix of every full
	// name, e.g. `HKLM\SOFTWARE`. Empty uses the root key's own name.
	MountPoint string

	// MaxCellSize rejects cells larger than this many bytes. Zero selects
	// DefaultMaxCellSize.
	MaxCellSize int
}

// Info summarises the hive header.
type Info struct {
	RootName     string
	FileName     string
	MajorVersion uint32
	MinorVersion uint32
	LastWrite    time.Time
	Dirty        bool
	Size         int
}

// Hive is an open hive file.
type Hive struct {
	data     []byte
	mapping  *mmfile.Mapping
	head     format.Header
	opts     Options
	rootName string
	closed   bool
}

// Open maps the hive at path.
func Open(path string, opts Options) (*Hive, error) {
	m, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("hivefile: open %s: %w", path, err)
	}
	h, err := newHive(m.Data, opts)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("hivefile: %s: %w", path, err)
	}
	h.mapping = m
	return h, nil
}

// OpenBytes reads a hive image held in memory. buf must not be modified while
// the hive is open.
func OpenBytes(buf []byte, opts Options) (*Hive, error) {
	h, err := newHive(buf, opts)
	if err != nil {
		return nil, fmt.Errorf("hivefile: %w", err)
	}
	return h, nil
}

func newHive(data []byte, opts Options) (*Hive, error) {
	if opts.MaxCellSize <= 0 {
		opts.MaxCellSize = DefaultMaxCellSize
	}
	if !bytes.HasPrefix(data, format.REGFSignature) {
		return nil, types.ErrNotHive
	}
	head, err := format.ParseHeader(data)
	if err != nil {
		return nil, classify(err)
	}
	if _, err := format.ParseHBIN(data[format.HeaderSize:]); err != nil {
		return nil, classify(err)
	}
	h := &Hive{data: data, head: head, opts: opts}
	root, err := h.nk(head.RootCellOffset)
	if err != nil {
		return nil, fmt.Errorf("root key: %w", err)
	}
	if h.rootName, err = root.Name(); err != nil {
		return nil, classify(err)
	}
	return h, nil
}

// classify maps decoder failures onto the shared error kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, format.ErrSignatureMismatch):
		return fmt.Errorf("%w: %w", types.ErrNotHive, err)
	case errors.Is(err, format.ErrUnsupported):
		return fmt.Errorf("%w: %w", types.ErrUnsupported, err)
	default:
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: "corrupt hive structure", Err: err}
	}
}

// Close releases the mapping. Handles must not be used afterwards. A second
// call reports types.ErrAlreadyClosed.
func (h *Hive) Close() error {
	if h.closed {
		return types.ErrAlreadyClosed
	}
	h.closed = true
	h.data = nil
	if h.mapping != nil {
		return h.mapping.Close()
	}
	return nil
}

// Info returns header metadata.
func (h *Hive) Info() Info {
	return Info{
		RootName:     h.rootName,
		FileName:     h.head.FileName,
		MajorVersion: h.head.MajorVersion,
		MinorVersion: h.head.MinorVersion,
		LastWrite:    format.FiletimeToTime(h.head.LastWriteRaw),
		Dirty:        h.head.Dirty(),
		Size:         len(h.data),
	}
}

// Separator implements types.Backend.
func (h *Hive) Separator() string { return Separator }

// MountPoint returns the prefix used for full names.
func (h *Hive) MountPoint() string {
	if h.opts.MountPoint != "" {
		return h.opts.MountPoint
	}
	return h.rootName
}

// OpenRoot implements types.Backend. identifier is a path inside the hive;
// "" opens the root key. A leading root alias (HKLM, HKEY_LOCAL_MACHINE...),
// the mount point or the root key's own name are accepted and skipped.
// Lookups are case-insensitive.
func (h *Hive) OpenRoot(identifier string) (types.Handle, error) {
	if h.closed {
		return nil, ErrClosed
	}
	root, err := h.openKey(h.head.RootCellOffset, h.MountPoint())
	if err != nil {
		return nil, err
	}
	cur := root
	for _, seg := range h.segments(identifier) {
		next, err := cur.child(seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (h *Hive) cell(off uint32) ([]byte, error) {
	if h.closed {
		return nil, ErrClosed
	}
	c, err := format.ReadCell(h.data, off)
	if err != nil {
		return nil, classify(err)
	}
	if c.Size > h.opts.MaxCellSize {
		return nil, classify(fmt.Errorf("cell 0x%X: size %d: %w", off, c.Size, format.ErrSanityLimit))
	}
	return c.Data, nil
}

func (h *Hive) nk(off uint32) (format.NKRecord, error) {
	b, err := h.cell(off)
	if err != nil {
		return format.NKRecord{}, err
	}
	nk, err := format.DecodeNK(b)
	if err != nil {
		return format.NKRecord{}, classify(err)
	}
	return nk, nil
}

func (h *Hive) openKey(off uint32, fullName string) (*handle, error) {
	nk, err := h.nk(off)
	if err != nil {
		return nil, err
	}
	return &handle{hive: h, off: off, nk: nk, name: fullName}, nil
}
