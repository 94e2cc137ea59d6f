package snapshot

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/joshuapare/regkeys/pkg/types"
)

// Snapshot is an open, read-only snapshot file.
type Snapshot struct {
	db     *bolt.DB
	meta   Meta
	closed bool
}

// Open opens the snapshot at path read-only.
func Open(path string) (*Snapshot, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	var meta Meta
	if err := db.View(func(tx *bolt.Tx) error {
		meta, err = readMeta(tx)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Snapshot{db: db, meta: meta}, nil
}

// Meta returns the capture metadata.
func (s *Snapshot) Meta() Meta { return s.meta }

// Close closes the database. A second call reports types.ErrAlreadyClosed.
func (s *Snapshot) Close() error {
	if s.closed {
		return types.ErrAlreadyClosed
	}
	s.closed = true
	return s.db.Close()
}

// Separator implements types.Backend.
func (s *Snapshot) Separator() string { return s.meta.Separator }

// OpenRoot implements types.Backend. identifier is relative to the captured
// root; a leading copy of the captured root's full name is accepted.
func (s *Snapshot) OpenRoot(identifier string) (types.Handle, error) {
	if s.closed {
		return nil, types.ErrAlreadyClosed
	}
	sep := s.meta.Separator
	if len(identifier) >= len(s.meta.Root) && strings.EqualFold(identifier[:len(s.meta.Root)], s.meta.Root) {
		rest := identifier[len(s.meta.Root):]
		if rest == "" || strings.HasPrefix(rest, sep) {
			identifier = rest
		}
	}
	var h types.Handle = &handle{s: s, name: s.meta.Root}
	for _, seg := range strings.Split(identifier, sep) {
		if seg == "" {
			continue
		}
		next, err := h.OpenChild(seg)
		if err != nil {
			return nil, err
		}
		if err := h.Close(); err != nil {
			return nil, err
		}
		h = next
	}
	return h, nil
}

type handle struct {
	s      *Snapshot
	path   [][]byte
	name   string
	closed bool
}

func (h *handle) view(fn func(b *bolt.Bucket) error) error {
	if h.closed {
		return types.ErrAlreadyClosed
	}
	if h.s.closed {
		return types.ErrAlreadyClosed
	}
	return h.s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(TreeBucket)
		for _, id := range h.path {
			if b = b.Bucket(id); b == nil {
				return &types.Error{Kind: types.ErrKindCorrupt, Msg: "snapshot: missing bucket for " + h.name}
			}
		}
		return fn(b)
	})
}

// each calls fn for every entry with the given prefix, passing the name
// without prefix and the raw value (nil for nested buckets).
func each(b *bolt.Bucket, prefix byte, fn func(name string, v []byte) error) error {
	c := b.Cursor()
	p := []byte{prefix}
	for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
		if err := fn(string(k[1:]), v); err != nil {
			return err
		}
	}
	return nil
}

func (h *handle) FullName() string { return h.name }

func (h *handle) SubkeyCount() (int, error) {
	n := 0
	err := h.view(func(b *bolt.Bucket) error {
		return each(b, keyPrefix, func(string, []byte) error { n++; return nil })
	})
	return n, err
}

func (h *handle) SubkeyNames() ([]string, error) {
	var names []string
	err := h.view(func(b *bolt.Bucket) error {
		return each(b, keyPrefix, func(name string, _ []byte) error {
			names = append(names, name)
			return nil
		})
	})
	return names, err
}

func (h *handle) OpenChild(name string) (types.Handle, error) {
	var found string
	err := h.view(func(b *bolt.Bucket) error {
		if b.Bucket(subkeyID(name)) != nil {
			found = name
			return nil
		}
		return each(b, keyPrefix, func(got string, _ []byte) error {
			if found == "" && strings.EqualFold(got, name) {
				found = got
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == "" {
		return nil, types.NotFound(fmt.Sprintf("subkey %q not found under %s", name, h.name))
	}
	path := append(append([][]byte(nil), h.path...), subkeyID(found))
	return &handle{s: h.s, path: path, name: h.name + h.s.meta.Separator + found}, nil
}

func (h *handle) ValueNames() ([]string, error) {
	names := []string{}
	err := h.view(func(b *bolt.Bucket) error {
		return each(b, valuePrefix, func(name string, _ []byte) error {
			names = append(names, name)
			return nil
		})
	})
	return names, err
}

func (h *handle) ReadValue(name string) (types.Value, error) {
	var raw []byte
	err := h.view(func(b *bolt.Bucket) error {
		if v := b.Get(valueID(name)); v != nil {
			raw = append([]byte(nil), v...)
			return nil
		}
		return each(b, valuePrefix, func(got string, v []byte) error {
			if raw == nil && strings.EqualFold(got, name) {
				raw = append([]byte(nil), v...)
			}
			return nil
		})
	})
	if err != nil {
		return types.Value{}, err
	}
	if raw == nil {
		return types.Value{}, types.ErrMissingValue
	}
	return decodeValue(raw)
}

func (h *handle) Close() error {
	if h.closed {
		return types.ErrAlreadyClosed
	}
	h.closed = true
	return nil
}
