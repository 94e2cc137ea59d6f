// Package memory implements an in-memory types.Backend. It is the reference
// backend for tests: every handle is accounted for, enumeration calls are
// counted, and failures can be injected per key.
package memory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joshuapare/regkeys/pkg/types"
)

type key struct {
	name     string
	children []*key
	values   []namedValue
}

type namedValue struct {
	name  string
	value types.Value
}

func (k *key) child(name string) *key {
	for _, c := range k.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

// Fault selects which handle operation an injected error applies to.
type Fault uint8

const (
	FaultOpen Fault = iota
	FaultCount
	FaultList
	FaultRead
	FaultClose
)

// HandleStat records the lifecycle of one handle.
type HandleStat struct {
	Name   string
	Closes int
}

// Store is an in-memory hierarchical store.
type Store struct {
	sep    string
	root   *key
	faults map[string]map[Fault]error
	lists  map[string]int
	stats  []*HandleStat
}

// Option configures a Store.
type Option func(*Store)

// WithSeparator sets the path separator (default `\`).
func WithSeparator(sep string) Option {
	return func(s *Store) { s.sep = sep }
}

// WithRootName sets the name of the store root (default "ROOT").
func WithRootName(name string) Option {
	return func(s *Store) { s.root.name = name }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		sep:    `\`,
		root:   &key{name: "ROOT"},
		faults: make(map[string]map[Fault]error),
		lists:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Separator implements types.Backend.
func (s *Store) Separator() string { return s.sep }

func (s *Store) split(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, s.sep) {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Key creates the key at path (relative to the root) and any missing
// ancestors. It returns s for chaining.
func (s *Store) Key(path string) *Store {
	s.ensure(path)
	return s
}

func (s *Store) ensure(path string) *key {
	cur := s.root
	for _, seg := range s.split(path) {
		next := cur.child(seg)
		if next == nil {
			next = &key{name: seg}
			cur.children = append(cur.children, next)
		}
		cur = next
	}
	return cur
}

// Set stores a value on the key at path, creating the key if needed.
func (s *Store) Set(path, name string, v types.Value) *Store {
	k := s.ensure(path)
	for i := range k.values {
		if strings.EqualFold(k.values[i].name, name) {
			k.values[i].value = v
			return s
		}
	}
	k.values = append(k.values, namedValue{name: name, value: v})
	return s
}

// Delete removes the key at path and its subtree.
func (s *Store) Delete(path string) *Store {
	segs := s.split(path)
	if len(segs) == 0 {
		return s
	}
	parent := s.lookup(segs[:len(segs)-1])
	if parent == nil {
		return s
	}
	parent.children = slices.DeleteFunc(parent.children, func(c *key) bool {
		return strings.EqualFold(c.name, segs[len(segs)-1])
	})
	return s
}

// Inject makes operation f fail with err for the key at path (full name,
// e.g. `ROOT\A`). A nil err clears the fault.
func (s *Store) Inject(fullName string, f Fault, err error) *Store {
	m := s.faults[fullName]
	if m == nil {
		m = make(map[Fault]error)
		s.faults[fullName] = m
	}
	if err == nil {
		delete(m, f)
	} else {
		m[f] = err
	}
	return s
}

func (s *Store) fault(fullName string, f Fault) error {
	return s.faults[fullName][f]
}

func (s *Store) lookup(segs []string) *key {
	cur := s.root
	for _, seg := range segs {
		cur = cur.child(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// OpenRoot implements types.Backend. identifier is a path relative to the
// store root; "" opens the root itself.
func (s *Store) OpenRoot(identifier string) (types.Handle, error) {
	segs := s.split(identifier)
	k := s.lookup(segs)
	if k == nil {
		return nil, types.NotFound(fmt.Sprintf("key %q not found", identifier))
	}
	full := strings.Join(append([]string{s.root.name}, segs...), s.sep)
	if err := s.fault(full, FaultOpen); err != nil {
		return nil, err
	}
	return s.newHandle(k, full), nil
}

func (s *Store) newHandle(k *key, full string) *handle {
	st := &HandleStat{Name: full}
	s.stats = append(s.stats, st)
	return &handle{store: s, key: k, name: full, stat: st}
}

// Handles returns the lifecycle record of every handle ever opened, in
// opening order.
func (s *Store) Handles() []HandleStat {
	out := make([]HandleStat, len(s.stats))
	for i, st := range s.stats {
		out[i] = *st
	}
	return out
}

// OpenHandles reports handles opened but not yet closed.
func (s *Store) OpenHandles() int {
	n := 0
	for _, st := range s.stats {
		if st.Closes == 0 {
			n++
		}
	}
	return n
}

// ListCalls reports how often SubkeyNames ran for the key with fullName.
func (s *Store) ListCalls(fullName string) int { return s.lists[fullName] }

type handle struct {
	store *Store
	key   *key
	name  string
	stat  *HandleStat
}

func (h *handle) FullName() string { return h.name }

func (h *handle) SubkeyCount() (int, error) {
	if err := h.store.fault(h.name, FaultCount); err != nil {
		return 0, err
	}
	return len(h.key.children), nil
}

func (h *handle) SubkeyNames() ([]string, error) {
	h.store.lists[h.name]++
	if len(h.key.children) == 0 {
		// Mirrors stores whose enumeration misbehaves on empty keys.
		return nil, &types.Error{Kind: types.ErrKindState, Msg: "enumeration of key without subkeys: " + h.name}
	}
	if err := h.store.fault(h.name, FaultList); err != nil {
		return nil, err
	}
	names := make([]string, len(h.key.children))
	for i, c := range h.key.children {
		names[i] = c.name
	}
	return names, nil
}

func (h *handle) OpenChild(name string) (types.Handle, error) {
	c := h.key.child(name)
	if c == nil {
		return nil, types.NotFound(fmt.Sprintf("subkey %q not found", name))
	}
	full := h.name + h.store.sep + c.name
	if err := h.store.fault(full, FaultOpen); err != nil {
		return nil, err
	}
	return h.store.newHandle(c, full), nil
}

func (h *handle) ReadValue(name string) (types.Value, error) {
	if err := h.store.fault(h.name, FaultRead); err != nil {
		return types.Value{}, err
	}
	for _, v := range h.key.values {
		if strings.EqualFold(v.name, name) {
			return v.value, nil
		}
	}
	return types.Value{}, types.ErrMissingValue
}

func (h *handle) ValueNames() ([]string, error) {
	if err := h.store.fault(h.name, FaultRead); err != nil {
		return nil, err
	}
	names := make([]string, len(h.key.values))
	for i, v := range h.key.values {
		names[i] = v.name
	}
	return names, nil
}

func (h *handle) Close() error {
	h.stat.Closes++
	if h.stat.Closes > 1 {
		return types.ErrAlreadyClosed
	}
	return h.store.fault(h.name, FaultClose)
}
