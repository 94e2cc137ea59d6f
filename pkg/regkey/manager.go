package regkey

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joshuapare/regkeys/pkg/types"
)

// noParent marks a node opened directly from the backend (a root).
const noParent = -1

// Manager tracks every handle opened through it in acquisition order and
// releases them all on Teardown. The acquisition stack doubles as the node
// arena: a node's parent and logical root are stored as stack indices.
type Manager struct {
	backend types.Backend
	sep     string
	id      string
	log     *slog.Logger
	stack   []*Node
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes open/teardown diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithSeparator overrides the backend's path separator for NodeName and
// OpenPath.
func WithSeparator(sep string) Option {
	return func(m *Manager) {
		if sep != "" {
			m.sep = sep
		}
	}
}

// WithID sets the identifier attached to log records. Defaults to a random UUID.
func WithID(id string) Option {
	return func(m *Manager) { m.id = id }
}

// NewManager returns an empty manager over backend. backend may be nil when
// handles are only ever adopted.
func NewManager(backend types.Backend, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		sep:     `\`,
		id:      uuid.NewString(),
		log:     slog.New(slog.DiscardHandler),
	}
	if backend != nil && backend.Separator() != "" {
		m.sep = backend.Separator()
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("manager", m.id)
	return m
}

// ID returns the identifier attached to this manager's log records.
func (m *Manager) ID() string { return m.id }

// Separator returns the path separator used for relative names.
func (m *Manager) Separator() string { return m.sep }

// Len reports how many handles are currently tracked.
func (m *Manager) Len() int { return len(m.stack) }

// Open asks the backend for the entry named by identifier and tracks it.
func (m *Manager) Open(identifier string) (*Node, error) {
	if m.backend == nil {
		return nil, &types.Error{Kind: types.ErrKindState, Msg: "manager has no backend"}
	}
	h, err := m.backend.OpenRoot(identifier)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) || types.IsKind(err, types.ErrKindUnsupported) {
			return nil, fmt.Errorf("open %q: %w", identifier, err)
		}
		return nil, types.BackendError(fmt.Sprintf("open %q", identifier), err)
	}
	return m.adopt(h, noParent, noParent), nil
}

// Adopt wraps an already-open handle, pushes it onto the acquisition stack
// and returns its node. The manager takes ownership of h.
func (m *Manager) Adopt(h types.Handle) *Node {
	return m.adopt(h, noParent, noParent)
}

func (m *Manager) adopt(h types.Handle, parent, root int) *Node {
	n := &Node{
		mgr:    m,
		h:      h,
		name:   h.FullName(),
		slot:   len(m.stack),
		parent: parent,
		root:   root,
	}
	n.rel = relativeName(n.name, m.node(root), m.sep)
	m.stack = append(m.stack, n)
	m.log.Debug("opened handle", "name", n.name, "slot", n.slot)
	return n
}

// node resolves an arena index. Callers must have checked liveness.
func (m *Manager) node(slot int) *Node {
	if slot < 0 || slot >= len(m.stack) {
		return nil
	}
	return m.stack[slot]
}

// Teardown pops every tracked handle in LIFO order and closes it. A failing
// close never stops the walk; all failures are returned joined, each as a
// types.ErrKindClose error. Calling Teardown on an empty manager is a no-op.
func (m *Manager) Teardown() error {
	if len(m.stack) == 0 {
		return nil
	}
	total := len(m.stack)
	var errs []error
	for len(m.stack) > 0 {
		last := len(m.stack) - 1
		n := m.stack[last]
		m.stack[last] = nil
		m.stack = m.stack[:last]

		n.released = true
		h := n.h
		n.h = nil
		if err := closeHandle(h); err != nil {
			m.log.Warn("handle close failed", "name", n.name, "slot", n.slot, "error", err)
			errs = append(errs, &types.Error{
				Kind: types.ErrKindClose,
				Msg:  fmt.Sprintf("close %s", n.name),
				Err:  err,
			})
		}
	}
	m.log.Debug("teardown complete", "handles", total, "failures", len(errs))
	return errors.Join(errs...)
}

// Close implements io.Closer by calling Teardown.
func (m *Manager) Close() error { return m.Teardown() }

// closeHandle converts a panicking Close into an error so one bad handle
// cannot abort teardown.
func closeHandle(h types.Handle) (err error) {
	if h == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during close: %v", r)
		}
	}()
	return h.Close()
}
