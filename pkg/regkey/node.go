package regkey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/regkeys/pkg/types"
)

// DefaultValue names the unnamed ("(Default)") value of a key.
const DefaultValue = ""

// Node is a view over one open backend handle. Parent and logical-root links
// are arena indices into the owning Manager, never owning pointers.
type Node struct {
	mgr      *Manager
	h        types.Handle
	name     string
	rel      string
	slot     int
	parent   int
	root     int
	released bool
}

// Name returns the fully qualified path reported by the backend. It stays
// readable after teardown.
func (n *Node) Name() string { return n.name }

// String implements fmt.Stringer.
func (n *Node) String() string { return n.name }

// NodeName returns Name relative to the logical root of the call that
// produced n (the root's name plus one separator stripped). Roots, and nodes
// whose name does not extend the root's, report Name unchanged. The value is
// fixed when n is opened and survives teardown.
func (n *Node) NodeName() string { return n.rel }

// relativeName strips root's name and one separator from name.
func relativeName(name string, root *Node, sep string) string {
	if root == nil {
		return name
	}
	prefix := root.name + sep
	if len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		return name[len(prefix):]
	}
	return name
}

// BaseName returns the last separator-delimited component of Name.
func (n *Node) BaseName() string {
	if i := strings.LastIndex(n.name, n.mgr.sep); i >= 0 {
		return n.name[i+len(n.mgr.sep):]
	}
	return n.name
}

// Separator returns the path separator of the owning manager.
func (n *Node) Separator() string { return n.mgr.sep }

// Released reports whether the owning manager has torn this node down.
func (n *Node) Released() bool { return n.released }

func (n *Node) alive() error {
	if n == nil || n.released || n.h == nil {
		return types.ErrUseAfterTeardown
	}
	return nil
}

// Parent returns the node that opened n, or nil for a root.
func (n *Node) Parent() (*Node, error) {
	if err := n.alive(); err != nil {
		return nil, err
	}
	if n.parent == noParent {
		return nil, nil
	}
	return n.mgr.node(n.parent), nil
}

// LogicalRoot returns the node NodeName is computed against, or nil.
func (n *Node) LogicalRoot() (*Node, error) {
	if err := n.alive(); err != nil {
		return nil, err
	}
	if n.root == noParent {
		return nil, nil
	}
	return n.mgr.node(n.root), nil
}

// FindAncestor walks parent links upward from n's parent and returns
// candidate if it is an ancestor of n, or nil otherwise. O(depth).
func (n *Node) FindAncestor(candidate *Node) *Node {
	if n.alive() != nil || candidate == nil {
		return nil
	}
	for cur := n.mgr.node(n.parent); cur != nil; cur = n.mgr.node(cur.parent) {
		if cur == candidate {
			return cur
		}
	}
	return nil
}

// SubkeyCount returns the backend's direct child count.
func (n *Node) SubkeyCount() (int, error) {
	if err := n.alive(); err != nil {
		return 0, err
	}
	count, err := n.h.SubkeyCount()
	if err != nil {
		return 0, types.BackendError(fmt.Sprintf("count subkeys of %s", n.name), err)
	}
	return count, nil
}

// HasChildren reports whether the backend reports a nonzero child count.
func (n *Node) HasChildren() (bool, error) {
	count, err := n.SubkeyCount()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ChildNames lists direct child names in backend order. The backend's
// enumeration is never invoked for a node without children.
func (n *Node) ChildNames() ([]string, error) {
	has, err := n.HasChildren()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	names, err := n.h.SubkeyNames()
	if err != nil {
		return nil, types.BackendError(fmt.Sprintf("list subkeys of %s", n.name), err)
	}
	return names, nil
}

// OpenSubKey opens the direct child called name. The child's parent and
// logical root are both n. Missing children report types.ErrNotFound.
func (n *Node) OpenSubKey(name string) (*Node, error) {
	return n.openSubKeyRooted(n, name)
}

// openSubKeyRooted opens a direct child whose NodeName is computed relative
// to root instead of n.
func (n *Node) openSubKeyRooted(root *Node, name string) (*Node, error) {
	if err := n.alive(); err != nil {
		return nil, err
	}
	h, err := n.h.OpenChild(name)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, &types.Error{
				Kind: types.ErrKindNotFound,
				Msg:  fmt.Sprintf("subkey %q not found under %s", name, n.name),
				Err:  err,
			}
		}
		return nil, types.BackendError(fmt.Sprintf("open %q under %s", name, n.name), err)
	}
	rootSlot := noParent
	if root != nil {
		rootSlot = root.slot
	}
	return n.mgr.adopt(h, n.slot, rootSlot), nil
}

// OpenPath opens a descendant through a separator-delimited relative path.
// Every hop is registered with the manager; the result's NodeName is
// relative to n. An empty path returns n itself.
func (n *Node) OpenPath(path string) (*Node, error) {
	if err := n.alive(); err != nil {
		return nil, err
	}
	cur := n
	for _, seg := range strings.Split(path, n.mgr.sep) {
		if seg == "" {
			continue
		}
		next, err := cur.openSubKeyRooted(n, seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Value performs a strict read of the named value.
func (n *Node) Value(name string) (types.Value, error) {
	if err := n.alive(); err != nil {
		return types.Value{}, err
	}
	v, err := n.h.ReadValue(name)
	if err != nil {
		if types.IsKind(err, types.ErrKindType) {
			return types.Value{}, fmt.Errorf("read %s[%q]: %w", n.name, name, err)
		}
		return types.Value{}, types.BackendError(fmt.Sprintf("read %s[%q]", n.name, name), err)
	}
	return v, nil
}

// ValueNames lists the names of values stored on n.
func (n *Node) ValueNames() ([]string, error) {
	if err := n.alive(); err != nil {
		return nil, err
	}
	names, err := n.h.ValueNames()
	if err != nil {
		return nil, types.BackendError(fmt.Sprintf("list values of %s", n.name), err)
	}
	return names, nil
}
