package regkey

import (
	"errors"
	"iter"
)

// initialStackCapacity covers typical registry depth without reallocating.
const initialStackCapacity = 32

// SkipChildren may be returned by a Walk callback to skip the subtree of
// the node just visited.
var SkipChildren = errors.New("regkey: skip children")

type iterMode uint8

const (
	modeChildren iterMode = iota
	modeSubKeys
	modeLeafs
	modeBranches
)

// IterOption configures a traversal.
type IterOption func(*Iter)

// WithMaxDepth limits recursive traversals to depth levels below the root
// (1 behaves like Children). Zero or negative means unlimited.
func WithMaxDepth(depth int) IterOption {
	return func(it *Iter) { it.maxDepth = depth }
}

// frame is one level of the explicit DFS stack. names is loaded lazily the
// first time the frame reaches the top, so a node's children are only
// enumerated once the caller pulls past it.
type frame struct {
	node   *Node
	names  []string
	pos    int
	depth  int
	loaded bool
}

// Iter is a lazy, pull-based pre-order traversal. Every node it produces is
// registered with the root's Manager whether or not iteration completes.
//
//	it := root.SubKeys()
//	for it.Next() {
//	    use(it.Node())
//	}
//	if err := it.Err(); err != nil { ... }
type Iter struct {
	root     *Node
	mode     iterMode
	maxDepth int
	stack    []frame
	cur      *Node
	err      error
	done     bool
}

func newIter(root *Node, mode iterMode, opts []IterOption) *Iter {
	it := &Iter{root: root, mode: mode}
	for _, opt := range opts {
		opt(it)
	}
	it.stack = make([]frame, 1, initialStackCapacity)
	it.stack[0] = frame{node: root}
	return it
}

// Children yields the direct children of n. No recursion.
func (n *Node) Children() *Iter { return newIter(n, modeChildren, nil) }

// SubKeys yields every descendant of n in depth-first pre-order. Sibling
// order is whatever the backend reports.
func (n *Node) SubKeys(opts ...IterOption) *Iter { return newIter(n, modeSubKeys, opts) }

// Leafs yields the descendants of n without children, in SubKeys order.
func (n *Node) Leafs(opts ...IterOption) *Iter { return newIter(n, modeLeafs, opts) }

// Branches yields the descendants of n with children, in SubKeys order.
func (n *Node) Branches(opts ...IterOption) *Iter { return newIter(n, modeBranches, opts) }

// Next advances to the next node. It returns false when the traversal is
// exhausted or failed; check Err afterwards.
func (it *Iter) Next() bool {
	if it.done {
		return false
	}
	for {
		if len(it.stack) == 0 {
			return it.finish(nil)
		}
		top := &it.stack[len(it.stack)-1]
		if !top.loaded {
			names, err := top.node.ChildNames()
			if err != nil {
				return it.finish(err)
			}
			top.names, top.loaded = names, true
		}
		if top.pos >= len(top.names) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		name := top.names[top.pos]
		top.pos++
		depth := top.depth + 1

		child, err := top.node.openSubKeyRooted(it.root, name)
		if err != nil {
			return it.finish(err)
		}
		if it.descend(depth) {
			it.stack = append(it.stack, frame{node: child, depth: depth})
		}

		ok, err := it.accept(child)
		if err != nil {
			return it.finish(err)
		}
		if ok {
			it.cur = child
			return true
		}
	}
}

func (it *Iter) descend(depth int) bool {
	if it.mode == modeChildren {
		return false
	}
	return it.maxDepth <= 0 || depth < it.maxDepth
}

func (it *Iter) accept(n *Node) (bool, error) {
	switch it.mode {
	case modeLeafs, modeBranches:
		has, err := n.HasChildren()
		if err != nil {
			return false, err
		}
		return has == (it.mode == modeBranches), nil
	default:
		return true, nil
	}
}

func (it *Iter) finish(err error) bool {
	it.done = true
	it.err = err
	it.cur = nil
	it.stack = nil
	return false
}

// Node returns the node produced by the last successful Next.
func (it *Iter) Node() *Node { return it.cur }

// Err returns the error that stopped the traversal, if any.
func (it *Iter) Err() error { return it.err }

// SkipChildren prevents the traversal from descending into the node most
// recently returned by Next. It is a no-op once that node's children have
// started being produced.
func (it *Iter) SkipChildren() {
	if len(it.stack) == 0 || it.cur == nil {
		return
	}
	top := it.stack[len(it.stack)-1]
	if top.node == it.cur && !top.loaded {
		it.stack = it.stack[:len(it.stack)-1]
	}
}

// Seq adapts the iterator for range-over-func. Check Err after the loop.
func (it *Iter) Seq() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for it.Next() {
			if !yield(it.Node()) {
				return
			}
		}
	}
}

// Collect drains it into a slice.
func Collect(it *Iter) ([]*Node, error) {
	var out []*Node
	for it.Next() {
		out = append(out, it.Node())
	}
	return out, it.Err()
}

// Walk visits every descendant of root in pre-order. Returning SkipChildren
// from fn skips the visited node's subtree; any other error stops the walk
// and is returned.
func Walk(root *Node, fn func(*Node) error, opts ...IterOption) error {
	it := root.SubKeys(opts...)
	for it.Next() {
		if err := fn(it.Node()); err != nil {
			if errors.Is(err, SkipChildren) {
				it.SkipChildren()
				continue
			}
			return err
		}
	}
	return it.Err()
}
