package regkey_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkeys/pkg/backend/memory"
	"github.com/joshuapare/regkeys/pkg/regkey"
	"github.com/joshuapare/regkeys/pkg/types"
)

// scenarioStore builds R -> {A, B -> {B1}} with "/" separators.
func scenarioStore() *memory.Store {
	return memory.New(memory.WithSeparator("/"), memory.WithRootName("R")).
		Key("A").
		Key("B/B1")
}

// deepStore builds a wider tree with values for traversal tests.
func deepStore() *memory.Store {
	return memory.New().
		Set("Software", "Owner", types.StringValue("admin")).
		Set(`Software\Vendor\App`, "Version", types.StringValue("1.2.3")).
		Set(`Software\Vendor\App`, "Blob", types.BinaryValue([]byte{0xde, 0xad})).
		Set(`Software\Vendor\App`, "Count", types.DWORDValue(7)).
		Key(`Software\Vendor\Tool`).
		Key(`Software\Empty`).
		Key(`System\Select`).
		Set(`System\Select`, "", types.StringValue("default"))
}

func names(nodes []*regkey.Node, rel bool) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		if rel {
			out[i] = n.NodeName()
		} else {
			out[i] = n.Name()
		}
	}
	return out
}

func TestScenario_TraversalViews(t *testing.T) {
	store := scenarioStore()
	m := regkey.NewManager(store)
	defer m.Teardown()

	root, err := m.Open("")
	require.NoError(t, err)
	assert.Equal(t, "R", root.Name())
	assert.Equal(t, "R", root.NodeName(), "roots report their full name")

	sub, err := regkey.Collect(root.SubKeys())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "B/B1"}, names(sub, true))
	assert.Equal(t, []string{"R/A", "R/B", "R/B/B1"}, names(sub, false))

	leafs, err := regkey.Collect(root.Leafs())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B/B1"}, names(leafs, true))

	branches, err := regkey.Collect(root.Branches())
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names(branches, true))

	children, err := regkey.Collect(root.Children())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(children, true))

	// B1 reached through the walk is root-relative; its true parent is B.
	b1 := sub[2]
	parent, err := b1.Parent()
	require.NoError(t, err)
	assert.Equal(t, "R/B", parent.Name())
	assert.Equal(t, "B1", b1.BaseName())
	assert.Equal(t, "R", root.BaseName())
	assert.Equal(t, "/", b1.Separator())
	assert.Equal(t, "B1", mustOpen(t, parent, "B1").NodeName(), "standalone opens are parent-relative")
}

func mustOpen(t *testing.T, n *regkey.Node, name string) *regkey.Node {
	t.Helper()
	c, err := n.OpenSubKey(name)
	require.NoError(t, err)
	return c
}

func TestTeardown_ClosesEveryHandleExactlyOnce(t *testing.T) {
	store := deepStore()
	m := regkey.NewManager(store)

	root, err := m.Open("")
	require.NoError(t, err)
	_, err = regkey.Collect(root.SubKeys())
	require.NoError(t, err)
	_, err = regkey.Collect(root.Leafs())
	require.NoError(t, err)
	_, err = regkey.Collect(root.Branches())
	require.NoError(t, err)
	app, err := root.OpenPath(`Software\Vendor\App`)
	require.NoError(t, err)
	assert.Equal(t, `Software\Vendor\App`, app.NodeName())

	tracked := m.Len()
	require.Equal(t, tracked, len(store.Handles()))
	require.Equal(t, tracked, store.OpenHandles())

	require.NoError(t, m.Teardown())
	assert.Zero(t, m.Len())
	assert.Zero(t, store.OpenHandles())
	for _, h := range store.Handles() {
		assert.Equal(t, 1, h.Closes, "handle %s", h.Name)
	}

	// Second teardown is a no-op.
	require.NoError(t, m.Teardown())
	for _, h := range store.Handles() {
		assert.Equal(t, 1, h.Closes, "handle %s closed again", h.Name)
	}
}

func TestTeardown_LIFOOrder(t *testing.T) {
	var order []string
	m := regkey.NewManager(nil)
	for _, name := range []string{"first", "second", "third"} {
		m.Adopt(&recordingHandle{name: name, order: &order})
	}
	assert.Equal(t, 3, m.Len())
	require.NoError(t, m.Teardown())
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestTeardown_ContinuesPastCloseFailures(t *testing.T) {
	store := scenarioStore()
	boom := errors.New("boom")
	store.Inject("R/B", memory.FaultClose, boom)

	var logs bytes.Buffer
	m := regkey.NewManager(store, regkey.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	root, err := m.Open("")
	require.NoError(t, err)
	_, err = regkey.Collect(root.SubKeys())
	require.NoError(t, err)

	err = m.Teardown()
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindClose))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "close R/B")
	assert.Contains(t, logs.String(), "handle close failed")

	assert.Zero(t, store.OpenHandles(), "failed close must not leak other handles")
	for _, h := range store.Handles() {
		assert.Equal(t, 1, h.Closes, "handle %s", h.Name)
	}
}

func TestTeardown_RecoversPanickingClose(t *testing.T) {
	var order []string
	m := regkey.NewManager(nil)
	m.Adopt(&recordingHandle{name: "ok", order: &order})
	m.Adopt(&recordingHandle{name: "bad", order: &order, panics: true})

	err := m.Teardown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic during close")
	assert.Equal(t, []string{"bad", "ok"}, order)
}

func TestChildNames_NeverEnumeratesEmptyKeys(t *testing.T) {
	store := deepStore()
	m := regkey.NewManager(store)
	defer m.Teardown()

	root, err := m.Open("")
	require.NoError(t, err)
	all, err := regkey.Collect(root.SubKeys())
	require.NoError(t, err)

	for _, n := range all {
		has, err := n.HasChildren()
		require.NoError(t, err)
		if has {
			continue
		}
		kids, err := n.ChildNames()
		require.NoError(t, err)
		assert.Empty(t, kids)
		assert.Zero(t, store.ListCalls(n.Name()), "enumerated empty key %s", n.Name())
	}
}

func TestSubKeys_PreOrderAndPartition(t *testing.T) {
	store := deepStore()
	m := regkey.NewManager(store)
	defer m.Teardown()

	root, err := m.Open("")
	require.NoError(t, err)

	sub, err := regkey.Collect(root.SubKeys())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Software",
		`Software\Vendor`,
		`Software\Vendor\App`,
		`Software\Vendor\Tool`,
		`Software\Empty`,
		"System",
		`System\Select`,
	}, names(sub, true))

	// Parent strictly precedes descendants.
	pos := map[string]int{}
	for i, n := range sub {
		pos[n.Name()] = i
	}
	for i, n := range sub {
		p, err := n.Parent()
		require.NoError(t, err)
		if p.Name() == root.Name() {
			continue
		}
		assert.Less(t, pos[p.Name()], i)
	}

	leafs, err := regkey.Collect(root.Leafs())
	require.NoError(t, err)
	branches, err := regkey.Collect(root.Branches())
	require.NoError(t, err)

	union := append(names(leafs, true), names(branches, true)...)
	assert.ElementsMatch(t, names(sub, true), union)
	for _, l := range names(leafs, true) {
		assert.NotContains(t, names(branches, true), l)
	}
}

func TestIter_Lazy(t *testing.T) {
	store := deepStore()
	m := regkey.NewManager(store)
	defer m.Teardown()

	root, err := m.Open("")
	require.NoError(t, err)
	before := m.Len()

	it := root.SubKeys()
	require.True(t, it.Next())
	assert.Equal(t, "Software", it.Node().NodeName())
	assert.Equal(t, before+1, m.Len(), "only the first node is opened")
	assert.Zero(t, store.ListCalls(`ROOT\Software`), "children are enumerated on the next pull")

	require.True(t, it.Next())
	assert.Equal(t, 1, store.ListCalls(`ROOT\Software`))

	// Abandoning the iterator keeps opened handles registered until teardown.
	opened := m.Len()
	assert.Equal(t, opened, store.OpenHandles())
}

func TestIter_FreshHandlesPerInvocation(t *testing.T) {
	store := scenarioStore()
	m := regkey.NewManager(store)
	defer m.Teardown()

	root, err := m.Open("")
	require.NoError(t, err)
	first, err := regkey.Collect(root.Children())
	require.NoError(t, err)
	store.Key("C")
	second, err := regkey.Collect(root.Children())
	require.NoError(t, err)

	assert.Len(t, first, 2)
	assert.Len(t, second, 3, "each invocation re-queries the backend")
	assert.NotSame(t, first[0], second[0])
	assert.Equal(t, 1+2+3, m.Len())
}

func TestIter_MaxDepthAndSkip(t *testing.T) {
	store := deepStore()
	m := regkey.NewManager(store)
	defer m.Teardown()

	root, err := m.Open("")
	require.NoError(t, err)

	shallow, err := regkey.Collect(root.SubKeys(regkey.WithMaxDepth(2)))
	require.NoError(t, err)
	assert.Equal(t, []string{"Software", `Software\Vendor`, `Software\Empty`, "System", `System\Select`}, names(shallow, true))

	var visited []string
	err = regkey.Walk(root, func(n *regkey.Node) error {
		visited = append(visited, n.NodeName())
		if n.NodeName() == "Software" {
			return regkey.SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Software", "System", `System\Select`}, visited)

	stop := errors.New("stop")
	err = regkey.Walk(root, func(n *regkey.Node) error { return stop })
	assert.ErrorIs(t, err, stop)

	var seq []string
	for n := range root.Children().Seq() {
		seq = append(seq, n.NodeName())
	}
	assert.Equal(t, []string{"Software", "System"}, seq)
}

func TestIter_PropagatesBackendErrors(t *testing.T) {
	store := deepStore()
	failure := errors.New("disk on fire")
	store.Inject(`ROOT\Software\Vendor`, memory.FaultList, failure)

	m := regkey.NewManager(store)
	defer m.Teardown()
	root, err := m.Open("")
	require.NoError(t, err)

	got, err := regkey.Collect(root.SubKeys())
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.True(t, types.IsKind(err, types.ErrKindBackend))
	assert.Equal(t, []string{"Software", `Software\Vendor`}, names(got, true))
}

func TestOpenSubKey_NotFound(t *testing.T) {
	m := regkey.NewManager(scenarioStore())
	defer m.Teardown()
	root, err := m.Open("")
	require.NoError(t, err)

	_, err = root.OpenSubKey("Missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.True(t, types.IsKind(err, types.ErrKindNotFound))

	_, err = m.Open("Nope")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = root.OpenPath("B/Missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFindAncestor(t *testing.T) {
	m := regkey.NewManager(scenarioStore())
	defer m.Teardown()
	root, err := m.Open("")
	require.NoError(t, err)
	b := mustOpen(t, root, "B")
	b1 := mustOpen(t, b, "B1")
	a := mustOpen(t, root, "A")

	assert.Same(t, root, b1.FindAncestor(root))
	assert.Same(t, b, b1.FindAncestor(b))
	assert.Nil(t, b1.FindAncestor(a))
	assert.Nil(t, b1.FindAncestor(b1), "search starts at the parent")
	assert.Nil(t, root.FindAncestor(root))
}

func TestValues_FailSoft(t *testing.T) {
	store := deepStore()
	m := regkey.NewManager(store)
	defer m.Teardown()
	root, err := m.Open("")
	require.NoError(t, err)
	app, err := root.OpenPath(`Software\Vendor\App`)
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", app.StringValue("Version"))
	assert.Equal(t, "1.2.3", app.StringValue("version"), "lookups are case-insensitive")
	assert.Equal(t, []byte{0xde, 0xad}, app.ByteValue("Blob"))
	assert.Equal(t, uint32(7), app.Uint32Value("Count", 0))

	assert.Equal(t, 42, regkey.GetValue(app, "X", 42), "missing value yields default")
	assert.Equal(t, 7, regkey.GetValue(app, "Count", 42), "DWORD converts to an untyped int default")
	assert.Equal(t, int64(7), regkey.GetValue(app, "Count", int64(42)))
	assert.Equal(t, 42, regkey.GetValue(app, "Version", 42), "strings never convert to integers")
	assert.Equal(t, "", app.StringValue("Count"), "type mismatch yields default")
	assert.Equal(t, []byte{}, app.ByteValue("Version"))
	assert.Equal(t, uint64(9), app.Uint64Value("Count", 9))

	sel, err := root.OpenPath(`System\Select`)
	require.NoError(t, err)
	assert.Equal(t, "default", sel.StringValue(regkey.DefaultValue))

	store.Inject(app.Name(), memory.FaultRead, errors.New("io"))
	assert.Equal(t, "fallback", regkey.GetValue(app, "Version", "fallback"), "backend errors yield default")
	_, err = app.Value("Version")
	assert.True(t, types.IsKind(err, types.ErrKindBackend))

	store.Inject(app.Name(), memory.FaultRead, nil)
	_, err = app.Value("Nope")
	assert.ErrorIs(t, err, types.ErrMissingValue)
	vals, err := app.ValueNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Version", "Blob", "Count"}, vals)
}

func TestUseAfterTeardown(t *testing.T) {
	m := regkey.NewManager(scenarioStore())
	root, err := m.Open("")
	require.NoError(t, err)
	b := mustOpen(t, root, "B")
	sub, err := regkey.Collect(root.SubKeys())
	require.NoError(t, err)
	b1 := sub[len(sub)-1]
	require.Equal(t, "B/B1", b1.NodeName())
	require.NoError(t, m.Teardown())

	assert.True(t, b.Released())
	assert.Equal(t, "R/B", b.Name(), "names stay readable")
	assert.Equal(t, "B", b.NodeName())
	assert.Equal(t, "B/B1", b1.NodeName(), "relative names survive teardown")
	assert.Equal(t, "R", root.NodeName())

	_, err = b.OpenSubKey("B1")
	assert.ErrorIs(t, err, types.ErrUseAfterTeardown)
	_, err = b.HasChildren()
	assert.ErrorIs(t, err, types.ErrUseAfterTeardown)
	_, err = b.Parent()
	assert.ErrorIs(t, err, types.ErrUseAfterTeardown)
	_, err = b.Value("x")
	assert.ErrorIs(t, err, types.ErrUseAfterTeardown)
	assert.Equal(t, "d", regkey.GetValue(b, "x", "d"))

	it := root.SubKeys()
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), types.ErrUseAfterTeardown)

	// The manager is reusable after teardown.
	again, err := m.Open("B")
	require.NoError(t, err)
	assert.Equal(t, "R/B", again.Name())
	require.NoError(t, m.Teardown())
}

type recordingHandle struct {
	name   string
	order  *[]string
	panics bool
}

func (h *recordingHandle) FullName() string { return h.name }
func (h *recordingHandle) SubkeyCount() (int, error) { return 0, nil }
func (h *recordingHandle) SubkeyNames() ([]string, error) { return nil, nil }
func (h *recordingHandle) OpenChild(string) (types.Handle, error) { return nil, types.ErrNotFound }
func (h *recordingHandle) ReadValue(string) (types.Value, error) { return types.Value{}, types.ErrMissingValue }
func (h *recordingHandle) ValueNames() ([]string, error) { return nil, nil }
func (h *recordingHandle) Close() error {
	*h.order = append(*h.order, h.name)
	if h.panics {
		panic("close exploded")
	}
	return nil
}
