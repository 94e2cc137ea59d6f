package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkeys/pkg/types"
)

func TestStoreBasics(t *testing.T) {
	s := New().
		Set(`Software\Vendor`, "Name", types.StringValue("acme")).
		Key(`Software\Other`)

	root, err := s.OpenRoot("")
	require.NoError(t, err)
	assert.Equal(t, "ROOT", root.FullName())

	sw, err := root.OpenChild("software")
	require.NoError(t, err)
	assert.Equal(t, `ROOT\Software`, sw.FullName())

	n, err := sw.SubkeyCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	names, err := sw.SubkeyNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Vendor", "Other"}, names)
	assert.Equal(t, 1, s.ListCalls(`ROOT\Software`))

	vendor, err := s.OpenRoot(`Software\Vendor`)
	require.NoError(t, err)
	v, err := vendor.ReadValue("NAME")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.StringValue("acme")))
	_, err = vendor.ReadValue("missing")
	require.ErrorIs(t, err, types.ErrMissingValue)

	_, err = s.OpenRoot("nope")
	require.ErrorIs(t, err, types.ErrNotFound)
	_, err = root.OpenChild("nope")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestSetOverwritesCaseInsensitively(t *testing.T) {
	s := New().
		Set("K", "v", types.DWORDValue(1)).
		Set("k", "V", types.DWORDValue(2))
	h, err := s.OpenRoot("K")
	require.NoError(t, err)
	names, err := h.ValueNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, names)
	v, err := h.ReadValue("v")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.DWORDValue(2)))
}

func TestEmptyKeyEnumerationFails(t *testing.T) {
	s := New().Key("Leaf")
	h, err := s.OpenRoot("Leaf")
	require.NoError(t, err)
	_, err = h.SubkeyNames()
	require.True(t, types.IsKind(err, types.ErrKindState))
}

func TestDelete(t *testing.T) {
	s := New().Key(`A\B`).Key("C")
	s.Delete("A")
	_, err := s.OpenRoot(`A\B`)
	require.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.OpenRoot("C")
	require.NoError(t, err)
}

func TestFaultInjection(t *testing.T) {
	boom := errors.New("boom")
	s := New().Key(`A\B`).
		Inject(`ROOT\A`, FaultList, boom).
		Inject(`ROOT\A\B`, FaultOpen, boom)

	a, err := s.OpenRoot("A")
	require.NoError(t, err)
	_, err = a.SubkeyNames()
	require.ErrorIs(t, err, boom)
	_, err = a.OpenChild("B")
	require.ErrorIs(t, err, boom)

	s.Inject(`ROOT\A`, FaultList, nil)
	names, err := a.SubkeyNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names)
}

func TestHandleAccounting(t *testing.T) {
	s := New().Key("A")
	root, err := s.OpenRoot("")
	require.NoError(t, err)
	a, err := root.OpenChild("A")
	require.NoError(t, err)
	assert.Equal(t, 2, s.OpenHandles())

	require.NoError(t, a.Close())
	require.ErrorIs(t, a.Close(), types.ErrAlreadyClosed)
	assert.Equal(t, 1, s.OpenHandles())

	stats := s.Handles()
	require.Len(t, stats, 2)
	assert.Equal(t, "ROOT", stats[0].Name)
	assert.Equal(t, 0, stats[0].Closes)
	assert.Equal(t, `ROOT\A`, stats[1].Name)
	assert.Equal(t, 2, stats[1].Closes)
}

func TestCustomSeparatorAndRoot(t *testing.T) {
	s := New(WithSeparator("/"), WithRootName("R")).Key("x/y")
	assert.Equal(t, "/", s.Separator())
	h, err := s.OpenRoot("x/y")
	require.NoError(t, err)
	assert.Equal(t, "R/x/y", h.FullName())
}
