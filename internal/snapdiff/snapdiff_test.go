package snapdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesIdentical(t *testing.T) {
	r := Lines([]string{"a", "b"}, []string{"a", "b"})
	assert.True(t, r.Empty())
	assert.Equal(t, "--- x\n+++ y\n", r.Unified("x", "y", false))
}

func TestLinesChanges(t *testing.T) {
	from := []string{".\t\t\t", "App\tCount\tREG_DWORD\t0x00000001 (1)", "Tool\t\t\t"}
	to := []string{".\t\t\t", "App\tCount\tREG_DWORD\t0x00000002 (2)", "Tool\t\t\t", "Zed\t\t\t"}

	r := Lines(from, to)
	require.False(t, r.Empty())
	assert.Equal(t, 2, r.Added)
	assert.Equal(t, 1, r.Removed)
	assert.Equal(t, "2 added, 1 removed", r.Summary())

	want := "--- old\n+++ new\n" +
		"-App\tCount\tREG_DWORD\t0x00000001 (1)\n" +
		"+App\tCount\tREG_DWORD\t0x00000002 (2)\n" +
		"+Zed\t\t\t\n"
	assert.Equal(t, want, r.Unified("old", "new", false))

	withContext := r.Unified("old", "new", true)
	assert.Contains(t, withContext, " Tool\t\t\t\n")
	assert.Contains(t, withContext, " .\t\t\t\n")
}

func TestLinesFromEmpty(t *testing.T) {
	r := Lines(nil, []string{"a"})
	assert.Equal(t, 1, r.Added)
	assert.Equal(t, []Change{{Op: Added, Line: "a"}}, r.Changes)

	r = Lines([]string{"a"}, nil)
	assert.Equal(t, 1, r.Removed)
}
