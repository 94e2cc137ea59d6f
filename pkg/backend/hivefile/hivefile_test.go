package hivefile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkeys/internal/format"
	"github.com/joshuapare/regkeys/internal/hivetest"
	"github.com/joshuapare/regkeys/pkg/regkey"
	"github.com/joshuapare/regkeys/pkg/types"
)

func sampleTree() *hivetest.Key {
	return hivetest.K("SOFTWARE",
		hivetest.K("Vendor",
			hivetest.K("App").With(
				hivetest.String("", "default"),
				hivetest.String("Path", `C:\Program Files\App`),
				hivetest.DWORD("Enabled", 1),
				hivetest.QWORD("Installed", 0x1122334455667788),
				hivetest.MultiString("Plugins", "a", "b"),
				hivetest.DWORDBigEndian("BE", 0x01020304),
				hivetest.Binary("Blob", []byte{0xde, 0xad, 0xbe, 0xef, 0x01}),
			),
			hivetest.K("Tool"),
		),
		hivetest.K("Café").With(hivetest.String("Ünïcode", "naïve")),
		hivetest.K("日本"),
	)
}

func openSample(t *testing.T, opts ...hivetest.Option) *Hive {
	t.Helper()
	h, err := OpenBytes(hivetest.Build(sampleTree(), opts...), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestOpenFile(t *testing.T) {
	path := hivetest.WriteFile(t, sampleTree())
	h, err := Open(path, Options{})
	require.NoError(t, err)

	info := h.Info()
	assert.Equal(t, "SOFTWARE", info.RootName)
	assert.Equal(t, "SOFTWARE", info.FileName)
	assert.Equal(t, uint32(1), info.MajorVersion)
	assert.False(t, info.Dirty)
	assert.Positive(t, info.Size)

	require.NoError(t, h.Close())
	require.ErrorIs(t, h.Close(), types.ErrAlreadyClosed)
}

func TestOpenRejectsNonHive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk")
	require.NoError(t, os.WriteFile(path, []byte("not a hive at all"), 0o600))
	_, err := Open(path, Options{})
	require.ErrorIs(t, err, types.ErrNotHive)

	_, err = Open(filepath.Join(t.TempDir(), "missing"), Options{})
	require.ErrorIs(t, err, os.ErrNotExist)

	img := hivetest.Build(sampleTree())
	_, err = OpenBytes(img[:format.HeaderSize+8], Options{})
	require.True(t, types.IsKind(err, types.ErrKindCorrupt), "got %v", err)
}

func TestDirtyHeader(t *testing.T) {
	h := openSample(t, hivetest.Dirty())
	assert.True(t, h.Info().Dirty)
}

func TestOpenRootPaths(t *testing.T) {
	h := openSample(t)
	for _, id := range []string{
		`Vendor\App`,
		`vendor\APP`,
		`/Vendor/App`,
		`SOFTWARE\Vendor\App`,
		`HKLM\SOFTWARE\Vendor\App`,
		`HKEY_LOCAL_MACHINE\Software\Vendor\App`,
	} {
		t.Run(id, func(t *testing.T) {
			k, err := h.OpenRoot(id)
			require.NoError(t, err)
			assert.Equal(t, `SOFTWARE\Vendor\App`, k.FullName())
			require.NoError(t, k.Close())
		})
	}

	root, err := h.OpenRoot("")
	require.NoError(t, err)
	assert.Equal(t, "SOFTWARE", root.FullName())
	n, err := root.SubkeyCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = h.OpenRoot(`Vendor\Missing`)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestMountPoint(t *testing.T) {
	h, err := OpenBytes(hivetest.Build(sampleTree()), Options{MountPoint: `HKLM\SOFTWARE`})
	require.NoError(t, err)

	k, err := h.OpenRoot(`HKLM\SOFTWARE\Vendor`)
	require.NoError(t, err)
	assert.Equal(t, `HKLM\SOFTWARE\Vendor`, k.FullName())

	child, err := k.OpenChild("tool")
	require.NoError(t, err)
	assert.Equal(t, `HKLM\SOFTWARE\Vendor\Tool`, child.FullName())
}

func TestSubkeyListLayouts(t *testing.T) {
	for _, kind := range []hivetest.ListKind{hivetest.ListLF, hivetest.ListLH, hivetest.ListLI, hivetest.ListRI} {
		t.Run(string(kind), func(t *testing.T) {
			h := openSample(t, hivetest.WithList(kind))
			root, err := h.OpenRoot("")
			require.NoError(t, err)
			names, err := root.SubkeyNames()
			require.NoError(t, err)
			assert.Equal(t, []string{"Vendor", "Café", "日本"}, names)

			k, err := root.OpenChild("日本")
			require.NoError(t, err)
			assert.Equal(t, `SOFTWARE\日本`, k.FullName())
		})
	}
}

func TestValues(t *testing.T) {
	h := openSample(t)
	k, err := h.OpenRoot(`Vendor\App`)
	require.NoError(t, err)

	names, err := k.ValueNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Path", "Enabled", "Installed", "Plugins", "BE", "Blob"}, names)

	v, err := k.ReadValue("")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.StringValue("default")))

	v, err = k.ReadValue("path")
	require.NoError(t, err)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, `C:\Program Files\App`, s)

	v, err = k.ReadValue("Enabled")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.DWORDValue(1)))

	v, err = k.ReadValue("Installed")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.QWORDValue(0x1122334455667788)))

	v, err = k.ReadValue("Plugins")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.MultiStringValue([]string{"a", "b"})))

	v, err = k.ReadValue("BE")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.DWORDBigEndianValue(0x01020304)))

	v, err = k.ReadValue("Blob")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.BinaryValue([]byte{0xde, 0xad, 0xbe, 0xef, 0x01})))

	_, err = k.ReadValue("Nope")
	require.ErrorIs(t, err, types.ErrMissingValue)
}

func TestNonASCIIValueNames(t *testing.T) {
	h := openSample(t)
	k, err := h.OpenRoot("Café")
	require.NoError(t, err)
	v, err := k.ReadValue("ünïcode")
	require.NoError(t, err)
	s, _ := v.AsString()
	assert.Equal(t, "naïve", s)
}

func TestBigData(t *testing.T) {
	blob := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, 20000)
	img := hivetest.Build(hivetest.K("ROOT").With(hivetest.Binary("Big", blob)))
	h, err := OpenBytes(img, Options{})
	require.NoError(t, err)

	k, err := h.OpenRoot("")
	require.NoError(t, err)
	v, err := k.ReadValue("Big")
	require.NoError(t, err)
	got, ok := v.AsBytes()
	require.True(t, ok)
	assert.Equal(t, blob, got)
}

func TestMaxCellSize(t *testing.T) {
	blob := bytes.Repeat([]byte{1}, 4096)
	img := hivetest.Build(hivetest.K("ROOT").With(hivetest.Binary("Big", blob)))
	h, err := OpenBytes(img, Options{MaxCellSize: 1024})
	require.NoError(t, err)

	k, err := h.OpenRoot("")
	require.NoError(t, err)
	_, err = k.ReadValue("Big")
	require.True(t, types.IsKind(err, types.ErrKindCorrupt), "got %v", err)
}

func TestCorruptSubkeyList(t *testing.T) {
	img := hivetest.Build(sampleTree())
	rootOff := binary.LittleEndian.Uint32(img[format.REGFRootCellOffset:])
	nk := format.HeaderSize + int(rootOff) + format.CellHeaderSize
	binary.LittleEndian.PutUint32(img[nk+format.NKSubkeyListOffset:], 0x7FFFFF00)

	h, err := OpenBytes(img, Options{})
	require.NoError(t, err)
	root, err := h.OpenRoot("")
	require.NoError(t, err)
	_, err = root.SubkeyNames()
	require.True(t, types.IsKind(err, types.ErrKindCorrupt), "got %v", err)
}

func TestHandleLifecycle(t *testing.T) {
	h := openSample(t)
	k, err := h.OpenRoot("Vendor")
	require.NoError(t, err)
	require.NoError(t, k.Close())
	require.ErrorIs(t, k.Close(), types.ErrAlreadyClosed)
	_, err = k.SubkeyNames()
	require.ErrorIs(t, err, types.ErrAlreadyClosed)

	k, err = h.OpenRoot("Vendor")
	require.NoError(t, err)
	require.NoError(t, h.Close())
	_, err = k.ValueNames()
	require.ErrorIs(t, err, ErrClosed)
	_, err = h.OpenRoot("")
	require.ErrorIs(t, err, ErrClosed)
}

func TestTraversalOverHive(t *testing.T) {
	h := openSample(t)
	m := regkey.NewManager(h)
	defer func() { require.NoError(t, m.Teardown()) }()

	root, err := m.Open("Vendor")
	require.NoError(t, err)

	nodes, err := regkey.Collect(root.SubKeys())
	require.NoError(t, err)
	var rel []string
	for _, n := range nodes {
		rel = append(rel, n.NodeName())
	}
	assert.Equal(t, []string{"App", "Tool"}, rel)

	leafs, err := regkey.Collect(root.Leafs())
	require.NoError(t, err)
	require.Len(t, leafs, 2)
	assert.Equal(t, uint32(1), leafs[0].Uint32Value("Enabled", 0))
	assert.Equal(t, `SOFTWARE\Vendor\App`, leafs[0].Name())
}
