package winreg

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regkeys/pkg/regkey"
	"github.com/joshuapare/regkeys/pkg/types"
)

func TestSplitIdentifier(t *testing.T) {
	tests := []struct {
		in, hive, path string
		ok             bool
	}{
		{`HKLM\Software\Vendor`, "HKEY_LOCAL_MACHINE", `Software\Vendor`, true},
		{`hkey_current_user`, "HKEY_CURRENT_USER", "", true},
		{`HKU/.DEFAULT/`, "HKEY_USERS", ".DEFAULT", true},
		{`\HKCR\.txt`, "HKEY_CLASSES_ROOT", ".txt", true},
		{`HKXX\Software`, "", `Software`, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hive, path, ok := splitIdentifier(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.hive, hive)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestUnsupportedElsewhere(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("live registry is available")
	}
	m := regkey.NewManager(New())
	_, err := m.Open(`HKLM\Software`)
	require.ErrorIs(t, err, types.ErrUnsupported)
	assert.Zero(t, m.Len())
}

func TestLiveRegistry(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("requires windows")
	}
	m := regkey.NewManager(New())
	defer func() { require.NoError(t, m.Teardown()) }()

	root, err := m.Open(`HKLM\SOFTWARE\Microsoft\Windows NT`)
	require.NoError(t, err)
	cur, err := root.OpenSubKey("CurrentVersion")
	require.NoError(t, err)
	assert.NotEmpty(t, cur.StringValue("ProductName"))

	_, err = m.Open(`HKLM\SOFTWARE\regkeys-does-not-exist`)
	require.ErrorIs(t, err, types.ErrNotFound)
}
