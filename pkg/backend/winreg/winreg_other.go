//go:build !windows

package winreg

import (
	"fmt"

	"github.com/joshuapare/regkeys/pkg/types"
)

// OpenRoot implements types.Backend. The live registry only exists on Windows.
func (*Backend) OpenRoot(identifier string) (types.Handle, error) {
	return nil, fmt.Errorf("open %q: live registry: %w", identifier, types.ErrUnsupported)
}
