package regkey

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewManager_DefaultLoggerDisabled(t *testing.T) {
	m := NewManager(nil)
	assert.False(t, m.log.Enabled(t.Context(), slog.LevelError))
}
