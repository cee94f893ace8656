package logging

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestInitialize(t *testing.T) {
	defer func() { require.NoError(t, Initialize(DefaultConfig())) }()

	path := filepath.Join(t.TempDir(), "arfgeom.log")
	require.NoError(t, Initialize(Config{Level: "debug", Format: "json", Output: path}))
	With().Debug("mesh generated")
	Sugar.Infow("refined", "elements", 128)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"mesh generated"`)
	assert.Contains(t, string(data), `"elements":128`)

	assert.Error(t, Initialize(Config{Level: "loud", Format: "json"}))
	assert.Error(t, Initialize(Config{Level: "info", Format: "xml"}))
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{Level: "debug"}.WithDefaults()
	assert.Equal(t, Config{Level: "debug", Format: "console", Output: "stderr"}, cfg)
	assert.Equal(t, DefaultConfig(), Config{}.WithDefaults())

	cfg = Config{Format: "json", Output: "stdout", Development: true}.WithDefaults()
	assert.Equal(t, Config{Level: "warn", Format: "json", Output: "stdout", Development: true}, cfg)
}
