package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/txtmerge/internal/types"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, `"15"`, cfg.Marker)
	assert.Equal(t, "ISO-8859-1", cfg.FallbackEncoding)
	assert.Equal(t, types.ModeAppend, cfg.Mode())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./reports", cfg.Report.Dir)
	assert.Equal(t, "merge_{date}_{uuid}", cfg.Report.FileNameFormat)
	assert.False(t, cfg.Report.XLSX)
}

func TestParse_Values(t *testing.T) {
	cfg, err := Parse([]byte(`
marker: '"20"'
fallback_encoding: Windows-1252
default_mode: join
log_level: debug
report:
  dir: out
  xlsx: true
  text: true
`))
	require.NoError(t, err)

	assert.Equal(t, `"20"`, cfg.Marker)
	assert.Equal(t, "Windows-1252", cfg.FallbackEncoding)
	assert.Equal(t, types.ModeJoin, cfg.Mode())
	assert.Equal(t, "out", cfg.Report.Dir)
	assert.True(t, cfg.Report.XLSX)
	assert.True(t, cfg.Report.Text)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"encoding": "fallback_encoding: EBCDIC",
		"mode":     "default_mode: shuffle",
		"level":    "log_level: loud",
		"yaml":     "marker: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("explicit missing path is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing default path yields defaults", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("default_mode: join\n"), 0o644))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, types.ModeJoin, cfg.Mode())
	})
}
