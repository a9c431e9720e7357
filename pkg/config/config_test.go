package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storecore/pkg/dberror"
	"storecore/pkg/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 4096, cfg.PageSize)
	assert.Equal(t, 50, cfg.BufferPoolPages)
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_INI(t *testing.T) {
	path := writeFile(t, "storecore.ini", `
[storage]
data_dir = data
catalog = schema.txt
page_size = 1024
buffer_pool_pages = 8

[log]
level = debug
format = json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "data"), cfg.DataDir)
	assert.Equal(t, 1024, cfg.PageSize)
	assert.Equal(t, 8, cfg.BufferPoolPages)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, filepath.Join(cfg.DataDir, "schema.txt"), cfg.CatalogPath())
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "storecore.toml", `
[storage]
page_size = 512

[log]
level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.PageSize)
	assert.Equal(t, DefaultBufferPoolPages, cfg.BufferPoolPages)
	assert.Equal(t, logging.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"zero page size", "a.ini", "[storage]\npage_size = 0\n"},
		{"negative pool", "b.toml", "[storage]\nbuffer_pool_pages = -1\n"},
		{"bad format", "c.ini", "[log]\nformat = xml\n"},
		{"broken toml", "d.toml", "[storage\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, dberror.IsConfiguration(err))
		})
	}
}
