package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogger(t *testing.T) {
	t.Helper()
	require.NoError(t, Close())
	t.Cleanup(func() { _ = Close() })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{" WARN ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"info", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInit_FileOutputJSON(t *testing.T) {
	resetLogger(t)
	path := filepath.Join(t.TempDir(), "logs", "core.log")

	require.NoError(t, Init(Config{Level: LevelDebug, OutputPath: path, Format: "json"}))
	WithComponent("PageStore").WithField("page", 3).Debug("page evicted")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"component":"PageStore"`), line)
	assert.True(t, strings.Contains(line, `"msg":"page evicted"`), line)
}

func TestInit_Twice(t *testing.T) {
	resetLogger(t)

	require.NoError(t, Init(Config{Level: LevelInfo}))
	assert.Error(t, Init(Config{Level: LevelInfo}))
}

func TestGetLogger_LazyDefault(t *testing.T) {
	resetLogger(t)

	l := GetLogger()
	require.NotNil(t, l)
	assert.Same(t, l, GetLogger())
}
