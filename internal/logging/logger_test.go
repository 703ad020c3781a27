package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersDebugUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Out: &buf, NoColor: true})

	logger.Debug().Msg("hidden")
	logger.Info().Str("dir", "/src").Msg("listed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "listed")
	assert.Contains(t, out, "dir=/src")

	buf.Reset()
	verbose := New(Options{Out: &buf, NoColor: true, Verbose: true})
	verbose.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithoutOutputDiscards(t *testing.T) {
	logger := New(Options{})
	logger.Info().Msg("nowhere")
	assert.Equal(t, "disabled", logger.GetLevel().String())
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rfold.log")

	for _, msg := range []string{"first", "second"} {
		f, err := OpenFile(path)
		require.NoError(t, err)
		logger := New(Options{Out: f, NoColor: true})
		logger.Info().Msg(msg)
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}
