package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New().FromWriter(&buf).Level("debug").Make()
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug().Str("entity", "task").Msg("fetched")
	assert.Contains(t, buf.String(), `"entity":"task"`)
	assert.Contains(t, buf.String(), `"message":"fetched"`)
	assert.Contains(t, buf.String(), `"time":`)
}

func TestMakeFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New().FromWriter(&buf).Level("warn").Make()
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestMakeRejectsUnknownLevel(t *testing.T) {
	_, _, err := New().Level("chatty").Make()
	assert.Error(t, err)
}

func TestMakeAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pmdash.log")
	logger, closer, err := New().FromPath(path).Make()
	require.NoError(t, err)

	logger.Info().Msg("started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
}
