// Package logging builds the structured logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Builder assembles a zerolog.Logger. The terminal is owned by the UI,
// so output goes to a file or a caller-supplied writer, never stdout.
type Builder struct {
	writer io.Writer
	path   string
	level  string
}

func New() *Builder {
	return &Builder{}
}

// FromPath appends log lines to the file at path.
func (b *Builder) FromPath(path string) *Builder {
	b.path = path
	return b
}

// FromWriter sends log lines to w; used by tests.
func (b *Builder) FromWriter(w io.Writer) *Builder {
	b.writer = w
	return b
}

// Level sets the minimum level by name ("debug", "info", ...).
func (b *Builder) Level(level string) *Builder {
	b.level = level
	return b
}

// Make builds the logger. The returned closer releases the log file, if
// one was opened.
func (b *Builder) Make() (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if strings.TrimSpace(b.level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(b.level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("parsing log level %q: %w", b.level, err)
		}
		level = parsed
	}

	var (
		w      = b.writer
		closer io.Closer = nopCloser{}
	)
	if b.path != "" {
		if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening log file %s: %w", b.path, err)
		}
		w = zerolog.SyncWriter(f)
		closer = f
	}
	if w == nil {
		w = io.Discard
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
