// Package logging builds the structured logger of vth, writing to a rotated file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the log file in the log directory.
const FileName = "valuta.log"

// Options configure New.
type Options struct {
	Dir   string // log directory, created if needed
	Level string // debug, info, warn or error
	JSON  bool
	// Tee also writes the records to this writer, typically os.Stderr.
	Tee io.Writer
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

// New returns a logger writing to <Dir>/valuta.log, rotated at 1 MB with 3
// backups. Close the returned io.Closer on exit.
func New(o Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(o.Level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log folder: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(o.Dir, FileName),
		MaxSize:    1, // megabytes
		MaxBackups: 3,
	}
	var w io.Writer = file
	if o.Tee != nil {
		w = io.MultiWriter(file, o.Tee)
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if o.JSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), file, nil
}
