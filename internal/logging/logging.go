// Package logging builds the per-component loggers used across driftpad.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures where log output goes.
type Options struct {
	// File, when set, routes output to a rotating log file. Empty means
	// stderr.
	File string

	// MaxSizeMB caps the file size before rotation.
	MaxSizeMB int

	// MaxBackups caps how many rotated files are kept.
	MaxBackups int
}

// Writer returns the shared log destination for the given options.
// Daemon mode passes a file so long-running logs rotate instead of
// growing without bound.
func Writer(opts Options) io.Writer {
	if opts.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
}

// New returns a logger writing to w with the component tag driftpad
// loggers carry, e.g. "[sched] " or "[reconcile] ".
func New(w io.Writer, tag string) *log.Logger {
	return log.New(w, tag, log.LstdFlags)
}
