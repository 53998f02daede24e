// Package cli holds the logging and capture setup shared by the wpan
// commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lrwpan/lrwpan-go/pkg/log"
)

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// NewLogger returns a text slog.Logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// Capture is the protocol logger assembled from the command-line options.
type Capture struct {
	log.Logger
	file *log.FileLogger
}

// OpenCapture builds the protocol logger: a capture file when path is set,
// plus an slog mirror when logger is enabled at debug level. The embedded
// Logger is nil when neither applies; pass c.Logger, not c, to consumers.
func OpenCapture(path string, logger *slog.Logger) (*Capture, error) {
	var sinks []log.Logger
	c := &Capture{}

	if path != "" {
		if !strings.HasSuffix(path, log.FileExtension) {
			path += log.FileExtension
		}
		fl, err := log.NewFileLogger(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open capture file: %w", err)
		}
		c.file = fl
		sinks = append(sinks, fl)
	}
	if logger != nil && logger.Enabled(context.Background(), slog.LevelDebug) {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}

	switch len(sinks) {
	case 0:
	case 1:
		c.Logger = sinks[0]
	default:
		c.Logger = log.NewMultiLogger(sinks...)
	}
	return c, nil
}

// Close flushes and closes the capture file, if any.
func (c *Capture) Close() error {
	if c.file == nil {
		return nil
	}
	var dropped error
	if n := c.file.Dropped(); n > 0 {
		dropped = fmt.Errorf("capture: %d events could not be encoded", n)
	}
	return errors.Join(dropped, c.file.Close())
}
