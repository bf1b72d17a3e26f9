package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"tabgen/internal/config"
)

// newLogger builds the logger described by c, writing to w.
func newLogger(c config.LoggingConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	switch c.Format {
	case "json":
	case "console", "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", c.Format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
