// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w at the named level
// (trace, debug, info, warn or error). An empty level means info.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil || parsed == zerolog.NoLevel {
			return zerolog.Nop(), fmt.Errorf("unknown log level %q", level)
		}
		lvl = parsed
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
