package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns a console logger on stderr at level. Unknown levels fall
// back to info.
func Logger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}
