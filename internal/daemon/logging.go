package daemon

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"modelwatch/internal/fastload"
	"modelwatch/internal/httpapi"
	"modelwatch/internal/manager"
	"modelwatch/internal/storagepath"
)

// NewLogger builds a zerolog logger. format is "console" or "json"; an
// unparseable level falls back to info.
func NewLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// InstallLogger hands l to every package that logs.
func InstallLogger(l zerolog.Logger) {
	storagepath.SetLogger(l)
	manager.SetLogger(l)
	fastload.SetLogger(l)
	httpapi.SetLogger(l)
}
