package storagepath

import "github.com/rs/zerolog"

// zlog is the package logger; disabled until SetLogger is called.
var zlog = zerolog.Nop()

// SetLogger installs the structured logger used by sources.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "storagepath").Logger() }
