package storagepath

import "errors"

var (
	// ErrInvalidConfig is returned when a config change is not supported,
	// such as altering the poll interval once polling has started.
	ErrInvalidConfig = errors.New("invalid source configuration")
	// ErrNoVersions is returned when a servable has no versions on disk and
	// the config requires at least one.
	ErrNoVersions = errors.New("no servable versions found")
	// ErrBasePathNotFound is returned when a servable's base path cannot be
	// confirmed to exist.
	ErrBasePathNotFound = errors.New("base path not found")
	// ErrUnhandledPolicy signals a version policy variant this package does
	// not know about.
	ErrUnhandledPolicy = errors.New("unhandled servable version policy")
	// ErrNoCallback is returned by Poll before a callback is registered.
	ErrNoCallback = errors.New("aspired versions callback not set")
)

// IsInvalidConfig reports whether err is a rejected reconfiguration.
func IsInvalidConfig(err error) bool { return errors.Is(err, ErrInvalidConfig) }

// IsNotFound reports whether err indicates a servable with zero versions.
func IsNotFound(err error) bool { return errors.Is(err, ErrNoVersions) }

// IsBasePathNotFound reports whether err indicates an unreachable base path.
func IsBasePathNotFound(err error) bool { return errors.Is(err, ErrBasePathNotFound) }
