package manager

import "errors"

// loadError records why a version failed to load.
type loadError struct {
	id  string
	err error
}

func (e loadError) Error() string { return "load " + e.id + ": " + e.err.Error() }

func (e loadError) Unwrap() error { return e.err }

// IsLoadError reports whether err came from a failed Loader.Load.
func IsLoadError(err error) bool {
	var le loadError
	return errors.As(err, &le)
}
