// Package storage defines the filesystem boundary used to discover servable
// versions, with backends for local disks, in-memory trees and S3-compatible
// object stores.
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotExist is returned (wrapped) by Exists when a path is absent.
var ErrNotExist = errors.New("path does not exist")

// FileSystem is the minimal read-only view the version scanner needs.
type FileSystem interface {
	// Exists returns nil if path exists, an error wrapping ErrNotExist if it
	// does not, or another error if existence could not be determined.
	Exists(path string) error
	// ListChildren returns the names below path. Object-store backends may
	// return nested descendants ("3/saved_model.pb"); callers reduce them to
	// the first path segment.
	ListChildren(path string) ([]string, error)
}

// IsNotExist reports whether err indicates a missing path.
func IsNotExist(err error) bool { return errors.Is(err, ErrNotExist) }

// JoinPath joins a base path and a child name using forward slashes, which
// both the local and object-store backends accept.
func JoinPath(base, child string) string {
	if base == "" {
		return child
	}
	if strings.Contains(base, "://") {
		return strings.TrimSuffix(base, "/") + "/" + child
	}
	return path.Join(base, child)
}

func notExist(p string) error { return fmt.Errorf("%s: %w", p, ErrNotExist) }
