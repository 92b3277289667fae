package storage

import (
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"modelwatch/internal/common/fsutil"
)

// BillyFS adapts a go-billy filesystem.
type BillyFS struct {
	fs billy.Filesystem
	// resolve maps caller paths to paths inside fs.
	resolve func(string) (string, error)
}

// NewLocal returns a FileSystem over the host disk. Paths may be relative or
// start with '~'.
func NewLocal() *BillyFS {
	return &BillyFS{fs: osfs.New("/"), resolve: fsutil.ResolveLocal}
}

// NewMemory returns an empty in-memory FileSystem along with the underlying
// billy filesystem, so callers can populate it.
func NewMemory() (*BillyFS, billy.Filesystem) {
	mfs := memfs.New()
	return NewBilly(mfs), mfs
}

// NewBilly wraps an existing billy filesystem. Paths are used as given.
func NewBilly(fs billy.Filesystem) *BillyFS {
	return &BillyFS{fs: fs, resolve: func(p string) (string, error) { return p, nil }}
}

// Exists implements FileSystem.
func (b *BillyFS) Exists(path string) error {
	p, err := b.resolve(path)
	if err != nil {
		return err
	}
	if _, err := b.fs.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return notExist(path)
		}
		return fmt.Errorf("billy: stat %q: %w", path, err)
	}
	return nil
}

// ListChildren implements FileSystem.
func (b *BillyFS) ListChildren(path string) ([]string, error) {
	p, err := b.resolve(path)
	if err != nil {
		return nil, err
	}
	infos, err := b.fs.ReadDir(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notExist(path)
		}
		return nil, fmt.Errorf("billy: readdir %q: %w", path, err)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names, nil
}
