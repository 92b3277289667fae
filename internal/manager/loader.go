package manager

import (
	"context"
	"fmt"

	"modelwatch/internal/storage"
	"modelwatch/pkg/types"
)

// FileLoader is the default Loader. It confirms that a version's storage
// path still resolves on the backend; artifact contents are not read.
type FileLoader struct {
	fs storage.FileSystem
}

func NewFileLoader(fs storage.FileSystem) *FileLoader { return &FileLoader{fs: fs} }

func (l *FileLoader) Load(ctx context.Context, id types.ServableId, path types.StoragePath) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.fs.Exists(path); err != nil {
		return fmt.Errorf("servable %s: %w", id, err)
	}
	return nil
}

func (l *FileLoader) Unload(context.Context, types.ServableId) error { return nil }

type nopLoader struct{}

func (nopLoader) Load(context.Context, types.ServableId, types.StoragePath) error { return nil }

func (nopLoader) Unload(context.Context, types.ServableId) error { return nil }
