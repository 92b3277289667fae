package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExistsAndList(t *testing.T) {
	fs, mfs := NewMemory()
	require.NoError(t, mfs.MkdirAll("/models/mnist/1", 0o755))
	require.NoError(t, mfs.MkdirAll("/models/mnist/2", 0o755))

	assert.NoError(t, fs.Exists("/models/mnist"))
	assert.NoError(t, fs.Exists("/models/mnist/2"))

	err := fs.Exists("/models/mnist/7")
	require.Error(t, err)
	assert.True(t, IsNotExist(err))

	names, err := fs.ListChildren("/models/mnist")
	require.NoError(t, err)
	sort.Strings(names)
	assert.Equal(t, []string{"1", "2"}, names)

	_, err = fs.ListChildren("/models/absent")
	require.Error(t, err)
	assert.True(t, IsNotExist(err))
}

func TestLocalFS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "5"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644))

	fs := NewLocal()
	assert.NoError(t, fs.Exists(dir))
	assert.True(t, IsNotExist(fs.Exists(filepath.Join(dir, "6"))))

	names, err := fs.ListChildren(dir)
	require.NoError(t, err)
	sort.Strings(names)
	assert.Equal(t, []string{"5", "README"}, names)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/models/mnist/3", JoinPath("/models/mnist", "3"))
	assert.Equal(t, "/models/mnist/3", JoinPath("/models/mnist/", "3"))
	assert.Equal(t, "s3://bucket/mnist/3", JoinPath("s3://bucket/mnist/", "3"))
	assert.Equal(t, "3", JoinPath("", "3"))
}

// fakeObjects is an in-memory objectAPI keyed by object name.
type fakeObjects struct {
	keys    []string
	listErr error
}

func (f *fakeObjects) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.keys)+1)
	if f.listErr != nil {
		ch <- minio.ObjectInfo{Err: f.listErr}
		close(ch)
		return ch
	}
	n := 0
	for _, k := range f.keys {
		if !strings.HasPrefix(k, opts.Prefix) {
			continue
		}
		if opts.MaxKeys > 0 && n == opts.MaxKeys {
			break
		}
		ch <- minio.ObjectInfo{Key: k}
		n++
	}
	close(ch)
	return ch
}

func (f *fakeObjects) StatObject(_ context.Context, _ string, object string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	for _, k := range f.keys {
		if k == object {
			return minio.ObjectInfo{Key: k}, nil
		}
	}
	return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
}

func TestObjectStoreListsNestedKeys(t *testing.T) {
	fake := &fakeObjects{keys: []string{
		"models/mnist/1/saved_model.pb",
		"models/mnist/1/variables/data",
		"models/mnist/2/saved_model.pb",
		"models/other/9/saved_model.pb",
	}}
	fs := newObjectStore(fake, "bucket", 0)

	names, err := fs.ListChildren("s3://bucket/models/mnist")
	require.NoError(t, err)
	assert.Equal(t, []string{"1/saved_model.pb", "1/variables/data", "2/saved_model.pb"}, names)

	assert.NoError(t, fs.Exists("/models/mnist"))
	assert.NoError(t, fs.Exists("models/mnist/2"))
	assert.NoError(t, fs.Exists("models/mnist/2/saved_model.pb"))
	assert.True(t, IsNotExist(fs.Exists("models/mnist/3")))
}

func TestObjectStoreListError(t *testing.T) {
	fake := &fakeObjects{listErr: minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: 404}}
	fs := newObjectStore(fake, "bucket", 0)
	_, err := fs.ListChildren("models")
	require.Error(t, err)
	assert.True(t, IsNotExist(err))
}

func TestNewObjectStoreRequiresBucket(t *testing.T) {
	_, err := NewObjectStore(ObjectStoreOptions{Endpoint: "localhost:9000"})
	require.Error(t, err)
}
