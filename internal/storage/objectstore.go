package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultObjectStoreTimeout = 30 * time.Second

// objectAPI is the subset of *minio.Client used by ObjectStoreFS.
type objectAPI interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// ObjectStoreOptions configures an S3-compatible backend.
type ObjectStoreOptions struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Secure    bool
	// Timeout bounds each Exists/ListChildren call. Zero means 30s.
	Timeout time.Duration
}

// ObjectStoreFS exposes a bucket as a FileSystem. Directories are key
// prefixes; listings are recursive, so children may contain nested paths.
type ObjectStoreFS struct {
	client  objectAPI
	bucket  string
	timeout time.Duration
}

// NewObjectStore connects to an S3-compatible endpoint.
func NewObjectStore(opts ObjectStoreOptions) (*ObjectStoreFS, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("object store: bucket is required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("object store: connect %q: %w", opts.Endpoint, err)
	}
	return newObjectStore(client, opts.Bucket, opts.Timeout), nil
}

func newObjectStore(client objectAPI, bucket string, timeout time.Duration) *ObjectStoreFS {
	if timeout <= 0 {
		timeout = defaultObjectStoreTimeout
	}
	return &ObjectStoreFS{client: client, bucket: bucket, timeout: timeout}
}

// objectKey strips an optional s3://bucket/ prefix and leading slashes.
func (o *ObjectStoreFS) objectKey(p string) string {
	p = strings.TrimPrefix(p, "s3://"+o.bucket)
	return strings.Trim(p, "/")
}

// Exists implements FileSystem. A path exists if it names an object or is
// a prefix of at least one object.
func (o *ObjectStoreFS) Exists(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	key := o.objectKey(path)
	if key != "" {
		_, err := o.client.StatObject(ctx, o.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return nil
		}
		if !isObjectNotFound(err) {
			return translateError(path, err)
		}
	}
	for obj := range o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    prefixOf(key),
		Recursive: true,
		MaxKeys:   1,
	}) {
		if obj.Err != nil {
			return translateError(path, obj.Err)
		}
		return nil
	}
	return notExist(path)
}

// ListChildren implements FileSystem. Names are relative to path and may
// contain further '/' separated segments.
func (o *ObjectStoreFS) ListChildren(path string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	prefix := prefixOf(o.objectKey(path))
	var names []string
	for obj := range o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, translateError(path, obj.Err)
		}
		rel := strings.TrimPrefix(obj.Key, prefix)
		if rel == "" {
			continue
		}
		names = append(names, rel)
	}
	return names, nil
}

func prefixOf(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}

func isObjectNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}

func translateError(path string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchBucket" {
		return fmt.Errorf("object store: %s: %v: %w", path, err, ErrNotExist)
	}
	return fmt.Errorf("object store: %s: %w", path, err)
}
