package storagepath

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"modelwatch/internal/storage"
	"modelwatch/pkg/types"
)

// newMemFS returns an in-memory FileSystem with the given directories created.
func newMemFS(t *testing.T, dirs ...string) (*storage.BillyFS, billy.Filesystem) {
	t.Helper()
	fs, mfs := storage.NewMemory()
	for _, d := range dirs {
		if err := mfs.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	return fs, mfs
}

// countingFS wraps a FileSystem and counts calls.
type countingFS struct {
	storage.FileSystem
	mu     sync.Mutex
	lists  int
	exists int
}

func (c *countingFS) Exists(p string) error {
	c.mu.Lock()
	c.exists++
	c.mu.Unlock()
	return c.FileSystem.Exists(p)
}

func (c *countingFS) ListChildren(p string) ([]string, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.FileSystem.ListChildren(p)
}

// lockedFS serializes access so tests can mutate the tree while a poller runs.
type lockedFS struct {
	storage.FileSystem
	mu sync.Mutex
}

func (l *lockedFS) Exists(p string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.FileSystem.Exists(p)
}

func (l *lockedFS) ListChildren(p string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.FileSystem.ListChildren(p)
}

// staticFS serves fixed listings, like an object store returning nested keys.
type staticFS struct {
	children map[string][]string
}

func (s staticFS) Exists(p string) error {
	if _, ok := s.children[p]; ok {
		return nil
	}
	return storage.ErrNotExist
}

func (s staticFS) ListChildren(p string) ([]string, error) {
	c, ok := s.children[p]
	if !ok {
		return nil, storage.ErrNotExist
	}
	return c, nil
}

type callbackCall struct {
	name     string
	versions []types.ServableData
}

// recorder captures callback invocations.
type recorder struct {
	mu    sync.Mutex
	calls []callbackCall
}

func (r *recorder) callback(name string, versions []types.ServableData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, callbackCall{name: name, versions: versions})
}

func (r *recorder) snapshot() []callbackCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]callbackCall, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recorder) callsFor(name string) []callbackCall {
	var out []callbackCall
	for _, c := range r.snapshot() {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", d)
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLogs installs a logger writing to a buffer for the test duration.
func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	SetLogger(zerolog.New(buf))
	t.Cleanup(func() { zlog = zerolog.Nop() })
	return buf
}

func versionsOf(data []types.ServableData) []int64 {
	out := make([]int64, 0, len(data))
	for _, d := range data {
		out = append(out, d.ID.Version)
	}
	return out
}

func equalVersions(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func servable(name, base string, policy types.VersionPolicy) types.ServableToMonitor {
	return types.ServableToMonitor{Name: name, BasePath: base, VersionPolicy: policy}
}

func latest(n uint32) types.VersionPolicy {
	return types.VersionPolicy{Latest: &types.LatestPolicy{NumVersions: n}}
}

func all() types.VersionPolicy { return types.VersionPolicy{All: &types.AllPolicy{}} }

func specific(vs ...int64) types.VersionPolicy {
	return types.VersionPolicy{Specific: &types.SpecificPolicy{Versions: vs}}
}
