package daemon

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelwatch/internal/config"
	"modelwatch/internal/fastload"
	"modelwatch/internal/storage"
	"modelwatch/pkg/types"
)

func memConfig(t *testing.T, dirs ...string) (config.Config, storage.FileSystem) {
	t.Helper()
	fs, mfs := storage.NewMemory()
	for _, d := range dirs {
		require.NoError(t, mfs.MkdirAll(d, 0o755))
	}
	cfg := config.Config{
		Source: types.SourceConfig{Servables: []types.ServableToMonitor{
			{Name: "a", BasePath: "/models/a"},
		}},
	}
	cfg.ApplyDefaults()
	return cfg, fs
}

func TestDaemon_StartWithoutFastLoad(t *testing.T) {
	cfg, fs := memConfig(t, "/models/a/1", "/models/a/2")
	d, err := New(cfg, fs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.Start(context.Background()))
	assert.True(t, d.Ready())
	assert.Eventually(t, func() bool {
		return len(d.Manager().AvailableVersions("a")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int64{2}, d.Manager().AvailableVersions("a"))
}

func TestDaemon_FastLoadDefaultsToLatestOfEachServable(t *testing.T) {
	cfg, fs := memConfig(t, "/models/a/3")
	cfg.LoadThreads = 1
	cfg.FastLoad.Threads = 4
	d, err := New(cfg, fs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.Start(context.Background()))
	st := d.Status()
	assert.True(t, st.Ready)
	assert.Empty(t, st.LastError)
	assert.Equal(t, uint32(1), st.LoadConcurrency, "concurrency restored after fast load")
	require.Len(t, st.Versions, 1)
	assert.Equal(t, string(types.StateAvailable), st.Versions[0].State)
}

func TestDaemon_FastLoadFailureNotReady(t *testing.T) {
	cfg, fs := memConfig(t, "/models/a/1")
	cfg.FastLoad.Threads = 2
	cfg.FastLoad.TimeoutSeconds = 1
	cfg.FastLoad.Servables = []types.ServableRequest{types.Specific("a", 9)}
	d, err := New(cfg, fs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	err = d.Start(context.Background())
	require.Error(t, err)
	assert.True(t, fastload.IsUnavailable(err))
	assert.False(t, d.Ready())
	assert.Contains(t, d.Status().LastError, "did not become available")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg, fs := memConfig(t)
	cfg.Source.Servables = append(cfg.Source.Servables, cfg.Source.Servables[0])
	_, err := New(cfg, fs)
	assert.True(t, config.IsValidation(err))
}

func TestNew_SourceErrorsPropagate(t *testing.T) {
	cfg, fs := memConfig(t)
	cfg.Source.FailIfZeroVersionsAtStartup = true
	_, err := New(cfg, fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configure source")
}

func TestNewFileSystem(t *testing.T) {
	fs, err := NewFileSystem(config.StorageConfig{Backend: config.BackendLocal})
	require.NoError(t, err)
	assert.IsType(t, &storage.BillyFS{}, fs)

	fs, err = NewFileSystem(config.StorageConfig{Backend: config.BackendS3, S3: config.S3Config{Endpoint: "localhost:9000", Bucket: "models"}})
	require.NoError(t, err)
	assert.IsType(t, &storage.ObjectStoreFS{}, fs)

	_, err = NewFileSystem(config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "warn", "json")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}
