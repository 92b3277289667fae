// Package daemon wires storage, the storage path source, the manager and the
// HTTP API into one running process.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"modelwatch/internal/config"
	"modelwatch/internal/fastload"
	"modelwatch/internal/httpapi"
	"modelwatch/internal/manager"
	"modelwatch/internal/monitor"
	"modelwatch/internal/storage"
	"modelwatch/internal/storagepath"
	"modelwatch/pkg/types"
)

// Daemon owns every long-lived component. It implements httpapi.Service.
type Daemon struct {
	cfg config.Config
	mgr *manager.Manager
	mon *monitor.Monitor
	src *storagepath.Source

	ready   atomic.Bool
	mu      sync.RWMutex
	lastErr string
}

// NewFileSystem builds the storage backend selected by cfg.
func NewFileSystem(cfg config.StorageConfig) (storage.FileSystem, error) {
	switch cfg.Backend {
	case "", config.BackendLocal:
		return storage.NewLocal(), nil
	case config.BackendS3:
		fs, err := storage.NewObjectStore(storage.ObjectStoreOptions{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Secure:    cfg.S3.Secure,
			Timeout:   time.Duration(cfg.S3.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return fs, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// New builds a Daemon over fs. cfg should already have defaults applied.
// The source is configured but not connected until Start.
func New(cfg config.Config, fs storage.FileSystem, opts ...storagepath.Option) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mon := monitor.New()
	mgr := manager.New(manager.NewFileLoader(fs),
		manager.WithLoadConcurrency(cfg.LoadThreads),
		manager.WithObserver(mon),
	)
	src, err := storagepath.NewSource(cfg.Source, fs, opts...)
	if err != nil {
		_ = mgr.Close()
		return nil, fmt.Errorf("configure source: %w", err)
	}
	return &Daemon{cfg: cfg, mgr: mgr, mon: mon, src: src}, nil
}

// Start connects the source to the manager. With fast load enabled it
// blocks until the initial servables are available or the fast load
// timeout elapses; the daemon only reports ready on success.
func (d *Daemon) Start(ctx context.Context) error {
	fl := d.cfg.FastLoad
	if fl.Threads == 0 {
		d.mgr.ConnectSource(d.src)
		d.ready.Store(true)
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(fl.TimeoutSeconds)*time.Second)
	defer cancel()
	err := fastload.ConnectSourcesWithMonitor(ctx, d.mgr, []types.Source{d.src}, d.mon, d.initialRequests(), fl.Threads)
	if err != nil {
		d.mu.Lock()
		d.lastErr = err.Error()
		d.mu.Unlock()
		return err
	}
	d.ready.Store(true)
	return nil
}

// initialRequests defaults to the latest version of every configured servable.
func (d *Daemon) initialRequests() []types.ServableRequest {
	if len(d.cfg.FastLoad.Servables) > 0 {
		return d.cfg.FastLoad.Servables
	}
	out := make([]types.ServableRequest, 0, len(d.cfg.Source.Servables))
	for _, s := range d.cfg.Source.Servables {
		out = append(out, types.Latest(s.Name))
	}
	return out
}

func (d *Daemon) Ready() bool { return d.ready.Load() }

func (d *Daemon) Status() types.StatusResponse {
	st := d.mgr.Status()
	st.Ready = d.Ready()
	d.mu.RLock()
	st.LastError = d.lastErr
	d.mu.RUnlock()
	return st
}

// Handler returns the HTTP API for this daemon.
func (d *Daemon) Handler() http.Handler {
	c := d.cfg.CORS
	httpapi.SetCORSOptions(c.Enabled, c.AllowedOrigins, c.AllowedMethods, c.AllowedHeaders)
	return httpapi.NewMux(d)
}

// Manager exposes the lifecycle manager.
func (d *Daemon) Manager() *manager.Manager { return d.mgr }

// Source exposes the storage path source, e.g. for manual polls.
func (d *Daemon) Source() *storagepath.Source { return d.src }

// Close stops polling before unloading so no callback races the shutdown.
func (d *Daemon) Close() error {
	d.src.Close()
	return d.mgr.Close()
}
