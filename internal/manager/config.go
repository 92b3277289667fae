package manager

import (
	"context"
	"time"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultLoadConcurrency = 1
	defaultUnloadTimeout   = 30 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Loader Loader
	// LoadConcurrency caps concurrent Loader.Load calls. Zero means 1.
	LoadConcurrency uint32
	// UnloadTimeout bounds each Loader.Unload call.
	UnloadTimeout time.Duration
	Publisher     EventPublisher
	Observers     []StateObserver
}

// Option customizes a ManagerConfig passed through New.
type Option func(*ManagerConfig)

func WithLoadConcurrency(n uint32) Option {
	return func(c *ManagerConfig) { c.LoadConcurrency = n }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(c *ManagerConfig) { c.Publisher = p }
}

// WithObserver registers an observer before any transition can happen.
func WithObserver(o StateObserver) Option {
	return func(c *ManagerConfig) { c.Observers = append(c.Observers, o) }
}

func WithUnloadTimeout(d time.Duration) Option {
	return func(c *ManagerConfig) { c.UnloadTimeout = d }
}

// New constructs a Manager around loader.
func New(loader Loader, opts ...Option) *Manager {
	cfg := ManagerConfig{Loader: loader}
	for _, o := range opts {
		o(&cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	if cfg.LoadConcurrency == 0 {
		cfg.LoadConcurrency = defaultLoadConcurrency
	}
	if cfg.UnloadTimeout <= 0 {
		cfg.UnloadTimeout = defaultUnloadTimeout
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.Loader == nil {
		cfg.Loader = nopLoader{}
	}
	m := &Manager{
		loader:        cfg.Loader,
		unloadTimeout: cfg.UnloadTimeout,
		publisher:     cfg.Publisher,
		observers:     append([]StateObserver(nil), cfg.Observers...),
		slots:         newLoadSlots(cfg.LoadConcurrency),
		versions:      make(map[string]map[int64]*version),
		startTime:     time.Now(),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	loadConcurrency.Set(float64(cfg.LoadConcurrency))
	return m
}
