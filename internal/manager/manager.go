package manager

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"modelwatch/pkg/types"
)

// Manager keeps the aspired versions of every servable loaded. Sources push
// complete version sets through SetAspiredVersions; each version then runs
// its own lifecycle goroutine: start, loading, available, unloading, end.
type Manager struct {
	mu            sync.RWMutex
	loader        Loader
	unloadTimeout time.Duration
	publisher     EventPublisher
	observers     []StateObserver
	slots         *loadSlots
	versions      map[string]map[int64]*version
	closed        bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	loadsTotal   atomic.Uint64
	loadFailures atomic.Uint64
	startTime    time.Time
}

// LoadConcurrency returns the current limit on concurrent loads.
func (m *Manager) LoadConcurrency() uint32 { return m.slots.getLimit() }

// SetLoadConcurrency resizes the load limit. Loads waiting for a slot are
// re-evaluated immediately; running loads are never interrupted.
func (m *Manager) SetLoadConcurrency(n uint32) {
	m.slots.setLimit(n)
	loadConcurrency.Set(float64(n))
	zlog.Debug().Uint32("load_concurrency", n).Msg("load concurrency changed")
}

// ConnectSource registers the manager as the source's aspired-versions target.
func (m *Manager) ConnectSource(src types.Source) {
	src.SetAspiredVersionsCallback(m.SetAspiredVersions)
}

// AddObserver registers o for all subsequent transitions.
func (m *Manager) AddObserver(o StateObserver) {
	m.mu.Lock()
	m.observers = append(m.observers, o)
	m.mu.Unlock()
}

// SetEventPublisher replaces the event sink.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

// SetAspiredVersions replaces the aspired set for name. Versions not yet
// managed are loaded, versions missing from the set are unloaded, and
// versions present in both are left alone. An empty set unloads everything.
func (m *Manager) SetAspiredVersions(name string, versions []types.ServableData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		zlog.Warn().Str("servable", name).Msg("aspired versions received after close; ignoring")
		return
	}
	cur := m.versions[name]
	if cur == nil {
		cur = make(map[int64]*version)
		m.versions[name] = cur
	}
	aspired := make(map[int64]struct{}, len(versions))
	for _, d := range versions {
		ver := d.ID.Version
		if _, dup := aspired[ver]; dup {
			continue
		}
		aspired[ver] = struct{}{}
		if v, ok := cur[ver]; ok {
			if v.isUnaspired() {
				// Still winding down; load it again once it has ended.
				v.reaspired = &d
			}
			continue
		}
		m.startLocked(name, d)
	}
	for ver, v := range cur {
		if _, ok := aspired[ver]; !ok {
			m.unaspireLocked(v)
		}
	}
	if len(cur) == 0 {
		delete(m.versions, name)
	}
}

// startLocked creates a version entry for d and launches its lifecycle.
func (m *Manager) startLocked(name string, d types.ServableData) {
	ver := d.ID.Version
	cur := m.versions[name]
	if cur == nil {
		cur = make(map[int64]*version)
		m.versions[name] = cur
	}
	v := &version{
		id:        types.ServableId{Name: name, Version: ver},
		path:      d.Path,
		unaspired: make(chan struct{}),
	}
	cur[ver] = v
	m.publisher.Publish(Event{Name: EventAspired, Servable: name, Version: ver, Fields: map[string]any{"path": d.Path}})
	m.setStateLocked(v, types.StateStart, nil)
	if d.Err != nil {
		zlog.Error().Err(d.Err).Str("servable", name).Int64("version", ver).Msg("aspired version carries an error")
		m.setStateLocked(v, types.StateEnd, d.Err)
		return
	}
	ctx, cancel := context.WithCancel(m.ctx)
	v.cancel = cancel
	m.wg.Add(1)
	go m.run(ctx, v)
}

// unaspireLocked hands v to its lifecycle goroutine for unloading, or drops
// it directly when it never started loading.
func (m *Manager) unaspireLocked(v *version) {
	v.reaspired = nil
	if v.cancel == nil {
		m.removeLocked(v)
		return
	}
	if v.isUnaspired() {
		return
	}
	close(v.unaspired)
	if v.state == types.StateStart {
		v.cancel()
	}
}

func (m *Manager) run(ctx context.Context, v *version) {
	defer m.wg.Done()
	defer v.cancel()
	loaded := m.load(ctx, v)
	<-v.unaspired
	if loaded {
		m.unload(v)
	}
	m.mu.Lock()
	if v.state != types.StateEnd {
		m.setStateLocked(v, types.StateEnd, nil)
	}
	m.removeLocked(v)
	if v.reaspired != nil && !m.closed {
		zlog.Info().Str("servable", v.id.Name).Int64("version", v.id.Version).Msg("version aspired again while unloading; reloading")
		m.startLocked(v.id.Name, *v.reaspired)
	}
	m.mu.Unlock()
}

func (m *Manager) load(ctx context.Context, v *version) bool {
	if err := m.slots.acquire(ctx); err != nil {
		return false
	}
	defer m.slots.release()

	m.mu.Lock()
	if ctx.Err() != nil {
		m.mu.Unlock()
		return false
	}
	m.setStateLocked(v, types.StateLoading, nil)
	pub := m.publisher
	m.mu.Unlock()

	pub.Publish(Event{Name: EventLoadStart, Servable: v.id.Name, Version: v.id.Version})
	loadsInFlight.Inc()
	start := time.Now()
	err := m.loader.Load(ctx, v.id, v.path)
	loadsInFlight.Dec()
	loadDuration.Observe(time.Since(start).Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		err = loadError{id: v.id.String(), err: err}
		m.loadFailures.Add(1)
		loadsTotal.WithLabelValues("error").Inc()
		zlog.Error().Err(err).Str("servable", v.id.Name).Int64("version", v.id.Version).Msg("load failed")
		m.setStateLocked(v, types.StateEnd, err)
		m.publisher.Publish(Event{Name: EventLoadFailed, Servable: v.id.Name, Version: v.id.Version, Fields: map[string]any{"error": err.Error()}})
		return false
	}
	m.loadsTotal.Add(1)
	loadsTotal.WithLabelValues("ok").Inc()
	zlog.Info().Str("servable", v.id.Name).Int64("version", v.id.Version).Str("path", v.path).Msg("version available")
	m.setStateLocked(v, types.StateAvailable, nil)
	m.publisher.Publish(Event{Name: EventLoadDone, Servable: v.id.Name, Version: v.id.Version})
	return true
}

func (m *Manager) unload(v *version) {
	m.mu.Lock()
	m.setStateLocked(v, types.StateUnloading, nil)
	pub := m.publisher
	m.mu.Unlock()

	pub.Publish(Event{Name: EventUnloadStart, Servable: v.id.Name, Version: v.id.Version})
	ctx, cancel := context.WithTimeout(context.Background(), m.unloadTimeout)
	err := m.loader.Unload(ctx, v.id)
	cancel()
	unloadsTotal.Inc()
	if err != nil {
		zlog.Warn().Err(err).Str("servable", v.id.Name).Int64("version", v.id.Version).Msg("unload failed")
	}
	pub.Publish(Event{Name: EventUnloadDone, Servable: v.id.Name, Version: v.id.Version})
}

func (m *Manager) setStateLocked(v *version, s types.ManagerState, health error) {
	if v.state != "" {
		versionsByState.WithLabelValues(string(v.state)).Dec()
	}
	versionsByState.WithLabelValues(string(s)).Inc()
	v.state = s
	v.health = health
	v.updated = time.Now()
	st := types.ServableState{ID: v.id, State: s, Health: health}
	for _, o := range m.observers {
		o.Notify(st)
	}
}

func (m *Manager) removeLocked(v *version) {
	cur := m.versions[v.id.Name]
	if cur == nil || cur[v.id.Version] != v {
		return
	}
	versionsByState.WithLabelValues(string(v.state)).Dec()
	delete(cur, v.id.Version)
	if len(cur) == 0 {
		delete(m.versions, v.id.Name)
	}
}

// VersionState returns the current state of id, if managed.
func (m *Manager) VersionState(id types.ServableId) (types.ServableState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.versions[id.Name][id.Version]
	if !ok {
		return types.ServableState{}, false
	}
	return types.ServableState{ID: v.id, State: v.state, Health: v.health}, true
}

// AvailableVersions returns the sorted versions of name that are available.
func (m *Manager) AvailableVersions(name string) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []int64
	for ver, v := range m.versions[name] {
		if v.state == types.StateAvailable {
			out = append(out, ver)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Close unloads every version and waits for all lifecycle goroutines.
// Pending and running loads are canceled. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.cancel()
	for _, cur := range m.versions {
		for _, v := range cur {
			m.unaspireLocked(v)
		}
	}
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}
