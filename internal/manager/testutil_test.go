package manager

import (
	"context"
	"sync"
	"testing"
	"time"

	"modelwatch/pkg/types"
)

// fakeLoader records calls. When gate is set, Load blocks until the gate is
// closed or ctx is canceled; unloadGate does the same for Unload.
type fakeLoader struct {
	mu         sync.Mutex
	gate       chan struct{}
	unloadGate chan struct{}
	fail       map[int64]error
	loads      []types.ServableId
	unloads    []types.ServableId
	active     int
	maxActive  int
}

func (f *fakeLoader) Load(ctx context.Context, id types.ServableId, _ types.StoragePath) error {
	f.mu.Lock()
	f.loads = append(f.loads, id)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	gate := f.gate
	err := f.fail[id.Version]
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeLoader) Unload(ctx context.Context, id types.ServableId) error {
	f.mu.Lock()
	f.unloads = append(f.unloads, id)
	gate := f.unloadGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeLoader) stats() (loads, unloads []types.ServableId, active, maxActive int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.ServableId(nil), f.loads...), append([]types.ServableId(nil), f.unloads...), f.active, f.maxActive
}

// stateLog is a StateObserver that keeps every transition.
type stateLog struct {
	mu     sync.Mutex
	states []types.ServableState
}

func (s *stateLog) Notify(st types.ServableState) {
	s.mu.Lock()
	s.states = append(s.states, st)
	s.mu.Unlock()
}

func (s *stateLog) sequence(id types.ServableId) []types.ManagerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.ManagerState
	for _, st := range s.states {
		if st.ID == id {
			out = append(out, st.State)
		}
	}
	return out
}

// fakeSource captures the registered callback.
type fakeSource struct {
	cb types.AspiredVersionsCallback
}

func (f *fakeSource) SetAspiredVersionsCallback(cb types.AspiredVersionsCallback) { f.cb = cb }

func data(name string, versions ...int64) []types.ServableData {
	out := make([]types.ServableData, 0, len(versions))
	for _, v := range versions {
		out = append(out, types.ServableData{
			ID:   types.ServableId{Name: name, Version: v},
			Path: "/models/" + name,
		})
	}
	return out
}

func id(name string, v int64) types.ServableId { return types.ServableId{Name: name, Version: v} }

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

func closeManager(t *testing.T, m *Manager) {
	t.Helper()
	t.Cleanup(func() { _ = m.Close() })
}

func equalInts(a, b []int64) bool {
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
