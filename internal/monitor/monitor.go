// Package monitor tracks the last published state of every servable version
// and lets callers block until a set of servables settles.
package monitor

import (
	"context"
	"sync"

	"modelwatch/pkg/types"
)

// Monitor records state transitions. It satisfies manager.StateObserver.
type Monitor struct {
	mu      sync.Mutex
	states  map[string]map[int64]types.ServableState
	changed chan struct{}
}

func New() *Monitor {
	return &Monitor{
		states:  make(map[string]map[int64]types.ServableState),
		changed: make(chan struct{}),
	}
}

// Notify records st and wakes all waiters.
func (m *Monitor) Notify(st types.ServableState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byVersion := m.states[st.ID.Name]
	if byVersion == nil {
		byVersion = make(map[int64]types.ServableState)
		m.states[st.ID.Name] = byVersion
	}
	byVersion[st.ID.Version] = st
	close(m.changed)
	m.changed = make(chan struct{})
}

// GetState returns the last state seen for id.
func (m *Monitor) GetState(id types.ServableId) (types.ServableState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[id.Name][id.Version]
	return st, ok
}

// States returns a copy of every version seen for name.
func (m *Monitor) States(name string) map[int64]types.ServableState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]types.ServableState, len(m.states[name]))
	for v, st := range m.states[name] {
		out[v] = st
	}
	return out
}

// WaitUntilServablesReachState blocks until every request is settled, that
// is its version has reached goal or the terminal end state, or until ctx is
// done. A request without a version tracks the highest version seen for its
// name, ignoring versions that were retired without error. The returned map
// holds the state of each request; requests for the latest version that
// never surfaced are keyed with version -1. The bool reports whether every
// request reached goal.
func (m *Monitor) WaitUntilServablesReachState(ctx context.Context, requests []types.ServableRequest, goal types.ManagerState) (map[types.ServableId]types.ManagerState, bool) {
	for {
		m.mu.Lock()
		states, settled := m.evaluateLocked(requests, goal)
		ch := m.changed
		m.mu.Unlock()
		if settled {
			return states, allReached(states, goal)
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return states, false
		}
	}
}

func (m *Monitor) evaluateLocked(requests []types.ServableRequest, goal types.ManagerState) (map[types.ServableId]types.ManagerState, bool) {
	states := make(map[types.ServableId]types.ManagerState, len(requests))
	settled := true
	for _, r := range requests {
		st, ok := m.lookupLocked(r)
		if !ok {
			id := types.ServableId{Name: r.Name, Version: -1}
			if r.Version != nil {
				id.Version = *r.Version
			}
			states[id] = types.StateUnknown
			settled = false
			continue
		}
		states[st.ID] = st.State
		if st.State != goal && st.State != types.StateEnd {
			settled = false
		}
	}
	return states, settled
}

func (m *Monitor) lookupLocked(r types.ServableRequest) (types.ServableState, bool) {
	byVersion := m.states[r.Name]
	if r.Version != nil {
		st, ok := byVersion[*r.Version]
		return st, ok
	}
	var (
		best  types.ServableState
		found bool
	)
	for v, st := range byVersion {
		// Versions that ended cleanly were unaspired, not failed.
		if st.State == types.StateEnd && st.Health == nil {
			continue
		}
		if !found || v > best.ID.Version {
			best, found = st, true
		}
	}
	return best, found
}

func allReached(states map[types.ServableId]types.ManagerState, goal types.ManagerState) bool {
	for _, s := range states {
		if s != goal {
			return false
		}
	}
	return true
}
