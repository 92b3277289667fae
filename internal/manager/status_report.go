package manager

import (
	"sort"
	"time"

	"modelwatch/pkg/types"
)

// Status builds the manager portion of the /status response. Readiness of
// the initial load is filled in by the caller.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	resp := types.StatusResponse{
		Versions: make([]types.VersionStatus, 0, len(m.versions)),
	}
	for _, cur := range m.versions {
		for _, v := range cur {
			vs := types.VersionStatus{
				Name:        v.id.Name,
				Version:     v.id.Version,
				State:       string(v.state),
				Path:        v.path,
				UpdatedUnix: v.updated.Unix(),
			}
			if v.health != nil {
				vs.Error = v.health.Error()
			}
			resp.Versions = append(resp.Versions, vs)
		}
	}
	m.mu.RUnlock()

	sort.Slice(resp.Versions, func(i, j int) bool {
		a, b := resp.Versions[i], resp.Versions[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Version < b.Version
	})
	resp.LoadConcurrency = m.slots.getLimit()
	resp.LoadsInFlight = m.slots.inFlight()
	resp.LoadsTotal = m.loadsTotal.Load()
	resp.LoadFailuresTotal = m.loadFailures.Load()
	now := time.Now()
	resp.UptimeSeconds = int64(now.Sub(m.startTime).Seconds())
	resp.ServerTimeUnix = now.Unix()
	return resp
}
