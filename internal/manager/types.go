package manager

import (
	"context"
	"time"

	"modelwatch/pkg/types"
)

// Loader brings one servable version into and out of service.
// Load must return when ctx is canceled.
type Loader interface {
	Load(ctx context.Context, id types.ServableId, path types.StoragePath) error
	Unload(ctx context.Context, id types.ServableId) error
}

// StateObserver receives every state transition synchronously.
// Implementations must not call back into the Manager.
type StateObserver interface {
	Notify(types.ServableState)
}

// version is the manager's record of one aspired servable version.
type version struct {
	id      types.ServableId
	path    types.StoragePath
	state   types.ManagerState
	health  error
	updated time.Time

	// unaspired is closed once the version leaves the aspired set.
	unaspired chan struct{}
	cancel    context.CancelFunc
	// reaspired holds the latest data for a version aspired again after
	// unaspired was closed. Guarded by Manager.mu.
	reaspired *types.ServableData
}

func (v *version) isUnaspired() bool {
	select {
	case <-v.unaspired:
		return true
	default:
		return false
	}
}
