// Package fastload speeds up the first load burst of a manager by raising its
// load concurrency while the initial servables come up.
package fastload

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"modelwatch/pkg/types"
)

var zlog = zerolog.Nop()

// SetLogger installs the structured logger used by this package.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "fastload").Logger() }

// Manager is the part of the lifecycle manager the coordinator drives.
type Manager interface {
	LoadConcurrency() uint32
	SetLoadConcurrency(n uint32)
	ConnectSource(src types.Source)
}

// StateMonitor reports servable states.
type StateMonitor interface {
	WaitUntilServablesReachState(ctx context.Context, requests []types.ServableRequest, goal types.ManagerState) (map[types.ServableId]types.ManagerState, bool)
	GetState(id types.ServableId) (types.ServableState, bool)
}

// ConnectSourcesWithFastInitialLoad sets the manager's load concurrency to
// threads, connects every source to it and blocks on waitFn. The previous
// concurrency is restored on every exit path, including a panic in waitFn.
// The result of waitFn is returned.
func ConnectSourcesWithFastInitialLoad(mgr Manager, sources []types.Source, waitFn func() error, threads uint32) error {
	prev := mgr.LoadConcurrency()
	mgr.SetLoadConcurrency(threads)
	defer mgr.SetLoadConcurrency(prev)

	zlog.Info().Uint32("threads", threads).Uint32("previous", prev).Int("sources", len(sources)).Msg("fast initial load starting")
	start := time.Now()
	for _, src := range sources {
		mgr.ConnectSource(src)
	}
	err := waitFn()
	ev := zlog.Info()
	if err != nil {
		ev = zlog.Error().Err(err)
	}
	ev.Dur("elapsed", time.Since(start)).Msg("fast initial load finished")
	return err
}

// ConnectSourcesWithMonitor runs a fast initial load whose wait completes
// once every request is available on monitor. The wait is bounded by ctx.
func ConnectSourcesWithMonitor(ctx context.Context, mgr Manager, sources []types.Source, monitor StateMonitor, requests []types.ServableRequest, threads uint32) error {
	return ConnectSourcesWithFastInitialLoad(mgr, sources, func() error {
		return WaitUntilAvailable(ctx, monitor, requests)
	}, threads)
}
