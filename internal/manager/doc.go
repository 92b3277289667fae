// Package manager loads and unloads servable versions as sources change
// their aspired sets. It is structured into small files by concern:
//
//   - manager.go: Manager, SetAspiredVersions and the per-version lifecycle.
//   - config.go: ManagerConfig, options and package defaults.
//   - concurrency.go: resizable limit on concurrent loads.
//   - loader.go: Loader implementations (FileLoader).
//   - events.go, eventpub_memory.go: lifecycle events and an in-memory sink.
//   - status_report.go: Status reporting for /status.
//   - metrics.go, log.go: prometheus collectors and the package logger.
//
// Every transition is reported synchronously to registered StateObservers,
// which is how the monitor package tracks readiness.
package manager
