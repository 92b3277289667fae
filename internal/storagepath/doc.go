// Package storagepath discovers servable versions on a storage backend and
// emits them as aspired versions.
//
//   - scanner.go: child listing, first-segment reduction, version indexing.
//   - policy.go: latest / all / specific version selection for one servable.
//   - source.go: Source, its configuration lifecycle and the poll routine.
//   - poller.go: one-shot and periodic polling modes.
//   - errors.go: sentinel errors and IsXxx helpers.
//   - metrics.go: Prometheus collectors.
//
// A Source hands the complete version set of each servable to its callback
// on every poll; consumers treat each call as a replacement, never a delta.
package storagepath
