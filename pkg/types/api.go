package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: not found
	Error string `json:"error" example:"not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// VersionStatus summarizes one managed servable version for /status.
type VersionStatus struct {
	// example: mnist
	Name string `json:"name" example:"mnist"`
	// example: 3
	Version int64 `json:"version" example:"3"`
	// Current lifecycle state (start, loading, available, unloading, end).
	// example: available
	State string `json:"state" example:"available"`
	// Storage path the version was loaded from.
	// example: /models/mnist/3
	Path string `json:"path" example:"/models/mnist/3"`
	// Health error message, empty when healthy.
	Error string `json:"error,omitempty"`
	// Last state transition (unix seconds).
	// example: 1700000000
	UpdatedUnix int64 `json:"updated_unix" example:"1700000000"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Managed versions, sorted by name then version.
	Versions []VersionStatus `json:"versions"`
	// Current load concurrency.
	// example: 4
	LoadConcurrency uint32 `json:"load_concurrency" example:"4"`
	// Number of loads currently running.
	// example: 1
	LoadsInFlight int `json:"loads_in_flight" example:"1"`
	// Total successful loads.
	// example: 12
	LoadsTotal uint64 `json:"loads_total" example:"12"`
	// Total failed loads.
	// example: 0
	LoadFailuresTotal uint64 `json:"load_failures_total" example:"0"`
	// True once the initial load finished.
	// example: true
	Ready bool `json:"ready" example:"true"`
	// Error from the initial load, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
