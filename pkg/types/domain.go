package types

import "fmt"

// ServableId identifies one version of a named servable.
type ServableId struct {
	// example: mnist
	Name string `json:"name" yaml:"name" toml:"name" example:"mnist"`
	// example: 3
	Version int64 `json:"version" yaml:"version" toml:"version" example:"3"`
}

// String renders the id in the form used by diagnostics and aggregated errors.
func (id ServableId) String() string {
	return fmt.Sprintf("{name: %s version: %d}", id.Name, id.Version)
}

// StoragePath locates a servable version on the storage backend.
type StoragePath = string

// ServableData is the result for a single aspired version: either a storage
// path or the error that prevented the version from being resolved.
type ServableData struct {
	ID   ServableId
	Path StoragePath
	Err  error
}

// AspiredVersionsCallback receives the complete desired version set for one
// servable. Each call replaces the previous set; an empty slice unaspires all
// versions of the servable.
type AspiredVersionsCallback func(servableName string, versions []ServableData)

// Source emits aspired versions to a single registered callback.
type Source interface {
	SetAspiredVersionsCallback(cb AspiredVersionsCallback)
}

// PolicyKind names the variant held by a VersionPolicy.
type PolicyKind int

const (
	PolicyLatest PolicyKind = iota
	PolicyAll
	PolicySpecific
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyLatest:
		return "latest"
	case PolicyAll:
		return "all"
	case PolicySpecific:
		return "specific"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// LatestPolicy serves the NumVersions numerically highest versions.
// Zero is treated as one.
type LatestPolicy struct {
	NumVersions uint32 `json:"num_versions" yaml:"num_versions" toml:"num_versions"`
}

// AllPolicy serves every numerically named version.
type AllPolicy struct{}

// SpecificPolicy serves exactly the listed versions that exist.
type SpecificPolicy struct {
	Versions []int64 `json:"versions" yaml:"versions" toml:"versions"`
}

// VersionPolicy selects which discovered versions become aspired. At most one
// field may be set; none set means Latest{1}.
type VersionPolicy struct {
	Latest   *LatestPolicy   `json:"latest,omitempty" yaml:"latest,omitempty" toml:"latest,omitempty"`
	All      *AllPolicy      `json:"all,omitempty" yaml:"all,omitempty" toml:"all,omitempty"`
	Specific *SpecificPolicy `json:"specific,omitempty" yaml:"specific,omitempty" toml:"specific,omitempty"`
}

// Kind returns the active policy variant.
func (p VersionPolicy) Kind() PolicyKind {
	switch {
	case p.Specific != nil:
		return PolicySpecific
	case p.All != nil:
		return PolicyAll
	default:
		return PolicyLatest
	}
}

// NumSet reports how many variants are populated. Valid configs have at most one.
func (p VersionPolicy) NumSet() int {
	n := 0
	if p.Latest != nil {
		n++
	}
	if p.All != nil {
		n++
	}
	if p.Specific != nil {
		n++
	}
	return n
}

// NumLatestVersions returns the Latest count clamped to at least one.
func (p VersionPolicy) NumLatestVersions() int {
	if p.Latest == nil || p.Latest.NumVersions < 1 {
		return 1
	}
	return int(p.Latest.NumVersions)
}

// SpecificVersions returns the requested versions of a Specific policy.
func (p VersionPolicy) SpecificVersions() []int64 {
	if p.Specific == nil {
		return nil
	}
	return p.Specific.Versions
}

// ServableToMonitor describes one servable whose versions live under BasePath.
type ServableToMonitor struct {
	// example: mnist
	Name string `json:"name" yaml:"name" toml:"name" example:"mnist"`
	// example: /models/mnist
	BasePath      string        `json:"base_path" yaml:"base_path" toml:"base_path" example:"/models/mnist"`
	VersionPolicy VersionPolicy `json:"version_policy" yaml:"version_policy" toml:"version_policy"`
}

// SourceConfig configures a storage path source.
type SourceConfig struct {
	Servables []ServableToMonitor `json:"servables" yaml:"servables" toml:"servables"`
	// Zero polls once, positive polls every N seconds, negative never polls.
	PollIntervalSeconds int64 `json:"poll_interval_seconds" yaml:"poll_interval_seconds" toml:"poll_interval_seconds"`
	// Reject configs where some servable has no versions on disk.
	FailIfZeroVersionsAtStartup bool `json:"fail_if_zero_versions_at_startup" yaml:"fail_if_zero_versions_at_startup" toml:"fail_if_zero_versions_at_startup"`
	// Never emit an empty version set for a configured servable.
	ServableVersionsAlwaysPresent bool `json:"servable_versions_always_present" yaml:"servable_versions_always_present" toml:"servable_versions_always_present"`
}

// Clone returns a deep copy of c.
func (c SourceConfig) Clone() SourceConfig {
	out := c
	out.Servables = make([]ServableToMonitor, len(c.Servables))
	for i, s := range c.Servables {
		cp := s
		if s.VersionPolicy.Latest != nil {
			l := *s.VersionPolicy.Latest
			cp.VersionPolicy.Latest = &l
		}
		if s.VersionPolicy.All != nil {
			cp.VersionPolicy.All = &AllPolicy{}
		}
		if s.VersionPolicy.Specific != nil {
			cp.VersionPolicy.Specific = &SpecificPolicy{
				Versions: append([]int64(nil), s.VersionPolicy.Specific.Versions...),
			}
		}
		out.Servables[i] = cp
	}
	return out
}

// ManagerState is the lifecycle state of one servable version in the manager.
type ManagerState string

const (
	StateUnknown   ManagerState = "unknown"
	StateStart     ManagerState = "start"
	StateLoading   ManagerState = "loading"
	StateAvailable ManagerState = "available"
	StateUnloading ManagerState = "unloading"
	// StateEnd is terminal; a version that failed to load also ends here with
	// a non-nil Health.
	StateEnd ManagerState = "end"
)

// ServableState is a published state transition for one servable version.
type ServableState struct {
	ID    ServableId
	State ManagerState
	// Health is nil when the version is healthy.
	Health error
}

// ServableRequest names a servable and optionally a version. A nil Version
// means the latest version known for the name.
type ServableRequest struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Version *int64 `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
}

// Specific builds a request for one version.
func Specific(name string, version int64) ServableRequest {
	v := version
	return ServableRequest{Name: name, Version: &v}
}

// Latest builds a request for the latest version of name.
func Latest(name string) ServableRequest { return ServableRequest{Name: name} }
