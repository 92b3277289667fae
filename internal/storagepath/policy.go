package storagepath

import (
	"fmt"
	"strconv"

	"modelwatch/internal/storage"
	"modelwatch/pkg/types"
)

func aspire(servable types.ServableToMonitor, child string, version int64, out []types.ServableData) []types.ServableData {
	return append(out, types.ServableData{
		ID:   types.ServableId{Name: servable.Name, Version: version},
		Path: storage.JoinPath(servable.BasePath, child),
	})
}

// aspireLatest emits the N highest versions, highest first. Found whenever
// any version exists, regardless of N.
func aspireLatest(servable types.ServableToMonitor, byVersion map[int64]string, out []types.ServableData) ([]types.ServableData, bool) {
	n := servable.VersionPolicy.NumLatestVersions()
	vs := sortedVersions(byVersion)
	for i := len(vs) - 1; i >= 0 && len(vs)-1-i < n; i-- {
		out = aspire(servable, byVersion[vs[i]], vs[i], out)
	}
	return out, len(byVersion) > 0
}

// aspireAll emits every child that parses as a version. It walks the raw
// child list rather than the index, so duplicate spellings of one version
// are all emitted.
func aspireAll(servable types.ServableToMonitor, children []string, out []types.ServableData) ([]types.ServableData, bool) {
	found := false
	for _, child := range children {
		if v, ok := parseVersion(child); ok {
			out = aspire(servable, child, v, out)
			found = true
		}
	}
	return out, found
}

// aspireSpecificFastPath probes base/<v> for every requested version without
// listing the directory. It returns done=false when any probe misses, in
// which case the caller falls back to listing; directories spelled "0001"
// are only found that way.
func aspireSpecificFastPath(fs storage.FileSystem, servable types.ServableToMonitor, out []types.ServableData) ([]types.ServableData, bool) {
	requested := servable.VersionPolicy.SpecificVersions()
	if len(requested) == 0 {
		zlog.Warn().Str("servable", servable.Name).Msg("no specific versions requested for servable")
		return out, true
	}
	for _, v := range requested {
		if err := fs.Exists(storage.JoinPath(servable.BasePath, strconv.FormatInt(v, 10))); err != nil {
			return out, false
		}
	}
	seen := make(map[int64]struct{}, len(requested))
	for _, v := range requested {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = aspire(servable, strconv.FormatInt(v, 10), v, out)
	}
	return out, true
}

// aspireSpecific emits the requested versions present in byVersion and warns
// about each one that is not.
func aspireSpecific(servable types.ServableToMonitor, byVersion map[int64]string, out []types.ServableData) ([]types.ServableData, bool) {
	requested := make(map[int64]struct{})
	for _, v := range servable.VersionPolicy.SpecificVersions() {
		requested[v] = struct{}{}
	}
	aspired := make(map[int64]struct{})
	for _, v := range sortedVersions(byVersion) {
		if _, ok := requested[v]; !ok {
			continue
		}
		out = aspire(servable, byVersion[v], v, out)
		aspired[v] = struct{}{}
	}
	warned := make(map[int64]struct{})
	for _, v := range servable.VersionPolicy.SpecificVersions() {
		if _, ok := aspired[v]; ok {
			continue
		}
		if _, ok := warned[v]; ok {
			continue
		}
		warned[v] = struct{}{}
		zlog.Warn().
			Str("servable", servable.Name).
			Int64("version", v).
			Msg("specific version requested by the version policy was not found in the file system")
	}
	return out, len(aspired) > 0
}

// policyKind picks the resolver for a servable.
var policyKind = func(servable types.ServableToMonitor) types.PolicyKind {
	return servable.VersionPolicy.Kind()
}

// pollServable resolves the aspired versions of one servable.
func pollServable(fs storage.FileSystem, servable types.ServableToMonitor) ([]types.ServableData, error) {
	// Without this check some backends report an empty listing for a
	// missing base path, which would unaspire every version.
	if err := fs.Exists(servable.BasePath); err != nil {
		return nil, fmt.Errorf("%w: could not find base path %s for servable %s: %w",
			ErrBasePathNotFound, servable.BasePath, servable.Name, err)
	}

	kind := policyKind(servable)
	var versions []types.ServableData
	if kind == types.PolicySpecific {
		if out, done := aspireSpecificFastPath(fs, servable, nil); done {
			return out, nil
		}
	}

	children, err := listChildren(fs, servable.BasePath)
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", servable.BasePath, err)
	}
	byVersion := indexChildrenByVersion(children)

	var found bool
	switch kind {
	case types.PolicyLatest:
		versions, found = aspireLatest(servable, byVersion, versions)
	case types.PolicyAll:
		versions, found = aspireAll(servable, children, versions)
	case types.PolicySpecific:
		versions, found = aspireSpecific(servable, byVersion, versions)
	default:
		return nil, fmt.Errorf("%w: %v for servable %s", ErrUnhandledPolicy, kind, servable.Name)
	}

	if !found {
		zlog.Warn().
			Str("servable", servable.Name).
			Str("base_path", servable.BasePath).
			Msg("no versions of servable found under base path; did you forget to name your leaf directory as a number (eg. '/1/')?")
	}
	return versions, nil
}

// servableVersions pairs a servable name with its resolved versions.
type servableVersions struct {
	name     string
	versions []types.ServableData
}

// pollConfig resolves every servable in cfg, in config order. The first
// failing servable aborts the whole poll.
func pollConfig(fs storage.FileSystem, cfg types.SourceConfig) ([]servableVersions, error) {
	out := make([]servableVersions, 0, len(cfg.Servables))
	for _, servable := range cfg.Servables {
		versions, err := pollServable(fs, servable)
		if err != nil {
			return nil, err
		}
		out = append(out, servableVersions{name: servable.Name, versions: versions})
	}
	return out, nil
}

// failIfZeroVersions polls cfg and returns ErrNoVersions naming the first
// servable that currently has no versions.
func failIfZeroVersions(fs storage.FileSystem, cfg types.SourceConfig) error {
	resolved, err := pollConfig(fs, cfg)
	if err != nil {
		return err
	}
	for i, sv := range resolved {
		if len(sv.versions) == 0 {
			return fmt.Errorf("%w: unable to find a numerical version path for servable %s at: %s",
				ErrNoVersions, sv.name, cfg.Servables[i].BasePath)
		}
	}
	return nil
}
