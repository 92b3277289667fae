package storagepath

import (
	"sort"
	"strconv"
	"strings"

	"modelwatch/internal/storage"
)

// listChildren returns the unique first path segments below basePath, sorted.
// Object-store backends list all descendants, so "3/saved_model.pb" and
// "3/variables/x" both reduce to "3".
func listChildren(fs storage.FileSystem, basePath string) ([]string, error) {
	raw, err := fs.ListChildren(basePath)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(raw))
	for _, child := range raw {
		if i := strings.IndexByte(child, '/'); i >= 0 {
			child = child[:i]
		}
		seen[child] = struct{}{}
	}
	children := make([]string, 0, len(seen))
	for child := range seen {
		children = append(children, child)
	}
	sort.Strings(children)
	return children, nil
}

// parseVersion interprets a child name as a base-10 version number.
func parseVersion(child string) (int64, bool) {
	v, err := strconv.ParseInt(child, 10, 64)
	return v, err == nil
}

// indexChildrenByVersion maps version numbers to their child names. Names
// that do not parse are skipped. When two names parse to the same version
// ("1" and "001") the later one wins.
func indexChildrenByVersion(children []string) map[int64]string {
	byVersion := make(map[int64]string, len(children))
	for _, child := range children {
		v, ok := parseVersion(child)
		if !ok {
			continue
		}
		if prev, dup := byVersion[v]; dup {
			zlog.Warn().
				Int64("version", v).
				Str("using", child).
				Str("ignored", prev).
				Msg("duplicate version directories detected")
		}
		byVersion[v] = child
	}
	return byVersion
}

// sortedVersions returns the keys of byVersion in ascending order.
func sortedVersions(byVersion map[int64]string) []int64 {
	vs := make([]int64, 0, len(byVersion))
	for v := range byVersion {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	return vs
}
