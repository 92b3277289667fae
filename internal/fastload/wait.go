package fastload

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"modelwatch/pkg/types"
)

// Unavailable describes one servable that did not become available.
type Unavailable struct {
	ID     types.ServableId
	State  types.ManagerState
	Health error
}

// UnavailableError aggregates every servable that missed the initial load.
type UnavailableError struct {
	Servables []Unavailable
}

func (e *UnavailableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d servable(s) did not become available: {", len(e.Servables))
	for _, s := range e.Servables {
		b.WriteString("{")
		b.WriteString(s.ID.String())
		if s.Health != nil {
			b.WriteString(" due to error: ")
			b.WriteString(s.Health.Error())
		}
		b.WriteString("}, ")
	}
	b.WriteString("}")
	return b.String()
}

// Unwrap exposes the health errors of the failed servables.
func (e *UnavailableError) Unwrap() []error {
	var out []error
	for _, s := range e.Servables {
		if s.Health != nil {
			out = append(out, s.Health)
		}
	}
	return out
}

// IsUnavailable reports whether err is an *UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// WaitUntilAvailable blocks until every request is available or settled in
// another terminal state, or until ctx is done. Servables that are not
// available are reported through an *UnavailableError, ordered by id.
func WaitUntilAvailable(ctx context.Context, monitor StateMonitor, requests []types.ServableRequest) error {
	states, ok := monitor.WaitUntilServablesReachState(ctx, requests, types.StateAvailable)
	if ok {
		return nil
	}
	ue := &UnavailableError{}
	for id, st := range states {
		if st == types.StateAvailable {
			continue
		}
		u := Unavailable{ID: id, State: st}
		if cur, found := monitor.GetState(id); found {
			u.Health = cur.Health
		}
		ue.Servables = append(ue.Servables, u)
	}
	sort.Slice(ue.Servables, func(i, j int) bool {
		a, b := ue.Servables[i].ID, ue.Servables[j].ID
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Version < b.Version
	})
	return ue
}
