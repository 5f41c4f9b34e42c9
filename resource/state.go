package resource

import (
	"errors"

	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/query"
)

// State is the lifecycle of a bound view.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePopulated
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateErrored:
		return "errored"
	}
	return "idle"
}

// View is what a page renders. Data stays set after an error if an earlier
// read succeeded.
type View[T any] struct {
	State    State
	Data     T
	HasData  bool
	Err      error
	NotFound bool
	Stale    bool
}

func viewOf[T any](snap query.Snapshot) View[T] {
	v := View[T]{Err: snap.Err, Stale: snap.Stale}
	if data, ok := query.Data[T](snap); ok && snap.HasData() {
		v.Data = data
		v.HasData = true
	}
	switch snap.Status {
	case query.StatusLoading:
		v.State = StateLoading
	case query.StatusSuccess:
		v.State = StatePopulated
		v.Err = nil
	case query.StatusError:
		v.State = StateErrored
	default:
		v.State = StateIdle
	}
	v.NotFound = v.State == StateErrored && errors.Is(v.Err, apperrors.ErrNotFound)
	return v
}

// settle builds the view returned by a Load call from the cache state and
// the outcome of the caller's own request.
func settle[T any](snap query.Snapshot, result T, err error) View[T] {
	v := viewOf[T](snap)
	switch {
	case err != nil && v.State != StateErrored:
		// e.g. the caller's context was cancelled and nothing was committed
		v.State = StateErrored
		v.Err = err
		v.NotFound = errors.Is(err, apperrors.ErrNotFound)
	case err == nil && v.State != StatePopulated:
		v.State = StatePopulated
		v.Data = result
		v.HasData = true
		v.Err = nil
	}
	return v
}
