package hybrid

import (
	"fmt"
	"strings"
)

// Source names the store that served a call.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Result carries a value and where it came from.
//
// Source=remote: the remote store answered.
// Source=local, RemoteErr set: the remote store failed and local answered.
// Source=local, RemoteErr nil: remote was skipped because it is offline.
type Result[T any] struct {
	Value     T
	Source    Source
	RemoteErr error
}

// FellBack reports whether a remote failure was masked by the local store.
func (r Result[T]) FellBack() bool {
	return r.Source == SourceLocal && r.RemoteErr != nil
}

// UnavailableError is returned when both stores failed an operation.
type UnavailableError struct {
	Op     string
	Remote error
	Local  error
}

func (e *UnavailableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: no store available", e.Op)
	if e.Remote != nil {
		fmt.Fprintf(&b, ": remote: %v", e.Remote)
	}
	if e.Local != nil {
		fmt.Fprintf(&b, ": local: %v", e.Local)
	}
	return b.String()
}

func (e *UnavailableError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Remote != nil {
		errs = append(errs, e.Remote)
	}
	if e.Local != nil {
		errs = append(errs, e.Local)
	}
	return errs
}
