package gitsync

import (
	"errors"
	"fmt"
)

var (
	ErrCloneFailed = errors.New("clone failed")
	ErrFetchFailed = errors.New("fetch failed")
)

// Error carries a failed git operation against Remote. Kind is one of the
// package sentinels, or nil for failures outside clone and fetch.
type Error struct {
	Op     string
	Remote string
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("git %s %s: %v: %v", e.Op, e.Remote, e.Kind, e.Err)
	}
	return fmt.Sprintf("git %s %s: %v", e.Op, e.Remote, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}
