package store

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a mutation referenced an entity that is absent from
// the local maps. It is a precondition failure: the remote call is never
// attempted and retrying without reloading will not help.
var ErrNotFound = errors.New("entity not found")

// RemoteError wraps any failure reported by the remote collaborator:
// transport errors, non-2xx statuses and application-level error codes.
// It is the only error class worth retrying from the caller side.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote failure: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// DecodeError indicates the remote response could not be parsed into the
// expected shape. Like ErrNotFound it is a contract-level error.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failure: %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsRemoteFailure reports whether err is retryable from the caller's side.
func IsRemoteFailure(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
