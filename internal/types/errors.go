package types

import (
	"errors"
	"fmt"
	"strings"
)

// Domain specific errors shared across packages.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrBadRequest      = errors.New("bad request")

	ErrDetectionFailed    = errors.New("location detection failed")
	ErrCacheCorrupted     = errors.New("cached value is corrupted")
	ErrRemoteSync         = errors.New("remote preference sync failed")
	ErrInvariantViolation = errors.New("locality invariant violation")
	ErrInvalidRadius      = errors.New("search radius not allowed")
	ErrUnknownCity        = errors.New("city is not in the catalog")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
)

// DetectionError reports why every detection strategy failed. It matches
// ErrDetectionFailed with errors.Is.
type DetectionError struct {
	Causes []error
}

func (e *DetectionError) Error() string {
	if len(e.Causes) == 0 {
		return ErrDetectionFailed.Error()
	}
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("%s: %s", ErrDetectionFailed, strings.Join(msgs, "; "))
}

func (e *DetectionError) Is(target error) bool {
	return target == ErrDetectionFailed
}

func (e *DetectionError) Unwrap() []error {
	return e.Causes
}

// SyncError wraps a failure talking to the remote preference store.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRemoteSync, e.Op, e.Err)
}

func (e *SyncError) Is(target error) bool {
	return target == ErrRemoteSync
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
