package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrSettingNotFound is returned by stores when a setting key is absent.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrCompetitorNotFound is returned when a competitor id does not exist.
	ErrCompetitorNotFound = errors.New("competitor not found")
)

// UpstreamError reports a failed provider call: a non-success HTTP status or
// an expected envelope field missing from the response. The raw body is kept
// for diagnostics. The adapter never retries; retry policy belongs to the
// caller.
type UpstreamError struct {
	Op     string // "run actor", "fetch dataset", "fetch profiles"
	Status int    // HTTP status, 0 when the failure is envelope-shaped
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s: status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("provider %s: %s", e.Op, e.Body)
}

// StorageError reports a failed repository write or read. Fatal for the
// current batch item; a batch persist aborts its remaining items on one.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
