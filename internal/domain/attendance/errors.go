package attendance

import "errors"

// Attendance domain errors
var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrInvalidRange   = errors.New("invalid reconciliation date range")

	// ErrStoreUnavailable marks a directory or store failure during the
	// commit step. The whole run fails; no partial processed-flag
	// writes survive.
	ErrStoreUnavailable = errors.New("attendance store unavailable")
)
