package identity

import "errors"

// Identity resolution domain errors
var (
	ErrDirectoryUnavailable = errors.New("employee directory unavailable")
	ErrScanAlreadyMatched   = errors.New("raw scan is already matched")
)
