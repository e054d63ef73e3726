package rawscan

import "errors"

// Raw scan domain errors
var (
	ErrScanNotFound    = errors.New("raw scan not found")
	ErrNothingToAppend = errors.New("no scans to append")
	ErrInvalidScan     = errors.New("raw scan violates persistence invariants")
)
