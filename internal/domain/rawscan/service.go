package rawscan

import (
	"context"
	"io"
)

// IngestService runs the upload pipeline: parse the exported file,
// resolve identities, and append the scans with their outcome.
type IngestService interface {
	// IngestFile parses one uploaded time-clock export and persists
	// every surviving row. A parse failure is terminal for the upload
	// and persists nothing.
	IngestFile(ctx context.Context, filename string, r io.Reader) (UploadResult, error)

	// ListScans serves the audit table.
	ListScans(ctx context.Context, filter Filter) (ListRawScansResponse, error)

	// ClearScans is the irreversible administrative bulk delete.
	ClearScans(ctx context.Context) (int64, error)
}
