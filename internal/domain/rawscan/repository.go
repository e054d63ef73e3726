package rawscan

import "context"

// RawScanRepository is the append-only scan log. This store is the sole
// writer of match_status and processed.
type RawScanRepository interface {
	// Append persists parsed and resolved scans verbatim, preserving
	// file order. Scans arrive with match status decided and
	// processed=false.
	Append(ctx context.Context, scans []RawScan) ([]RawScan, error)

	// List returns scans matching the filter plus the unpaginated total.
	List(ctx context.Context, filter Filter) ([]RawScan, int64, error)

	// GetByID fetches a single scan (used by auto-registration).
	GetByID(ctx context.Context, id string) (RawScan, error)

	// MarkProcessed flips the processed flag for all given ids. Callers
	// run it inside a transaction so one reconciliation batch is
	// all-or-nothing.
	MarkProcessed(ctx context.Context, ids []string) error

	// SetMatched updates a scan's resolution outcome after operator
	// auto-registration.
	SetMatched(ctx context.Context, id string, employeeID string, tier MatchTier) error

	// ClearAll irreversibly deletes every raw scan. Administrative only.
	ClearAll(ctx context.Context) (int64, error)
}
