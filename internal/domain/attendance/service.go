package attendance

import (
	"context"
	"time"
)

// ReconciliationService rolls matched raw scans up into daily records.
type ReconciliationService interface {
	// Reconcile aggregates matched scans with event times inside
	// [dateFrom, dateTo] into one record per employee per day. With
	// commit=false the computation runs identically but nothing is
	// written, so preview and commit can never diverge. With
	// commit=true records are upserted and the consumed scans marked
	// processed inside one transaction.
	Reconcile(ctx context.Context, dateFrom, dateTo time.Time, commit bool) ([]Record, Summary, error)

	// ListRecords serves reporting collaborators.
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)
}

// ReviewService is the thin preview/confirm orchestration in front of
// the reconciliation engine.
type ReviewService interface {
	// Preview runs a no-commit reconciliation and buckets the computed
	// records into valid vs anomalous.
	Preview(ctx context.Context, dateFrom, dateTo time.Time) (ReviewResponse, error)

	// Confirm commits the same range. Selection below range granularity
	// is advisory; commit is always range-scoped.
	Confirm(ctx context.Context, dateFrom, dateTo time.Time) (Summary, error)
}
