package attendance

import "context"

// RecordRepository persists daily attendance records. Upsert is keyed on
// (employee_id, work_date); the reconciliation engine is the only caller
// that writes.
type RecordRepository interface {
	// Upsert replaces every field of the record for its composite key,
	// creating the row when absent. Returns the stored record.
	Upsert(ctx context.Context, record Record) (Record, error)

	// List returns records matching the filter, joined with directory
	// names for reporting.
	List(ctx context.Context, filter RecordFilter) ([]Record, int64, error)
}
