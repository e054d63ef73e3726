package attendance

import (
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/pkg/validator"
)

// Summary is the operator-facing counter set returned by every
// reconciliation run, committed or previewed.
type Summary struct {
	Upserted         int `json:"upserted"`
	MarkedProcessed  int `json:"marked_processed"`
	SkippedUnmatched int `json:"skipped_unmatched"`
	// SkippedInvalid counts rows excluded by per-row classification
	// failures (e.g. a zero event time that survived parsing).
	SkippedInvalid int `json:"skipped_invalid"`
}

// ReconcileRequest scopes one run to a closed date range.
type ReconcileRequest struct {
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

func (r ReconcileRequest) Validate() error {
	var errs validator.ValidationErrors
	from, okFrom := validator.IsValidDate(r.DateFrom)
	if !okFrom {
		errs = append(errs, validator.ValidationError{Field: "date_from", Message: "must be yyyy-mm-dd"})
	}
	to, okTo := validator.IsValidDate(r.DateTo)
	if !okTo {
		errs = append(errs, validator.ValidationError{Field: "date_to", Message: "must be yyyy-mm-dd"})
	}
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "date_to", Message: "must not be before date_from"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range returns the parsed inclusive bounds. Validate first.
func (r ReconcileRequest) Range() (time.Time, time.Time) {
	from, _ := validator.IsValidDate(r.DateFrom)
	to, _ := validator.IsValidDate(r.DateTo)
	return from, to
}

type RecordResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	EmployeeCode *string  `json:"employee_code,omitempty"`
	WorkDate     string   `json:"work_date"`
	ClockIn      *string  `json:"clock_in,omitempty"`
	ClockOut     *string  `json:"clock_out,omitempty"`
	TotalHours   *string  `json:"total_hours,omitempty"`
	Status       string   `json:"status"`
	Notes        *string  `json:"notes,omitempty"`
	Anomalies    []string `json:"anomalies,omitempty"`
}

// ReviewResponse partitions a preview into confirmable buckets.
type ReviewResponse struct {
	Valid     []RecordResponse `json:"valid"`
	Anomalous []RecordResponse `json:"anomalous"`
	Summary   Summary          `json:"summary"`
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Records    []RecordResponse `json:"records"`
}

// RecordFilter narrows record listings for reports.
type RecordFilter struct {
	EmployeeID *string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *Status
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// MapRecordToResponse converts a Record entity to its transport form.
func MapRecordToResponse(rec Record) RecordResponse {
	var totalHours *string
	if rec.TotalHours != nil {
		s := rec.TotalHours.StringFixed(2)
		totalHours = &s
	}
	var anomalies []string
	for _, a := range DecodeAnomalies(rec.Notes) {
		anomalies = append(anomalies, string(a))
	}
	return RecordResponse{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		EmployeeName: rec.EmployeeName,
		EmployeeCode: rec.EmployeeCode,
		WorkDate:     rec.WorkDate.Format("2006-01-02"),
		ClockIn:      timePtrToString(rec.ClockIn),
		ClockOut:     timePtrToString(rec.ClockOut),
		TotalHours:   totalHours,
		Status:       string(rec.Status),
		Notes:        rec.Notes,
		Anomalies:    anomalies,
	}
}
