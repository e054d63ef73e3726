package rawscan

import (
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/pkg/validator"
)

// Filter narrows raw scan queries for audit tables and reconciliation.
type Filter struct {
	Processed   *bool
	MatchStatus *MatchStatus
	StartTime   *time.Time
	EndTime     *time.Time
	Page        int
	Limit       int
}

func (f Filter) Validate() error {
	var errs validator.ValidationErrors
	if f.MatchStatus != nil {
		switch *f.MatchStatus {
		case MatchStatusMatched, MatchStatusRejected, MatchStatusUnmatched:
		default:
			errs = append(errs, validator.ValidationError{
				Field:   "match_status",
				Message: "must be one of matched, rejected, unmatched",
			})
		}
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "must not be before start_time",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UploadResult reports per-file ingestion counters so partially resolved
// uploads surface exact numbers instead of an opaque failure. UploadID
// correlates the response with the ingestion log lines.
type UploadResult struct {
	UploadID  string `json:"upload_id"`
	Parsed    int    `json:"parsed"`
	Matched   int    `json:"matched"`
	Rejected  int    `json:"rejected"`
	Unmatched int    `json:"unmatched"`
}

type RawScanResponse struct {
	ID                string  `json:"id"`
	SourceUserID      string  `json:"source_user_id"`
	EmployeeCode      string  `json:"employee_code"`
	DisplayName       string  `json:"display_name"`
	EventTime         string  `json:"event_time"`
	TerminalLabel     *string `json:"terminal_label,omitempty"`
	MatchStatus       string  `json:"match_status"`
	MatchTier         string  `json:"match_tier"`
	MatchedEmployeeID *string `json:"matched_employee_id,omitempty"`
	Processed         bool    `json:"processed"`
}

type ListRawScansResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Scans      []RawScanResponse `json:"scans"`
}
