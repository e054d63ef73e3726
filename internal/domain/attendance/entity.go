package attendance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the authoritative daily attendance row produced by
// reconciliation, one per employee per work date. The reconciliation
// engine is its only writer; re-running a range replaces the row.
type Record struct {
	ID         string
	EmployeeID string
	WorkDate   time.Time // date component only
	ClockIn    *time.Time
	ClockOut   *time.Time
	TotalHours *decimal.Decimal
	Status     Status
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO
	EmployeeName *string
	EmployeeCode *string
}

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
)

// Anomaly labels attached during reconciliation. Several can co-occur on
// one record; they are encoded into Notes and never change the status.
type Anomaly string

const (
	AnomalyExcessiveHours    Anomaly = "excessive_hours"
	AnomalyInsufficientHours Anomaly = "insufficient_hours"
	AnomalyVeryEarlyArrival  Anomaly = "very_early_arrival"
	AnomalyVeryLateDeparture Anomaly = "very_late_departure"
	AnomalyExtremelyLate     Anomaly = "extremely_late"
)

const anomalySeparator = ";"

// EncodeAnomalies renders anomaly labels into the free-text notes form.
func EncodeAnomalies(anomalies []Anomaly) *string {
	if len(anomalies) == 0 {
		return nil
	}
	parts := make([]string, 0, len(anomalies))
	for _, a := range anomalies {
		parts = append(parts, string(a))
	}
	s := strings.Join(parts, anomalySeparator)
	return &s
}

// DecodeAnomalies is the inverse of EncodeAnomalies, tolerant of free
// text that is not an anomaly marker.
func DecodeAnomalies(notes *string) []Anomaly {
	if notes == nil || *notes == "" {
		return nil
	}
	known := map[string]Anomaly{
		string(AnomalyExcessiveHours):    AnomalyExcessiveHours,
		string(AnomalyInsufficientHours): AnomalyInsufficientHours,
		string(AnomalyVeryEarlyArrival):  AnomalyVeryEarlyArrival,
		string(AnomalyVeryLateDeparture): AnomalyVeryLateDeparture,
		string(AnomalyExtremelyLate):     AnomalyExtremelyLate,
	}
	var out []Anomaly
	for _, part := range strings.Split(*notes, anomalySeparator) {
		if a, ok := known[strings.TrimSpace(part)]; ok {
			out = append(out, a)
		}
	}
	return out
}

// HasAnomaly reports whether the record carries any anomaly marker.
func (r Record) HasAnomaly() bool {
	return len(DecodeAnomalies(r.Notes)) > 0
}
