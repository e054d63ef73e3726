package rawscan

import "time"

// RawScan is one parsed punch event from a time-clock export, persisted
// together with its identity-resolution outcome. Match status is decided
// once at ingestion; the processed flag is the only later mutation.
type RawScan struct {
	ID                string
	SourceUserID      string
	EmployeeCode      string
	DisplayName       string
	EventTime         time.Time
	TerminalLabel     *string
	MatchStatus       MatchStatus
	MatchTier         MatchTier
	MatchedEmployeeID *string
	Processed         bool
	CreatedAt         time.Time
}

type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusRejected  MatchStatus = "rejected"
	MatchStatusUnmatched MatchStatus = "unmatched"
)

// MatchTier records which resolution strategy produced the outcome.
type MatchTier string

const (
	MatchTierExact      MatchTier = "exact"
	MatchTierNormalized MatchTier = "normalized"
	MatchTierFuzzy      MatchTier = "fuzzy"
	MatchTierNone       MatchTier = "none"
)

// Valid reports whether the scan satisfies the persistence invariants:
// non-empty code and event time, and a matched employee reference present
// exactly when the status is matched.
func (s RawScan) Valid() bool {
	if s.EmployeeCode == "" || s.EventTime.IsZero() {
		return false
	}
	hasRef := s.MatchedEmployeeID != nil && *s.MatchedEmployeeID != ""
	return hasRef == (s.MatchStatus == MatchStatusMatched)
}
