package identity

import (
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
)

// Mapping is a persisted device-identifier shortcut: once a source user
// id has been resolved (explicitly by an operator, or promoted from a
// normalized/fuzzy match), later files with the same id resolve without
// touching the fuzzy tiers again.
type Mapping struct {
	SourceUserID string
	EmployeeCode string
	CreatedAt    time.Time
}

// Candidate is one distinct employee code extracted from a parsed file,
// with the display name the device printed for it. Names feed the fuzzy
// tier only.
type Candidate struct {
	EmployeeCode string
	SourceUserID string
	DisplayName  string
}

// Resolution is the outcome for one candidate code. EmployeeID is set
// iff Tier is not MatchTierNone. Skipped marks codes whose directory
// batch failed: the tiers never ran for them, so they land in the
// unmatched state rather than the terminal rejected one.
type Resolution struct {
	EmployeeID string
	Tier       rawscan.MatchTier
	Skipped    bool
}

func (r Resolution) Matched() bool {
	return r.Tier != rawscan.MatchTierNone && r.EmployeeID != ""
}
