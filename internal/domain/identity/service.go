package identity

import (
	"context"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
)

// Resolver maps candidate codes from one file to internal employees.
type Resolver interface {
	// Resolve runs the tier chain (exact, normalized, fuzzy) over the
	// file's unique candidates. Every candidate code appears in the
	// result; codes no tier could place carry MatchTierNone. Directory
	// lookups run in fixed-size batches and a failed batch never aborts
	// the run.
	Resolve(ctx context.Context, candidates []Candidate) (map[string]Resolution, error)

	// RegisterEmployee is the operator-invoked side effect: create a
	// directory entry from an unmatched scan and re-resolve that scan to
	// matched.
	RegisterEmployee(ctx context.Context, scanID string, fullName string) (rawscan.RawScan, error)
}
