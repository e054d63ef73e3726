package identity

import "context"

// MappingRepository persists device-id → employee-code mappings. The
// store is additive only; operator edits happen outside this engine.
type MappingRepository interface {
	// GetBySourceUserIDs returns the mappings whose source user id is in
	// the given set.
	GetBySourceUserIDs(ctx context.Context, sourceUserIDs []string) ([]Mapping, error)

	// Save records a mapping. A source user id that is already mapped
	// is left untouched.
	Save(ctx context.Context, mapping Mapping) error
}
