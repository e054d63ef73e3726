package postgresql

import (
	"context"
	"fmt"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/identity"
	"github.com/R3cxcx/tetsos-sub000/internal/pkg/database"
)

type mappingRepository struct {
	db *database.DB
}

// GetBySourceUserIDs implements identity.MappingRepository.
func (m *mappingRepository) GetBySourceUserIDs(ctx context.Context, sourceUserIDs []string) ([]identity.Mapping, error) {
	if len(sourceUserIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, m.db)

	query := `
		SELECT source_user_id, employee_code, created_at
		FROM identity_mappings
		WHERE source_user_id = ANY($1)
	`

	rows, err := q.Query(ctx, query, sourceUserIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get identity mappings: %w", err)
	}
	defer rows.Close()

	var mappings []identity.Mapping
	for rows.Next() {
		var mapping identity.Mapping
		if err := rows.Scan(&mapping.SourceUserID, &mapping.EmployeeCode, &mapping.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan identity mapping row: %w", err)
		}
		mappings = append(mappings, mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate identity mapping rows: %w", err)
	}

	return mappings, nil
}

// Save implements identity.MappingRepository. An already-mapped source
// user id is left untouched.
func (m *mappingRepository) Save(ctx context.Context, mapping identity.Mapping) error {
	q := GetQuerier(ctx, m.db)

	query := `
		INSERT INTO identity_mappings (source_user_id, employee_code)
		VALUES ($1, $2)
		ON CONFLICT (source_user_id) DO NOTHING
	`

	if _, err := q.Exec(ctx, query, mapping.SourceUserID, mapping.EmployeeCode); err != nil {
		return fmt.Errorf("failed to save identity mapping: %w", err)
	}

	return nil
}

func NewMappingRepository(db *database.DB) identity.MappingRepository {
	return &mappingRepository{db: db}
}
