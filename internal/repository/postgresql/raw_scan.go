package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
	"github.com/R3cxcx/tetsos-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type rawScanRepository struct {
	db *database.DB
}

const rawScanColumns = `id, source_user_id, employee_code, display_name, event_time,
	terminal_label, match_status, match_tier, matched_employee_id, processed, created_at`

// Append implements rawscan.RawScanRepository. Rows are inserted in the
// given order so the stored log mirrors the file.
func (r *rawScanRepository) Append(ctx context.Context, scans []rawscan.RawScan) ([]rawscan.RawScan, error) {
	if len(scans) == 0 {
		return nil, rawscan.ErrNothingToAppend
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO raw_scans (
			source_user_id, employee_code, display_name, event_time,
			terminal_label, match_status, match_tier, matched_employee_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, processed, created_at
	`

	out := make([]rawscan.RawScan, 0, len(scans))
	for _, scan := range scans {
		if !scan.Valid() {
			return nil, fmt.Errorf("%w: code=%q", rawscan.ErrInvalidScan, scan.EmployeeCode)
		}
		err := q.QueryRow(ctx, query,
			scan.SourceUserID,
			scan.EmployeeCode,
			scan.DisplayName,
			scan.EventTime,
			scan.TerminalLabel,
			scan.MatchStatus,
			scan.MatchTier,
			scan.MatchedEmployeeID,
		).Scan(&scan.ID, &scan.Processed, &scan.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to append raw scan: %w", err)
		}
		out = append(out, scan)
	}

	return out, nil
}

// List implements rawscan.RawScanRepository.
func (r *rawScanRepository) List(ctx context.Context, filter rawscan.Filter) ([]rawscan.RawScan, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.Processed != nil {
		baseWhere += fmt.Sprintf(" AND processed = $%d", argIdx)
		args = append(args, *filter.Processed)
		argIdx++
	}
	if filter.MatchStatus != nil {
		baseWhere += fmt.Sprintf(" AND match_status = $%d", argIdx)
		args = append(args, *filter.MatchStatus)
		argIdx++
	}
	if filter.StartTime != nil {
		baseWhere += fmt.Sprintf(" AND event_time >= $%d", argIdx)
		args = append(args, *filter.StartTime)
		argIdx++
	}
	if filter.EndTime != nil {
		baseWhere += fmt.Sprintf(" AND event_time <= $%d", argIdx)
		args = append(args, *filter.EndTime)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM raw_scans WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count raw scans: %w", err)
	}

	query := "SELECT " + rawScanColumns + " FROM raw_scans WHERE " + baseWhere +
		" ORDER BY event_time, id"
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list raw scans: %w", err)
	}
	defer rows.Close()

	var scans []rawscan.RawScan
	for rows.Next() {
		var scan rawscan.RawScan
		if err := rows.Scan(
			&scan.ID, &scan.SourceUserID, &scan.EmployeeCode, &scan.DisplayName, &scan.EventTime,
			&scan.TerminalLabel, &scan.MatchStatus, &scan.MatchTier, &scan.MatchedEmployeeID,
			&scan.Processed, &scan.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan raw scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate raw scan rows: %w", err)
	}

	return scans, total, nil
}

// GetByID implements rawscan.RawScanRepository.
func (r *rawScanRepository) GetByID(ctx context.Context, id string) (rawscan.RawScan, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + rawScanColumns + " FROM raw_scans WHERE id = $1"

	var scan rawscan.RawScan
	err := q.QueryRow(ctx, query, id).Scan(
		&scan.ID, &scan.SourceUserID, &scan.EmployeeCode, &scan.DisplayName, &scan.EventTime,
		&scan.TerminalLabel, &scan.MatchStatus, &scan.MatchTier, &scan.MatchedEmployeeID,
		&scan.Processed, &scan.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rawscan.RawScan{}, rawscan.ErrScanNotFound
		}
		return rawscan.RawScan{}, fmt.Errorf("failed to get raw scan by ID: %w", err)
	}

	return scan, nil
}

// MarkProcessed implements rawscan.RawScanRepository.
func (r *rawScanRepository) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE raw_scans
		SET processed = TRUE
		WHERE id = ANY($1)
	`

	if _, err := q.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to mark raw scans processed: %w", err)
	}

	return nil
}

// SetMatched implements rawscan.RawScanRepository.
func (r *rawScanRepository) SetMatched(ctx context.Context, id string, employeeID string, tier rawscan.MatchTier) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE raw_scans
		SET match_status = $2, match_tier = $3, matched_employee_id = $4
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, rawscan.MatchStatusMatched, tier, employeeID)
	if err != nil {
		return fmt.Errorf("failed to set raw scan matched: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rawscan.ErrScanNotFound
	}

	return nil
}

// ClearAll implements rawscan.RawScanRepository.
func (r *rawScanRepository) ClearAll(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM raw_scans")
	if err != nil {
		return 0, fmt.Errorf("failed to clear raw scans: %w", err)
	}

	return tag.RowsAffected(), nil
}

func NewRawScanRepository(db *database.DB) rawscan.RawScanRepository {
	return &rawScanRepository{db: db}
}
