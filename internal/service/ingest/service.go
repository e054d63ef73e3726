package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/identity"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
	"github.com/R3cxcx/tetsos-sub000/internal/pkg/timeclock"
	"github.com/google/uuid"
)

type IngestServiceImpl struct {
	rawscan.RawScanRepository
	resolver identity.Resolver
}

func NewIngestService(
	rawScanRepo rawscan.RawScanRepository,
	resolver identity.Resolver,
) rawscan.IngestService {
	return &IngestServiceImpl{
		RawScanRepository: rawScanRepo,
		resolver:          resolver,
	}
}

// IngestFile implements rawscan.IngestService.
func (s *IngestServiceImpl) IngestFile(ctx context.Context, filename string, r io.Reader) (rawscan.UploadResult, error) {
	candidates, err := timeclock.Parse(filename, r)
	if err != nil {
		if errors.Is(err, timeclock.ErrNoRows) || errors.Is(err, timeclock.ErrUnreadable) {
			return rawscan.UploadResult{}, err
		}
		return rawscan.UploadResult{}, fmt.Errorf("failed to parse time-clock export: %w", err)
	}

	resolutionInput := make([]identity.Candidate, 0, len(candidates))
	for _, c := range candidates {
		resolutionInput = append(resolutionInput, identity.Candidate{
			EmployeeCode: c.EmployeeCode,
			SourceUserID: c.SourceUserID,
			DisplayName:  c.DisplayName,
		})
	}

	resolutions, err := s.resolver.Resolve(ctx, resolutionInput)
	if err != nil {
		return rawscan.UploadResult{}, fmt.Errorf("identity resolution failed: %w", err)
	}

	result := rawscan.UploadResult{
		UploadID: uuid.NewString(),
		Parsed:   len(candidates),
	}
	scans := make([]rawscan.RawScan, 0, len(candidates))
	for _, c := range candidates {
		scan := rawscan.RawScan{
			SourceUserID: c.SourceUserID,
			EmployeeCode: c.EmployeeCode,
			DisplayName:  c.DisplayName,
			EventTime:    c.EventTime,
		}
		if c.TerminalLabel != "" {
			label := c.TerminalLabel
			scan.TerminalLabel = &label
		}

		res := resolutions[c.EmployeeCode]
		switch {
		case res.Matched():
			employeeID := res.EmployeeID
			scan.MatchStatus = rawscan.MatchStatusMatched
			scan.MatchTier = res.Tier
			scan.MatchedEmployeeID = &employeeID
			result.Matched++
		case res.Skipped:
			scan.MatchStatus = rawscan.MatchStatusUnmatched
			scan.MatchTier = rawscan.MatchTierNone
			result.Unmatched++
		default:
			scan.MatchStatus = rawscan.MatchStatusRejected
			scan.MatchTier = rawscan.MatchTierNone
			result.Rejected++
		}
		scans = append(scans, scan)
	}

	if _, err := s.RawScanRepository.Append(ctx, scans); err != nil {
		return rawscan.UploadResult{}, fmt.Errorf("failed to append raw scans: %w", err)
	}

	slog.Info("time-clock file ingested",
		"upload_id", result.UploadID,
		"filename", filename,
		"parsed", result.Parsed,
		"matched", result.Matched,
		"rejected", result.Rejected,
		"unmatched", result.Unmatched,
	)
	return result, nil
}

// ListScans implements rawscan.IngestService.
func (s *IngestServiceImpl) ListScans(ctx context.Context, filter rawscan.Filter) (rawscan.ListRawScansResponse, error) {
	if err := filter.Validate(); err != nil {
		return rawscan.ListRawScansResponse{}, err
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.Page == 0 {
		filter.Page = 1
	}

	scans, total, err := s.RawScanRepository.List(ctx, filter)
	if err != nil {
		return rawscan.ListRawScansResponse{}, fmt.Errorf("failed to list raw scans: %w", err)
	}

	responses := make([]rawscan.RawScanResponse, 0, len(scans))
	for _, scan := range scans {
		responses = append(responses, rawscan.RawScanResponse{
			ID:                scan.ID,
			SourceUserID:      scan.SourceUserID,
			EmployeeCode:      scan.EmployeeCode,
			DisplayName:       scan.DisplayName,
			EventTime:         scan.EventTime.Format("2006-01-02 15:04:05"),
			TerminalLabel:     scan.TerminalLabel,
			MatchStatus:       string(scan.MatchStatus),
			MatchTier:         string(scan.MatchTier),
			MatchedEmployeeID: scan.MatchedEmployeeID,
			Processed:         scan.Processed,
		})
	}

	return rawscan.ListRawScansResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Scans:      responses,
	}, nil
}

// ClearScans implements rawscan.IngestService.
func (s *IngestServiceImpl) ClearScans(ctx context.Context) (int64, error) {
	deleted, err := s.RawScanRepository.ClearAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear raw scans: %w", err)
	}
	slog.Warn("all raw scans deleted", "count", deleted)
	return deleted, nil
}
