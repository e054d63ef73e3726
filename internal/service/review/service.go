package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/attendance"
)

type ReviewServiceImpl struct {
	reconciler attendance.ReconciliationService
}

func NewReviewService(reconciler attendance.ReconciliationService) attendance.ReviewService {
	return &ReviewServiceImpl{reconciler: reconciler}
}

// Preview implements attendance.ReviewService.
func (s *ReviewServiceImpl) Preview(ctx context.Context, dateFrom, dateTo time.Time) (attendance.ReviewResponse, error) {
	records, summary, err := s.reconciler.Reconcile(ctx, dateFrom, dateTo, false)
	if err != nil {
		return attendance.ReviewResponse{}, fmt.Errorf("reconciliation preview failed: %w", err)
	}

	resp := attendance.ReviewResponse{
		Valid:     []attendance.RecordResponse{},
		Anomalous: []attendance.RecordResponse{},
		Summary:   summary,
	}
	for _, rec := range records {
		mapped := attendance.MapRecordToResponse(rec)
		if rec.HasAnomaly() {
			resp.Anomalous = append(resp.Anomalous, mapped)
		} else {
			resp.Valid = append(resp.Valid, mapped)
		}
	}
	return resp, nil
}

// Confirm implements attendance.ReviewService. The commit re-runs the
// same computation over the range; records an operator deselected in the
// UI are still committed, matching the range-scoped contract.
func (s *ReviewServiceImpl) Confirm(ctx context.Context, dateFrom, dateTo time.Time) (attendance.Summary, error) {
	_, summary, err := s.reconciler.Reconcile(ctx, dateFrom, dateTo, true)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("reconciliation confirm failed: %w", err)
	}
	slog.Info("reconciliation confirmed",
		"date_from", dateFrom.Format("2006-01-02"),
		"date_to", dateTo.Format("2006-01-02"),
		"upserted", summary.Upserted,
	)
	return summary, nil
}
