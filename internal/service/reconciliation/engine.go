package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/config"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/attendance"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/employee"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
	"github.com/R3cxcx/tetsos-sub000/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type ReconciliationServiceImpl struct {
	tx database.TxRunner
	rawscan.RawScanRepository
	attendance.RecordRepository
	employee.EmployeeRepository
	cfg config.ReconciliationConfig
}

func NewReconciliationService(
	tx database.TxRunner,
	rawScanRepo rawscan.RawScanRepository,
	recordRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	cfg config.ReconciliationConfig,
) attendance.ReconciliationService {
	return &ReconciliationServiceImpl{
		tx:                 tx,
		RawScanRepository:  rawScanRepo,
		RecordRepository:   recordRepo,
		EmployeeRepository: employeeRepo,
		cfg:                cfg,
	}
}

type groupKey struct {
	employeeID string
	workDate   string // "2006-01-02"
}

// Reconcile implements attendance.ReconciliationService. The
// computation is identical for preview and commit; only the final
// persistence step differs, so the two can never diverge.
func (s *ReconciliationServiceImpl) Reconcile(ctx context.Context, dateFrom, dateTo time.Time, commit bool) ([]attendance.Record, attendance.Summary, error) {
	dateFrom = truncateToDay(dateFrom)
	dateTo = truncateToDay(dateTo)
	if dateTo.Before(dateFrom) {
		return nil, attendance.Summary{}, attendance.ErrInvalidRange
	}

	rangeStart := dateFrom
	rangeEnd := dateTo.AddDate(0, 0, 1).Add(-time.Second)
	scans, _, err := s.RawScanRepository.List(ctx, rawscan.Filter{
		StartTime: &rangeStart,
		EndTime:   &rangeEnd,
	})
	if err != nil {
		return nil, attendance.Summary{}, fmt.Errorf("failed to select raw scans: %w", err)
	}

	var summary attendance.Summary
	groups := make(map[groupKey][]rawscan.RawScan)
	var consumedIDs []string
	for _, scan := range scans {
		if scan.MatchStatus != rawscan.MatchStatusMatched {
			summary.SkippedUnmatched++
			continue
		}
		if scan.MatchedEmployeeID == nil || scan.EventTime.IsZero() {
			// Should not survive ingestion, but one bad row must not
			// sink the run.
			summary.SkippedInvalid++
			continue
		}
		key := groupKey{
			employeeID: *scan.MatchedEmployeeID,
			workDate:   scan.EventTime.Format("2006-01-02"),
		}
		groups[key] = append(groups[key], scan)
		consumedIDs = append(consumedIDs, scan.ID)
	}

	records := make([]attendance.Record, 0, len(groups))
	for key, group := range groups {
		records = append(records, s.buildRecord(key, group))
	}

	if s.cfg.MarkAbsentees {
		absentees, err := s.absenteeRecords(ctx, dateFrom, dateTo, groups)
		if err != nil {
			return nil, attendance.Summary{}, err
		}
		records = append(records, absentees...)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].EmployeeID != records[j].EmployeeID {
			return records[i].EmployeeID < records[j].EmployeeID
		}
		return records[i].WorkDate.Before(records[j].WorkDate)
	})

	summary.Upserted = len(records)
	summary.MarkedProcessed = len(consumedIDs)

	if !commit {
		return records, summary, nil
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for i, rec := range records {
			stored, err := s.RecordRepository.Upsert(txCtx, rec)
			if err != nil {
				return fmt.Errorf("failed to upsert attendance record: %w", err)
			}
			records[i] = stored
		}
		if len(consumedIDs) > 0 {
			if err := s.RawScanRepository.MarkProcessed(txCtx, consumedIDs); err != nil {
				return fmt.Errorf("failed to mark scans processed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, attendance.Summary{}, fmt.Errorf("%w: %v", attendance.ErrStoreUnavailable, err)
	}

	slog.Info("reconciliation committed",
		"date_from", dateFrom.Format("2006-01-02"),
		"date_to", dateTo.Format("2006-01-02"),
		"upserted", summary.Upserted,
		"marked_processed", summary.MarkedProcessed,
		"skipped_unmatched", summary.SkippedUnmatched,
	)
	return records, summary, nil
}

func (s *ReconciliationServiceImpl) buildRecord(key groupKey, group []rawscan.RawScan) attendance.Record {
	clockIn := group[0].EventTime
	clockOut := group[0].EventTime
	for _, scan := range group[1:] {
		if scan.EventTime.Before(clockIn) {
			clockIn = scan.EventTime
		}
		if scan.EventTime.After(clockOut) {
			clockOut = scan.EventTime
		}
	}

	workDate, _ := time.Parse("2006-01-02", key.workDate)
	rec := attendance.Record{
		EmployeeID: key.employeeID,
		WorkDate:   workDate,
		ClockIn:    &clockIn,
	}

	var totalHours *decimal.Decimal
	if len(group) > 1 {
		out := clockOut
		rec.ClockOut = &out
		hours := decimal.NewFromFloat(clockOut.Sub(clockIn).Hours()).Round(2)
		totalHours = &hours
		rec.TotalHours = totalHours
	}

	rec.Status = s.classify(clockIn, totalHours, workDate)
	rec.Notes = attendance.EncodeAnomalies(s.detectAnomalies(clockIn, rec.ClockOut, totalHours, workDate))
	return rec
}

func (s *ReconciliationServiceImpl) classify(clockIn time.Time, totalHours *decimal.Decimal, workDate time.Time) attendance.Status {
	lateCutoff := atClock(workDate, s.cfg.ShiftStart).
		Add(time.Duration(s.cfg.GracePeriodMinutes) * time.Minute)
	if clockIn.After(lateCutoff) {
		return attendance.StatusLate
	}
	if totalHours != nil && totalHours.LessThan(decimal.NewFromFloat(s.cfg.HalfDayBelowHours)) {
		return attendance.StatusHalfDay
	}
	return attendance.StatusPresent
}

func (s *ReconciliationServiceImpl) detectAnomalies(clockIn time.Time, clockOut *time.Time, totalHours *decimal.Decimal, workDate time.Time) []attendance.Anomaly {
	var anomalies []attendance.Anomaly
	if totalHours != nil {
		if totalHours.GreaterThan(decimal.NewFromFloat(s.cfg.MaxDailyHours)) {
			anomalies = append(anomalies, attendance.AnomalyExcessiveHours)
		}
		if totalHours.LessThan(decimal.NewFromFloat(s.cfg.MinDailyHours)) {
			anomalies = append(anomalies, attendance.AnomalyInsufficientHours)
		}
	}
	if clockIn.Before(atClock(workDate, s.cfg.EarliestArrival)) {
		anomalies = append(anomalies, attendance.AnomalyVeryEarlyArrival)
	}
	if clockOut != nil && clockOut.After(atClock(workDate, s.cfg.LatestDeparture)) {
		anomalies = append(anomalies, attendance.AnomalyVeryLateDeparture)
	}
	if clockIn.After(atClock(workDate, s.cfg.ExtremeLateCutoff)) {
		anomalies = append(anomalies, attendance.AnomalyExtremelyLate)
	}
	return anomalies
}

// absenteeRecords emits absent rows for active employees with no scans
// on a day in range. Gated by configuration; a directory failure here is
// terminal like any other store failure.
func (s *ReconciliationServiceImpl) absenteeRecords(ctx context.Context, dateFrom, dateTo time.Time, groups map[groupKey][]rawscan.RawScan) ([]attendance.Record, error) {
	active, err := s.EmployeeRepository.GetAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrStoreUnavailable, err)
	}
	var out []attendance.Record
	for day := dateFrom; !day.After(dateTo); day = day.AddDate(0, 0, 1) {
		dayStr := day.Format("2006-01-02")
		for _, emp := range active {
			if _, ok := groups[groupKey{employeeID: emp.ID, workDate: dayStr}]; ok {
				continue
			}
			out = append(out, attendance.Record{
				EmployeeID: emp.ID,
				WorkDate:   day,
				Status:     attendance.StatusAbsent,
			})
		}
	}
	return out, nil
}

// ListRecords implements attendance.ReconciliationService.
func (s *ReconciliationServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	records, total, err := s.RecordRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.MapRecordToResponse(rec))
	}
	return attendance.ListRecordsResponse{
		TotalCount: total,
		Records:    responses,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// atClock combines a work date with an "HH:MM" threshold from
// configuration.
func atClock(workDate time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		// Config validation rejects malformed thresholds at startup.
		return workDate
	}
	return time.Date(workDate.Year(), workDate.Month(), workDate.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
