package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/identity"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
	"github.com/R3cxcx/tetsos-sub000/internal/pkg/timeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanRepo struct {
	appended []rawscan.RawScan
	scans    []rawscan.RawScan
	cleared  int64
}

func (f *fakeScanRepo) Append(_ context.Context, scans []rawscan.RawScan) ([]rawscan.RawScan, error) {
	f.appended = append(f.appended, scans...)
	f.scans = append(f.scans, scans...)
	return scans, nil
}

func (f *fakeScanRepo) List(_ context.Context, filter rawscan.Filter) ([]rawscan.RawScan, int64, error) {
	var out []rawscan.RawScan
	for _, s := range f.scans {
		if filter.MatchStatus != nil && s.MatchStatus != *filter.MatchStatus {
			continue
		}
		if filter.Processed != nil && s.Processed != *filter.Processed {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeScanRepo) GetByID(_ context.Context, id string) (rawscan.RawScan, error) {
	for _, s := range f.scans {
		if s.ID == id {
			return s, nil
		}
	}
	return rawscan.RawScan{}, rawscan.ErrScanNotFound
}

func (f *fakeScanRepo) MarkProcessed(_ context.Context, ids []string) error { return nil }

func (f *fakeScanRepo) SetMatched(_ context.Context, id string, employeeID string, tier rawscan.MatchTier) error {
	return nil
}

func (f *fakeScanRepo) ClearAll(_ context.Context) (int64, error) {
	f.cleared = int64(len(f.scans))
	f.scans = nil
	return f.cleared, nil
}

type fakeResolver struct {
	resolutions map[string]identity.Resolution
	candidates  []identity.Candidate
}

func (f *fakeResolver) Resolve(_ context.Context, candidates []identity.Candidate) (map[string]identity.Resolution, error) {
	f.candidates = candidates
	out := make(map[string]identity.Resolution, len(candidates))
	for _, c := range candidates {
		out[c.EmployeeCode] = f.resolutions[c.EmployeeCode]
	}
	return out, nil
}

func (f *fakeResolver) RegisterEmployee(_ context.Context, scanID string, fullName string) (rawscan.RawScan, error) {
	return rawscan.RawScan{}, nil
}

func TestIngestFile_ResolvesAndAppendsScans(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"E001 John Doe 05-01-2024 08:30:00 Main Gate",
		"E002 Jane Roe 05-01-2024 08:32:00 Main Gate",
		"X999 Ghost Person 05-01-2024 08:40:00",
	}, "\n")
	repo := &fakeScanRepo{}
	resolver := &fakeResolver{resolutions: map[string]identity.Resolution{
		"E001": {EmployeeID: "emp-1", Tier: rawscan.MatchTierExact},
		"E002": {EmployeeID: "emp-2", Tier: rawscan.MatchTierNormalized},
		"X999": {Tier: rawscan.MatchTierNone},
	}}
	svc := NewIngestService(repo, resolver)

	result, err := svc.IngestFile(context.Background(), "export.txt", strings.NewReader(content))

	require.NoError(t, err)
	assert.NotEmpty(t, result.UploadID)
	assert.Equal(t, 3, result.Parsed)
	assert.Equal(t, 2, result.Matched)
	assert.Equal(t, 1, result.Rejected)
	require.Len(t, repo.appended, 3)

	first := repo.appended[0]
	assert.Equal(t, "E001", first.EmployeeCode)
	assert.Equal(t, rawscan.MatchStatusMatched, first.MatchStatus)
	assert.Equal(t, rawscan.MatchTierExact, first.MatchTier)
	require.NotNil(t, first.MatchedEmployeeID)
	assert.Equal(t, "emp-1", *first.MatchedEmployeeID)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), first.EventTime)
	require.NotNil(t, first.TerminalLabel)
	assert.Equal(t, "Main Gate", *first.TerminalLabel)

	ghost := repo.appended[2]
	assert.Equal(t, rawscan.MatchStatusRejected, ghost.MatchStatus)
	assert.Equal(t, rawscan.MatchTierNone, ghost.MatchTier)
	assert.Nil(t, ghost.MatchedEmployeeID)
	assert.Nil(t, ghost.TerminalLabel)
}

func TestIngestFile_SkippedResolutionsLandUnmatched(t *testing.T) {
	t.Parallel()

	repo := &fakeScanRepo{}
	resolver := &fakeResolver{resolutions: map[string]identity.Resolution{
		"E001": {Tier: rawscan.MatchTierNone, Skipped: true},
	}}
	svc := NewIngestService(repo, resolver)

	result, err := svc.IngestFile(context.Background(), "export.txt",
		strings.NewReader("E001 John Doe 05-01-2024 08:30:00"))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Parsed)
	assert.Equal(t, 1, result.Unmatched)
	require.Len(t, repo.appended, 1)
	assert.Equal(t, rawscan.MatchStatusUnmatched, repo.appended[0].MatchStatus)
}

func TestIngestFile_EmptyFileReturnsErrNoRows(t *testing.T) {
	t.Parallel()

	svc := NewIngestService(&fakeScanRepo{}, &fakeResolver{})

	_, err := svc.IngestFile(context.Background(), "export.txt", strings.NewReader("garbage\nmore garbage"))

	assert.ErrorIs(t, err, timeclock.ErrNoRows)
}

func TestListScans_PaginationDefaults(t *testing.T) {
	t.Parallel()

	repo := &fakeScanRepo{scans: []rawscan.RawScan{
		{ID: "s1", EmployeeCode: "E001", EventTime: time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), MatchStatus: rawscan.MatchStatusMatched, MatchTier: rawscan.MatchTierExact},
	}}
	svc := NewIngestService(repo, &fakeResolver{})

	resp, err := svc.ListScans(context.Background(), rawscan.Filter{})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 50, resp.Limit)
	assert.Equal(t, int64(1), resp.TotalCount)
	require.Len(t, resp.Scans, 1)
	assert.Equal(t, "2024-01-05 08:30:00", resp.Scans[0].EventTime)
}

func TestListScans_RejectsUnknownStatusFilter(t *testing.T) {
	t.Parallel()

	svc := NewIngestService(&fakeScanRepo{}, &fakeResolver{})
	bad := rawscan.MatchStatus("bogus")

	_, err := svc.ListScans(context.Background(), rawscan.Filter{MatchStatus: &bad})

	assert.Error(t, err)
}

func TestClearScans_ReportsDeletedCount(t *testing.T) {
	t.Parallel()

	repo := &fakeScanRepo{scans: []rawscan.RawScan{{ID: "s1"}, {ID: "s2"}}}
	svc := NewIngestService(repo, &fakeResolver{})

	deleted, err := svc.ClearScans(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
