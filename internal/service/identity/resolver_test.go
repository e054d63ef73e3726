package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/config"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/employee"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/identity"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== FAKES =====

type fakeEmployeeRepo struct {
	employees []employee.Employee
	// failCodes makes GetByCodes fail when the batch contains any of
	// these codes.
	failCodes map[string]bool
	bulkErr   error
	created   []employee.Employee
}

func (f *fakeEmployeeRepo) GetByCodes(_ context.Context, codes []string) ([]employee.Employee, error) {
	for _, code := range codes {
		if f.failCodes[code] {
			return nil, errors.New("directory batch failure")
		}
	}
	var out []employee.Employee
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	for _, emp := range f.employees {
		if want[emp.EmployeeCode] && emp.IsActive() {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) GetByNormalizedCodes(_ context.Context, codes []string) ([]employee.Employee, error) {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []employee.Employee
	for _, emp := range f.employees {
		if want[normalizeCode(emp.EmployeeCode)] && emp.IsActive() {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) GetAllActive(_ context.Context) ([]employee.Employee, error) {
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.IsActive() {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	for _, emp := range f.employees {
		if emp.ID == id {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) Create(_ context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	newEmployee.ID = fmt.Sprintf("emp-%d", len(f.employees)+1)
	f.employees = append(f.employees, newEmployee)
	f.created = append(f.created, newEmployee)
	return newEmployee, nil
}

type fakeMappingRepo struct {
	mappings map[string]identity.Mapping
}

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{mappings: make(map[string]identity.Mapping)}
}

func (f *fakeMappingRepo) GetBySourceUserIDs(_ context.Context, sourceUserIDs []string) ([]identity.Mapping, error) {
	var out []identity.Mapping
	for _, id := range sourceUserIDs {
		if m, ok := f.mappings[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMappingRepo) Save(_ context.Context, mapping identity.Mapping) error {
	if _, ok := f.mappings[mapping.SourceUserID]; !ok {
		f.mappings[mapping.SourceUserID] = mapping
	}
	return nil
}

type fakeScanRepo struct {
	scans map[string]rawscan.RawScan
}

func newFakeScanRepo() *fakeScanRepo {
	return &fakeScanRepo{scans: make(map[string]rawscan.RawScan)}
}

func (f *fakeScanRepo) Append(_ context.Context, scans []rawscan.RawScan) ([]rawscan.RawScan, error) {
	for i, s := range scans {
		if s.ID == "" {
			s.ID = fmt.Sprintf("scan-%d", len(f.scans)+1)
			scans[i] = s
		}
		f.scans[s.ID] = s
	}
	return scans, nil
}

func (f *fakeScanRepo) List(_ context.Context, _ rawscan.Filter) ([]rawscan.RawScan, int64, error) {
	return nil, 0, nil
}

func (f *fakeScanRepo) GetByID(_ context.Context, id string) (rawscan.RawScan, error) {
	s, ok := f.scans[id]
	if !ok {
		return rawscan.RawScan{}, rawscan.ErrScanNotFound
	}
	return s, nil
}

func (f *fakeScanRepo) MarkProcessed(_ context.Context, ids []string) error {
	for _, id := range ids {
		s := f.scans[id]
		s.Processed = true
		f.scans[id] = s
	}
	return nil
}

func (f *fakeScanRepo) SetMatched(_ context.Context, id string, employeeID string, tier rawscan.MatchTier) error {
	s, ok := f.scans[id]
	if !ok {
		return rawscan.ErrScanNotFound
	}
	s.MatchStatus = rawscan.MatchStatusMatched
	s.MatchTier = tier
	s.MatchedEmployeeID = &employeeID
	f.scans[id] = s
	return nil
}

func (f *fakeScanRepo) ClearAll(_ context.Context) (int64, error) {
	n := int64(len(f.scans))
	f.scans = make(map[string]rawscan.RawScan)
	return n, nil
}

func testIdentityConfig() config.IdentityConfig {
	return config.IdentityConfig{
		BatchSize:       100,
		FallbackTimeout: time.Second,
		FuzzyThreshold:  0.85,
	}
}

// ===== RESOLVER TESTS =====

func TestResolver_ExactTierWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empRepo := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "e-1", EmployeeCode: "E001", FullName: "John Doe", EmploymentStatus: employee.EmploymentStatusActive},
		{ID: "e-2", EmployeeCode: "E002", FullName: "Jon Doe", EmploymentStatus: employee.EmploymentStatusActive},
	}}
	resolver := NewResolver(empRepo, newFakeMappingRepo(), newFakeScanRepo(), testIdentityConfig())

	// The display name is closer to E002's record, but the code matches
	// E001 exactly; fuzzy must never be consulted.
	results, err := resolver.Resolve(ctx, []identity.Candidate{
		{EmployeeCode: "E001", SourceUserID: "7", DisplayName: "Jon Doe"},
	})
	require.NoError(t, err)

	res := results["E001"]
	assert.Equal(t, rawscan.MatchTierExact, res.Tier)
	assert.Equal(t, "e-1", res.EmployeeID)
}

func TestResolver_NormalizedTier(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empRepo := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "e-1", EmployeeCode: "E001", FullName: "John Doe", EmploymentStatus: employee.EmploymentStatusActive},
	}}
	mappingRepo := newFakeMappingRepo()
	resolver := NewResolver(empRepo, mappingRepo, newFakeScanRepo(), testIdentityConfig())

	results, err := resolver.Resolve(ctx, []identity.Candidate{
		{EmployeeCode: " e001 ", SourceUserID: "7", DisplayName: "John Doe"},
	})
	require.NoError(t, err)

	res := results[" e001 "]
	assert.Equal(t, rawscan.MatchTierNormalized, res.Tier)
	assert.Equal(t, "e-1", res.EmployeeID)

	// A successful normalized match is promoted into the mapping store.
	assert.Contains(t, mappingRepo.mappings, "7")
	assert.Equal(t, "E001", mappingRepo.mappings["7"].EmployeeCode)
}

func TestResolver_MappingShortcut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empRepo := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "e-1", EmployeeCode: "E001", FullName: "John Doe", EmploymentStatus: employee.EmploymentStatusActive},
	}}
	mappingRepo := newFakeMappingRepo()
	mappingRepo.mappings["dev-42"] = identity.Mapping{SourceUserID: "dev-42", EmployeeCode: "E001"}
	resolver := NewResolver(empRepo, mappingRepo, newFakeScanRepo(), testIdentityConfig())

	// The printed code resolves nowhere, but the device id is mapped.
	results, err := resolver.Resolve(ctx, []identity.Candidate{
		{EmployeeCode: "XX99", SourceUserID: "dev-42", DisplayName: "Someone Else Entirely"},
	})
	require.NoError(t, err)

	res := results["XX99"]
	assert.Equal(t, rawscan.MatchTierNormalized, res.Tier)
	assert.Equal(t, "e-1", res.EmployeeID)
}

func TestResolver_FuzzyTierOnlyAfterOthersFail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empRepo := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "e-1", EmployeeCode: "E001", FullName: "Jonathan Smithson", EmploymentStatus: employee.EmploymentStatusActive},
		{ID: "e-2", EmployeeCode: "E002", FullName: "Maria Gonzalez", EmploymentStatus: employee.EmploymentStatusActive},
	}}
	mappingRepo := newFakeMappingRepo()
	resolver := NewResolver(empRepo, mappingRepo, newFakeScanRepo(), testIdentityConfig())

	results, err := resolver.Resolve(ctx, []identity.Candidate{
		{EmployeeCode: "UNKNOWN1", SourceUserID: "9", DisplayName: "Jonathan Smithsen"},
		{EmployeeCode: "UNKNOWN2", SourceUserID: "10", DisplayName: "Zzz Qqq"},
	})
	require.NoError(t, err)

	assert.Equal(t, rawscan.MatchTierFuzzy, results["UNKNOWN1"].Tier)
	assert.Equal(t, "e-1", results["UNKNOWN1"].EmployeeID)
	assert.Contains(t, mappingRepo.mappings, "9")

	assert.Equal(t, rawscan.MatchTierNone, results["UNKNOWN2"].Tier)
	assert.Empty(t, results["UNKNOWN2"].EmployeeID)
}

func TestResolver_PartialBatchResilience(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// 250 codes in batches of 100: the middle batch fails, its bulk
	// fallback fails too, and the run must still complete.
	var employees []employee.Employee
	var candidates []identity.Candidate
	for i := 0; i < 250; i++ {
		code := fmt.Sprintf("E%03d", i)
		employees = append(employees, employee.Employee{
			ID:               fmt.Sprintf("e-%d", i),
			EmployeeCode:     code,
			FullName:         fmt.Sprintf("Employee %d", i),
			EmploymentStatus: employee.EmploymentStatusActive,
		})
		candidates = append(candidates, identity.Candidate{
			EmployeeCode: code,
			SourceUserID: fmt.Sprintf("%d", i),
			DisplayName:  fmt.Sprintf("Employee %d", i),
		})
	}
	empRepo := &fakeEmployeeRepo{
		employees: employees,
		failCodes: map[string]bool{"E150": true}, // second batch holds E100..E199
		bulkErr:   errors.New("directory timeout"),
	}
	resolver := NewResolver(empRepo, newFakeMappingRepo(), newFakeScanRepo(), testIdentityConfig())

	results, err := resolver.Resolve(ctx, candidates)
	require.NoError(t, err)
	require.Len(t, results, 250)

	for i := 0; i < 250; i++ {
		code := fmt.Sprintf("E%03d", i)
		if i >= 100 && i < 200 {
			assert.Equal(t, rawscan.MatchTierNone, results[code].Tier, "code %s should be unmatched", code)
			assert.True(t, results[code].Skipped, "code %s should be marked skipped", code)
		} else {
			assert.Equal(t, rawscan.MatchTierExact, results[code].Tier, "code %s should be matched", code)
		}
	}
}

func TestResolver_EveryCodeGetsExactlyOneOutcome(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empRepo := &fakeEmployeeRepo{}
	resolver := NewResolver(empRepo, newFakeMappingRepo(), newFakeScanRepo(), testIdentityConfig())

	results, err := resolver.Resolve(ctx, []identity.Candidate{
		{EmployeeCode: "A1", DisplayName: "A"},
		{EmployeeCode: "A1", DisplayName: "A duplicate"},
		{EmployeeCode: "B2", DisplayName: "B"},
	})
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Equal(t, rawscan.MatchTierNone, results["A1"].Tier)
	assert.Equal(t, rawscan.MatchTierNone, results["B2"].Tier)
}

func TestResolver_RegisterEmployee(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empRepo := &fakeEmployeeRepo{}
	mappingRepo := newFakeMappingRepo()
	scanRepo := newFakeScanRepo()
	scanRepo.scans["scan-1"] = rawscan.RawScan{
		ID:           "scan-1",
		SourceUserID: "77",
		EmployeeCode: "NEW01",
		DisplayName:  "Freshly Hired",
		EventTime:    time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC),
		MatchStatus:  rawscan.MatchStatusRejected,
		MatchTier:    rawscan.MatchTierNone,
	}
	resolver := NewResolver(empRepo, mappingRepo, scanRepo, testIdentityConfig())

	updated, err := resolver.RegisterEmployee(ctx, "scan-1", "")
	require.NoError(t, err)

	assert.Equal(t, rawscan.MatchStatusMatched, updated.MatchStatus)
	require.NotNil(t, updated.MatchedEmployeeID)
	require.Len(t, empRepo.created, 1)
	assert.Equal(t, "NEW01", empRepo.created[0].EmployeeCode)
	assert.Equal(t, "Freshly Hired", empRepo.created[0].FullName)
	assert.Contains(t, mappingRepo.mappings, "77")
}

func TestResolver_RegisterEmployee_AlreadyMatched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	scanRepo := newFakeScanRepo()
	employeeID := "e-1"
	scanRepo.scans["scan-1"] = rawscan.RawScan{
		ID:                "scan-1",
		EmployeeCode:      "E001",
		MatchStatus:       rawscan.MatchStatusMatched,
		MatchedEmployeeID: &employeeID,
	}
	resolver := NewResolver(&fakeEmployeeRepo{}, newFakeMappingRepo(), scanRepo, testIdentityConfig())

	_, err := resolver.RegisterEmployee(ctx, "scan-1", "")
	assert.ErrorIs(t, err, identity.ErrScanAlreadyMatched)
}
