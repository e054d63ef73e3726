package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/R3cxcx/tetsos-sub000/internal/config"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/employee"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/identity"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
	"github.com/agnivade/levenshtein"
)

type ResolverImpl struct {
	employee.EmployeeRepository
	identity.MappingRepository
	rawscan.RawScanRepository
	cfg config.IdentityConfig
}

func NewResolver(
	employeeRepo employee.EmployeeRepository,
	mappingRepo identity.MappingRepository,
	rawScanRepo rawscan.RawScanRepository,
	cfg config.IdentityConfig,
) identity.Resolver {
	return &ResolverImpl{
		EmployeeRepository: employeeRepo,
		MappingRepository:  mappingRepo,
		RawScanRepository:  rawScanRepo,
		cfg:                cfg,
	}
}

// directoryCache holds the bulk active-employee fetch for the current
// run only. No state survives between runs; the persisted mapping store
// is the only cross-run shortcut.
type directoryCache struct {
	loaded    bool
	failed    bool
	byCode    map[string]employee.Employee
	employees []employee.Employee
}

func (r *ResolverImpl) loadDirectory(ctx context.Context, cache *directoryCache) bool {
	if cache.loaded {
		return true
	}
	if cache.failed {
		return false
	}
	fallbackCtx, cancel := context.WithTimeout(ctx, r.cfg.FallbackTimeout)
	defer cancel()

	all, err := r.EmployeeRepository.GetAllActive(fallbackCtx)
	if err != nil {
		slog.Warn("directory bulk fetch failed", "error", err)
		cache.failed = true
		return false
	}
	cache.loaded = true
	cache.byCode = make(map[string]employee.Employee, len(all))
	for _, emp := range all {
		cache.byCode[emp.EmployeeCode] = emp
	}
	cache.employees = all
	return true
}

// Resolve implements identity.Resolver.
func (r *ResolverImpl) Resolve(ctx context.Context, candidates []identity.Candidate) (map[string]identity.Resolution, error) {
	unique := dedupe(candidates)
	results := make(map[string]identity.Resolution, len(unique))
	cache := &directoryCache{}

	// Tier 1: exact code lookups in fixed-size batches. A failed batch
	// gets one bounded bulk-fetch fallback; when that also fails the
	// batch's codes terminate as rejected and the run moves on.
	var misses []identity.Candidate
	for start := 0; start < len(unique); start += r.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+r.cfg.BatchSize, len(unique))
		batch := unique[start:end]

		byCode, ok := r.exactBatch(ctx, batch, cache)
		if !ok {
			for _, c := range batch {
				results[c.EmployeeCode] = identity.Resolution{Tier: rawscan.MatchTierNone, Skipped: true}
			}
			continue
		}
		for _, c := range batch {
			if emp, found := byCode[c.EmployeeCode]; found {
				results[c.EmployeeCode] = identity.Resolution{EmployeeID: emp.ID, Tier: rawscan.MatchTierExact}
			} else {
				misses = append(misses, c)
			}
		}
	}

	// Tier 2: persisted mapping shortcut, then normalized code match.
	misses = r.resolveNormalized(ctx, misses, results)

	// Tier 3: fuzzy display-name similarity, only for codes both
	// earlier tiers failed to place.
	r.resolveFuzzy(ctx, misses, results, cache)

	for _, c := range unique {
		if _, ok := results[c.EmployeeCode]; !ok {
			results[c.EmployeeCode] = identity.Resolution{Tier: rawscan.MatchTierNone}
		}
	}
	return results, nil
}

func (r *ResolverImpl) exactBatch(ctx context.Context, batch []identity.Candidate, cache *directoryCache) (map[string]employee.Employee, bool) {
	codes := make([]string, 0, len(batch))
	for _, c := range batch {
		codes = append(codes, c.EmployeeCode)
	}

	if cache.loaded {
		return cache.byCode, true
	}

	employees, err := r.EmployeeRepository.GetByCodes(ctx, codes)
	if err != nil {
		slog.Warn("directory batch lookup failed, trying bulk fallback", "batch_size", len(codes), "error", err)
		if !r.loadDirectory(ctx, cache) {
			return nil, false
		}
		return cache.byCode, true
	}

	byCode := make(map[string]employee.Employee, len(employees))
	for _, emp := range employees {
		byCode[emp.EmployeeCode] = emp
	}
	return byCode, true
}

func (r *ResolverImpl) resolveNormalized(ctx context.Context, misses []identity.Candidate, results map[string]identity.Resolution) []identity.Candidate {
	if len(misses) == 0 {
		return nil
	}

	// Persisted device-id mappings first: they were promoted from
	// earlier operator or fuzzy decisions and shortcut the whole tier.
	mapped := r.resolveViaMappings(ctx, misses, results)

	var remaining []identity.Candidate
	var normalizedCodes []string
	for _, c := range misses {
		if mapped[c.EmployeeCode] {
			continue
		}
		remaining = append(remaining, c)
		normalizedCodes = append(normalizedCodes, normalizeCode(c.EmployeeCode))
	}
	if len(remaining) == 0 {
		return nil
	}

	employees, err := r.EmployeeRepository.GetByNormalizedCodes(ctx, normalizedCodes)
	if err != nil {
		slog.Warn("normalized code lookup failed", "error", err)
		return remaining
	}
	byNormalized := make(map[string]employee.Employee, len(employees))
	for _, emp := range employees {
		byNormalized[normalizeCode(emp.EmployeeCode)] = emp
	}

	var stillMissing []identity.Candidate
	for _, c := range remaining {
		emp, found := byNormalized[normalizeCode(c.EmployeeCode)]
		if !found {
			stillMissing = append(stillMissing, c)
			continue
		}
		results[c.EmployeeCode] = identity.Resolution{EmployeeID: emp.ID, Tier: rawscan.MatchTierNormalized}
		r.promote(ctx, c, emp)
	}
	return stillMissing
}

func (r *ResolverImpl) resolveViaMappings(ctx context.Context, misses []identity.Candidate, results map[string]identity.Resolution) map[string]bool {
	mapped := make(map[string]bool)

	sourceIDs := make([]string, 0, len(misses))
	for _, c := range misses {
		if c.SourceUserID != "" {
			sourceIDs = append(sourceIDs, c.SourceUserID)
		}
	}
	if len(sourceIDs) == 0 {
		return mapped
	}

	mappings, err := r.MappingRepository.GetBySourceUserIDs(ctx, sourceIDs)
	if err != nil {
		slog.Warn("identity mapping lookup failed", "error", err)
		return mapped
	}
	if len(mappings) == 0 {
		return mapped
	}

	codeBySource := make(map[string]string, len(mappings))
	mappedCodes := make([]string, 0, len(mappings))
	for _, m := range mappings {
		codeBySource[m.SourceUserID] = m.EmployeeCode
		mappedCodes = append(mappedCodes, m.EmployeeCode)
	}

	employees, err := r.EmployeeRepository.GetByCodes(ctx, mappedCodes)
	if err != nil {
		slog.Warn("mapped code lookup failed", "error", err)
		return mapped
	}
	byCode := make(map[string]employee.Employee, len(employees))
	for _, emp := range employees {
		byCode[emp.EmployeeCode] = emp
	}

	for _, c := range misses {
		mappedCode, ok := codeBySource[c.SourceUserID]
		if !ok {
			continue
		}
		if emp, found := byCode[mappedCode]; found {
			results[c.EmployeeCode] = identity.Resolution{EmployeeID: emp.ID, Tier: rawscan.MatchTierNormalized}
			mapped[c.EmployeeCode] = true
		}
	}
	return mapped
}

func (r *ResolverImpl) resolveFuzzy(ctx context.Context, misses []identity.Candidate, results map[string]identity.Resolution, cache *directoryCache) {
	if len(misses) == 0 {
		return
	}
	if !r.loadDirectory(ctx, cache) {
		return
	}

	for _, c := range misses {
		if c.DisplayName == "" {
			continue
		}
		emp, score := bestNameMatch(c.DisplayName, cache.employees)
		if score < r.cfg.FuzzyThreshold {
			continue
		}
		results[c.EmployeeCode] = identity.Resolution{EmployeeID: emp.ID, Tier: rawscan.MatchTierFuzzy}
		r.promote(ctx, c, emp)
		slog.Info("fuzzy name match accepted",
			"display_name", c.DisplayName,
			"employee_code", emp.EmployeeCode,
			"score", fmt.Sprintf("%.2f", score))
	}
}

// promote persists the device-id shortcut so the next file with this
// source user id resolves without the fuzzy tiers.
func (r *ResolverImpl) promote(ctx context.Context, c identity.Candidate, emp employee.Employee) {
	if c.SourceUserID == "" {
		return
	}
	if err := r.MappingRepository.Save(ctx, identity.Mapping{
		SourceUserID: c.SourceUserID,
		EmployeeCode: emp.EmployeeCode,
	}); err != nil {
		slog.Warn("failed to promote identity mapping", "source_user_id", c.SourceUserID, "error", err)
	}
}

// RegisterEmployee implements identity.Resolver.
func (r *ResolverImpl) RegisterEmployee(ctx context.Context, scanID string, fullName string) (rawscan.RawScan, error) {
	scan, err := r.RawScanRepository.GetByID(ctx, scanID)
	if err != nil {
		return rawscan.RawScan{}, fmt.Errorf("failed to load raw scan: %w", err)
	}
	if scan.MatchStatus == rawscan.MatchStatusMatched {
		return rawscan.RawScan{}, identity.ErrScanAlreadyMatched
	}

	name := fullName
	if name == "" {
		name = scan.DisplayName
	}

	emp, err := r.EmployeeRepository.Create(ctx, employee.Employee{
		EmployeeCode:     scan.EmployeeCode,
		FullName:         name,
		EmploymentStatus: employee.EmploymentStatusActive,
	})
	if err != nil {
		return rawscan.RawScan{}, fmt.Errorf("failed to register employee: %w", err)
	}

	if err := r.RawScanRepository.SetMatched(ctx, scan.ID, emp.ID, rawscan.MatchTierExact); err != nil {
		return rawscan.RawScan{}, fmt.Errorf("failed to update raw scan match: %w", err)
	}
	r.promote(ctx, identity.Candidate{SourceUserID: scan.SourceUserID}, emp)

	return r.RawScanRepository.GetByID(ctx, scan.ID)
}

// dedupe keeps the first candidate per employee code, preserving file
// order.
func dedupe(candidates []identity.Candidate) []identity.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]identity.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.EmployeeCode == "" || seen[c.EmployeeCode] {
			continue
		}
		seen[c.EmployeeCode] = true
		out = append(out, c)
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func bestNameMatch(displayName string, employees []employee.Employee) (employee.Employee, float64) {
	var best employee.Employee
	bestScore := 0.0
	needle := normalizeName(displayName)
	for _, emp := range employees {
		score := nameSimilarity(needle, normalizeName(emp.FullName))
		if score > bestScore {
			best, bestScore = emp, score
		}
	}
	return best, bestScore
}

// nameSimilarity maps Levenshtein distance onto [0, 1], where 1 is an
// identical string.
func nameSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longest := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > longest {
		longest = l
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
