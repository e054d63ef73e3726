package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/identity"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
	"github.com/R3cxcx/tetsos-sub000/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type RawScanHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Clear(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
}

type rawScanHandlerImpl struct {
	ingestService rawscan.IngestService
	resolver      identity.Resolver
}

func NewRawScanHandler(ingestService rawscan.IngestService, resolver identity.Resolver) RawScanHandler {
	return &rawScanHandlerImpl{
		ingestService: ingestService,
		resolver:      resolver,
	}
}

// Upload implements RawScanHandler.
func (h *rawScanHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 20MB)
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Field 'file' is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	result, err := h.ingestService.IngestFile(r.Context(), fileHeader.Filename, file)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Time-clock export ingested", result)
}

// List implements RawScanHandler.
func (h *rawScanHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseScanFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.ingestService.ListScans(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Scans, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

// Clear implements RawScanHandler.
func (h *rawScanHandlerImpl) Clear(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.ingestService.ClearScans(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All raw scans deleted", map[string]int64{"deleted": deleted})
}

type registerRequest struct {
	FullName string `json:"full_name"`
}

// Register implements RawScanHandler.
func (h *rawScanHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "id")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.FullName == "" {
		response.BadRequest(w, "Field 'full_name' is required", nil)
		return
	}

	scan, err := h.resolver.RegisterEmployee(r.Context(), scanID, req.FullName)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Employee registered from scan", rawscan.RawScanResponse{
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

func parseScanFilter(r *http.Request) (rawscan.Filter, error) {
	var filter rawscan.Filter
	q := r.URL.Query()

	if v := q.Get("processed"); v != "" {
		processed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errInvalidQueryParam("processed")
		}
		filter.Processed = &processed
	}
	if v := q.Get("match_status"); v != "" {
		status := rawscan.MatchStatus(v)
		filter.MatchStatus = &status
	}
	if v := q.Get("start_time"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalidQueryParam("start_time")
		}
		filter.StartTime = &t
	}
	if v := q.Get("end_time"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalidQueryParam("end_time")
		}
		end := t.AddDate(0, 0, 1).Add(-time.Second)
		filter.EndTime = &end
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, errInvalidQueryParam("page")
		}
		filter.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, errInvalidQueryParam("limit")
		}
		filter.Limit = limit
	}

	return filter, nil
}
