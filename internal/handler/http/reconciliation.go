package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/attendance"
	"github.com/R3cxcx/tetsos-sub000/internal/handler/http/response"
)

type ReconciliationHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	Confirm(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
}

type reconciliationHandlerImpl struct {
	reviewService  attendance.ReviewService
	recordsService attendance.ReconciliationService
}

func NewReconciliationHandler(
	reviewService attendance.ReviewService,
	recordsService attendance.ReconciliationService,
) ReconciliationHandler {
	return &reconciliationHandlerImpl{
		reviewService:  reviewService,
		recordsService: recordsService,
	}
}

// Preview implements ReconciliationHandler.
func (h *reconciliationHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReconcileRequest(w, r)
	if !ok {
		return
	}

	dateFrom, dateTo := req.Range()
	result, err := h.reviewService.Preview(r.Context(), dateFrom, dateTo)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Confirm implements ReconciliationHandler.
func (h *reconciliationHandlerImpl) Confirm(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReconcileRequest(w, r)
	if !ok {
		return
	}

	dateFrom, dateTo := req.Range()
	summary, err := h.reviewService.Confirm(r.Context(), dateFrom, dateTo)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reconciliation committed", summary)
}

// ListRecords implements ReconciliationHandler.
func (h *reconciliationHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRecordFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.recordsService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func decodeReconcileRequest(w http.ResponseWriter, r *http.Request) (attendance.ReconcileRequest, bool) {
	var req attendance.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return req, false
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return req, false
	}
	return req, true
}

func parseRecordFilter(r *http.Request) (attendance.RecordFilter, error) {
	var filter attendance.RecordFilter
	q := r.URL.Query()

	if v := q.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalidQueryParam("start_date")
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errInvalidQueryParam("end_date")
		}
		filter.EndDate = &t
	}
	if v := q.Get("status"); v != "" {
		status := attendance.Status(v)
		filter.Status = &status
	}

	return filter, nil
}

func errInvalidQueryParam(name string) error {
	return fmt.Errorf("invalid query parameter %q", name)
}
