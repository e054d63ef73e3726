package response

import (
	"errors"
	"net/http"

	"github.com/R3cxcx/tetsos-sub000/internal/domain/attendance"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/employee"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/identity"
	"github.com/R3cxcx/tetsos-sub000/internal/domain/rawscan"
	"github.com/R3cxcx/tetsos-sub000/internal/pkg/timeclock"
	"github.com/R3cxcx/tetsos-sub000/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Parser errors
	case errors.Is(err, timeclock.ErrUnreadable):
		BadRequest(w, "File could not be parsed as a time-clock export", nil)
	case errors.Is(err, timeclock.ErrNoRows):
		BadRequest(w, "File contained no readable scan rows", nil)

	// Raw scan domain errors
	case errors.Is(err, rawscan.ErrScanNotFound):
		NotFound(w, "Raw scan not found")
	case errors.Is(err, rawscan.ErrNothingToAppend):
		BadRequest(w, "No scans to store", nil)

	// Identity domain errors
	case errors.Is(err, identity.ErrScanAlreadyMatched):
		Conflict(w, "Scan is already matched to an employee")
	case errors.Is(err, identity.ErrDirectoryUnavailable):
		ServiceUnavailable(w, "Employee directory is unavailable")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrInvalidRange):
		BadRequest(w, "date_to must not be before date_from", nil)
	case errors.Is(err, attendance.ErrStoreUnavailable):
		ServiceUnavailable(w, "Attendance store is unavailable")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
