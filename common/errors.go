package common

import (
	"errors"
	"net/http"
)

// Service outcome taxonomy. Handlers translate these to HTTP codes via
// StatusCode; services wrap them with context using fmt.Errorf and %w.
var (
	// ErrNotFound means the referenced entity does not exist in the store.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a uniqueness rule was violated (duplicate ticket
	// value, duplicate numero_oab on order creation).
	ErrConflict = errors.New("duplicate record")

	// ErrNoTicketsAvailable means the allocator scanned every ticket row
	// and found none with an empty status.
	ErrNoTicketsAvailable = errors.New("no tickets available")

	// ErrWriteTimeout means the caller stopped waiting for its slot in a
	// write-lock queue. The queued task itself is not cancelled.
	ErrWriteTimeout = errors.New("write lock wait timed out")

	// ErrStoreUnavailable wraps transport or auth failures from the
	// external spreadsheet store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSheetNotFound means a sheet name did not resolve to a sheet id.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrRowIndexInvalid means a row index points outside the sheet.
	ErrRowIndexInvalid = errors.New("row index invalid")
)

// StatusCode maps a service error to an HTTP status code.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNoTicketsAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrWriteTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrSheetNotFound):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
