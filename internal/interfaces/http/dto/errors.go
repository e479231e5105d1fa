package dto

import (
	"net/http"

	"github.com/supplytrace/backend/internal/domain/shared"
)

// General error codes for failures that never originate in the domain
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeNotFound is used for unknown routes and missing resources
	ErrCodeNotFound = "NOT_FOUND"
)

// kindHTTPStatus maps domain error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.ErrorKindValidation:   http.StatusBadRequest,
	shared.ErrorKindNotFound:     http.StatusNotFound,
	shared.ErrorKindPermission:   http.StatusForbidden,
	shared.ErrorKindStatus:       http.StatusUnprocessableEntity,
	shared.ErrorKindBusinessRule: http.StatusUnprocessableEntity,
	shared.ErrorKindConcurrency:  http.StatusConflict,
}

// HTTPStatusForKind returns the HTTP status for a domain error kind.
// Unknown kinds map to 500 Internal Server Error.
func HTTPStatusForKind(kind shared.ErrorKind) int {
	if status, ok := kindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
