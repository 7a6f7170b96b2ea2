package dto

import "net/http"

// Error code constants
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeNotFound   = "ERR_NOT_FOUND"

	// Upstream ERP outcomes surfaced to the dashboard
	ErrCodeUpstreamAuth        = "ERR_UPSTREAM_AUTH"
	ErrCodeUpstreamRejected    = "ERR_UPSTREAM_REJECTED"
	ErrCodeUpstreamUnavailable = "ERR_UPSTREAM_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	ErrCodeUpstreamAuth:        http.StatusBadGateway,
	ErrCodeUpstreamRejected:    http.StatusUnprocessableEntity,
	ErrCodeUpstreamUnavailable: http.StatusBadGateway,
}

// Domain error codes mapped onto the HTTP surface
var domainCodeToHTTP = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"INVALID_INPUT":        ErrCodeBadRequest,
	"UNKNOWN_ENTITY":       ErrCodeBadRequest,
	"UPSTREAM_REJECTED":    ErrCodeUpstreamRejected,
	"UPSTREAM_UNAVAILABLE": ErrCodeUpstreamUnavailable,
	"UNAUTHORIZED":         ErrCodeUpstreamAuth,
}

// NormalizeErrorCode maps a domain error code to an HTTP-surface error code
func NormalizeErrorCode(code string) string {
	if normalized, ok := domainCodeToHTTP[code]; ok {
		return normalized
	}
	return ErrCodeInternal
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
