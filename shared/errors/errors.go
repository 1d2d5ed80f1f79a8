package errors

import "net/http"

// Error codes shared by MyGrowVerse APIs.
const (
	CodeNotFound          = "not_found"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeConflict          = "conflict"
	CodeBadRequest        = "bad_request"
	CodeInvalidTransition = "invalid_transition"
	CodeLevelLocked       = "level_locked"
	CodeLoadPending       = "load_pending"
	CodeInternal          = "internal"
)

// ErrorResponse represents the canonical error envelope returned by MyGrowVerse APIs.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// ToStatusCode maps a domain specific error code to an HTTP status for default responses.
func ToStatusCode(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeLevelLocked:
		return http.StatusForbidden
	case CodeConflict, CodeInvalidTransition, CodeLoadPending:
		return http.StatusConflict
	case CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
