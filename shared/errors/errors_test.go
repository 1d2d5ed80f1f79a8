package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToStatusCode(t *testing.T) {
	tests := map[string]int{
		CodeNotFound:          http.StatusNotFound,
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeForbidden:         http.StatusForbidden,
		CodeLevelLocked:       http.StatusForbidden,
		CodeConflict:          http.StatusConflict,
		CodeInvalidTransition: http.StatusConflict,
		CodeLoadPending:       http.StatusConflict,
		CodeBadRequest:        http.StatusBadRequest,
		CodeInternal:          http.StatusInternalServerError,
		"something_else":      http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, ToStatusCode(code), code)
	}
}
