package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{ValidationError("bad input"), http.StatusBadRequest},
		{UnauthorizedError("bad signature"), http.StatusUnauthorized},
		{NotFoundError("no such stream"), http.StatusNotFound},
		{ConflictError("already live"), http.StatusConflict},
		{RateLimitedError("slow down"), http.StatusTooManyRequests},
		{InternalError("boom", nil), http.StatusInternalServerError},
		{ExternalError("mux down", nil), http.StatusBadGateway},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus())
	}
}

func TestErrorString(t *testing.T) {
	err := NotFoundError("stream not found")
	assert.Equal(t, "not_found: stream not found", err.Error())

	wrapped := InternalError("query failed", fmt.Errorf("connection reset"))
	assert.Contains(t, wrapped.Error(), "connection reset")
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := InternalError("wrapper", cause)
	assert.ErrorIs(t, err, cause)
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	structured := ValidationError("nope")
	assert.Same(t, structured, AsStructuredError(structured))

	plain := fmt.Errorf("plain failure")
	converted := AsStructuredError(plain)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.ErrorIs(t, converted, plain)
}

func TestWithField(t *testing.T) {
	err := NotFoundError("stream not found").WithField("stream_id", "abc")
	assert.Equal(t, "abc", err.Context["stream_id"])

	resp := err.ToResponse()
	assert.Equal(t, "stream not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.Equal(t, "abc", resp.Context["stream_id"])
}
