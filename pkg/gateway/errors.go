package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error into the gateway's taxonomy. Every error response
// carries a stable machine-checkable code; internal detail never reaches the
// client.
type Code string

const (
	CodeInvalidArgument Code = "invalid_argument"
	CodeUnauthenticated Code = "unauthenticated"
	CodeInvalidToken    Code = "invalid_token"
	CodeRateLimited     Code = "rate_limited"
	CodeQuotaExceeded   Code = "quota_exceeded"
	CodeUnavailable     Code = "unavailable"
	CodeInternal        Code = "internal"
)

// apiError is an error with a taxonomy code and a client-safe message.
type apiError struct {
	code Code
	msg  string
}

func (e *apiError) Error() string { return e.msg }

// Errorf builds a classified error with a client-safe message.
func Errorf(code Code, format string, args ...interface{}) error {
	return &apiError{code: code, msg: fmt.Sprintf(format, args...)}
}

func httpStatus(code Code) int {
	switch code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated, CodeInvalidToken:
		return http.StatusUnauthorized
	case CodeRateLimited, CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorEnvelope is the uniform error body: {"error": <message>}.
type errorEnvelope struct {
	Error string `json:"error"`
}

// writeError maps err onto the taxonomy and writes the envelope. Unclassified
// errors become a generic internal failure so dependency detail never leaks.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		apiErr = &apiError{code: CodeInternal, msg: "internal server error"}
	}
	writeJSON(w, httpStatus(apiErr.code), errorEnvelope{Error: apiErr.msg})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
