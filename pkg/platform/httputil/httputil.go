package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "jamsession/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope of every login-flow error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
// Non-domain errors never leak their text; they become a generic SERVER_ERROR.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteJSON(w, StatusFor(domainErr), ErrorResponse{
			Error:   string(domainErr.Code),
			Message: domainErr.Message,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   string(dErrors.CodeServerError),
		Message: "An error occurred. Please try again.",
	})
}

// StatusFor returns the HTTP status for a domain error, honouring an upstream
// status carried by API_ERROR.
func StatusFor(err *dErrors.Error) int {
	if err.Code == dErrors.CodeAPIError && err.Status >= http.StatusBadRequest {
		return err.Status
	}
	return DomainCodeToHTTPStatus(err.Code)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeMissingAuth, dErrors.CodeInvalidAuth, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeAuthFailed, dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeAccessDenied, dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeAPITimeout:
		return http.StatusRequestTimeout
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeAPIError, dErrors.CodeConnectionError, dErrors.CodeServerError, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
