package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "jamsession/pkg/domain-errors"
)

// DecodeJSON decodes a JSON request body into the target type.
// A malformed body is a SERVER_ERROR: the browser client always sends
// well-formed JSON, so anything else is unexpected.
//
// Usage:
//
//	req, err := httputil.DecodeJSON[models.LoginRequest](r)
//	if err != nil {
//	    httputil.WriteError(w, err)
//	    return
//	}
func DecodeJSON[T any](r *http.Request) (*T, error) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeServerError, "An error occurred. Please try again.")
	}
	return &req, nil
}
