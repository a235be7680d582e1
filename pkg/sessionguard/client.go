package sessionguard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"jamsession/pkg/domain"
)

const maxResponseBytes = 1 << 20

type validateResponse struct {
	Valid     bool         `json:"valid"`
	User      *domain.User `json:"user"`
	CSRFToken string       `json:"csrfToken"`
	ExpiresAt string       `json:"expiresAt"`
	Error     string       `json:"error"`
}

type loginRequest struct {
	Auth string `json:"auth"`
}

type loginResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	User      *domain.User `json:"user"`
	CSRFToken string       `json:"csrfToken"`
	ExpiresAt string       `json:"expiresAt"`
	Error     string       `json:"error"`
}

type csrfRequest struct {
	CSRFToken string `json:"csrfToken"`
}

type csrfResponse struct {
	Valid bool `json:"valid"`
}

// call sends a JSON request and decodes the JSON response into out whatever
// the status. Errors are transport or decoding failures only.
func (g *Guard) call(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
	}
	return resp.StatusCode, nil
}
