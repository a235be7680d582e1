package sessionguard

import (
	"context"
	"encoding/base64"
	"net/http"

	"jamsession/pkg/domain"
)

const (
	errConnection     = "CONNECTION_ERROR"
	msgConnection     = "Connection error. Please try again."
	msgLoginFailedDef = "Authentication failed"
)

// LoginResult is the outcome of Login. Failures carry the server's error
// code and message; they are never returned as Go errors.
type LoginResult struct {
	Success bool
	User    *domain.User
	Error   string
	Message string
}

// Login sends the credentials to the server. On success the session cookie
// lands in the guard's jar and the user is cached.
func (g *Guard) Login(ctx context.Context, identifier, secret string) LoginResult {
	auth := base64.StdEncoding.EncodeToString([]byte(identifier + ":" + secret))

	var body loginResponse
	status, err := g.call(ctx, http.MethodPost, pathLogin, loginRequest{Auth: auth}, &body)
	if err != nil {
		g.logger.WarnContext(ctx, "login request failed", "error", err)
		return LoginResult{Error: errConnection, Message: msgConnection}
	}

	if status == http.StatusOK && body.Success && body.User != nil {
		g.store(body.User, body.CSRFToken, body.ExpiresAt)
		return LoginResult{Success: true, User: g.User(), Message: body.Message}
	}

	g.logger.InfoContext(ctx, "login rejected", "error", body.Error)
	message := body.Message
	if message == "" {
		message = msgLoginFailedDef
	}
	return LoginResult{Error: body.Error, Message: message}
}

// Logout asks the server to clear the cookie, then forgets the cached user
// whatever the server said. With redirect it navigates to the login view.
func (g *Guard) Logout(ctx context.Context, redirect bool) {
	if _, err := g.call(ctx, http.MethodPost, pathLogout, nil, nil); err != nil {
		g.logger.WarnContext(ctx, "logout request failed", "error", err)
	}
	g.clear()
	if redirect {
		g.navigator.Navigate(ctx, ViewLogin)
	}
}

// RequireAuth validates the session and sends the user to the login view
// when there is none.
func (g *Guard) RequireAuth(ctx context.Context) bool {
	if !g.Init(ctx) {
		g.navigator.Navigate(ctx, ViewLogin)
		return false
	}
	return true
}

// RequireAdmin is RequireAuth plus a role check; non-admins go to the dashboard.
func (g *Guard) RequireAdmin(ctx context.Context) bool {
	if !g.RequireAuth(ctx) {
		return false
	}
	if !g.IsAdmin() {
		g.navigator.Navigate(ctx, ViewDashboard)
		return false
	}
	return true
}

// VerifyCSRF asks the server whether token matches the current session.
func (g *Guard) VerifyCSRF(ctx context.Context, token string) bool {
	var body csrfResponse
	if _, err := g.call(ctx, http.MethodPost, pathVerifyCSRF, csrfRequest{CSRFToken: token}, &body); err != nil {
		g.logger.WarnContext(ctx, "csrf verification request failed", "error", err)
		return false
	}
	return body.Valid
}
