package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"jamsession/internal/auth/models"
	rlmodels "jamsession/internal/ratelimit/models"
	dErrors "jamsession/pkg/domain-errors"
	"jamsession/pkg/platform/httputil"
	"jamsession/pkg/requestcontext"
)

// SessionCookieName is the HttpOnly cookie that carries the session token.
const SessionCookieName = "dj_session"

const (
	msgLoginSucceeded   = "Authentication successful"
	msgLoggedOut        = "Logged out"
	msgValidationFailed = "Validation failed"
	msgVerifyFailed     = "Verification failed"
)

// Service defines the session operations behind the HTTP endpoints.
type Service interface {
	Login(ctx context.Context, req *models.LoginRequest, clientAddress string) (*models.LoginResult, error)
	Validate(ctx context.Context, token string) (*models.SessionResult, error)
	VerifyCSRF(ctx context.Context, token, csrfToken string) error
}

// Handler serves login and the session endpoints. The token itself only
// ever travels in the session cookie, never in a response body.
type Handler struct {
	auth          Service
	logger        *slog.Logger
	secureCookies bool
}

// New creates a handler. secureCookies adds the Secure attribute to the
// session cookie and is set in production.
func New(auth Service, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{
		auth:          auth,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// Register registers the login and session routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Get("/session/validate", h.HandleValidate)
	r.Post("/session/logout", h.HandleLogout)
	r.Post("/session/verify-csrf", h.HandleVerifyCSRF)
}

// HandleLogin implements POST /auth/login.
//
// Input: { "auth": base64("identifier:secret") }
// Output: { "success": true, "message": "...", "user": {...}, "csrfToken": "...", "expiresAt": "..." }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := httputil.DecodeJSON[models.LoginRequest](r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.auth.Login(ctx, req, requestcontext.ClientIP(ctx))
	if err != nil {
		h.logger.InfoContext(ctx, "login rejected",
			"code", dErrors.CodeOf(err),
			"request_id", requestID,
		)
		h.writeLoginError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, int(models.SessionTTL.Seconds())))
	httputil.WriteJSON(w, http.StatusOK, &models.LoginResponse{
		Success:   true,
		Message:   msgLoginSucceeded,
		User:      result.User,
		CSRFToken: result.CSRFToken,
		ExpiresAt: models.FormatExpiresAt(result.ExpiresAt),
	})
}

// writeLoginError adds the lockout and gate details that the generic
// envelope cannot carry.
func (h *Handler) writeLoginError(w http.ResponseWriter, err error) {
	var lockout *rlmodels.LockoutError
	if dErrors.HasCode(err, dErrors.CodeRateLimited) && errors.As(err, &lockout) {
		w.Header().Set("Retry-After", strconv.Itoa(lockout.RetryAfterSeconds()))
		httputil.WriteJSON(w, http.StatusTooManyRequests, &models.LockoutResponse{
			Error:       string(dErrors.CodeRateLimited),
			Message:     lockout.Message,
			RemainingMs: lockout.RetryAfter.Milliseconds(),
		})
		return
	}

	var denied *models.AccessDeniedError
	if dErrors.HasCode(err, dErrors.CodeAccessDenied) && errors.As(err, &denied) {
		httputil.WriteJSON(w, http.StatusForbidden, &models.AccessDeniedResponse{
			Error:   string(dErrors.CodeAccessDenied),
			Message: denied.Message,
			Reason:  denied.Reason,
		})
		return
	}

	httputil.WriteError(w, err)
}

// HandleValidate implements GET /session/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := sessionToken(r)
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, &models.SessionErrorResponse{Error: "No session found"})
		return
	}

	result, err := h.auth.Validate(ctx, token)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			http.SetCookie(w, h.clearedCookie())
			httputil.WriteJSON(w, http.StatusUnauthorized, &models.SessionErrorResponse{Error: err.Error()})
			return
		}
		h.logger.ErrorContext(ctx, "session validation failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, &models.SessionErrorResponse{Error: msgValidationFailed})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &models.ValidateResponse{
		Valid:     true,
		User:      result.User,
		CSRFToken: result.CSRFToken,
		ExpiresAt: models.FormatExpiresAt(result.ExpiresAt),
	})
}

// HandleLogout implements POST /session/logout. It always succeeds: the
// token is stateless, so clearing the cookie is the whole logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.clearedCookie())
	httputil.WriteJSON(w, http.StatusOK, &models.LogoutResponse{
		Success: true,
		Message: msgLoggedOut,
	})
}

// HandleVerifyCSRF implements POST /session/verify-csrf.
//
// Input: { "csrfToken": "..." } plus the session cookie
// Output: { "valid": true }
func (h *Handler) HandleVerifyCSRF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.DecodeJSON[models.CSRFRequest](r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decode csrf request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, &models.SessionErrorResponse{Error: msgVerifyFailed})
		return
	}

	token, _ := sessionToken(r)
	if err := h.auth.VerifyCSRF(ctx, token, req.CSRFToken); err != nil {
		var domainErr *dErrors.Error
		if !errors.As(err, &domainErr) {
			h.logger.ErrorContext(ctx, "csrf verification failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteJSON(w, http.StatusInternalServerError, &models.SessionErrorResponse{Error: msgVerifyFailed})
			return
		}
		httputil.WriteJSON(w, httputil.StatusFor(domainErr), &models.SessionErrorResponse{Error: domainErr.Message})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &models.CSRFResponse{Valid: true})
}

func sessionToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

// clearedCookie expires the session cookie. A negative MaxAge is written as Max-Age=0.
func (h *Handler) clearedCookie() *http.Cookie {
	return h.sessionCookie("", -1)
}
