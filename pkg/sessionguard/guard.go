// Package sessionguard is the client side of the session endpoints. A Guard
// validates the HTTP-only session cookie with the server, caches the
// verified user in memory, and routes the caller to the login or restricted
// view when a page needs a session it does not have.
//
// The cache is never a source of trust for the server; it only saves a round
// trip for rendering decisions on the client.
package sessionguard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"jamsession/pkg/domain"
)

// Views the guard navigates to.
const (
	ViewLogin     = "login.html"
	ViewDashboard = "dashboard.html"
)

const (
	pathValidate   = "/session/validate"
	pathLogin      = "/auth/login"
	pathLogout     = "/session/logout"
	pathVerifyCSRF = "/session/verify-csrf"
)

// DefaultTimeout bounds every call to the session service. Login waits on
// the gate and the portal, so it has to cover both.
const DefaultTimeout = 30 * time.Second

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(ctx context.Context, view string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, view string)

func (f NavigatorFunc) Navigate(ctx context.Context, view string) {
	f(ctx, view)
}

// Guard owns one client's session state. It is safe for concurrent use.
type Guard struct {
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
	navigator Navigator
	initGroup singleflight.Group

	mu          sync.RWMutex
	user        *domain.User
	csrfToken   string
	expiresAt   time.Time
	initialized bool
}

type Option func(*Guard)

// WithHTTPClient sets the client used for session calls. A client without a
// cookie jar gets one, since the session lives only in the cookie.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Guard) {
		if c != nil {
			g.client = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithNavigator(n Navigator) Option {
	return func(g *Guard) {
		if n != nil {
			g.navigator = n
		}
	}
}

// New creates a guard for the session service at baseURL.
func New(baseURL string, opts ...Option) (*Guard, error) {
	if baseURL == "" {
		return nil, errors.New("session service URL is required")
	}
	g := &Guard{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		client := *g.client
		client.Jar = jar
		g.client = &client
	}
	if g.navigator == nil {
		g.navigator = NavigatorFunc(func(ctx context.Context, view string) {
			g.logger.InfoContext(ctx, "navigation requested", "view", view)
		})
	}
	return g, nil
}

// Init validates the session with the server. Concurrent callers share one
// validation request. Any failure leaves the guard initialized and signed out.
func (g *Guard) Init(ctx context.Context) bool {
	v, _, _ := g.initGroup.Do("init", func() (any, error) {
		// The result is shared, so one caller giving up must not sign out
		// the others. The HTTP client timeout still bounds the call.
		return g.validate(context.WithoutCancel(ctx)), nil
	})
	ok, _ := v.(bool)
	return ok
}

func (g *Guard) validate(ctx context.Context) bool {
	var body validateResponse
	status, err := g.call(ctx, http.MethodGet, pathValidate, nil, &body)
	if err != nil {
		g.logger.WarnContext(ctx, "session validation error", "error", err)
		g.clear()
		return false
	}
	if status != http.StatusOK || !body.Valid || body.User == nil {
		g.logger.DebugContext(ctx, "no valid session")
		g.clear()
		return false
	}

	g.store(body.User, body.CSRFToken, body.ExpiresAt)
	g.logger.DebugContext(ctx, "session validated", "role", body.User.Role)
	return true
}

func (g *Guard) store(user *domain.User, csrfToken, expiresAt string) {
	u := *user
	if u.Projects == nil {
		u.Projects = []domain.Resource{}
	}
	exp, _ := time.Parse(time.RFC3339, expiresAt) //nolint:errcheck // zero time when absent

	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = &u
	g.csrfToken = csrfToken
	g.expiresAt = exp
	g.initialized = true
}

func (g *Guard) clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = nil
	g.csrfToken = ""
	g.expiresAt = time.Time{}
	g.initialized = true
}
