// Package portal validates installer credentials against the DataJam Portal.
//
// The project-listing endpoint doubles as the credential check: a 200 proves
// the credentials and carries the authorized projects in the same round trip.
package portal

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jamsession/internal/auth/metrics"
	"jamsession/internal/auth/models"
	"jamsession/internal/platform/tracer"
	dErrors "jamsession/pkg/domain-errors"
	"jamsession/pkg/platform/httputil"
)

// DefaultTimeout bounds a portal call. The portal is slow.
const DefaultTimeout = 15 * time.Second

const (
	projectsPath     = "/CustomerAPI/GetUserProjects/"
	maxResponseBytes = 1 << 20
)

const (
	msgAuthFailed      = "Invalid username or password"
	msgTimeout         = "Authentication server timeout. Please try again."
	msgAPIError        = "Authentication service error. Please try again."
	msgConnectionError = "Failed to connect to authentication service. Please try again."
)

type Validator struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	tracer     tracer.Tracer
	metrics    *metrics.Metrics
}

type Option func(*Validator)

func WithHTTPClient(c *http.Client) Option {
	return func(v *Validator) {
		if c != nil {
			v.httpClient = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(v *Validator) {
		if t != nil {
			v.tracer = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// New builds a validator for the portal at baseURL.
func New(baseURL string, opts ...Option) *Validator {
	v := &Validator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newInsecureClient(),
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
		tracer:     tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// newInsecureClient returns the one HTTP client in the service that skips
// certificate verification. The portal serves a self-signed certificate and
// this client talks to nothing else.
func newInsecureClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // legacy portal certificate is self-signed
		MinVersion:         tls.VersionTLS12,
	}
	return &http.Client{Transport: transport}
}

// Validate checks identifier/secret against the portal. Failures are domain
// errors coded AUTH_FAILED, API_TIMEOUT, API_ERROR (with the upstream status)
// or CONNECTION_ERROR.
func (v *Validator) Validate(ctx context.Context, identifier, secret string) (*models.AuthorizationResult, error) {
	start := time.Now()
	ctx, span := v.tracer.Start(ctx, tracer.SpanPortalValidate,
		tracer.String(tracer.AttrIdentifierHash, tracer.HashIdentifier(identifier)),
	)

	result, status, err := v.validate(ctx, identifier, secret)

	outcome := "success"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	} else {
		span.SetAttributes(tracer.Int(tracer.AttrResourceCount, len(result.Resources)))
	}
	span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, status), tracer.String(tracer.AttrOutcome, outcome))
	// Rejected credentials are an expected outcome, not a span error.
	if dErrors.HasCode(err, dErrors.CodeAuthFailed) {
		span.End(nil)
	} else {
		span.End(err)
	}
	v.metrics.ObservePortalResult(outcome, float64(time.Since(start).Milliseconds()))

	return result, err
}

func (v *Validator) validate(ctx context.Context, identifier, secret string) (*models.AuthorizationResult, int, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	// The legacy endpoint expects a JSON body on a GET.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+projectsPath, strings.NewReader("{}"))
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeConnectionError, msgConnectionError)
	}
	req.SetBasicAuth(identifier, secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, 0, v.transportError(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, resp.StatusCode, v.transportError(ctx, err)
		}
		return &models.AuthorizationResult{
			Success:   true,
			Resources: NormalizeResources(body),
		}, resp.StatusCode, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, resp.StatusCode, dErrors.New(dErrors.CodeAuthFailed, msgAuthFailed)
	default:
		v.logger.WarnContext(ctx, "portal returned unexpected status", "status", resp.StatusCode)
		return nil, resp.StatusCode, dErrors.NewWithStatus(dErrors.CodeAPIError, resp.StatusCode, msgAPIError)
	}
}

func (v *Validator) transportError(ctx context.Context, err error) error {
	if httputil.IsTimeout(err) {
		v.logger.WarnContext(ctx, "portal request timed out", "error", err)
		return dErrors.Wrap(err, dErrors.CodeAPITimeout, msgTimeout)
	}
	v.logger.ErrorContext(ctx, "portal connection error", "error", err)
	return dErrors.Wrap(err, dErrors.CodeConnectionError, msgConnectionError)
}
