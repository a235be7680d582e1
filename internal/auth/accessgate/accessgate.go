// Package accessgate asks the external authorization service whether an
// identity may use the installer app at all.
//
// The client is fail-secure: every failure to obtain a well-formed answer
// resolves to a denial with a reason code naming the failure. It never grants
// access on its own.
package accessgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jamsession/internal/auth/metrics"
	"jamsession/internal/platform/tracer"
	"jamsession/pkg/platform/circuit"
	"jamsession/pkg/platform/httputil"
)

// DefaultTimeout bounds a single gate call.
const DefaultTimeout = 10 * time.Second

const maxResponseBytes = 64 << 10

// ReasonCode classifies a decision.
type ReasonCode string

const (
	ReasonGranted            ReasonCode = "granted"
	ReasonNoPermission       ReasonCode = "no_permission"
	ReasonServiceUnavailable ReasonCode = "service_unavailable"
	ReasonTimeout            ReasonCode = "timeout"
	ReasonParseError         ReasonCode = "parse_error"
)

var defaultMessages = map[ReasonCode]string{
	ReasonGranted:            "Access granted",
	ReasonNoPermission:       "You do not have permission to use the installer app.",
	ReasonServiceUnavailable: "Access verification service is unavailable. Please try again later.",
	ReasonTimeout:            "Access verification timed out. Please try again.",
	ReasonParseError:         "Access verification returned an invalid response.",
}

// Decision is the outcome of one gate check.
type Decision struct {
	Allowed bool
	Reason  ReasonCode
	Message string
}

func deny(reason ReasonCode) Decision {
	return Decision{Allowed: false, Reason: reason, Message: defaultMessages[reason]}
}

// checkResponse is the upstream contract. HasAccess is a pointer so a body
// without the field is rejected rather than read as false.
type checkResponse struct {
	HasAccess *bool  `json:"hasAccess"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	tracer     tracer.Tracer
	metrics    *metrics.Metrics
	breaker    *circuit.Breaker
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

// New builds a client for the gate rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
		tracer:     tracer.NewNoop(),
		breaker:    circuit.New("access_gate"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckAccess asks the gate about identifier.
func (c *Client) CheckAccess(ctx context.Context, identifier string) Decision {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, tracer.SpanAccessGateCheck,
		tracer.String(tracer.AttrIdentifierHash, tracer.HashIdentifier(identifier)),
	)

	decision, status, err := c.check(ctx, identifier)
	span.SetAttributes(
		tracer.Bool(tracer.AttrAllowed, decision.Allowed),
		tracer.String(tracer.AttrReason, string(decision.Reason)),
		tracer.Int(tracer.AttrHTTPStatus, status),
	)
	c.recordHealth(ctx, span, err)
	span.End(err)

	c.metrics.ObserveAccessGateDecision(string(decision.Reason), float64(time.Since(start).Milliseconds()))

	if err != nil {
		c.logger.WarnContext(ctx, "access gate check failed",
			"reason", decision.Reason,
			"status", status,
			"error", err,
		)
	}
	return decision
}

// check performs the call. A non-nil error means the gate could not give a
// usable answer; the returned decision is then always a denial.
func (c *Client) check(ctx context.Context, identifier string) (Decision, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/installer-check/" + url.PathEscape(identifier)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return deny(ReasonServiceUnavailable), 0, fmt.Errorf("build access gate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if httputil.IsTimeout(err) {
			return deny(ReasonTimeout), 0, err
		}
		return deny(ReasonServiceUnavailable), 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if httputil.IsTimeout(err) {
			return deny(ReasonTimeout), resp.StatusCode, err
		}
		return deny(ReasonServiceUnavailable), resp.StatusCode, err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return deny(ReasonServiceUnavailable), resp.StatusCode,
			fmt.Errorf("access gate returned status %d", resp.StatusCode)
	}

	var parsed checkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return deny(ReasonParseError), resp.StatusCode, fmt.Errorf("decode access gate response: %w", err)
	}
	if parsed.HasAccess == nil {
		return deny(ReasonParseError), resp.StatusCode, errors.New("access gate response missing hasAccess")
	}

	allowed := *parsed.HasAccess && resp.StatusCode >= 200 && resp.StatusCode < 300
	return decide(allowed, parsed), resp.StatusCode, nil
}

// decide trusts the upstream reason and message, filling in defaults when
// they are absent or contradict the decision.
func decide(allowed bool, parsed checkResponse) Decision {
	reason := ReasonCode(parsed.Reason)
	switch {
	case allowed && reason == "":
		reason = ReasonGranted
	case !allowed && (reason == "" || reason == ReasonGranted):
		reason = ReasonNoPermission
	}

	message := parsed.Message
	if message == "" {
		message = defaultMessages[reason]
		if message == "" {
			message = defaultMessages[ReasonNoPermission]
		}
	}
	return Decision{Allowed: allowed, Reason: reason, Message: message}
}

// recordHealth feeds the breaker and marks transitions on the check span.
// The breaker only signals health; requests keep going to the gate while it
// is open.
func (c *Client) recordHealth(ctx context.Context, span tracer.Span, err error) {
	openedAt := c.breaker.Snapshot().OpenedAt
	switch c.breaker.Record(err) {
	case circuit.Opened:
		failures := c.breaker.Snapshot().Failures
		span.AddEvent(tracer.EventCircuitOpened, tracer.Int(tracer.AttrConsecutiveFailures, failures))
		c.logger.ErrorContext(ctx, "circuit breaker opened", "circuit", c.breaker.Name(), "error", err)
		c.metrics.SetAccessGateCircuitOpen(true)
	case circuit.Closed:
		// openedAt is zero only if another call opened the circuit between
		// the read above and Record.
		var openFor time.Duration
		if !openedAt.IsZero() {
			openFor = time.Since(openedAt)
		}
		span.AddEvent(tracer.EventCircuitClosed, tracer.Duration(tracer.AttrOpenFor, openFor))
		c.logger.InfoContext(ctx, "circuit breaker closed", "circuit", c.breaker.Name(), "open_for_ms", openFor.Milliseconds())
		c.metrics.SetAccessGateCircuitOpen(false)
	}
}
