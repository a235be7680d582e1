// Package tracer provides a small tracing abstraction over OpenTelemetry so
// the outbound clients can emit spans without importing otel directly.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashIdentifier returns a short SHA-256 digest of a login identifier so
// spans can be correlated without recording the identifier itself.
func HashIdentifier(identifier string) string {
	if identifier == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanAccessGateCheck = "accessgate.check"
	SpanPortalValidate  = "portal.validate"
)

// Span events.
const (
	EventCircuitOpened = "circuit.opened"
	EventCircuitClosed = "circuit.closed"
)

// Attribute keys.
const (
	AttrConsecutiveFailures = "circuit.consecutive_failures"
	AttrOpenFor             = "circuit.open_for_ms"
	AttrIdentifierHash      = "identifier.hash"
	AttrHTTPStatus          = "http.status_code"
	AttrAllowed             = "access.allowed"
	AttrReason              = "access.reason"
	AttrResourceCount       = "portal.resource_count"
	AttrOutcome             = "outcome"
)
