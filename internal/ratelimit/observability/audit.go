// Package observability provides audit logging helpers for the ratelimit module.
package observability

import (
	"context"
	"log/slog"

	"jamsession/internal/platform/privacy"
	"jamsession/pkg/requestcontext"
)

// LogAudit writes a security event to the structured log. The client address
// is anonymized before it is written.
func LogAudit(ctx context.Context, logger *slog.Logger, event, clientAddress string, attrList ...any) {
	if logger == nil {
		return
	}
	args := append(attrList,
		"ip", privacy.AnonymizeIP(clientAddress),
		"event", event,
		"log_type", "audit",
	)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	logger.InfoContext(ctx, event, args...)
}
