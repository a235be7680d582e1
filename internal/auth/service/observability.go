package service

import (
	"context"

	"jamsession/internal/platform/privacy"
	"jamsession/pkg/requestcontext"
)

// logAudit writes a security event. Identifiers and secrets are never attributes.
func (s *Service) logAudit(ctx context.Context, event, clientAddress string, attributes ...any) {
	args := append(attributes,
		"ip", privacy.AnonymizeIP(clientAddress),
		"event", event,
		"log_type", "audit",
	)
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, event, args...)
}
