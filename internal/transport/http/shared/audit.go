package shared

import (
	"context"
	"log/slog"
	"net/http"

	"hrms/internal/domain/audit"
	"hrms/internal/transport/http/middleware"
)

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// RecordAudit stamps entry with the caller, request id and client IP and
// stores it. Failures are logged and never fail the request. A nil recorder
// is a no-op.
func RecordAudit(r *http.Request, recorder AuditRecorder, entry audit.Entry) {
	if recorder == nil {
		return
	}
	if user, ok := middleware.GetUser(r.Context()); ok {
		entry.ActorID = user.UserID
	}
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = middleware.ClientIP(r)
	if err := recorder.Record(r.Context(), entry); err != nil {
		slog.Warn("audit record failed", "action", entry.Action, "err", err)
	}
}
