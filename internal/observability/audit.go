package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Audit logs a security-relevant event for the request. Events carry the
// request id and, when tracing is on, the trace id so they can be joined with
// spans from the redemption engine.
func Audit(r *http.Request, event string, attrs ...any) {
	ctx := r.Context()
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(ctx),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		base = append(base, "trace_id", sc.TraceID().String())
	}
	base = append(base, attrs...)
	slog.InfoContext(ctx, "audit", base...)
}
