package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/umtracker/umtracker-api/internal/domain"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

const (
	// CuratorContextKey holds the authenticated *domain.Curator.
	CuratorContextKey ContextKey = "curator"

	// TraceIDKey holds the trace ID echoed in error responses.
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a trace ID to the context. The active OpenTelemetry trace
// is reused when there is one so responses and exported spans correlate.
func SetTraceID(ctx context.Context) context.Context {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return context.WithValue(ctx, TraceIDKey, sc.TraceID().String())
	}
	return context.WithValue(ctx, TraceIDKey, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// GetTraceID retrieves the trace ID from the context, or "" if unset.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithCurator stores the authenticated curator in ctx.
func WithCurator(ctx context.Context, c *domain.Curator) context.Context {
	return context.WithValue(ctx, CuratorContextKey, c)
}

// CuratorFromContext returns the authenticated curator, if any.
func CuratorFromContext(ctx context.Context) (*domain.Curator, bool) {
	c, ok := ctx.Value(CuratorContextKey).(*domain.Curator)
	return c, ok && c != nil
}
