package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type key string

const TraceIdKey key = "1"

// WithTraceId stamps a fresh trace id on the context for one user-triggered
// operation (fetch, login, submit). Reuses an existing id if one is present.
func WithTraceId(ctx context.Context) context.Context {
	if v, ok := ctx.Value(TraceIdKey).(string); ok && v != "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIdKey, uuid.NewString())
}

// GetTraceId returns the trace id stored on the context, or "unknown".
func GetTraceId(ctx context.Context) string {
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok || traceId == "" {
		return "unknown"
	}
	return traceId
}

// GetTraceIdOfRequest fetches the trace id set by the logging middleware
// on an incoming request.
func GetTraceIdOfRequest(c *gin.Context) string {
	return GetTraceId(c.Request.Context())
}
