package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/psaworks/psa/internal/types"
)

// StartCacheSpan opens a span around a cache lookup. It returns nil when the
// context carries no Sentry hub.
func StartCacheSpan(ctx context.Context, cache, operation string, params map[string]interface{}) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	name := "cache." + cache + "." + operation
	span := sentry.StartSpan(ctx, name)
	span.Description = name
	span.Op = "db.cache"
	span.SetData("cache", cache)
	span.SetData("operation", operation)
	span.SetData("tenant_id", types.GetTenantID(ctx))
	for k, v := range params {
		span.SetData(k, v)
	}

	return span
}

// FinishSpan safely finishes a span, handling nil spans
func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

// SetSpanHit records whether the lookup was served from the cache
func SetSpanHit(span *sentry.Span, hit bool) {
	if span == nil {
		return
	}
	span.SetData("hit", hit)
	span.Status = sentry.SpanStatusOK
}
