package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/psaworks/psa/internal/config"
	"github.com/psaworks/psa/internal/types"
)

// SentryMiddleware returns a middleware that captures panics and tags the
// request hub with the tenant and request id
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryTagsMiddleware runs after the tenant is bound and tags the hub the
// sentry middleware attached to the request
func SentryTagsMiddleware(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		ctx := c.Request.Context()
		hub.Scope().SetTag("tenant_id", types.GetTenantID(ctx))
		hub.Scope().SetTag("request_id", types.GetRequestID(ctx))
	}
	c.Next()
}
