package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jreis/shortener/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a middleware enforcing the per-endpoint limits
// attached to operations via ratelimit.MetadataKey. Endpoints without
// limits pass through untouched.
func RateLimiter(
	api huma.API, limiter *ratelimit.Limiter, logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg == nil || cfg.Disabled || len(cfg.Limits) == 0 {
			next(ctx)

			return
		}

		// The route template, not the concrete path, so all requests
		// matching the same operation share counters per client.
		route := ctx.Operation().Path

		allowed, exceeded, err := limiter.Allow(ctx.Context(), clientKey(ctx), route, cfg.Limits)
		if err != nil {
			logger.Error("rate limit check failed",
				zap.String("route", route),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "Internal server error")

			return
		}

		if !allowed {
			logger.Warn("rate limit exceeded",
				zap.String("route", route),
				zap.String("method", ctx.Method()),
				zap.Int64("count", exceeded.Count),
				zap.Int64("max", exceeded.Config.Max),
				zap.Duration("window", exceeded.Config.Window),
				zap.String("client_ip", clientIP(ctx)),
			)

			msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
				exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

			return
		}

		next(ctx)
	}
}

// clientKey identifies a client for rate limiting from IP and User-Agent.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}
