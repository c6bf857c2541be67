package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// AccessLog is a middleware that logs one structured entry per request
// after the response is written. It only observes the request, so it can
// never alter or abort the response.
func AccessLog(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		u := ctx.URL()

		logger.Info("request",
			zap.String("method", ctx.Method()),
			zap.String("path", u.Path),
			zap.String("query_string", u.RawQuery),
			zap.Int("status", ctx.Status()),
			zap.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
			zap.String("client_ip", clientIP(ctx)),
			zap.String("user_agent", ctx.Header("User-Agent")),
		)
	}
}
