package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jreis/shortener/internal/ratelimit"
)

// RegisterRoutes registers all short link routes with per-endpoint rate
// limit configuration. The redirect route must come last so the router
// prefers the static paths.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// POST /shorturls - create a short link.
	// Stricter limits for write operations.
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-link",
		Method:        http.MethodPost,
		Path:          "/shorturls",
		Summary:       "Create short link",
		Description:   "Creates a short link with an optional custom shortcode and validity window.",
		Tags:          []string{"Short links"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
					{Window: time.Hour, Max: 300},
				},
			},
		},
	}, urlHandler.CreateShortLink)

	// GET /shorturls/{shortcode} - short link statistics.
	huma.Register(api, huma.Operation{
		OperationID: "get-short-link-stats",
		Method:      http.MethodGet,
		Path:        "/shorturls/{shortcode}",
		Summary:     "Short link statistics",
		Description: "Returns the link metadata and its full click history, oldest click first.",
		Tags:        []string{"Short links"},
	}, urlHandler.GetStats)

	// GET /{shortcode} - redirect to the destination URL.
	// Relaxed limits for the high-traffic read path.
	huma.Register(api, huma.Operation{
		OperationID: "redirect-short-link",
		Method:      http.MethodGet,
		Path:        "/{shortcode}",
		Summary:     "Redirect to destination URL",
		Description: "Redirects to the destination URL and records a click on the way through.",
		Tags:        []string{"Short links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, urlHandler.Redirect)
}
