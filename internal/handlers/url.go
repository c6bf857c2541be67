package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jreis/shortener/internal/analytics"
	"github.com/jreis/shortener/internal/messaging"
	"github.com/jreis/shortener/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles short link operations.
type URLHandler struct {
	service            *shortener.Service
	baseURL            string
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent]
	publishLinkVisited messaging.Publish[analytics.LinkVisitedEvent]
	logger             *zap.Logger
}

// NewURLHandler creates a new short link handler.
func NewURLHandler(
	service *shortener.Service,
	baseURL string,
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishLinkVisited messaging.Publish[analytics.LinkVisitedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:            service,
		baseURL:            baseURL,
		publishLinkCreated: publishLinkCreated,
		publishLinkVisited: publishLinkVisited,
		logger:             logger,
	}
}

// CreateShortLink mints a new short link with a unique shortcode.
func (h *URLHandler) CreateShortLink(
	ctx context.Context, req *CreateShortLinkRequest,
) (*CreateShortLinkResponse, error) {
	link, err := h.service.Create(ctx, req.Body.URL, req.Body.Validity, req.Body.Shortcode)
	if err != nil {
		return nil, mapCreateError(err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		Code:        link.Code,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishLinkCreated(event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("code", link.Code),
			zap.Error(err),
		)
	}

	resp := &CreateShortLinkResponse{}
	resp.Body.ShortLink = fmt.Sprintf("%s/%s", h.baseURL, link.Code)
	resp.Body.Expiry = formatTimestamp(link.ExpiresAt)

	return resp, nil
}

// GetStats returns a short link's metadata and full click history.
func (h *URLHandler) GetStats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	stats, err := h.service.Stats(ctx, req.Shortcode)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("Shortcode not found")
		}

		return nil, huma.Error500InternalServerError("Internal server error")
	}

	resp := &StatsResponse{}
	resp.Body.Clicks = len(stats.Clicks)
	resp.Body.OriginalURL = stats.Link.OriginalURL
	resp.Body.CreatedAt = formatTimestamp(stats.Link.CreatedAt)
	resp.Body.Expiry = formatTimestamp(stats.Link.ExpiresAt)
	resp.Body.ClickData = make([]ClickData, 0, len(stats.Clicks))

	for _, click := range stats.Clicks {
		resp.Body.ClickData = append(resp.Body.ClickData, ClickData{
			Timestamp: formatTimestamp(click.Timestamp),
			Referrer:  click.Referrer,
			Location:  click.Location,
			IP:        click.IP,
			UserAgent: click.UserAgent,
		})
	}

	return resp, nil
}

// Redirect resolves a shortcode and redirects the visitor to the
// destination URL, recording the click as a best-effort side effect.
func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)
	visit := shortener.Visit{
		Referrer:  meta.Referrer,
		IP:        meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	link, err := h.service.Resolve(ctx, req.Shortcode, visit)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrNotFound):
			return nil, huma.Error404NotFound("Shortcode not found")
		case errors.Is(err, shortener.ErrLinkExpired):
			return nil, huma.Error410Gone("Shortlink expired")
		default:
			return nil, huma.Error500InternalServerError("Internal server error")
		}
	}

	event := &analytics.LinkVisitedEvent{
		Code:      link.Code,
		VisitedAt: time.Now().UTC(),
		Referrer:  meta.Referrer,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Location:  shortener.LocationUnknown,
	}

	if err := h.publishLinkVisited(event); err != nil {
		h.logger.Error("failed to publish link visited event",
			zap.String("code", link.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{
		Status: http.StatusFound,
	}
	resp.Headers.Location = link.OriginalURL

	return resp, nil
}

func mapCreateError(err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error400BadRequest("Invalid or missing 'url' (must be absolute URL with http/https)")
	case errors.Is(err, shortener.ErrInvalidValidity):
		return huma.Error400BadRequest("'validity' must be a positive integer representing minutes")
	case errors.Is(err, shortener.ErrInvalidCode):
		return huma.Error400BadRequest("Provided 'shortcode' invalid. Must be alphanumeric and length 4-64.")
	case errors.Is(err, shortener.ErrCodeInUse):
		return huma.Error409Conflict("Shortcode already in use")
	case errors.Is(err, shortener.ErrAllocationExhausted):
		return huma.Error500InternalServerError("Could not generate a unique shortcode. Try again.")
	default:
		return huma.Error500InternalServerError("Internal server error creating shortcode")
	}
}
