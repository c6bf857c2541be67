package shortener

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultValidityMinutes is the validity window applied when a creation
// request does not specify one.
const DefaultValidityMinutes = 30

// LinkStats pairs a link with its full click history.
type LinkStats struct {
	Link   ShortLink
	Clicks []ClickEvent
}

// Service owns the short link lifecycle: allocation, creation, lazy
// expiry evaluation, redirect resolution, and best-effort click recording.
type Service struct {
	links  Repository
	clicks ClickStore
	alloc  *Allocator
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the service clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new short link service.
func NewService(
	links Repository, clicks ClickStore, alloc *Allocator, logger *zap.Logger, opts ...Option,
) *Service {
	s := &Service{
		links:  links,
		clicks: clicks,
		alloc:  alloc,
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates the destination URL and validity window, secures a
// unique shortcode, and persists the link. The store's unique insert
// closes the race the allocator's pre-check leaves open: a conflict at
// insert time surfaces as ErrCodeInUse.
func (s *Service) Create(
	ctx context.Context, rawURL string, validityMinutes int, customCode string,
) (*ShortLink, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	if validityMinutes <= 0 {
		return nil, ErrInvalidValidity
	}

	code, err := s.alloc.Allocate(ctx, customCode)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	link := &ShortLink{
		Code:        code,
		OriginalURL: strings.TrimSpace(rawURL),
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(time.Duration(validityMinutes) * time.Minute),
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// Lookup returns the link for a code, or ErrNotFound.
func (s *Service) Lookup(ctx context.Context, code string) (*ShortLink, error) {
	return s.links.GetByCode(ctx, code)
}

// Resolve looks up a code for redirection. Expired links return
// ErrLinkExpired without recording anything. For live links one click
// event is recorded; recording failure is logged and swallowed so the
// redirect never depends on analytics storage.
func (s *Service) Resolve(ctx context.Context, code string, visit Visit) (*ShortLink, error) {
	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if link.Expired(now) {
		return nil, ErrLinkExpired
	}

	location := visit.Location
	if location == "" {
		location = LocationUnknown
	}

	click := &ClickEvent{
		ID:        uuid.New(),
		Code:      link.Code,
		Timestamp: now,
		Referrer:  visit.Referrer,
		IP:        visit.IP,
		UserAgent: visit.UserAgent,
		Location:  location,
	}

	if err := s.clicks.Record(ctx, click); err != nil {
		s.logger.Warn("failed to record click",
			zap.String("code", link.Code),
			zap.Error(err),
		)
	}

	return link, nil
}

// Stats returns a link and its click history ordered by timestamp ascending.
func (s *Service) Stats(ctx context.Context, code string) (*LinkStats, error) {
	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	clicks, err := s.clicks.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return &LinkStats{
		Link:   *link,
		Clicks: clicks,
	}, nil
}

func validateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ErrInvalidURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}
