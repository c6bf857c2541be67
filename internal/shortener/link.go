package shortener

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LocationUnknown is the sentinel recorded when a visit's coarse location
// cannot be resolved. No geolocation lookup is performed.
const LocationUnknown = "unknown"

var (
	ErrInvalidURL      = errors.New("invalid or missing 'url' (must be absolute URL with http/https)")
	ErrInvalidValidity = errors.New("'validity' must be a positive integer representing minutes")
	ErrInvalidCode     = errors.New("provided 'shortcode' invalid, must be alphanumeric and length 4-64")
	ErrCodeInUse       = errors.New("shortcode already in use")
	ErrNotFound        = errors.New("shortcode not found")
	ErrLinkExpired     = errors.New("shortlink expired")
	// ErrAllocationExhausted signals that every generated candidate was
	// already taken, which under normal operation means the store is
	// misbehaving rather than the code space being full.
	ErrAllocationExhausted = errors.New("could not allocate a unique shortcode")
)

// ShortLink maps a shortcode to its destination URL for a bounded
// validity window. All fields are immutable after creation.
type ShortLink struct {
	Code        string
	OriginalURL string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the link's validity window has passed.
// A link is live while now <= ExpiresAt.
func (l *ShortLink) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// ClickEvent records one visit to a live short link. Events reference
// their link weakly by code value.
type ClickEvent struct {
	ID        uuid.UUID
	Code      string
	Timestamp time.Time
	Referrer  string
	IP        string
	UserAgent string
	Location  string
}

// Visit carries the request metadata captured for click recording.
type Visit struct {
	Referrer  string
	IP        string
	UserAgent string
	Location  string
}
