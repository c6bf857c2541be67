package shortener

import "context"

// Repository defines the storage contract for short links. Create must
// enforce shortcode uniqueness at the storage layer; the allocator's
// existence pre-check only narrows the race window, it does not close it.
type Repository interface {
	// Create persists a new link. Returns ErrCodeInUse when the code is
	// already registered, including when a concurrent writer won the race
	// after a successful Exists check.
	Create(ctx context.Context, link *ShortLink) error

	// GetByCode returns the link for a code, or ErrNotFound.
	GetByCode(ctx context.Context, code string) (*ShortLink, error)

	// Exists reports whether a code is already registered.
	Exists(ctx context.Context, code string) (bool, error)
}

// ClickStore defines the storage contract for click events.
type ClickStore interface {
	// Record appends one click event.
	Record(ctx context.Context, click *ClickEvent) error

	// ListByCode returns all click events for a code ordered by
	// timestamp ascending.
	ListByCode(ctx context.Context, code string) ([]ClickEvent, error)
}
