package shortener

import (
	"context"
	"regexp"
	"strings"
)

const (
	minAutoLength     = 6
	maxAutoLength     = 8
	attemptsPerLength = 6
	lastResortLength  = 10
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{4,64}$`)

// ValidCode reports whether a custom shortcode matches the accepted
// format: alphanumeric, 4 to 64 characters.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Allocator secures a unique shortcode, either validating a caller-supplied
// candidate or generating one with collision retries. It is best-effort and
// lock-free: a concurrent writer can still win a checked code, and the
// registry's unique insert is the final arbiter.
type Allocator struct {
	links Repository
	gen   Generator
}

// NewAllocator creates a new shortcode allocator.
func NewAllocator(links Repository, gen Generator) *Allocator {
	return &Allocator{
		links: links,
		gen:   gen,
	}
}

// Allocate returns a shortcode that was unoccupied at check time.
// When custom is non-empty it is validated and checked as-is; otherwise
// candidates are drawn at increasing lengths until one is free.
func (a *Allocator) Allocate(ctx context.Context, custom string) (string, error) {
	if custom != "" {
		return a.allocateCustom(ctx, custom)
	}

	for length := minAutoLength; length <= maxAutoLength; length++ {
		for attempt := 0; attempt < attemptsPerLength; attempt++ {
			candidate, err := a.gen.Generate(length)
			if err != nil {
				return "", err
			}

			taken, err := a.links.Exists(ctx, candidate)
			if err != nil {
				return "", err
			}

			if !taken {
				return candidate, nil
			}
		}
	}

	// Final attempt with a long candidate before giving up.
	candidate, err := a.gen.Generate(lastResortLength)
	if err != nil {
		return "", err
	}

	taken, err := a.links.Exists(ctx, candidate)
	if err != nil {
		return "", err
	}

	if taken {
		return "", ErrAllocationExhausted
	}

	return candidate, nil
}

func (a *Allocator) allocateCustom(ctx context.Context, custom string) (string, error) {
	custom = strings.TrimSpace(custom)
	if !ValidCode(custom) {
		return "", ErrInvalidCode
	}

	taken, err := a.links.Exists(ctx, custom)
	if err != nil {
		return "", err
	}

	if taken {
		return "", ErrCodeInUse
	}

	return custom, nil
}
