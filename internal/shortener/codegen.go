package shortener

import (
	"sync"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the set of symbols shortcodes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generator produces random candidate codes. Candidates carry no
// uniqueness guarantee; the allocator checks them against the store.
type Generator interface {
	Generate(length int) (string, error)
}

// NanoidGenerator draws uniform alphanumeric candidates using nanoid,
// keeping one prepared generator per requested length.
type NanoidGenerator struct {
	mu       sync.Mutex
	byLength map[int]func() string
}

// NewGenerator creates a new candidate code generator.
func NewGenerator() *NanoidGenerator {
	return &NanoidGenerator{
		byLength: make(map[int]func() string),
	}
}

func (g *NanoidGenerator) Generate(length int) (string, error) {
	g.mu.Lock()

	gen, ok := g.byLength[length]
	if !ok {
		var err error

		gen, err = nanoid.CustomASCII(Alphabet, length)
		if err != nil {
			g.mu.Unlock()

			return "", err
		}

		g.byLength[length] = gen
	}
	g.mu.Unlock()

	return gen(), nil
}
