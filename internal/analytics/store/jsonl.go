package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jreis/shortener/internal/analytics"
)

// JSONL is an analytics.Store that appends events as JSON lines to a
// file, one object per line. The file is opened in append mode so
// multiple runs accumulate rather than truncate.
type JSONL struct {
	mu   sync.Mutex
	file *os.File
}

// NewJSONL opens (or creates) the access log file at path.
func NewJSONL(path string) (*JSONL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open access log: %w", err)
	}

	return &JSONL{file: file}, nil
}

func (s *JSONL) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	return s.writeLine(struct {
		Event string `json:"event"`
		*analytics.LinkCreatedEvent
	}{
		Event:            analytics.TopicLinkCreated,
		LinkCreatedEvent: event,
	})
}

func (s *JSONL) SaveLinkVisited(_ context.Context, event *analytics.LinkVisitedEvent) error {
	return s.writeLine(struct {
		Event string `json:"event"`
		*analytics.LinkVisitedEvent
	}{
		Event:            analytics.TopicLinkVisited,
		LinkVisitedEvent: event,
	})
}

func (s *JSONL) writeLine(entry any) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.file.Write(append(line, '\n'))

	return err
}

// Shutdown closes the underlying file.
func (s *JSONL) Shutdown() error {
	return s.file.Close()
}
