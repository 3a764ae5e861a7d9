// Package sse writes Server-Sent Events to HTTP responses.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("sse: writer is closed")

// Writer serialises events onto one response. It is safe for concurrent use
// so a keep-alive ticker and the event loop can share it.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	started bool
	closed  bool
}

// NewWriter wraps w. Nothing is written until Start.
func NewWriter(w http.ResponseWriter) *Writer {
	flusher, _ := w.(http.Flusher)
	return &Writer{
		w:       w,
		flusher: flusher,
	}
}

// Start writes the stream headers and flushes them. Calling it twice is a no-op.
func (s *Writer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.closed {
		return ErrClosed
	}

	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.flush()

	s.started = true
	return nil
}

// WriteEvent writes a named event with a JSON payload. An empty name writes
// a data-only event.
func (s *Writer) WriteEvent(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal SSE data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if name != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flush()
	return nil
}

// WriteData writes a data-only event.
func (s *Writer) WriteData(data any) error {
	return s.WriteEvent("", data)
}

// WriteRetry tells the browser how long to wait before reconnecting.
func (s *Writer) WriteRetry(d time.Duration) error {
	return s.writeLine(fmt.Sprintf("retry: %d\n\n", d.Milliseconds()))
}

// WriteComment writes a comment line, used as keep-alive.
func (s *Writer) WriteComment(comment string) error {
	return s.writeLine(fmt.Sprintf(": %s\n\n", comment))
}

func (s *Writer) writeLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, err := fmt.Fprint(s.w, line); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *Writer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// Close marks the writer closed; later writes fail with ErrClosed.
func (s *Writer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Writer) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
