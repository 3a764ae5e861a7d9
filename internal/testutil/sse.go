package testutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// SSEEvent is one parsed Server-Sent Event.
type SSEEvent struct {
	Event string
	Data  string
	ID    string
	Retry int
}

// JSON decodes the event data into v.
func (e SSEEvent) JSON(v any) error {
	return json.Unmarshal([]byte(e.Data), v)
}

// ParseSSE splits an event-stream body into events. Comment lines are
// skipped; a retry-only block is kept as an event with Retry set.
func ParseSSE(body io.Reader) ([]SSEEvent, error) {
	var events []SSEEvent
	scanner := bufio.NewScanner(body)

	var cur SSEEvent
	var data []string
	pending := false

	flush := func() {
		if pending {
			cur.Data = strings.Join(data, "\n")
			events = append(events, cur)
		}
		cur, data, pending = SSEEvent{}, nil, false
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			cur.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			pending = true
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			pending = true
		case strings.HasPrefix(line, "id:"):
			cur.ID = strings.TrimSpace(strings.TrimPrefix(line, "id:"))
			pending = true
		case strings.HasPrefix(line, "retry:"):
			cur.Retry, _ = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "retry:")))
			pending = true
		}
	}
	flush()

	return events, scanner.Err()
}

// ParseSSEBytes parses events from a recorded body.
func ParseSSEBytes(b []byte) ([]SSEEvent, error) {
	return ParseSSE(bytes.NewReader(b))
}

// Named returns the events called name, in order.
func Named(events []SSEEvent, name string) []SSEEvent {
	var out []SSEEvent
	for _, e := range events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}
