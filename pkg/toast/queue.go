// Package toast implements the notification queue of a page view.
//
// Each notification owns a single cleanup function, the cancel of its
// auto-dismiss timer. Whichever of expiry or Dismiss runs first removes the
// record and releases the timer; the other finds nothing to do.
package toast

import (
	"slices"
	"sync"
	"time"
)

// Kind is the closed set of notification kinds.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// DefaultTTL is applied by the Success, Info and Error helpers.
const DefaultTTL = 3200 * time.Millisecond

// ParseKind maps unknown kinds to success.
func ParseKind(s string) Kind {
	switch k := Kind(s); k {
	case KindSuccess, KindInfo, KindError:
		return k
	default:
		return KindSuccess
	}
}

// Icon returns the glyph shown next to a notification of kind k.
func (k Kind) Icon() string {
	switch k {
	case KindInfo:
		return "💡"
	case KindError:
		return "⚠"
	default:
		return "✓"
	}
}

// Notification is one queued toast. TTL zero means it stays until dismissed.
type Notification struct {
	ID        int64         `json:"id"`
	Message   string        `json:"message"`
	Kind      Kind          `json:"kind"`
	TTL       time.Duration `json:"-"`
	TTLMillis int64         `json:"ttl"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Clock schedules delayed callbacks. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}

type entry struct {
	n      Notification
	cancel func() bool
}

// Queue is safe for concurrent use. Timer callbacks run on their own
// goroutines, so every mutation happens under mu and observers are called
// after it is released.
type Queue struct {
	clock Clock

	mu        sync.Mutex
	lastID    int64
	entries   []*entry
	closed    bool
	observers []func([]Notification)
}

// NewQueue creates an empty queue. A nil clock means RealClock.
func NewQueue(clock Clock) *Queue {
	if clock == nil {
		clock = RealClock
	}
	return &Queue{clock: clock}
}

// OnChange registers fn to be called with a snapshot after every show and
// every removal.
func (q *Queue) OnChange(fn func([]Notification)) {
	q.mu.Lock()
	q.observers = append(q.observers, fn)
	q.mu.Unlock()
}

// Show appends a notification and returns its id. When ttl is positive the
// notification removes itself after ttl. Unknown kinds become success.
func (q *Queue) Show(message string, kind Kind, ttl time.Duration) int64 {
	if ttl < 0 {
		ttl = 0
	}

	q.mu.Lock()
	q.lastID++
	id := q.lastID
	e := &entry{n: Notification{
		ID:        id,
		Message:   message,
		Kind:      ParseKind(string(kind)),
		TTL:       ttl,
		TTLMillis: ttl.Milliseconds(),
		CreatedAt: q.clock.Now(),
	}}
	if q.closed {
		q.mu.Unlock()
		return id
	}
	q.entries = append(q.entries, e)
	if ttl > 0 {
		e.cancel = q.clock.AfterFunc(ttl, func() { q.remove(id, false) })
	}
	snapshot, observers := q.snapshotLocked(), q.observers
	q.mu.Unlock()

	notify(observers, snapshot)
	return id
}

func (q *Queue) Success(message string) int64 { return q.Show(message, KindSuccess, DefaultTTL) }
func (q *Queue) Info(message string) int64    { return q.Show(message, KindInfo, DefaultTTL) }
func (q *Queue) Error(message string) int64   { return q.Show(message, KindError, DefaultTTL) }

// Dismiss removes the notification with id and cancels its timer. Unknown
// or already removed ids are ignored.
func (q *Queue) Dismiss(id int64) {
	q.remove(id, true)
}

func (q *Queue) remove(id int64, cancelTimer bool) {
	q.mu.Lock()
	i := slices.IndexFunc(q.entries, func(e *entry) bool { return e.n.ID == id })
	if i < 0 {
		q.mu.Unlock()
		return
	}
	e := q.entries[i]
	q.entries = slices.Delete(q.entries, i, i+1)
	if cancelTimer && e.cancel != nil {
		e.cancel()
	}
	e.cancel = nil
	snapshot, observers := q.snapshotLocked(), q.observers
	q.mu.Unlock()

	notify(observers, snapshot)
}

// List returns the notifications in insertion order.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Len returns the number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Close cancels every pending timer and drops all notifications. Later
// calls to Show return an id but queue nothing.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.cancel != nil {
			e.cancel()
		}
	}
	q.entries = nil
	q.closed = true
	q.observers = nil
}

func (q *Queue) snapshotLocked() []Notification {
	out := make([]Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.n
	}
	return out
}

func notify(observers []func([]Notification), snapshot []Notification) {
	for _, fn := range observers {
		fn(snapshot)
	}
}
