package views

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/getcalls/website/pkg/metrics"
	"github.com/getcalls/website/pkg/modal"
	"github.com/getcalls/website/pkg/toast"
)

// Snapshot is the state pushed to the browser after every change.
type Snapshot struct {
	ViewID string               `json:"viewId"`
	Seq    uint64               `json:"seq"`
	Modal  modal.State          `json:"modal"`
	Toasts []toast.Notification `json:"toasts"`
}

// View is the server-side state of one page load: which dialog is open,
// the queued toasts and the key listeners. Consumers receive the View
// explicitly; nothing here is global.
type View struct {
	ID        string
	CreatedAt time.Time

	Modal  *modal.Router
	Toasts *toast.Queue
	Keys   *KeyBus

	lastSeen atomic.Int64
	seq      atomic.Uint64

	mu         sync.Mutex
	subs       map[int]chan Snapshot
	nextSub    int
	closed     bool
	lastActive string
}

func newView(id string, now time.Time, clock toast.Clock) *View {
	keys := NewKeyBus()
	v := &View{
		ID:        id,
		CreatedAt: now,
		Modal:     modal.NewRouter(keys),
		Toasts:    toast.NewQueue(clock),
		Keys:      keys,
		subs:      make(map[int]chan Snapshot),
	}
	v.lastSeen.Store(now.UnixNano())

	v.Modal.OnChange(func(s modal.State) {
		v.countOpen(s.ActiveID)
		v.publish()
	})
	v.Toasts.OnChange(func([]toast.Notification) { v.publish() })
	return v
}

func (v *View) countOpen(active string) {
	v.mu.Lock()
	prev := v.lastActive
	v.lastActive = active
	v.mu.Unlock()
	if active != "" && active != prev {
		metrics.ModalOpens.WithLabelValues(active).Inc()
	}
}

// Toast shows a notification on this view.
func (v *View) Toast(message string, kind toast.Kind, ttl time.Duration) int64 {
	kind = toast.ParseKind(string(kind))
	metrics.ToastsShown.WithLabelValues(string(kind)).Inc()
	return v.Toasts.Show(message, kind, ttl)
}

// Snapshot returns the current state of the view.
func (v *View) Snapshot() Snapshot {
	return Snapshot{
		ViewID: v.ID,
		Seq:    v.seq.Load(),
		Modal:  v.Modal.State(),
		Toasts: v.Toasts.List(),
	}
}

// LastSeen is the last time the browser touched this view.
func (v *View) LastSeen() time.Time {
	return time.Unix(0, v.lastSeen.Load())
}

func (v *View) touch(now time.Time) {
	v.lastSeen.Store(now.UnixNano())
}

// Subscribe returns a channel that receives a snapshot after each change.
// The channel holds one element; a slow reader only sees the latest
// snapshot. The cancel func closes the channel.
func (v *View) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := v.nextSub
	v.nextSub++
	v.subs[id] = ch
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			if c, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(c)
			}
			v.mu.Unlock()
		})
	}
}

// Subscribers returns the number of open subscriptions.
func (v *View) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

func (v *View) publish() {
	v.mu.Lock()
	defer v.mu.Unlock()

	// Built under mu so subscribers never see snapshots out of order.
	v.seq.Add(1)
	snap := v.Snapshot()
	for _, ch := range v.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot, keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// close releases timers, listeners and subscribers.
func (v *View) close() {
	v.Modal.Close()
	v.Toasts.Close()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		close(ch)
		delete(v.subs, id)
	}
}
