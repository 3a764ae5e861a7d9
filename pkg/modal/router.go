// Package modal tracks which single dialog of a page view is open.
//
// A Router holds the active dialog id and its payload. Opening a dialog
// replaces whatever was open before (last write wins); closing clears both.
// While a dialog is open the router keeps exactly one key listener
// registered on its KeySource so that an Escape press closes the dialog.
package modal

import (
	"maps"
	"sync"
)

// EscapeKey is the key name that closes the open dialog.
const EscapeKey = "Escape"

// KeyListener receives key names such as "Escape" or "Enter".
type KeyListener func(key string)

// KeySource is anything that can deliver key presses. AddKeyListener returns
// the function that removes the listener again.
type KeySource interface {
	AddKeyListener(fn KeyListener) (remove func())
}

// State is a point-in-time copy of the router.
type State struct {
	ActiveID string         `json:"activeId"`
	Payload  map[string]any `json:"payload"`
}

// Open reports whether a dialog is open in this state.
func (s State) Open() bool { return s.ActiveID != "" }

// Router is safe for concurrent use.
type Router struct {
	keys KeySource

	mu        sync.Mutex
	activeID  string
	payload   map[string]any
	removeKey func()
	observers []func(State)
}

// NewRouter creates a closed router. keys may be nil, in which case Escape
// handling is disabled.
func NewRouter(keys KeySource) *Router {
	return &Router{
		keys:    keys,
		payload: map[string]any{},
	}
}

// OnChange registers fn to be called after every state transition.
func (r *Router) OnChange(fn func(State)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// Open makes id the active dialog with the given payload. A nil payload is
// stored as empty. Reopening the same id replaces the payload.
func (r *Router) Open(id string, payload map[string]any) {
	if id == "" {
		r.Close()
		return
	}

	r.mu.Lock()
	wasOpen := r.activeID != ""
	r.activeID = id
	r.payload = clonePayload(payload)
	attach := !wasOpen && r.keys != nil
	state := r.stateLocked()
	observers := r.observers
	r.mu.Unlock()

	// The key source may call back into the router, so register outside the lock.
	if attach {
		remove := r.keys.AddKeyListener(r.handleKey)
		r.mu.Lock()
		if r.activeID != "" && r.removeKey == nil {
			r.removeKey = remove
			remove = nil
		}
		r.mu.Unlock()
		if remove != nil {
			remove()
		}
	}

	notify(observers, state)
}

// Close clears the active dialog and its payload. It is a no-op when nothing
// is open.
func (r *Router) Close() {
	r.mu.Lock()
	if r.activeID == "" {
		r.mu.Unlock()
		return
	}
	r.activeID = ""
	r.payload = map[string]any{}
	remove := r.removeKey
	r.removeKey = nil
	state := r.stateLocked()
	observers := r.observers
	r.mu.Unlock()

	if remove != nil {
		remove()
	}
	notify(observers, state)
}

// Update merges values into the payload of the open dialog id. It returns
// false and does nothing when id is not the open dialog.
func (r *Router) Update(id string, values map[string]any) bool {
	r.mu.Lock()
	if id == "" || r.activeID != id {
		r.mu.Unlock()
		return false
	}
	next := clonePayload(r.payload)
	maps.Copy(next, values)
	r.payload = next
	state := r.stateLocked()
	observers := r.observers
	r.mu.Unlock()

	notify(observers, state)
	return true
}

// IsOpen reports whether id is the active dialog.
func (r *Router) IsOpen(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return id != "" && r.activeID == id
}

// Active returns the open dialog id, if any.
func (r *Router) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID, r.activeID != ""
}

// Payload returns a copy of the open dialog's payload.
func (r *Router) Payload() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clonePayload(r.payload)
}

// State returns a snapshot of the router.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Router) stateLocked() State {
	return State{ActiveID: r.activeID, Payload: clonePayload(r.payload)}
}

func (r *Router) handleKey(key string) {
	if key == EscapeKey {
		r.Close()
	}
}

func notify(observers []func(State), s State) {
	for _, fn := range observers {
		fn(s)
	}
}

func clonePayload(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return maps.Clone(p)
}
