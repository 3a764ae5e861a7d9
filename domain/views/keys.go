package views

import (
	"sync"

	"github.com/getcalls/website/pkg/modal"
)

// KeyBus delivers key presses posted by the browser to registered
// listeners. It is the page view's modal.KeySource.
type KeyBus struct {
	mu        sync.Mutex
	next      int
	listeners map[int]modal.KeyListener
}

func NewKeyBus() *KeyBus {
	return &KeyBus{listeners: make(map[int]modal.KeyListener)}
}

// AddKeyListener registers fn. The returned func removes it; calling it
// more than once is harmless.
func (b *KeyBus) AddKeyListener(fn modal.KeyListener) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Press delivers key to every current listener and returns how many
// received it. Listeners run outside the lock and may remove themselves.
func (b *KeyBus) Press(key string) int {
	b.mu.Lock()
	fns := make([]modal.KeyListener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
	return len(fns)
}

// Len returns the number of registered listeners.
func (b *KeyBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
