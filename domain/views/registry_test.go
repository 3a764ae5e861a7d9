package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/testutil"
	"github.com/getcalls/website/pkg/modal"
	"github.com/getcalls/website/pkg/toast"
)

func newTestRegistry(cfg config.ViewsConfig) (*Registry, *toast.ManualClock) {
	clock := toast.NewManualClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	return NewRegistryWithClock(cfg, clock, testutil.DiscardLogger()), clock
}

func TestRegistry_CreateGetRemove(t *testing.T) {
	r, _ := newTestRegistry(config.ViewsConfig{})

	v := r.Create()
	require.NotEmpty(t, v.ID)
	assert.Equal(t, 1, r.Count())

	got, err := r.Get(v.ID)
	require.NoError(t, err)
	assert.Same(t, v, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrViewNotFound)

	assert.True(t, r.Remove(v.ID))
	assert.False(t, r.Remove(v.ID))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_ViewsAreIndependent(t *testing.T) {
	r, _ := newTestRegistry(config.ViewsConfig{})
	a, b := r.Create(), r.Create()

	a.Modal.Open("contact", map[string]any{"plan": "Pro"})
	a.Toast("hello", toast.KindInfo, 0)

	assert.False(t, b.Modal.IsOpen("contact"))
	assert.Empty(t, b.Toasts.List())
}

func TestRegistry_SweepIdleViews(t *testing.T) {
	r, clock := newTestRegistry(config.ViewsConfig{IdleTTL: 10 * time.Minute})

	var evicted []string
	r.OnEvict(func(v *View) { evicted = append(evicted, v.ID) })

	stale := r.Create()
	stale.Toast("pending", toast.KindSuccess, time.Hour)
	streaming := r.Create()
	_, cancel := streaming.Subscribe()
	defer cancel()

	clock.Advance(8 * time.Minute)
	fresh := r.Create()

	clock.Advance(5 * time.Minute)
	removed := r.Sweep(clock.Now())

	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{stale.ID}, evicted)
	assert.Equal(t, 2, r.Count())
	assert.True(t, r.Touch(fresh.ID))
	assert.True(t, r.Touch(streaming.ID), "views with a live stream survive")
	assert.Equal(t, 0, stale.Toasts.Len(), "queue closed on eviction")
}

func TestRegistry_GetRefreshesIdleClock(t *testing.T) {
	r, clock := newTestRegistry(config.ViewsConfig{IdleTTL: 10 * time.Minute})
	v := r.Create()

	clock.Advance(9 * time.Minute)
	_, err := r.Get(v.ID)
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	assert.Equal(t, 0, r.Sweep(clock.Now()))
}

func TestRegistry_LookupLeavesIdleClock(t *testing.T) {
	r, clock := newTestRegistry(config.ViewsConfig{IdleTTL: 10 * time.Minute})
	v := r.Create()

	clock.Advance(9 * time.Minute)
	got, ok := r.Lookup(v.ID)
	require.True(t, ok)
	assert.Same(t, v, got)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep(clock.Now()))

	_, ok = r.Lookup(v.ID)
	assert.False(t, ok)
}

func TestRegistry_CapacityEvictsLeastRecentlySeen(t *testing.T) {
	r, clock := newTestRegistry(config.ViewsConfig{MaxViews: 2})

	first := r.Create()
	clock.Advance(time.Second)
	second := r.Create()
	clock.Advance(time.Second)
	r.Touch(first.ID)

	third := r.Create()

	assert.Equal(t, 2, r.Count())
	assert.True(t, r.Touch(first.ID))
	assert.False(t, r.Touch(second.ID))
	assert.True(t, r.Touch(third.ID))
}

func TestRegistry_Close(t *testing.T) {
	r, _ := newTestRegistry(config.ViewsConfig{})
	v := r.Create()
	v.Modal.Open("contact", nil)
	ch, _ := v.Subscribe()

	r.Close()
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, 0, v.Keys.Len(), "escape listener released")

	// the close published a final state; drain it, then the channel is closed
	for range ch {
	}
}

func TestView_EscapeKeyClosesDialog(t *testing.T) {
	r, _ := newTestRegistry(config.ViewsConfig{})
	v := r.Create()

	assert.Equal(t, 0, v.Keys.Press(modal.EscapeKey), "no listener while closed")

	v.Modal.Open("policy", map[string]any{"tab": "terms"})
	assert.Equal(t, 1, v.Keys.Len())

	assert.Equal(t, 1, v.Keys.Press(modal.EscapeKey))
	_, open := v.Modal.Active()
	assert.False(t, open)
	assert.Equal(t, 0, v.Keys.Len())
}

func TestView_SubscribeReceivesLatestSnapshot(t *testing.T) {
	r, clock := newTestRegistry(config.ViewsConfig{})
	v := r.Create()

	ch, cancel := v.Subscribe()
	defer cancel()

	v.Modal.Open("contact", nil)
	v.Toast("Saved", toast.KindSuccess, 100*time.Millisecond)
	v.Modal.Open("payment", map[string]any{"plan": "Pro"})

	snap := <-ch
	assert.Equal(t, "payment", snap.Modal.ActiveID)
	assert.Len(t, snap.Toasts, 1)
	assert.Equal(t, uint64(3), snap.Seq)

	clock.Advance(150 * time.Millisecond)
	snap = <-ch
	assert.Empty(t, snap.Toasts)
	assert.Equal(t, "payment", snap.Modal.ActiveID)
}

func TestView_CancelSubscription(t *testing.T) {
	r, _ := newTestRegistry(config.ViewsConfig{})
	v := r.Create()

	ch, cancel := v.Subscribe()
	assert.Equal(t, 1, v.Subscribers())
	cancel()
	cancel()
	assert.Equal(t, 0, v.Subscribers())

	_, ok := <-ch
	assert.False(t, ok)
}

func TestKeyBus_RemoveIsIdempotent(t *testing.T) {
	b := NewKeyBus()
	var got []string
	remove := b.AddKeyListener(func(k string) { got = append(got, k) })
	b.AddKeyListener(func(string) {})

	assert.Equal(t, 2, b.Press("Enter"))
	remove()
	remove()
	assert.Equal(t, 1, b.Len())
	b.Press("Escape")
	assert.Equal(t, []string{"Enter"}, got)
}
