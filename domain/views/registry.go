package views

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/logger"
	"github.com/getcalls/website/pkg/metrics"
	"github.com/getcalls/website/pkg/toast"
)

// ErrViewNotFound is returned for unknown or expired view ids.
var ErrViewNotFound = apperror.ErrViewNotFound

// Registry owns every live page view.
type Registry struct {
	idleTTL  time.Duration
	maxViews int
	clock    toast.Clock
	log      *slog.Logger

	mu      sync.RWMutex
	views   map[string]*View
	onEvict []func(*View)
}

// NewRegistry creates the registry from config.
func NewRegistry(cfg *config.Config, log *slog.Logger) *Registry {
	return NewRegistryWithClock(cfg.Views, toast.RealClock, log)
}

// NewRegistryWithClock lets tests drive toast timers and idle expiry.
func NewRegistryWithClock(cfg config.ViewsConfig, clock toast.Clock, log *slog.Logger) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	return &Registry{
		idleTTL:  cfg.IdleTTL,
		maxViews: cfg.MaxViews,
		clock:    clock,
		log:      log.With(logger.Scope("views")),
		views:    make(map[string]*View),
	}
}

// OnEvict registers fn to run whenever a view is removed, by Remove, Sweep
// or capacity eviction. Domains use it to drop per-view state.
func (r *Registry) OnEvict(fn func(*View)) {
	r.mu.Lock()
	r.onEvict = append(r.onEvict, fn)
	r.mu.Unlock()
}

// Create allocates a new view. When the registry is at capacity the least
// recently seen view is evicted first.
func (r *Registry) Create() *View {
	now := r.clock.Now()
	v := newView(uuid.NewString(), now, r.clock)

	var evicted *View
	r.mu.Lock()
	if r.maxViews > 0 && len(r.views) >= r.maxViews {
		evicted = r.oldestLocked()
		if evicted != nil {
			delete(r.views, evicted.ID)
		}
	}
	r.views[v.ID] = v
	count := len(r.views)
	r.mu.Unlock()

	if evicted != nil {
		r.log.Warn("view capacity reached, evicting oldest", slog.String("view_id", evicted.ID))
		r.release(evicted)
	}
	metrics.ViewsActive.Set(float64(count))
	return v
}

func (r *Registry) oldestLocked() *View {
	var oldest *View
	for _, v := range r.views {
		if oldest == nil || v.lastSeen.Load() < oldest.lastSeen.Load() {
			oldest = v
		}
	}
	return oldest
}

// Get returns the view with id and marks it as seen.
func (r *Registry) Get(id string) (*View, error) {
	r.mu.RLock()
	v, ok := r.views[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrViewNotFound
	}
	v.touch(r.clock.Now())
	return v, nil
}

// Lookup returns the view with id without marking it as seen. Server-side
// callers use it so provider callbacks do not keep abandoned views alive.
func (r *Registry) Lookup(id string) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	return v, ok
}

// Touch marks the view as seen. It reports whether the view exists.
func (r *Registry) Touch(id string) bool {
	_, err := r.Get(id)
	return err == nil
}

// Remove closes and forgets the view. It reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	count := len(r.views)
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.release(v)
	metrics.ViewsActive.Set(float64(count))
	return true
}

// Sweep removes views idle since before now-IdleTTL. Views with an open
// event stream are kept alive. It returns the number removed.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL).UnixNano()

	var stale []*View
	r.mu.Lock()
	for id, v := range r.views {
		if v.lastSeen.Load() < cutoff && v.Subscribers() == 0 {
			stale = append(stale, v)
			delete(r.views, id)
		}
	}
	count := len(r.views)
	r.mu.Unlock()

	for _, v := range stale {
		r.release(v)
	}
	if len(stale) > 0 {
		metrics.ViewsEvicted.Add(float64(len(stale)))
		r.log.Debug("swept idle views", slog.Int("removed", len(stale)), slog.Int("remaining", count))
	}
	metrics.ViewsActive.Set(float64(count))
	return len(stale)
}

// Count returns the number of live views.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Close releases every view. Called on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		all = append(all, v)
	}
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for _, v := range all {
		r.release(v)
	}
	metrics.ViewsActive.Set(0)
}

func (r *Registry) release(v *View) {
	r.mu.RLock()
	hooks := r.onEvict
	r.mu.RUnlock()

	v.close()
	for _, fn := range hooks {
		fn(v)
	}
}
