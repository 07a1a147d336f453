// Package router maps locations to views and keeps the session history.
package router

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/katworks/sandstar/internal/navcache"
)

// ScrollPolicy says where a newly shown view starts
type ScrollPolicy int

const (
	ScrollTop ScrollPolicy = iota
	ScrollRestore
)

// Transition describes the effects of entering a view
type Transition struct {
	Location   Location
	Route      Route
	DetailMode bool
	Scroll     ScrollPolicy
}

// Handler renders a route. T is whatever the caller needs back, such as
// a command to run.
type Handler[T any] func(Transition) T

// ScrollStore records the scroll offset of a cached view
type ScrollStore interface {
	SaveScroll(key navcache.Key, offset int)
}

// KeyFunc derives the cache key of a location
type KeyFunc func(Location) navcache.Key

// Router dispatches locations to the single handler registered for their
// kind and maintains back/forward history.
type Router[T any] struct {
	mu       sync.Mutex
	handlers map[Kind]Handler[T]
	history  []Location
	index    int
	scroll   ScrollStore
	keyFor   KeyFunc
	logger   *slog.Logger
}

// New creates a router saving outgoing scroll offsets into scroll
func New[T any](scroll ScrollStore, keyFor KeyFunc, logger *slog.Logger) *Router[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router[T]{
		handlers: make(map[Kind]Handler[T]),
		index:    -1,
		scroll:   scroll,
		keyFor:   keyFor,
		logger:   logger,
	}
}

// Handle registers the handler for kind. Registering twice panics.
func (r *Router[T]) Handle(kind Kind, h Handler[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[kind]; ok {
		panic(fmt.Sprintf("router: duplicate handler for %s", kind))
	}
	r.handlers[kind] = h
}

// Current returns the active location
func (r *Router[T]) Current() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index < 0 {
		return Location{}, false
	}
	return r.history[r.index], true
}

// CurrentKey returns the cache key of the active location
func (r *Router[T]) CurrentKey() navcache.Key {
	loc, _ := r.Current()
	return r.keyFor(loc)
}

// Navigate pushes raw onto the history, dropping any forward entries, and
// shows it. scroll is the offset of the view being left.
func (r *Router[T]) Navigate(raw string, scroll int) (Transition, T) {
	loc := Parse(raw)

	r.mu.Lock()
	r.saveScrollLocked(scroll)
	r.history = append(r.history[:r.index+1], loc)
	r.index = len(r.history) - 1
	r.mu.Unlock()

	return r.dispatch(loc)
}

// Back shows the previous history entry. ok is false at the start.
func (r *Router[T]) Back(scroll int) (t Transition, out T, ok bool) {
	return r.step(-1, scroll)
}

// Forward shows the next history entry. ok is false at the end.
func (r *Router[T]) Forward(scroll int) (t Transition, out T, ok bool) {
	return r.step(1, scroll)
}

// CanBack reports whether Back would move
func (r *Router[T]) CanBack() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index > 0
}

// Reload re-runs the handler for the current location without touching
// history. Used after the filter or credential changes.
func (r *Router[T]) Reload() (Transition, T) {
	loc, ok := r.Current()
	if !ok {
		loc = Parse("/")
		r.mu.Lock()
		r.history = []Location{loc}
		r.index = 0
		r.mu.Unlock()
	}
	return r.dispatch(loc)
}

func (r *Router[T]) step(delta, scroll int) (Transition, T, bool) {
	r.mu.Lock()
	next := r.index + delta
	if next < 0 || next >= len(r.history) {
		r.mu.Unlock()
		var zero T
		return Transition{}, zero, false
	}
	r.saveScrollLocked(scroll)
	r.index = next
	loc := r.history[next]
	r.mu.Unlock()

	t, out := r.dispatch(loc)
	return t, out, true
}

// saveScrollLocked must be called with r.mu held.
func (r *Router[T]) saveScrollLocked(scroll int) {
	if r.index < 0 || r.scroll == nil {
		return
	}
	out := r.history[r.index]
	if !out.Route().Kind.IsList() {
		return
	}
	r.scroll.SaveScroll(r.keyFor(out), scroll)
}

func (r *Router[T]) dispatch(loc Location) (Transition, T) {
	route := loc.Route()
	t := Transition{
		Location:   loc,
		Route:      route,
		DetailMode: route.Kind.IsDetail(),
		Scroll:     ScrollTop,
	}
	if route.Kind.IsList() {
		t.Scroll = ScrollRestore
	}

	r.mu.Lock()
	h, ok := r.handlers[route.Kind]
	r.mu.Unlock()

	r.logger.Debug("navigate", "location", loc.String(), "view", route.Kind.String(), "page", route.Page)

	if !ok {
		var zero T
		return t, zero
	}
	return t, h(t)
}
