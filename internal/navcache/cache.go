// Package navcache holds the session-scoped cache of loaded list pages keyed
// by navigation state, along with per-key load tracking.
package navcache

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/katworks/sandstar/internal/domain"
)

// Page is a cached list response plus the scroll offset the user left it at.
type Page struct {
	Items        []*domain.PostSummary
	ScrollOffset int
}

// LoadState is the load status of one key
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Ready
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// Ticket is issued by Begin and must be passed to exactly one of Complete
// or Abort.
type Ticket struct {
	ID         string
	Key        Key
	generation uint64
}

type ratingRef struct {
	item   domain.ItemKind
	id     string
	rating domain.RatingKind
}

// pendingRating is the latest staged value for a ref and the number of
// commits still outstanding for it.
type pendingRating struct {
	value       domain.RatingLabel
	outstanding int
}

// Cache is safe for concurrent use.
type Cache struct {
	mu          sync.Mutex
	pages       map[Key]*Page
	inflight    map[Key]string // key -> ticket ID
	generation  uint64
	unconfirmed map[ratingRef]*pendingRating
	logger      *slog.Logger
}

// New creates an empty cache
func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		pages:       make(map[Key]*Page),
		inflight:    make(map[Key]string),
		unconfirmed: make(map[ratingRef]*pendingRating),
		logger:      logger,
	}
}

// Get returns a snapshot of the cached page for key. Items are shared with
// the cache; the scroll offset is copied.
func (c *Cache) Get(key Key) (*Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[key]
	if !ok {
		return nil, false
	}
	return &Page{Items: p.Items, ScrollOffset: p.ScrollOffset}, true
}

// Put stores items under key with a zero scroll offset, replacing any
// existing page wholesale.
func (c *Cache) Put(key Key, items []*domain.PostSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = &Page{Items: items}
}

// SaveScroll records the scroll offset for a cached page. It is a no-op when
// the key is not cached.
func (c *Cache) SaveScroll(key Key, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pages[key]; ok {
		p.ScrollOffset = offset
	}
}

// Clear drops every page and invalidates outstanding tickets.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[Key]*Page)
	c.inflight = make(map[Key]string)
	c.unconfirmed = make(map[ratingRef]*pendingRating)
	c.generation++
	c.logger.Debug("navigation cache cleared", "generation", c.generation)
}

// Len returns the number of cached pages
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

// State reports the load status of key
func (c *Cache) State(key Key) LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[key]; ok {
		return Loading
	}
	if _, ok := c.pages[key]; ok {
		return Ready
	}
	return Idle
}

// Begin marks key as loading. It returns false when a load for the same key
// is already running; the caller must drop its request.
func (c *Cache) Begin(key Key) (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.inflight[key]; ok {
		c.logger.Debug("load already in flight", "key", key.String(), "ticket", id)
		return Ticket{}, false
	}
	t := Ticket{ID: ulid.Make().String(), Key: key, generation: c.generation}
	c.inflight[key] = t.ID
	return t, true
}

// Complete stores items for the ticket's key and releases it. The items are
// discarded when the ticket was invalidated by Clear.
func (c *Cache) Complete(t Ticket, items []*domain.PostSummary) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[t.Key] != t.ID || t.generation != c.generation {
		c.logger.Debug("discarding stale load", "key", t.Key.String(), "ticket", t.ID)
		return false
	}
	delete(c.inflight, t.Key)
	c.pages[t.Key] = &Page{Items: items}
	return true
}

// Abort releases the ticket without storing anything.
func (c *Cache) Abort(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[t.Key] == t.ID {
		delete(c.inflight, t.Key)
	}
}

// ApplyRating overwrites the rating on every cached post or media matching
// the change and marks it unconfirmed. It returns the number of items
// updated.
func (c *Cache) ApplyRating(change domain.RatingChange) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, page := range c.pages {
		for _, post := range page.Items {
			n += applyToPost(post, change)
		}
	}
	ref := refOf(change)
	pending, ok := c.unconfirmed[ref]
	if !ok {
		pending = &pendingRating{}
		c.unconfirmed[ref] = pending
	}
	pending.value = change.Value
	pending.outstanding++
	return n
}

// applyToPost updates post (or one of its media) in place.
func applyToPost(post *domain.PostSummary, change domain.RatingChange) int {
	switch change.ItemKind {
	case domain.ItemPost:
		if post.PostID == change.ItemID {
			post.SetRating(change.RatingKind, change.Value)
			return 1
		}
	case domain.ItemMedia:
		n := 0
		for i := range post.Media {
			if strconv.FormatInt(post.Media[i].ID, 10) == change.ItemID {
				post.Media[i].SetRating(change.RatingKind, change.Value)
				n++
			}
		}
		return n
	}
	return 0
}

// ApplyRatingTo applies change to a post held outside the cache, such as
// a freshly fetched detail view.
func ApplyRatingTo(post *domain.PostSummary, change domain.RatingChange) int {
	return applyToPost(post, change)
}

// Confirm records a successful commit. The mark is cleared only once no
// commit is outstanding and change carries the latest staged value.
func (c *Cache) Confirm(change domain.RatingChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ref := refOf(change)
	pending, ok := c.unconfirmed[ref]
	if !ok {
		return
	}
	pending.outstanding = max(pending.outstanding-1, 0)
	if pending.outstanding == 0 && pending.value == change.Value {
		delete(c.unconfirmed, ref)
	}
}

// Fail records a commit the server did not accept. The mark stays.
func (c *Cache) Fail(change domain.RatingChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pending, ok := c.unconfirmed[refOf(change)]; ok {
		pending.outstanding = max(pending.outstanding-1, 0)
	}
}

// Unconfirmed reports whether the rating was changed locally but not yet
// acknowledged by the server.
func (c *Cache) Unconfirmed(item domain.ItemKind, id string, rating domain.RatingKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.unconfirmed[ratingRef{item: item, id: id, rating: rating}]
	return ok
}

func refOf(change domain.RatingChange) ratingRef {
	return ratingRef{item: change.ItemKind, id: change.ItemID, rating: change.RatingKind}
}
