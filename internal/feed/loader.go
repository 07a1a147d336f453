// Package feed loads list pages through the navigation cache and fetches
// the detail records shown alongside them.
package feed

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/navcache"
)

// FilterSource supplies the active filter parameters
type FilterSource interface {
	Query() url.Values
}

// Request describes one list page to show
type Request struct {
	Path      string     // location path, e.g. "/" or "/account/42"
	Query     url.Values // location query, e.g. page=2
	AccountID string     // empty for the global feed
	Page      int        // 1-based
}

// Result is a page ready to render
type Result struct {
	Key          navcache.Key
	Items        []*domain.PostSummary
	Page         int
	ScrollOffset int
	Cached       bool
	HasPrev      bool
	HasNext      bool
}

// Loader implements the load protocol: serve from the navigation cache when
// possible, otherwise fetch with the active filter and store by key.
type Loader struct {
	repo     domain.PostRepository
	cache    *navcache.Cache
	filters  FilterSource
	pageSize int
	logger   *slog.Logger
}

// NewLoader creates a Loader fetching pageSize posts per page
func NewLoader(repo domain.PostRepository, cache *navcache.Cache, filters FilterSource, pageSize int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = 24
	}
	return &Loader{repo: repo, cache: cache, filters: filters, pageSize: pageSize, logger: logger}
}

// PageSize returns the number of posts requested per page
func (l *Loader) PageSize() int {
	return l.pageSize
}

// Key returns the cache key for a location under the active filter
func (l *Loader) Key(path string, query url.Values) navcache.Key {
	return navcache.NewKey(path, query, l.filters.Query())
}

// Load returns the page for req. A second request for a key that is still
// loading fails with domain.ErrLoadInFlight and sends nothing.
func (l *Loader) Load(ctx context.Context, req Request) (*Result, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	filter := l.filters.Query()
	key := navcache.NewKey(req.Path, req.Query, filter)

	if page, ok := l.cache.Get(key); ok {
		l.logger.Debug("navigation cache hit", "key", key.String())
		return l.result(key, req.Page, page.Items, page.ScrollOffset, true), nil
	}

	ticket, ok := l.cache.Begin(key)
	if !ok {
		return nil, domain.ErrLoadInFlight
	}
	stored := false
	defer func() {
		if !stored {
			l.cache.Abort(ticket)
		}
	}()

	start := time.Now()
	offset := (req.Page - 1) * l.pageSize
	items, err := l.repo.GetPosts(ctx, req.AccountID, offset, l.pageSize, filter)
	if err != nil {
		l.logger.Error("failed to load posts", "key", key.String(), "ticket", ticket.ID, "error", err)
		return nil, err
	}

	stored = true
	if !l.cache.Complete(ticket, items) {
		l.logger.Debug("load finished after cache reset", "key", key.String(), "ticket", ticket.ID)
	}
	l.logger.Debug("loaded posts", "key", key.String(), "count", len(items), "duration", time.Since(start))

	return l.result(key, req.Page, items, 0, false), nil
}

func (l *Loader) result(key navcache.Key, page int, items []*domain.PostSummary, scroll int, cached bool) *Result {
	return &Result{
		Key:          key,
		Items:        items,
		Page:         page,
		ScrollOffset: scroll,
		Cached:       cached,
		HasPrev:      page > 1,
		HasNext:      len(items) >= l.pageSize,
	}
}
