// Package ratings holds the rating catalog and applies operator rating edits.
package ratings

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/katworks/sandstar/internal/domain"
)

// Catalog loads the server's rating labels once per session and augments
// both lists with Waiting so it can be used as a filter value.
type Catalog struct {
	mu      sync.RWMutex
	repo    domain.CatalogRepository
	catalog domain.RatingCatalog
	loaded  bool
	logger  *slog.Logger
}

// NewCatalog creates an unloaded catalog
func NewCatalog(repo domain.CatalogRepository, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{repo: repo, logger: logger}
}

// Load fetches the labels unless already loaded. On failure the catalog
// stays empty and the error is returned for logging; browsing still works.
func (c *Catalog) Load(ctx context.Context) (domain.RatingCatalog, error) {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.catalog, nil
	}
	c.mu.RUnlock()

	fetched, err := c.repo.GetRatingCatalog(ctx)
	if err != nil {
		c.logger.Error("failed to load rating catalog", "error", err)
		return domain.RatingCatalog{}, err
	}

	augmented := domain.RatingCatalog{
		Content: withWaiting(fetched.Content),
		Safety:  withWaiting(fetched.Safety),
	}

	c.mu.Lock()
	c.catalog = augmented
	c.loaded = true
	c.mu.Unlock()

	c.logger.Debug("loaded rating catalog", "content", len(augmented.Content), "safety", len(augmented.Safety))
	return augmented, nil
}

// Get returns the loaded catalog, empty before Load succeeds
func (c *Catalog) Get() domain.RatingCatalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}

// Reset forgets the loaded labels so the next Load refetches them
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = domain.RatingCatalog{}
	c.loaded = false
}

func withWaiting(labels []domain.RatingLabel) []domain.RatingLabel {
	out := slices.Clone(labels)
	if !slices.Contains(out, domain.Waiting) {
		out = append(out, domain.Waiting)
	}
	return out
}

// AssignableOptions returns the labels an operator may pick for an item
// whose current rating of kind is current. Waiting is only offered when the
// item already holds it, and then first.
func AssignableOptions(catalog domain.RatingCatalog, kind domain.RatingKind, current domain.RatingLabel) []domain.RatingLabel {
	var out []domain.RatingLabel
	if current == domain.Waiting {
		out = append(out, domain.Waiting)
	}
	for _, l := range catalog.Labels(kind) {
		if l == domain.Waiting || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	return out
}
