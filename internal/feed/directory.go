package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/katworks/sandstar/internal/domain"
)

// Directory fetches artists, accounts and single posts or media. Account
// records are cached for the session; everything else is fetched fresh.
type Directory struct {
	posts  domain.PostRepository
	dir    domain.DirectoryRepository
	logger *slog.Logger

	mu       sync.Mutex
	accounts map[string]*domain.Account
}

// NewDirectory creates a Directory
func NewDirectory(posts domain.PostRepository, dir domain.DirectoryRepository, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		posts:    posts,
		dir:      dir,
		logger:   logger,
		accounts: make(map[string]*domain.Account),
	}
}

// Account returns an account, from the session cache when possible
func (d *Directory) Account(ctx context.Context, id string) (*domain.Account, error) {
	d.mu.Lock()
	acc, ok := d.accounts[id]
	d.mu.Unlock()
	if ok {
		return acc, nil
	}

	acc, err := d.dir.GetAccount(ctx, id)
	if err != nil {
		d.logger.Error("failed to fetch account", "id", id, "error", err)
		return nil, err
	}

	d.mu.Lock()
	d.accounts[id] = acc
	d.mu.Unlock()
	return acc, nil
}

// Reset drops cached accounts
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts = make(map[string]*domain.Account)
}

// Artists returns every artist
func (d *Directory) Artists(ctx context.Context) ([]domain.Artist, error) {
	artists, err := d.dir.GetArtists(ctx)
	if err != nil {
		d.logger.Error("failed to fetch artists", "error", err)
		return nil, err
	}
	d.logger.Debug("fetched artists", "count", len(artists))
	return artists, nil
}

// Artist returns one artist with aliases and accounts
func (d *Directory) Artist(ctx context.Context, name string) (*domain.ArtistDetail, error) {
	artist, err := d.dir.GetArtist(ctx, name)
	if err != nil {
		d.logger.Error("failed to fetch artist", "name", name, "error", err)
		return nil, err
	}
	return artist, nil
}

// Post returns one post with its media
func (d *Directory) Post(ctx context.Context, id string) (*domain.PostSummary, error) {
	post, err := d.posts.GetPost(ctx, id)
	if err != nil {
		d.logger.Error("failed to fetch post", "id", id, "error", err)
		return nil, err
	}
	return post, nil
}

// Media returns one media item
func (d *Directory) Media(ctx context.Context, id string) (*domain.MediaSummary, error) {
	media, err := d.posts.GetMedia(ctx, id)
	if err != nil {
		d.logger.Error("failed to fetch media", "id", id, "error", err)
		return nil, err
	}
	return media, nil
}
