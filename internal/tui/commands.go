package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katworks/sandstar/internal/auth"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/feed"
	"github.com/katworks/sandstar/internal/navcache"
	"github.com/katworks/sandstar/internal/ratings"
)

const (
	loadTimeout  = 30 * time.Second
	writeTimeout = 15 * time.Second
)

// Command factories for async operations

// LoadFeedCmd loads one page of the global or an account feed
func LoadFeedCmd(loader *feed.Loader, key navcache.Key, req feed.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		res, err := loader.Load(ctx, req)
		return FeedLoadedMsg{Key: key, Result: res, Err: err}
	}
}

// LoadAccountCmd loads the account shown next to an account feed
func LoadAccountCmd(dir *feed.Directory, key navcache.Key, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		acct, err := dir.Account(ctx, id)
		return AccountLoadedMsg{Key: key, Account: acct, Err: err}
	}
}

// LoadArtistsCmd loads the artist directory
func LoadArtistsCmd(dir *feed.Directory, key navcache.Key) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		artists, err := dir.Artists(ctx)
		return ArtistsLoadedMsg{Key: key, Artists: artists, Err: err}
	}
}

// LoadArtistCmd loads an artist with aliases and accounts
func LoadArtistCmd(dir *feed.Directory, key navcache.Key, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		detail, err := dir.Artist(ctx, name)
		return ArtistLoadedMsg{Key: key, Artist: detail, Err: err}
	}
}

// LoadPostCmd fetches a post fresh, bypassing the navigation cache
func LoadPostCmd(dir *feed.Directory, key navcache.Key, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		post, err := dir.Post(ctx, id)
		return PostLoadedMsg{Key: key, Post: post, Err: err}
	}
}

// LoadMediaCmd fetches a media item fresh
func LoadMediaCmd(dir *feed.Directory, key navcache.Key, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		media, err := dir.Media(ctx, id)
		return MediaLoadedMsg{Key: key, Media: media, Err: err}
	}
}

// LoadCatalogCmd loads the rating catalog
func LoadCatalogCmd(catalog *ratings.Catalog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		c, err := catalog.Load(ctx)
		return CatalogLoadedMsg{Catalog: c, Err: err}
	}
}

// CommitRatingCmd sends an already staged rating change
func CommitRatingCmd(m *ratings.Mutator, change domain.RatingChange) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		return RatingCommittedMsg{Change: change, Err: m.Commit(ctx, change)}
	}
}

// SaveCaptionCmd sends a caption edit
func SaveCaptionCmd(m *ratings.Mutator, mediaID int64, caption string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		err := m.UpdateCaption(ctx, mediaID, caption)
		return CaptionSavedMsg{MediaID: mediaID, Caption: caption, Err: err}
	}
}

// LoginCmd verifies an operator code
func LoginCmd(a *auth.State, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		return LoginResultMsg{Err: a.Login(ctx, code)}
	}
}

// LogoutCmd clears the stored credential
func LogoutCmd(a *auth.State) tea.Cmd {
	return func() tea.Msg {
		return LogoutCompleteMsg{Err: a.Logout()}
	}
}

// OpenMediaCmd hands a media item to the external viewer
func OpenMediaCmd(opener MediaOpener, media domain.MediaSummary) tea.Cmd {
	return func() tea.Msg {
		return MediaOpenedMsg{MediaID: media.ID, Err: opener.Open(&media)}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
