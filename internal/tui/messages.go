package tui

import (
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/feed"
	"github.com/katworks/sandstar/internal/navcache"
	"github.com/katworks/sandstar/internal/search"
)

// Every load message carries the cache key of the location it was issued
// for. Update drops it unless that location is still the current one.

// FeedLoadedMsg is sent when a feed or account page is ready
type FeedLoadedMsg struct {
	Key    navcache.Key
	Result *feed.Result
	Err    error
}

// AccountLoadedMsg is sent when the account sidebar is ready
type AccountLoadedMsg struct {
	Key     navcache.Key
	Account *domain.Account
	Err     error
}

// ArtistsLoadedMsg is sent when the artist directory is ready
type ArtistsLoadedMsg struct {
	Key     navcache.Key
	Artists []domain.Artist
	Err     error
}

// ArtistLoadedMsg is sent when an artist page is ready
type ArtistLoadedMsg struct {
	Key    navcache.Key
	Artist *domain.ArtistDetail
	Err    error
}

// PostLoadedMsg is sent when a post detail is ready
type PostLoadedMsg struct {
	Key  navcache.Key
	Post *domain.PostSummary
	Err  error
}

// MediaLoadedMsg is sent when a media detail is ready
type MediaLoadedMsg struct {
	Key   navcache.Key
	Media *domain.MediaSummary
	Err   error
}

// CatalogLoadedMsg is sent after the rating catalog fetch
type CatalogLoadedMsg struct {
	Catalog domain.RatingCatalog
	Err     error
}

// RatingCommittedMsg is sent when the server answered a rating change
type RatingCommittedMsg struct {
	Change domain.RatingChange
	Err    error
}

// CaptionSavedMsg is sent when the server answered a caption edit
type CaptionSavedMsg struct {
	MediaID int64
	Caption string
	Err     error
}

// LoginResultMsg is sent after a login attempt
type LoginResultMsg struct {
	Err error
}

// LogoutCompleteMsg is sent after the credential is cleared
type LogoutCompleteMsg struct {
	Err error
}

// SearchResultsMsg delivers results from the search pipeline
type SearchResultsMsg struct {
	Results search.Results
}

// MediaOpenedMsg is sent after the external viewer was started
type MediaOpenedMsg struct {
	MediaID int64
	Err     error
}

// ClearStatusMsg clears the status message
type ClearStatusMsg struct{}

// ErrMsg carries an error that is only reported in the status line
type ErrMsg struct {
	Err     error
	Context string
}

func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}
