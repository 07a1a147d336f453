package domain

import (
	"context"
	"net/url"
)

// PostRepository provides access to posts and media
type PostRepository interface {
	// GetPosts returns one page of posts. An empty accountID selects the
	// global feed. filter carries the c/s/sort parameters.
	GetPosts(ctx context.Context, accountID string, offset, limit int, filter url.Values) ([]*PostSummary, error)

	// GetPost returns a single post with its media
	GetPost(ctx context.Context, postID string) (*PostSummary, error)

	// GetMedia returns a single media item
	GetMedia(ctx context.Context, mediaID string) (*MediaSummary, error)
}

// DirectoryRepository provides access to artists and accounts
type DirectoryRepository interface {
	GetArtists(ctx context.Context) ([]Artist, error)
	GetArtist(ctx context.Context, name string) (*ArtistDetail, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	SearchArtists(ctx context.Context, query string) ([]Artist, error)
	SearchAccounts(ctx context.Context, query string) ([]Account, error)
}

// CatalogRepository provides the server's rating labels
type CatalogRepository interface {
	GetRatingCatalog(ctx context.Context) (RatingCatalog, error)
}

// ModerationRepository performs operator writes. Every call carries the
// operator credential.
type ModerationRepository interface {
	VerifyCode(ctx context.Context, code string) error
	RatePost(ctx context.Context, credential, postID string, kind RatingKind, value RatingLabel) error
	RateMedia(ctx context.Context, credential, mediaID string, kind RatingKind, value RatingLabel) error
	UpdateCaption(ctx context.Context, credential, mediaID, caption string) error
}

// StateStore persists client-local state between sessions
type StateStore interface {
	Credential() (string, error)
	SaveCredential(code string) error
	ClearCredential() error
	FilterBlob() ([]byte, error)
	SaveFilterBlob(blob []byte) error
}
