package domain

import (
	"path"
	"strings"
	"time"
)

// MediaSummary is one image or video attached to a post
type MediaSummary struct {
	ID            int64
	PostID        string
	MediaType     string // "mp4" for video, anything else is an image
	MediaIndex    int
	LocalPath     string // Path on the archive host; the last segment is the file name
	OriginalURL   string
	Caption       string
	ContentRating RatingLabel
	SafetyRating  RatingLabel
	Width         int
	Height        int
	FileSize      int64
	DuplicateOf   int64 // ID of the media sharing this file's hash, 0 when unique
}

// IsVideo reports whether the media should be played rather than viewed
func (m *MediaSummary) IsVideo() bool {
	return strings.EqualFold(m.MediaType, "mp4")
}

// FileName returns the last segment of LocalPath, accepting either separator.
func (m *MediaSummary) FileName() string {
	p := strings.ReplaceAll(m.LocalPath, `\`, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// ImagePath returns the archive path of the stored file, which is bucketed by rating.
func (m *MediaSummary) ImagePath() string {
	return "/images/" + string(m.ContentRating) + "/" + string(m.SafetyRating) + "/" + m.FileName()
}

// ThumbnailURL returns the small variant of the original URL
func (m *MediaSummary) ThumbnailURL() string {
	return strings.Replace(m.OriginalURL, "orig", "small", 1)
}

// Rating returns the label for the given rating kind
func (m *MediaSummary) Rating(kind RatingKind) RatingLabel {
	if kind == RatingSafety {
		return m.SafetyRating
	}
	return m.ContentRating
}

// SetRating overwrites the label for the given rating kind
func (m *MediaSummary) SetRating(kind RatingKind, value RatingLabel) {
	if kind == RatingSafety {
		m.SafetyRating = value
		return
	}
	m.ContentRating = value
}

// PostSummary is a post as shown in feed lists. Media order is preserved
// from the server response.
type PostSummary struct {
	PostID        string
	ScreenName    string
	TwitterID     string
	PostText      string
	PostDate      time.Time
	ArchiveDate   time.Time
	ContentRating RatingLabel
	SafetyRating  RatingLabel
	Media         []MediaSummary
}

// Rating returns the label for the given rating kind
func (p *PostSummary) Rating(kind RatingKind) RatingLabel {
	if kind == RatingSafety {
		return p.SafetyRating
	}
	return p.ContentRating
}

// SetRating overwrites the label for the given rating kind
func (p *PostSummary) SetRating(kind RatingKind, value RatingLabel) {
	if kind == RatingSafety {
		p.SafetyRating = value
		return
	}
	p.ContentRating = value
}

// Account is a social account tracked by the archive
type Account struct {
	TwitterID      string
	ArtistID       int64
	ScreenName     string
	DisplayName    string
	AccountStatus  string
	IsProtected    bool
	DownloadStatus bool
	LastScrapedID  string
	SafetyRating   RatingLabel
}

// Artist is a person who may own several accounts
type Artist struct {
	ID          int64
	Name        string
	Description string
}

// Alias is an alternative name for an artist
type Alias struct {
	ID           int64
	ArtistID     int64
	AliasName    string
	SafetyRating RatingLabel
}

// ArtistDetail is an artist with their aliases and accounts
type ArtistDetail struct {
	Artist
	Aliases  []Alias
	Accounts []Account
}
