package tui

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/feed"
	"github.com/katworks/sandstar/internal/navcache"
	"github.com/katworks/sandstar/internal/router"
	"github.com/microcosm-cc/bluemonday"
)

// screen holds what the current route has loaded. It is rebuilt on every
// navigation.
type screen struct {
	transition router.Transition
	key        navcache.Key
	loading    bool
	err        error

	feed    *feed.Result
	account *domain.Account
	artists []domain.Artist
	artist  *domain.ArtistDetail
	post    *domain.PostSummary
	media   *domain.MediaSummary
}

func (s screen) kind() router.Kind {
	return s.transition.Route.Kind
}

type rowKind int

const (
	rowPost rowKind = iota
	rowMedia
	rowArtist
	rowAccount
)

// row is one selectable line of the current screen
type row struct {
	kind    rowKind
	post    *domain.PostSummary
	media   *domain.MediaSummary
	artist  *domain.Artist
	account *domain.Account
	artIdx  int // index into screen.artists, for filter highlights
}

// target is where enter on the row navigates. Empty means nowhere.
func (r row) target(current router.Kind) string {
	switch r.kind {
	case rowPost:
		if current == router.Post {
			return ""
		}
		return "/post/" + url.PathEscape(r.post.PostID)
	case rowMedia:
		if current == router.Media {
			return ""
		}
		return "/media/" + strconv.FormatInt(r.media.ID, 10)
	case rowArtist:
		return "/artist/" + url.PathEscape(r.artist.Name)
	case rowAccount:
		return "/account/" + url.PathEscape(r.account.TwitterID)
	}
	return ""
}

// change builds a rating change for the row's item, without a value
func (r row) change(kind domain.RatingKind) (domain.RatingChange, domain.RatingLabel, bool) {
	switch r.kind {
	case rowPost:
		return domain.RatingChange{ItemID: r.post.PostID, ItemKind: domain.ItemPost, RatingKind: kind}, r.post.Rating(kind), true
	case rowMedia:
		return domain.RatingChange{ItemID: strconv.FormatInt(r.media.ID, 10), ItemKind: domain.ItemMedia, RatingKind: kind}, r.media.Rating(kind), true
	}
	return domain.RatingChange{}, "", false
}

// postRows lists each post followed by its media
func postRows(posts []*domain.PostSummary) []row {
	rows := make([]row, 0, len(posts)*2)
	for _, p := range posts {
		rows = append(rows, row{kind: rowPost, post: p})
		for i := range p.Media {
			rows = append(rows, row{kind: rowMedia, post: p, media: &p.Media[i]})
		}
	}
	return rows
}

// rows returns the selectable lines for the screen. visible narrows the
// artist directory to the filter's matches.
func (s screen) rows(visible func(total int) []int) []row {
	switch s.kind() {
	case router.Feed, router.Account:
		if s.feed == nil {
			return nil
		}
		return postRows(s.feed.Items)
	case router.Artists:
		idx := visible(len(s.artists))
		rows := make([]row, 0, len(idx))
		for _, i := range idx {
			rows = append(rows, row{kind: rowArtist, artist: &s.artists[i], artIdx: i})
		}
		return rows
	case router.Artist:
		if s.artist == nil {
			return nil
		}
		rows := make([]row, 0, len(s.artist.Accounts))
		for i := range s.artist.Accounts {
			rows = append(rows, row{kind: rowAccount, account: &s.artist.Accounts[i]})
		}
		return rows
	case router.Post:
		if s.post == nil {
			return nil
		}
		return postRows([]*domain.PostSummary{s.post})
	case router.Media:
		if s.media == nil {
			return nil
		}
		return []row{{kind: rowMedia, media: s.media}}
	}
	return nil
}

// applyRating writes change into the items the screen holds outside the
// navigation cache: detail views and pages that were never stored.
func (s *screen) applyRating(change domain.RatingChange) {
	if s.feed != nil {
		for _, p := range s.feed.Items {
			navcache.ApplyRatingTo(p, change)
		}
	}
	if s.post != nil {
		navcache.ApplyRatingTo(s.post, change)
	}
	if s.media != nil && change.ItemKind == domain.ItemMedia &&
		strconv.FormatInt(s.media.ID, 10) == change.ItemID {
		s.media.SetRating(change.RatingKind, change.Value)
	}
}

// Post text and captions come from scraped content and may carry markup.
var plainText = bluemonday.StrictPolicy()

// cleanText strips markup and decodes entities
func cleanText(s string) string {
	return html.UnescapeString(plainText.Sanitize(s))
}

// oneLine is cleanText collapsed onto a single line
func oneLine(s string) string {
	return strings.Join(strings.Fields(cleanText(s)), " ")
}
