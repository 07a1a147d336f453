package archivetest

import (
	"math/rand/v2"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/katworks/sandstar/internal/domain"
)

// JSON shapes as produced by the archive server.

type postJSON struct {
	PostID        string      `json:"postId"`
	ScreenName    string      `json:"screenName"`
	TwitterID     string      `json:"twitterId"`
	PostText      string      `json:"postText"`
	PostDate      int64       `json:"postDate"`
	SafetyRating  string      `json:"safetyRating"`
	ContentRating string      `json:"contentRating"`
	Media         []mediaJSON `json:"media"`
}

type mediaJSON struct {
	ID            int64  `json:"id"`
	PostID        string `json:"postId"`
	MediaType     string `json:"mediaType"`
	OriginalURL   string `json:"originalUrl"`
	LocalPath     string `json:"localPath"`
	Caption       string `json:"caption"`
	MediaIndex    int    `json:"mediaIndex"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	SafetyRating  string `json:"safetyRating"`
	ContentRating string `json:"contentRating"`
}

type accountJSON struct {
	TwitterID      string `json:"twitterId"`
	ArtistID       int64  `json:"artistId"`
	ScreenName     string `json:"screenName"`
	DisplayName    string `json:"displayName"`
	AccountStatus  string `json:"accountStatus"`
	IsProtected    bool   `json:"isProtected"`
	DownloadStatus bool   `json:"downloadStatus"`
	SafetyRating   string `json:"safetyRating"`
}

type artistJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type aliasJSON struct {
	ID           int64  `json:"id"`
	ArtistID     int64  `json:"artistId"`
	AliasName    string `json:"aliasName"`
	SafetyRating string `json:"safetyRating"`
}

type artistDetailJSON struct {
	artistJSON
	Aliases  []aliasJSON   `json:"aliases"`
	Accounts []accountJSON `json:"accounts"`
}

func toMediaJSON(m domain.MediaSummary) mediaJSON {
	return mediaJSON{
		ID:            m.ID,
		PostID:        m.PostID,
		MediaType:     m.MediaType,
		OriginalURL:   m.OriginalURL,
		LocalPath:     m.LocalPath,
		Caption:       m.Caption,
		MediaIndex:    m.MediaIndex,
		Width:         m.Width,
		Height:        m.Height,
		SafetyRating:  string(m.SafetyRating),
		ContentRating: string(m.ContentRating),
	}
}

func toPostJSON(p *domain.PostSummary) postJSON {
	out := postJSON{
		PostID:        p.PostID,
		ScreenName:    p.ScreenName,
		TwitterID:     p.TwitterID,
		PostText:      p.PostText,
		PostDate:      p.PostDate.Unix(),
		SafetyRating:  string(p.SafetyRating),
		ContentRating: string(p.ContentRating),
		Media:         make([]mediaJSON, 0, len(p.Media)),
	}
	for _, m := range p.Media {
		out.Media = append(out.Media, toMediaJSON(m))
	}
	return out
}

func toAccountJSON(a domain.Account) accountJSON {
	return accountJSON{
		TwitterID:      a.TwitterID,
		ArtistID:       a.ArtistID,
		ScreenName:     a.ScreenName,
		DisplayName:    a.DisplayName,
		AccountStatus:  a.AccountStatus,
		IsProtected:    a.IsProtected,
		DownloadStatus: a.DownloadStatus,
		SafetyRating:   string(a.SafetyRating),
	}
}

func toArtistJSON(a domain.Artist) artistJSON {
	return artistJSON{ID: a.ID, Name: a.Name, Description: a.Description}
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	twitterID := chi.URLParam(r, "twitterId")
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil {
		limit = 20
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	content, safety := q["c"], q["s"]

	s.mu.Lock()
	matched := make([]*domain.PostSummary, 0, len(s.posts))
	for _, p := range s.posts {
		if twitterID != "" && p.TwitterID != twitterID {
			continue
		}
		if len(content) > 0 && !slices.Contains(content, string(p.ContentRating)) {
			continue
		}
		if len(safety) > 0 && !slices.Contains(safety, string(p.SafetyRating)) {
			continue
		}
		matched = append(matched, p)
	}

	switch q.Get("sort") {
	case "oldest":
		slices.SortStableFunc(matched, func(a, b *domain.PostSummary) int { return a.PostDate.Compare(b.PostDate) })
	case "random":
		rand.New(rand.NewPCG(1, 2)).Shuffle(len(matched), func(i, j int) { matched[i], matched[j] = matched[j], matched[i] })
	default:
		slices.SortStableFunc(matched, func(a, b *domain.PostSummary) int { return b.PostDate.Compare(a.PostDate) })
	}

	page := make([]postJSON, 0, limit)
	for i := offset; i < len(matched) && len(page) < limit; i++ {
		page = append(page, toPostJSON(matched[i]))
	}
	s.mu.Unlock()

	writeJSON(w, page)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.PostID == id {
			writeJSON(w, toPostJSON(p))
			return
		}
	}
	writeJSON(w, nil)
}

// findMedia must be called with s.mu held.
func (s *Server) findMedia(id int64) *domain.MediaSummary {
	for _, p := range s.posts {
		for i := range p.Media {
			if p.Media[i].ID == id {
				return &p.Media[i]
			}
		}
	}
	return nil
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.findMedia(id); m != nil {
		writeJSON(w, toMediaJSON(*m))
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleArtists(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]artistJSON, 0, len(s.artists))
	for _, a := range s.artists {
		out = append(out, toArtistJSON(a.Artist))
	}
	writeJSON(w, out)
}

func (s *Server) handleArtist(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the name contains escaped slashes
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, "bad name", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.artists {
		if a.Name != name {
			continue
		}
		out := artistDetailJSON{artistJSON: toArtistJSON(a.Artist)}
		for _, al := range a.Aliases {
			out.Aliases = append(out.Aliases, aliasJSON{
				ID:           al.ID,
				ArtistID:     al.ArtistID,
				AliasName:    al.AliasName,
				SafetyRating: string(al.SafetyRating),
			})
		}
		for _, acc := range a.Accounts {
			out.Accounts = append(out.Accounts, toAccountJSON(acc))
		}
		writeJSON(w, out)
		return
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Server) handleSearchArtists(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []artistJSON{}
	for _, a := range s.artists {
		match := strings.Contains(strings.ToLower(a.Name), q)
		for _, al := range a.Aliases {
			match = match || strings.Contains(strings.ToLower(al.AliasName), q)
		}
		if match {
			out = append(out, toArtistJSON(a.Artist))
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleSearchAccounts(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []accountJSON{}
	for _, a := range s.accounts {
		if strings.Contains(strings.ToLower(a.ScreenName), q) || strings.Contains(strings.ToLower(a.DisplayName), q) {
			out = append(out, toAccountJSON(a))
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.TwitterID == id {
			writeJSON(w, toAccountJSON(a))
			return
		}
	}
	writeJSON(w, nil)
}

func kindFromQuery(v string) domain.RatingKind {
	if strings.EqualFold(v, "Safety") {
		return domain.RatingSafety
	}
	return domain.RatingContent
}

func (s *Server) handleRatePost(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.PostID == q.Get("postId") {
			p.SetRating(kindFromQuery(q.Get("type")), domain.RatingLabel(q.Get("value")))
		}
	}
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleRateMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("mediaId"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.findMedia(id); m != nil {
		m.SetRating(kindFromQuery(q.Get("type")), domain.RatingLabel(q.Get("value")))
	}
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleCaption(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("mediaId"), 10, 64)
	if err != nil {
		http.Error(w, "Missing mediaId", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.findMedia(id); m != nil {
		m.Caption = q.Get("caption")
	}
	_, _ = w.Write([]byte("OK"))
}
