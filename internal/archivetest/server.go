// Package archivetest runs an in-memory archive API for tests.
package archivetest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/katworks/sandstar/internal/domain"
)

// DefaultCode is the operator code accepted unless WithCode overrides it.
const DefaultCode = "letmein"

// Request is one request observed by the fake server.
type Request struct {
	Method        string
	Path          string
	Query         map[string][]string
	Body          string
	Authorization string
}

// Server is a fake archive API backed by fixtures.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	catalog  domain.RatingCatalog
	code     string
	posts    []*domain.PostSummary
	accounts []domain.Account
	artists  []domain.ArtistDetail
	requests []Request
	failures map[string]int
	hold     chan struct{}
}

// ServerOption customises the fake server.
type ServerOption func(*Server)

// WithCatalog overrides the rating labels served by /api/config.
func WithCatalog(c domain.RatingCatalog) ServerOption {
	return func(s *Server) { s.catalog = c }
}

// WithCode sets the operator code accepted by /api/auth/verify.
func WithCode(code string) ServerOption {
	return func(s *Server) { s.code = code }
}

// WithPosts seeds posts. Media inside posts also back /api/media/{id}.
func WithPosts(posts ...*domain.PostSummary) ServerOption {
	return func(s *Server) { s.posts = append(s.posts, posts...) }
}

// WithAccounts seeds accounts.
func WithAccounts(accounts ...domain.Account) ServerOption {
	return func(s *Server) { s.accounts = append(s.accounts, accounts...) }
}

// WithArtists seeds artists with their aliases and accounts.
func WithArtists(artists ...domain.ArtistDetail) ServerOption {
	return func(s *Server) { s.artists = append(s.artists, artists...) }
}

// NewServer starts a fake archive API that is closed when the test ends.
func NewServer(t testing.TB, opts ...ServerOption) *Server {
	t.Helper()

	s := &Server{
		catalog: domain.RatingCatalog{
			Content: []domain.RatingLabel{"KF", "NonKF", "Rejected"},
			Safety:  []domain.RatingLabel{"Safe", "NSFW", "NSFL"},
		},
		code:     DefaultCode,
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(func() {
		s.Release()
		s.Close()
	})
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/api/config", s.handleConfig)
	r.Get("/api/artists", s.handleArtists)
	r.Get("/api/artists/search", s.handleSearchArtists)
	r.Get("/api/artists/name/{name}", s.handleArtist)
	r.Get("/api/accounts/search", s.handleSearchAccounts)
	r.Get("/api/accounts/{id}", s.handleAccount)
	r.Get("/api/posts/global", s.handlePosts)
	r.Get("/api/posts/{twitterId}", s.handlePosts)
	r.Get("/api/post/{id}", s.handlePost)
	r.Get("/api/media/{id}", s.handleMedia)

	r.Post("/api/auth/verify", s.handleVerify)
	r.Group(func(r chi.Router) {
		r.Use(s.requireCode)
		r.Post("/api/rate/post", s.handleRatePost)
		r.Post("/api/rate/media", s.handleRateMedia)
		r.Post("/api/media/caption", s.handleCaption)
	})
	return r
}

// FailNext makes the next n requests whose path starts with prefix answer
// with status instead of being served.
func (s *Server) FailNext(prefix string, n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[prefix+"#"+strconv.Itoa(status)] = n
}

// Hold blocks feed requests until Release is called.
func (s *Server) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold == nil {
		s.hold = make(chan struct{})
	}
}

// Release unblocks feed requests held by Hold.
func (s *Server) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold != nil {
		close(s.hold)
		s.hold = nil
	}
}

// Requests returns a copy of every request observed so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Count returns how many requests hit paths starting with prefix.
func (s *Server) Count(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

// Post returns the server-side copy of a post.
func (s *Server) Post(id string) *domain.PostSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.PostID == id {
			cp := *p
			cp.Media = slices.Clone(p.Media)
			return &cp
		}
	}
	return nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Body:          string(body),
			Authorization: r.Header.Get("Authorization"),
		})
		status := s.takeFailure(r.URL.Path)
		hold := s.hold
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		if hold != nil && strings.HasPrefix(r.URL.Path, "/api/posts/") {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// takeFailure must be called with s.mu held.
func (s *Server) takeFailure(path string) int {
	for key, n := range s.failures {
		prefix, code, _ := strings.Cut(key, "#")
		if n <= 0 || !strings.HasPrefix(path, prefix) {
			continue
		}
		s.failures[key] = n - 1
		status, _ := strconv.Atoi(code)
		return status
	}
	return 0
}

func (s *Server) requireCode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != s.code {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func labels(in []domain.RatingLabel) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		out = append(out, string(l))
	}
	return out
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string][]string{
		"content": labels(s.catalog.Content),
		"safety":  labels(s.catalog.Safety),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if string(body) != s.code {
		http.Error(w, "Invalid Code", http.StatusUnauthorized)
		return
	}
	_, _ = io.WriteString(w, "OK")
}
