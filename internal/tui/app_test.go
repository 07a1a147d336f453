package tui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/katworks/sandstar/internal/adapter"
	"github.com/katworks/sandstar/internal/adapter/source/archive"
	"github.com/katworks/sandstar/internal/archivetest"
	"github.com/katworks/sandstar/internal/auth"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/feed"
	"github.com/katworks/sandstar/internal/filter"
	"github.com/katworks/sandstar/internal/navcache"
	"github.com/katworks/sandstar/internal/ratings"
	"github.com/katworks/sandstar/internal/router"
	"github.com/katworks/sandstar/internal/search"
	"github.com/katworks/sandstar/internal/store"
)

type recordingOpener struct {
	mu     sync.Mutex
	opened []int64
}

func (o *recordingOpener) Open(m *domain.MediaSummary) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, m.ID)
	return nil
}

func (o *recordingOpener) MediaURL(m *domain.MediaSummary) string {
	return "http://archive.test" + m.ImagePath()
}

func (o *recordingOpener) Opened() []int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int64(nil), o.opened...)
}

type harness struct {
	srv    *archivetest.Server
	svc    *Services
	opener *recordingOpener
}

func newHarness(t *testing.T, pageSize int, opts ...archivetest.ServerOption) *harness {
	t.Helper()

	logger := adapter.NullLogger()
	srv := archivetest.NewServer(t, opts...)
	client := archive.NewClient(srv.URL, 5*time.Second, logger)

	state, err := store.NewStateStore("", srv.URL)
	require.NoError(t, err)

	cache := navcache.New(logger)
	authState := auth.NewState(client, state, logger)
	filters := filter.NewStore(state, cache, domain.FilterState{}, authState.IsOperator, logger)
	filters.Load()

	opener := &recordingOpener{}
	svc := &Services{
		Loader:    feed.NewLoader(client, cache, filters, pageSize, logger),
		Directory: feed.NewDirectory(client, client, logger),
		Cache:     cache,
		Filters:   filters,
		Auth:      authState,
		Catalog:   ratings.NewCatalog(client, logger),
		Mutator:   ratings.NewMutator(cache, client, authState, logger),
		Search:    search.NewPipeline(client, 10*time.Millisecond, 2, logger),
		Opener:    opener,
		Logger:    logger,
	}
	return &harness{srv: srv, svc: svc, opener: opener}
}

// start builds the model, sizes it and runs Init to completion
func (h *harness) start(t *testing.T) Model {
	t.Helper()
	m := NewModel(h.svc)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return drain(t, next.(Model), next.(Model).Init())
}

func isAppMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case FeedLoadedMsg, AccountLoadedMsg, ArtistsLoadedMsg, ArtistLoadedMsg,
		PostLoadedMsg, MediaLoadedMsg, CatalogLoadedMsg, RatingCommittedMsg,
		CaptionSavedMsg, LoginResultMsg, LogoutCompleteMsg, SearchResultsMsg,
		MediaOpenedMsg, ErrMsg:
		return true
	}
	return false
}

// drain runs commands and feeds their application messages back into the
// model until only timers are left.
func drain(t *testing.T, m Model, cmds ...tea.Cmd) Model {
	t.Helper()

	msgs := make(chan tea.Msg, 128)
	pending := 0
	start := func(c tea.Cmd) {
		if c == nil {
			return
		}
		pending++
		go func() { msgs <- c() }()
	}
	for _, c := range cmds {
		start(c)
	}

	for pending > 0 {
		select {
		case msg := <-msgs:
			pending--
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, c := range batch {
					start(c)
				}
				continue
			}
			if !isAppMsg(msg) {
				continue
			}
			next, c := m.Update(msg)
			m = next.(Model)
			start(c)
		case <-time.After(300 * time.Millisecond):
			return m
		}
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyPress(k))
		m = drain(t, next.(Model), cmd)
	}
	return m
}

func login(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, "i", archivetest.DefaultCode, "enter")
	require.True(t, m.svc.Auth.IsOperator())
	return m
}

func postIDs(res *feed.Result) []string {
	ids := make([]string, len(res.Items))
	for i, p := range res.Items {
		ids[i] = p.PostID
	}
	return ids
}

func TestInitShowsGlobalFeed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(5, "42")...))
	m := h.start(t)

	require.False(t, m.Loading)
	require.NotNil(t, m.screen.feed)
	require.Equal(t, []string{"5", "4"}, postIDs(m.screen.feed))
	require.Len(t, m.currentRows(), 4, "each post is followed by its media")
	require.Contains(t, m.View(), "@user42")
	require.NotEmpty(t, m.svc.Catalog.Get().Content)
}

func TestPaginationAndScrollRestore(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(5, "42")...))
	m := h.start(t)

	m = press(t, m, "p")
	require.Equal(t, 1, m.screen.feed.Page, "previous is disabled on the first page")

	m = press(t, m, "j", "n")
	require.Equal(t, 2, m.screen.feed.Page)
	require.Equal(t, []string{"3", "2"}, postIDs(m.screen.feed))
	require.Equal(t, 0, m.cursor)
	require.Equal(t, 2, h.srv.Count("/api/posts/global"))

	m = press(t, m, "h")
	require.Equal(t, 1, m.screen.feed.Page)
	require.True(t, m.screen.feed.Cached)
	require.Equal(t, 1, m.cursor, "cursor restored from the cached scroll offset")
	require.Equal(t, 2, h.srv.Count("/api/posts/global"), "back is served from the cache")

	m = press(t, m, "l", "n")
	require.Equal(t, 3, m.screen.feed.Page)
	require.False(t, m.screen.feed.HasNext)

	m = press(t, m, "n")
	require.Equal(t, 3, m.screen.feed.Page, "next is disabled after a short page")
}

func TestLateLoadForAnotherLocationIsIgnored(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(3, "42")...))
	m := h.start(t)
	before := m.screen.feed

	next, _ := m.Update(FeedLoadedMsg{
		Key:    navcache.Key{Path: "/account/99"},
		Result: &feed.Result{Items: archivetest.Feed(1, "99"), Page: 1},
	})
	m = next.(Model)
	require.Same(t, before, m.screen.feed)
}

func TestRatingRequiresOperator(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(3, "42")...))
	m := h.start(t)

	m = press(t, m, "c")
	require.False(t, m.RatingModal.IsVisible())
	require.True(t, m.StatusIsErr)
}

func TestLoginRejectsWrongCode(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(3, "42")...))
	m := h.start(t)

	m = press(t, m, "i", "wrong", "enter")
	require.False(t, m.svc.Auth.IsOperator())
	require.True(t, m.LoginModal.IsVisible(), "modal stays open for another attempt")

	m = press(t, m, "esc")
	require.False(t, m.LoginModal.IsVisible())
}

func TestOperatorRatesPost(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(5, "42")...))
	m := login(t, h.start(t))
	require.Equal(t, "5", m.screen.feed.Items[0].PostID)

	m = press(t, m, "c")
	require.True(t, m.RatingModal.IsVisible())

	// KF -> NonKF
	m = press(t, m, "j", "enter")
	require.False(t, m.RatingModal.IsVisible())
	require.Equal(t, domain.RatingLabel("NonKF"), m.screen.feed.Items[0].ContentRating)
	require.Equal(t, domain.RatingLabel("NonKF"), h.srv.Post("5").ContentRating)
	require.False(t, m.svc.Mutator.Unconfirmed(domain.ItemPost, "5", domain.RatingContent))

	page, ok := m.svc.Cache.Get(m.router.CurrentKey())
	require.True(t, ok)
	require.Equal(t, domain.RatingLabel("NonKF"), page.Items[0].ContentRating)
}

func TestOperatorRatesMediaFromPostDetail(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(5, "42")...))
	m := login(t, h.start(t))

	m = press(t, m, "enter")
	require.Equal(t, router.Post, m.screen.kind())
	require.True(t, m.screen.transition.DetailMode)
	require.NotNil(t, m.screen.post)

	// media row, Safe -> NSFW
	m = press(t, m, "j", "s", "j", "enter")
	require.Equal(t, domain.RatingLabel("NSFW"), m.screen.post.Media[0].SafetyRating)
	require.Equal(t, domain.RatingLabel("NSFW"), h.srv.Post("5").Media[0].SafetyRating)

	m = press(t, m, "h")
	require.Equal(t, router.Feed, m.screen.kind())
	require.False(t, m.screen.transition.DetailMode)
	require.Equal(t, domain.RatingLabel("NSFW"), m.screen.feed.Items[0].Media[0].SafetyRating,
		"cached list reflects the change made in the detail view")
}

func TestUnauthorizedCommitShowsBlockingNotice(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(3, "42")...))
	m := h.start(t)

	next, _ := m.Update(RatingCommittedMsg{Err: domain.ErrUnauthorized})
	m = next.(Model)
	require.True(t, m.Notice.IsVisible())

	m = press(t, m, "j")
	require.True(t, m.Notice.IsVisible())
	require.Equal(t, 0, m.cursor, "keys do not reach the list while the notice is up")

	m = press(t, m, "enter")
	require.False(t, m.Notice.IsVisible())
}

func TestApplyFilterReloadsWithNewQuery(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 10, archivetest.WithPosts(archivetest.Feed(6, "42")...))
	m := h.start(t)
	require.Len(t, m.screen.feed.Items, 6)

	m = press(t, m, "F")
	require.True(t, m.FilterModal.IsVisible())

	// first entry is the first content label, KF
	m = press(t, m, " ", "enter")
	require.False(t, m.FilterModal.IsVisible())
	require.Equal(t, []domain.RatingLabel{"KF"}, m.svc.Filters.Current().Content)
	require.Len(t, m.screen.feed.Items, 3)
	for _, p := range m.screen.feed.Items {
		require.Equal(t, domain.RatingLabel("KF"), p.ContentRating)
	}

	reqs := h.srv.Requests()
	var last archivetest.Request
	for _, r := range reqs {
		if r.Path == "/api/posts/global" {
			last = r
		}
	}
	require.Equal(t, []string{"KF"}, last.Query["c"])
}

func TestSearchSelectionNavigates(t *testing.T) {
	t.Parallel()

	alice := domain.ArtistDetail{
		Artist:   domain.Artist{ID: 1, Name: "Alice"},
		Accounts: []domain.Account{{TwitterID: "42", ScreenName: "user42"}},
	}
	h := newHarness(t, 2,
		archivetest.WithPosts(archivetest.Feed(3, "42")...),
		archivetest.WithArtists(alice),
		archivetest.WithAccounts(alice.Accounts...))
	m := h.start(t)

	m = press(t, m, "f")
	require.True(t, m.SearchPanel.IsVisible())

	next, _ := m.Update(SearchResultsMsg{Results: search.Build("ali", []domain.Artist{alice.Artist}, nil)})
	m = press(t, next.(Model), "enter")

	require.False(t, m.SearchPanel.IsVisible())
	require.Equal(t, router.Artist, m.screen.kind())
	require.Equal(t, "Alice", m.screen.transition.Route.Param)
	require.NotNil(t, m.screen.artist)
	require.Len(t, m.currentRows(), 1)

	m = press(t, m, "enter")
	require.Equal(t, router.Account, m.screen.kind())
	require.NotNil(t, m.screen.account)
	require.Equal(t, "user42", m.screen.account.ScreenName)
}

func TestArtistListFilter(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithArtists(
		domain.ArtistDetail{Artist: domain.Artist{ID: 1, Name: "Alice"}},
		domain.ArtistDetail{Artist: domain.Artist{ID: 2, Name: "Bob"}},
		domain.ArtistDetail{Artist: domain.Artist{ID: 3, Name: "Carol"}},
	))
	m := h.start(t)

	m = press(t, m, "A")
	require.Equal(t, router.Artists, m.screen.kind())
	require.Len(t, m.currentRows(), 3)

	m = press(t, m, "/", "bo")
	rows := m.currentRows()
	require.Len(t, rows, 1)
	require.Equal(t, "Bob", rows[0].artist.Name)

	m = press(t, m, "enter", "enter")
	require.Equal(t, router.Artist, m.screen.kind())
	require.Equal(t, "Bob", m.screen.transition.Route.Param)
}

func TestOpenMediaInViewer(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(5, "42")...))
	m := h.start(t)

	m = press(t, m, "j", "o")
	require.Equal(t, []int64{50}, h.opener.Opened())
}

func TestEditCaption(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(5, "42")...))
	m := login(t, h.start(t))

	m = press(t, m, "j", "enter")
	require.Equal(t, router.Media, m.screen.kind())

	m = press(t, m, "e")
	require.True(t, m.CaptionModal.IsVisible())

	m = press(t, m, "a cat", "ctrl+s")
	require.False(t, m.CaptionModal.IsVisible())
	require.Equal(t, "a cat", h.srv.Post("5").Media[0].Caption)
	require.Equal(t, "a cat", m.screen.media.Caption)
}

func TestLogoutReturnsToAnonymous(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 2, archivetest.WithPosts(archivetest.Feed(3, "42")...))
	m := login(t, h.start(t))

	m = press(t, m, "L")
	require.Equal(t, StateConfirmLogout, m.State)

	m = press(t, m, "y")
	require.Equal(t, StateBrowsing, m.State)
	require.False(t, m.svc.Auth.IsOperator())
	require.NotNil(t, m.screen.feed)
}

func TestCleanTextStripsMarkup(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello & bye", oneLine("<b>hello</b> &amp;\n  <i>bye</i>"))
}
