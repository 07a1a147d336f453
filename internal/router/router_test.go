package router

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katworks/sandstar/internal/adapter"
	"github.com/katworks/sandstar/internal/navcache"
)

func TestParseRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw   string
		kind  Kind
		param string
		page  int
	}{
		{"/", Feed, "", 1},
		{"", Feed, "", 1},
		{"/index.html", Feed, "", 1},
		{"/?page=3", Feed, "", 3},
		{"/?page=abc", Feed, "", 1},
		{"/?page=0", Feed, "", 1},
		{"/?page=-4", Feed, "", 1},
		{"/artists", Artists, "", 1},
		{"/artists/", Artists, "", 1},
		{"/artist/Mori%20%2F%20Calliope", Artist, "Mori / Calliope", 1},
		{"/account/42?page=2", Account, "42", 2},
		{"/post/1234567890", Post, "1234567890", 1},
		{"/media/77", Media, "77", 1},
		{"/nowhere/at/all", Feed, "", 1},
		{"/settings", Feed, "", 1},
		{"/artist/", Feed, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := Parse(tt.raw).Route()
			require.Equal(t, tt.kind, r.Kind)
			require.Equal(t, tt.param, r.Param)
			require.Equal(t, tt.page, r.Page)
		})
	}
}

func TestWithPage(t *testing.T) {
	t.Parallel()

	loc := Parse("/account/42?page=2")
	require.Equal(t, "/account/42?page=3", loc.WithPage(3).String())
	require.Equal(t, "/account/42", loc.WithPage(1).String())
	require.Equal(t, "2", loc.Query.Get("page"), "original is unchanged")
}

type scrollRecorder struct {
	saved map[navcache.Key]int
}

func (s *scrollRecorder) SaveScroll(key navcache.Key, offset int) {
	s.saved[key] = offset
}

func keyFor(loc Location) navcache.Key {
	return navcache.NewKey(loc.Path, loc.Query, url.Values{"sort": {"newest"}})
}

func newTestRouter(t *testing.T) (*Router[string], *scrollRecorder) {
	t.Helper()
	rec := &scrollRecorder{saved: make(map[navcache.Key]int)}
	r := New[string](rec, keyFor, adapter.NullLogger())
	for _, k := range []Kind{Feed, Artists, Artist, Account, Post, Media} {
		r.Handle(k, func(tr Transition) string { return tr.Route.Kind.String() + ":" + tr.Route.Param })
	}
	return r, rec
}

func TestNavigateDispatchesAndSetsEffects(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)

	tr, out := r.Navigate("/post/9", 0)
	require.Equal(t, "post:9", out)
	require.True(t, tr.DetailMode)
	require.Equal(t, ScrollTop, tr.Scroll)

	tr, out = r.Navigate("/account/42", 0)
	require.Equal(t, "account:42", out)
	require.False(t, tr.DetailMode)
	require.Equal(t, ScrollRestore, tr.Scroll)

	tr, _ = r.Navigate("/artists", 0)
	require.Equal(t, ScrollTop, tr.Scroll)

	tr, _ = r.Navigate("/", 0)
	require.Equal(t, ScrollRestore, tr.Scroll)
}

func TestNavigateSavesOutgoingScroll(t *testing.T) {
	t.Parallel()

	r, rec := newTestRouter(t)
	r.Navigate("/?page=2", 0)
	r.Navigate("/post/1", 118)

	require.Equal(t, 118, rec.saved[keyFor(Parse("/?page=2"))])

	// Leaving a detail view saves nothing
	r.Navigate("/", 55)
	require.Len(t, rec.saved, 1)
}

func TestHistoryBackForward(t *testing.T) {
	t.Parallel()

	r, rec := newTestRouter(t)
	r.Navigate("/", 0)
	r.Navigate("/account/42", 0)
	r.Navigate("/post/7", 0)

	_, out, ok := r.Back(0)
	require.True(t, ok)
	require.Equal(t, "account:42", out)

	_, out, ok = r.Back(31)
	require.True(t, ok)
	require.Equal(t, "feed:", out)
	require.Equal(t, 31, rec.saved[keyFor(Parse("/account/42"))])

	_, _, ok = r.Back(0)
	require.False(t, ok)

	_, out, ok = r.Forward(0)
	require.True(t, ok)
	require.Equal(t, "account:42", out)

	// Navigating drops the forward entries
	r.Navigate("/artists", 0)
	_, _, ok = r.Forward(0)
	require.False(t, ok)

	loc, _ := r.Current()
	require.Equal(t, "/artists", loc.Path)
	require.True(t, r.CanBack())
}

func TestReload(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	_, out := r.Reload()
	require.Equal(t, "feed:", out)

	r.Navigate("/media/5", 0)
	tr, out := r.Reload()
	require.Equal(t, "media:5", out)
	require.True(t, tr.DetailMode)
}

func TestDuplicateHandlerPanics(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	require.Panics(t, func() {
		r.Handle(Feed, func(Transition) string { return "" })
	})
}
