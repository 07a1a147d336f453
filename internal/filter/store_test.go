package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/katworks/sandstar/internal/adapter"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/store"
)

type clearCounter struct{ n int }

func (c *clearCounter) Clear() { c.n++ }

var anonymous = domain.FilterState{
	Content: []domain.RatingLabel{"KF"},
	Safety:  []domain.RatingLabel{"Safe"},
	Sort:    domain.SortNewest,
}

func newTestStore(t *testing.T, operator bool) (*Store, *store.StateStore, *clearCounter) {
	t.Helper()
	st, err := store.NewStateStore("", "http://archive.local")
	require.NoError(t, err)
	cache := &clearCounter{}
	s := NewStore(st, cache, anonymous, func() bool { return operator }, adapter.NullLogger())
	return s, st, cache
}

func TestLoadDefaultsByRole(t *testing.T) {
	t.Parallel()

	anon, _, _ := newTestStore(t, false)
	require.True(t, anon.Load().Equal(anonymous))

	op, _, _ := newTestStore(t, true)
	got := op.Load()
	require.Empty(t, got.Content)
	require.Empty(t, got.Safety)
	require.Equal(t, domain.SortNewest, got.Sort)
}

func TestApplyPersistsClearsAndNotifies(t *testing.T) {
	t.Parallel()

	s, st, cache := newTestStore(t, false)
	rendered := 0
	s.OnApply(func() { rendered++ })

	next := domain.FilterState{Content: []domain.RatingLabel{"NonKF", "KF", "KF"}, Sort: domain.SortOldest}
	require.NoError(t, s.Apply(next))

	require.Equal(t, 1, cache.n)
	require.Equal(t, 1, rendered)
	require.Equal(t, []domain.RatingLabel{"KF", "NonKF"}, s.Current().Content)

	// A fresh store over the same state reads the applied filter back
	reloaded := NewStore(st, cache, anonymous, func() bool { return false }, adapter.NullLogger())
	got := reloaded.Load()
	require.True(t, got.Equal(next))
	require.Empty(t, got.Safety, "an explicitly empty set must not fall back to the default")
}

func TestLoadMalformedBlobFallsBack(t *testing.T) {
	t.Parallel()

	s, st, _ := newTestStore(t, false)
	require.NoError(t, st.SaveFilterBlob([]byte("{not msgpack")))
	require.True(t, s.Load().Equal(anonymous))
}

func TestLoadPartialBlobMergesOverDefaults(t *testing.T) {
	t.Parallel()

	s, st, _ := newTestStore(t, false)
	blob, err := msgpack.Marshal(map[string]any{"content": []string{"NonKF"}})
	require.NoError(t, err)
	require.NoError(t, st.SaveFilterBlob(blob))

	got := s.Load()
	require.Equal(t, []domain.RatingLabel{"NonKF"}, got.Content)
	require.Equal(t, []domain.RatingLabel{"Safe"}, got.Safety)
	require.Equal(t, domain.SortNewest, got.Sort)
}

func TestLoadPartialBlobDistinguishesEmptyFromMissing(t *testing.T) {
	t.Parallel()

	s, st, _ := newTestStore(t, false)
	blob, err := msgpack.Marshal(map[string]any{"safety": []string{}, "sort": "oldest"})
	require.NoError(t, err)
	require.NoError(t, st.SaveFilterBlob(blob))

	got := s.Load()
	require.Equal(t, []domain.RatingLabel{"KF"}, got.Content, "missing field takes the role default")
	require.Empty(t, got.Safety, "explicit empty list means any label")
	require.Equal(t, domain.SortOldest, got.Sort)
}

func TestLoadUnknownSortBecomesNewest(t *testing.T) {
	t.Parallel()

	s, st, _ := newTestStore(t, true)
	blob, err := msgpack.Marshal(map[string]any{"sort": "sideways"})
	require.NoError(t, err)
	require.NoError(t, st.SaveFilterBlob(blob))

	require.Equal(t, domain.SortNewest, s.Load().Sort)
}

func TestQueryEncoding(t *testing.T) {
	t.Parallel()

	q := Query(domain.FilterState{
		Content: []domain.RatingLabel{"NonKF", "KF"},
		Safety:  []domain.RatingLabel{"Safe"},
		Sort:    domain.SortRandom,
	})
	require.Equal(t, url.Values{
		"c":    {"KF", "NonKF"},
		"s":    {"Safe"},
		"sort": {"random"},
	}, q)

	empty := Query(domain.FilterState{Sort: domain.SortNewest})
	require.Equal(t, url.Values{"sort": {"newest"}}, empty)
}

func TestQueryRoundTrip(t *testing.T) {
	t.Parallel()

	states := []domain.FilterState{
		{Sort: domain.SortNewest},
		{Content: []domain.RatingLabel{"KF"}, Safety: []domain.RatingLabel{"Safe", "NSFW"}, Sort: domain.SortOldest},
		{Content: []domain.RatingLabel{domain.Waiting}, Sort: domain.SortRandom},
	}
	for _, st := range states {
		require.True(t, ParseQuery(Query(st)).Equal(st))
	}
}
