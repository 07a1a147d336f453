package ratings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katworks/sandstar/internal/adapter"
	"github.com/katworks/sandstar/internal/adapter/source/archive"
	"github.com/katworks/sandstar/internal/archivetest"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/navcache"
)

type staticCredential string

func (s staticCredential) Credential() string { return string(s) }

type failingCatalog struct{ calls int }

func (f *failingCatalog) GetRatingCatalog(context.Context) (domain.RatingCatalog, error) {
	f.calls++
	return domain.RatingCatalog{}, errors.New("boom")
}

func labels(ls ...string) []domain.RatingLabel {
	out := make([]domain.RatingLabel, 0, len(ls))
	for _, l := range ls {
		out = append(out, domain.RatingLabel(l))
	}
	return out
}

func TestCatalogLoadAppendsWaitingOnce(t *testing.T) {
	t.Parallel()

	srv := archivetest.NewServer(t, archivetest.WithCatalog(domain.RatingCatalog{
		Content: labels("KF", "NonKF"),
		Safety:  labels("Safe", "Waiting"),
	}))
	c := NewCatalog(archive.NewClient(srv.URL, 5*time.Second, adapter.NullLogger()), adapter.NullLogger())

	got, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, labels("KF", "NonKF", "Waiting"), got.Content)
	require.Equal(t, labels("Safe", "Waiting"), got.Safety)

	_, err = c.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, srv.Count("/api/config"), "catalog is fetched once per session")

	c.Reset()
	require.Empty(t, c.Get().Content)
	_, err = c.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, srv.Count("/api/config"))
}

func TestCatalogLoadFailureLeavesEmpty(t *testing.T) {
	t.Parallel()

	repo := &failingCatalog{}
	c := NewCatalog(repo, adapter.NullLogger())
	_, err := c.Load(context.Background())
	require.Error(t, err)
	require.Empty(t, c.Get().Content)
}

func TestAssignableOptions(t *testing.T) {
	t.Parallel()

	cat := domain.RatingCatalog{
		Content: labels("KF", "NonKF", "Rejected", "Waiting"),
		Safety:  labels("Safe", "NSFW", "NSFL", "Waiting"),
	}

	tests := []struct {
		name    string
		kind    domain.RatingKind
		current domain.RatingLabel
		want    []domain.RatingLabel
	}{
		{"rated content", domain.RatingContent, "KF", labels("KF", "NonKF", "Rejected")},
		{"waiting content", domain.RatingContent, domain.Waiting, labels("Waiting", "KF", "NonKF", "Rejected")},
		{"waiting safety", domain.RatingSafety, domain.Waiting, labels("Waiting", "Safe", "NSFW", "NSFL")},
		{"unknown current", domain.RatingSafety, "Legacy", labels("Safe", "NSFW", "NSFL")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AssignableOptions(cat, tt.kind, tt.current))
		})
	}
}

func newTestMutator(t *testing.T, cred string) (*Mutator, *navcache.Cache, *archivetest.Server) {
	t.Helper()
	srv := archivetest.NewServer(t, archivetest.WithPosts(archivetest.Feed(4, "42")...))
	cache := navcache.New(adapter.NullLogger())
	client := archive.NewClient(srv.URL, 5*time.Second, adapter.NullLogger())
	return NewMutator(cache, client, staticCredential(cred), adapter.NullLogger()), cache, srv
}

func TestSetRatingUpdatesCacheAndServer(t *testing.T) {
	t.Parallel()

	m, cache, srv := newTestMutator(t, archivetest.DefaultCode)
	key := navcache.NewKey("/", nil, nil)
	cache.Put(key, archivetest.Feed(4, "42"))

	change := domain.RatingChange{ItemID: "3", ItemKind: domain.ItemPost, RatingKind: domain.RatingContent, Value: "Rejected"}
	require.NoError(t, m.SetRating(context.Background(), change))

	page, _ := cache.Get(key)
	require.Equal(t, domain.RatingLabel("Rejected"), page.Items[2].ContentRating)
	require.False(t, m.Unconfirmed(domain.ItemPost, "3", domain.RatingContent))
	require.Equal(t, domain.RatingLabel("Rejected"), srv.Post("3").ContentRating)
}

func TestCommitFailureKeepsOptimisticValue(t *testing.T) {
	t.Parallel()

	m, cache, srv := newTestMutator(t, archivetest.DefaultCode)
	key := navcache.NewKey("/", nil, nil)
	cache.Put(key, archivetest.Feed(4, "42"))
	srv.FailNext("/api/rate/media", 1, 500)

	change := domain.RatingChange{ItemID: "10", ItemKind: domain.ItemMedia, RatingKind: domain.RatingSafety, Value: "NSFL"}
	require.NoError(t, m.SetRating(context.Background(), change), "transport failures are logged only")

	page, _ := cache.Get(key)
	require.Equal(t, domain.RatingLabel("NSFL"), page.Items[0].Media[0].SafetyRating)
	require.True(t, m.Unconfirmed(domain.ItemMedia, "10", domain.RatingSafety))
}

func TestOverlappingCommitsKeepLatestUnconfirmed(t *testing.T) {
	t.Parallel()

	m, cache, srv := newTestMutator(t, archivetest.DefaultCode)
	key := navcache.NewKey("/", nil, nil)
	cache.Put(key, archivetest.Feed(4, "42"))

	first := domain.RatingChange{ItemID: "1", ItemKind: domain.ItemPost, RatingKind: domain.RatingContent, Value: "NonKF"}
	second := first
	second.Value = "Rejected"

	m.Stage(first)
	m.Stage(second)
	require.NoError(t, m.Commit(context.Background(), first))
	require.True(t, m.Unconfirmed(domain.ItemPost, "1", domain.RatingContent),
		"an acknowledgement for an older value does not confirm the newer one")

	srv.FailNext("/api/rate/post", 1, 500)
	require.NoError(t, m.Commit(context.Background(), second))
	require.True(t, m.Unconfirmed(domain.ItemPost, "1", domain.RatingContent))

	page, _ := cache.Get(key)
	require.Equal(t, domain.RatingLabel("Rejected"), page.Items[0].ContentRating)
	require.Equal(t, domain.RatingLabel("NonKF"), srv.Post("1").ContentRating)
}

func TestCommitUnauthorizedSurfaces(t *testing.T) {
	t.Parallel()

	m, cache, _ := newTestMutator(t, "stale-code")
	key := navcache.NewKey("/", nil, nil)
	cache.Put(key, archivetest.Feed(2, "42"))

	change := domain.RatingChange{ItemID: "1", ItemKind: domain.ItemPost, RatingKind: domain.RatingSafety, Value: "NSFW"}
	err := m.SetRating(context.Background(), change)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	page, _ := cache.Get(key)
	require.Equal(t, domain.RatingLabel("NSFW"), page.Items[0].SafetyRating, "no rollback")
}

func TestUpdateCaption(t *testing.T) {
	t.Parallel()

	m, _, srv := newTestMutator(t, archivetest.DefaultCode)
	require.NoError(t, m.UpdateCaption(context.Background(), 20, "two cats"))
	require.Equal(t, "two cats", srv.Post("2").Media[0].Caption)

	anon, _, _ := newTestMutator(t, "")
	require.ErrorIs(t, anon.UpdateCaption(context.Background(), 20, "x"), domain.ErrUnauthorized)
}
