package archive

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katworks/sandstar/internal/adapter"
	"github.com/katworks/sandstar/internal/archivetest"
	"github.com/katworks/sandstar/internal/domain"
)

func newTestClient(t *testing.T, opts ...archivetest.ServerOption) (*Client, *archivetest.Server) {
	t.Helper()
	srv := archivetest.NewServer(t, opts...)
	return NewClient(srv.URL+"/", 5*time.Second, adapter.NullLogger()), srv
}

func TestGetRatingCatalog(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	cat, err := c.GetRatingCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.RatingLabel{"KF", "NonKF", "Rejected"}, cat.Content)
	require.Equal(t, []domain.RatingLabel{"Safe", "NSFW", "NSFL"}, cat.Safety)
}

func TestGetPostsRequestShape(t *testing.T) {
	t.Parallel()

	c, srv := newTestClient(t, archivetest.WithPosts(archivetest.Feed(30, "42")...))
	filter := url.Values{"c": {"KF", "NonKF"}, "s": {"Safe"}, "sort": {"oldest"}}

	posts, err := c.GetPosts(context.Background(), "42", 24, 24, filter)
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "/api/posts/42", reqs[0].Path)
	require.Equal(t, []string{"24"}, reqs[0].Query["limit"])
	require.Equal(t, []string{"24"}, reqs[0].Query["offset"])
	require.Equal(t, []string{"KF", "NonKF"}, reqs[0].Query["c"])
	require.Equal(t, []string{"Safe"}, reqs[0].Query["s"])
	require.Equal(t, []string{"oldest"}, reqs[0].Query["sort"])

	// 15 safe posts, oldest first, second page of 24 is empty
	require.Empty(t, posts)
	require.Equal(t, []string{"KF", "NonKF"}, filter["c"], "caller's filter must not be modified")
}

func TestGetPostsMapsFields(t *testing.T) {
	t.Parallel()

	post := archivetest.NewPost(7, "42", "KF", "Safe", archivetest.NewMedia(70, "KF", "Safe"))
	c, _ := newTestClient(t, archivetest.WithPosts(post))

	posts, err := c.GetPosts(context.Background(), "", 0, 24, nil)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	got := posts[0]
	require.Equal(t, "7", got.PostID)
	require.True(t, got.PostDate.Equal(post.PostDate))
	require.Len(t, got.Media, 1)
	require.Equal(t, int64(70), got.Media[0].ID)
	require.Equal(t, "7", got.Media[0].PostID)
	require.Equal(t, "70.jpg", got.Media[0].FileName())
}

func TestGetPostNotFound(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	_, err := c.GetPost(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.GetMedia(context.Background(), "abc")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetArtistEscapesName(t *testing.T) {
	t.Parallel()

	artist := domain.ArtistDetail{
		Artist:  domain.Artist{ID: 1, Name: "Mori / Calliope"},
		Aliases: []domain.Alias{{ID: 3, ArtistID: 1, AliasName: "Calli"}},
	}
	c, _ := newTestClient(t, archivetest.WithArtists(artist))

	got, err := c.GetArtist(context.Background(), "Mori / Calliope")
	require.NoError(t, err)
	require.Equal(t, "Mori / Calliope", got.Name)
	require.Len(t, got.Aliases, 1)

	_, err = c.GetArtist(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerifyCode(t *testing.T) {
	t.Parallel()

	c, srv := newTestClient(t, archivetest.WithCode("sesame"))
	require.NoError(t, c.VerifyCode(context.Background(), "sesame"))
	require.ErrorIs(t, c.VerifyCode(context.Background(), "wrong"), domain.ErrAuthFailed)

	reqs := srv.Requests()
	require.Equal(t, "sesame", reqs[0].Body)
	require.Equal(t, "POST", reqs[0].Method)
}

func TestRateRequestsCarryCredential(t *testing.T) {
	t.Parallel()

	post := archivetest.NewPost(1, "42", "KF", "Safe", archivetest.NewMedia(10, "KF", "Safe"))
	c, srv := newTestClient(t, archivetest.WithPosts(post))
	ctx := context.Background()

	require.NoError(t, c.RatePost(ctx, archivetest.DefaultCode, "1", domain.RatingSafety, "NSFW"))
	require.NoError(t, c.RateMedia(ctx, archivetest.DefaultCode, "10", domain.RatingContent, "NonKF"))

	reqs := srv.Requests()
	require.Equal(t, "/api/rate/post", reqs[0].Path)
	require.Equal(t, []string{"Safety"}, reqs[0].Query["type"])
	require.Equal(t, archivetest.DefaultCode, reqs[0].Authorization)
	require.Equal(t, "/api/rate/media", reqs[1].Path)
	require.Equal(t, []string{"10"}, reqs[1].Query["mediaId"])

	stored := srv.Post("1")
	require.Equal(t, domain.RatingLabel("NSFW"), stored.SafetyRating)
	require.Equal(t, domain.RatingLabel("NonKF"), stored.Media[0].ContentRating)

	err := c.RatePost(ctx, "bogus", "1", domain.RatingContent, "KF")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateCaption(t *testing.T) {
	t.Parallel()

	post := archivetest.NewPost(1, "42", "KF", "Safe", archivetest.NewMedia(10, "KF", "Safe"))
	c, srv := newTestClient(t, archivetest.WithPosts(post))

	require.NoError(t, c.UpdateCaption(context.Background(), archivetest.DefaultCode, "10", "a cat & a hat"))
	require.Equal(t, "a cat & a hat", srv.Post("1").Media[0].Caption)
}

func TestNoRetryOnServerError(t *testing.T) {
	t.Parallel()

	c, srv := newTestClient(t)
	srv.FailNext("/api/artists", 1, 503)

	_, err := c.GetArtists(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, srv.Count("/api/artists"))
}

func TestServerOffline(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:1", time.Second, adapter.NullLogger())
	_, err := c.GetArtists(context.Background())
	require.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestProbe(t *testing.T) {
	t.Parallel()

	srv := archivetest.NewServer(t)
	require.NoError(t, Probe(context.Background(), srv.URL))
	require.Error(t, Probe(context.Background(), "archive.local"))
}
