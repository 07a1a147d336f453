package archivetest

import (
	"fmt"
	"strconv"
	"time"

	"github.com/katworks/sandstar/internal/domain"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewPost builds a post dated n hours after a fixed epoch so that
// higher ids sort as newer.
func NewPost(n int, twitterID string, content, safety domain.RatingLabel, media ...domain.MediaSummary) *domain.PostSummary {
	id := strconv.Itoa(n)
	for i := range media {
		media[i].PostID = id
	}
	return &domain.PostSummary{
		PostID:        id,
		ScreenName:    "user" + twitterID,
		TwitterID:     twitterID,
		PostText:      fmt.Sprintf("post %d", n),
		PostDate:      epoch.Add(time.Duration(n) * time.Hour),
		ContentRating: content,
		SafetyRating:  safety,
		Media:         media,
	}
}

// NewMedia builds an image media item
func NewMedia(id int64, content, safety domain.RatingLabel) domain.MediaSummary {
	return domain.MediaSummary{
		ID:            id,
		MediaType:     "jpg",
		LocalPath:     fmt.Sprintf("/archive/media/%d.jpg", id),
		OriginalURL:   fmt.Sprintf("https://pbs.example/media/%d.jpg?name=orig", id),
		ContentRating: content,
		SafetyRating:  safety,
		Width:         800,
		Height:        600,
	}
}

// Feed builds count posts for one account, alternating KF/NonKF and Safe/NSFW.
func Feed(count int, twitterID string) []*domain.PostSummary {
	posts := make([]*domain.PostSummary, 0, count)
	for i := 1; i <= count; i++ {
		content, safety := domain.RatingLabel("KF"), domain.RatingLabel("Safe")
		if i%2 == 0 {
			content, safety = "NonKF", "NSFW"
		}
		posts = append(posts, NewPost(i, twitterID, content, safety, NewMedia(int64(i*10), content, safety)))
	}
	return posts
}
