package archive

import (
	"time"

	"github.com/katworks/sandstar/internal/domain"
)

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func mapPost(p postDTO) *domain.PostSummary {
	post := &domain.PostSummary{
		PostID:        p.PostID,
		ScreenName:    p.ScreenName,
		TwitterID:     p.TwitterID,
		PostText:      p.PostText,
		PostDate:      unixTime(p.PostDate),
		ArchiveDate:   unixTime(p.ArchiveDate),
		ContentRating: domain.RatingLabel(p.ContentRating),
		SafetyRating:  domain.RatingLabel(p.SafetyRating),
		Media:         make([]domain.MediaSummary, 0, len(p.Media)),
	}
	for _, m := range p.Media {
		post.Media = append(post.Media, *mapMedia(m))
	}
	return post
}

func mapPosts(in []postDTO) []*domain.PostSummary {
	out := make([]*domain.PostSummary, 0, len(in))
	for _, p := range in {
		out = append(out, mapPost(p))
	}
	return out
}

func mapMedia(m mediaDTO) *domain.MediaSummary {
	return &domain.MediaSummary{
		ID:            m.ID,
		PostID:        m.PostID,
		MediaType:     m.MediaType,
		MediaIndex:    m.MediaIndex,
		LocalPath:     m.LocalPath,
		OriginalURL:   m.OriginalURL,
		Caption:       m.Caption,
		ContentRating: domain.RatingLabel(m.ContentRating),
		SafetyRating:  domain.RatingLabel(m.SafetyRating),
		Width:         m.Width,
		Height:        m.Height,
		FileSize:      m.FileSize,
		DuplicateOf:   m.DuplicateOf,
	}
}

func mapAccount(a accountDTO) domain.Account {
	return domain.Account{
		TwitterID:      a.TwitterID,
		ArtistID:       a.ArtistID,
		ScreenName:     a.ScreenName,
		DisplayName:    a.DisplayName,
		AccountStatus:  a.AccountStatus,
		IsProtected:    a.IsProtected,
		DownloadStatus: a.DownloadStatus,
		LastScrapedID:  a.LastScrapedID,
		SafetyRating:   domain.RatingLabel(a.SafetyRating),
	}
}

func mapAccounts(in []accountDTO) []domain.Account {
	out := make([]domain.Account, 0, len(in))
	for _, a := range in {
		out = append(out, mapAccount(a))
	}
	return out
}

func mapArtist(a artistDTO) domain.Artist {
	return domain.Artist{ID: a.ID, Name: a.Name, Description: a.Description}
}

func mapArtists(in []artistDTO) []domain.Artist {
	out := make([]domain.Artist, 0, len(in))
	for _, a := range in {
		out = append(out, mapArtist(a))
	}
	return out
}

func mapArtistDetail(d artistDetailDTO) *domain.ArtistDetail {
	detail := &domain.ArtistDetail{
		Artist:   domain.Artist{ID: d.ID, Name: d.Name, Description: d.Description},
		Aliases:  make([]domain.Alias, 0, len(d.Aliases)),
		Accounts: mapAccounts(d.Accounts),
	}
	for _, al := range d.Aliases {
		detail.Aliases = append(detail.Aliases, domain.Alias{
			ID:           al.ID,
			ArtistID:     al.ArtistID,
			AliasName:    al.AliasName,
			SafetyRating: domain.RatingLabel(al.SafetyRating),
		})
	}
	return detail
}

func mapLabels(in []string) []domain.RatingLabel {
	out := make([]domain.RatingLabel, 0, len(in))
	for _, l := range in {
		out = append(out, domain.RatingLabel(l))
	}
	return out
}
