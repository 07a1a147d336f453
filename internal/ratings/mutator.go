package ratings

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/navcache"
)

// CredentialSource supplies the operator credential
type CredentialSource interface {
	Credential() string
}

// Mutator applies rating edits optimistically: the navigation cache is
// updated before the server is asked, and never rolled back.
type Mutator struct {
	cache  *navcache.Cache
	repo   domain.ModerationRepository
	auth   CredentialSource
	logger *slog.Logger
}

// NewMutator creates a Mutator writing through cache
func NewMutator(cache *navcache.Cache, repo domain.ModerationRepository, auth CredentialSource, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{cache: cache, repo: repo, auth: auth, logger: logger}
}

// Stage writes the change into every cached page and marks it unconfirmed.
func (m *Mutator) Stage(change domain.RatingChange) int {
	n := m.cache.ApplyRating(change)
	m.logger.Debug("staged rating",
		"item", change.ItemKind.String(), "id", change.ItemID,
		"type", change.RatingKind.String(), "value", change.Value, "updated", n)
	return n
}

// Commit sends the change to the server. On success the unconfirmed mark is
// cleared unless a newer value for the same rating is still pending.
// Authorization failures are returned so the caller can show them;
// anything else is logged and leaves the optimistic value in place.
func (m *Mutator) Commit(ctx context.Context, change domain.RatingChange) error {
	cred := m.auth.Credential()
	if cred == "" {
		m.cache.Fail(change)
		return domain.ErrUnauthorized
	}

	var err error
	switch change.ItemKind {
	case domain.ItemMedia:
		err = m.repo.RateMedia(ctx, cred, change.ItemID, change.RatingKind, change.Value)
	default:
		err = m.repo.RatePost(ctx, cred, change.ItemID, change.RatingKind, change.Value)
	}

	if err != nil {
		m.logger.Error("failed to commit rating",
			"item", change.ItemKind.String(), "id", change.ItemID, "error", err)
		m.cache.Fail(change)
		if errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		return nil
	}

	m.cache.Confirm(change)
	return nil
}

// SetRating stages then commits a change.
func (m *Mutator) SetRating(ctx context.Context, change domain.RatingChange) error {
	m.Stage(change)
	return m.Commit(ctx, change)
}

// Unconfirmed reports whether a staged change is still waiting for the server
func (m *Mutator) Unconfirmed(item domain.ItemKind, id string, kind domain.RatingKind) bool {
	return m.cache.Unconfirmed(item, id, kind)
}

// UpdateCaption replaces a media caption. Captions are only shown by the
// media view, which always fetches fresh, so nothing is staged.
func (m *Mutator) UpdateCaption(ctx context.Context, mediaID int64, caption string) error {
	cred := m.auth.Credential()
	if cred == "" {
		return domain.ErrUnauthorized
	}
	if err := m.repo.UpdateCaption(ctx, cred, strconv.FormatInt(mediaID, 10), caption); err != nil {
		m.logger.Error("failed to update caption", "mediaId", mediaID, "error", err)
		return err
	}
	return nil
}
