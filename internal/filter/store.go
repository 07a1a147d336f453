// Package filter owns the active feed filter: its defaults, persistence and
// the query parameters it contributes to feed requests.
package filter

import (
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/katworks/sandstar/internal/domain"
)

// Query parameter names understood by the feed endpoints
const (
	ParamContent = "c"
	ParamSafety  = "s"
	ParamSort    = "sort"
)

// Clearer is implemented by the navigation cache
type Clearer interface {
	Clear()
}

// persisted is the stored blob. Pointer fields tell absent from empty so
// partial blobs merge over defaults.
type persisted struct {
	Content *[]string `msgpack:"content,omitempty"`
	Safety  *[]string `msgpack:"safety,omitempty"`
	Sort    *string   `msgpack:"sort,omitempty"`
}

// Store holds the active FilterState. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	state      domain.FilterState
	store      domain.StateStore
	cache      Clearer
	anonymous  domain.FilterState
	isOperator func() bool
	onApply    func()
	logger     *slog.Logger
}

// NewStore creates a filter store. anonymous is the default for users
// without an operator credential; operators default to no restrictions.
func NewStore(store domain.StateStore, cache Clearer, anonymous domain.FilterState, isOperator func() bool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if isOperator == nil {
		isOperator = func() bool { return false }
	}
	s := &Store{
		store:      store,
		cache:      cache,
		anonymous:  anonymous.Canonical(),
		isOperator: isOperator,
		logger:     logger,
	}
	s.state = s.Defaults()
	return s
}

// OnApply registers the re-render hook run after every Apply
func (s *Store) OnApply(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onApply = fn
}

// Defaults returns the role default filter
func (s *Store) Defaults() domain.FilterState {
	if s.isOperator() {
		return domain.FilterState{Sort: domain.SortNewest}
	}
	return s.anonymous
}

// Load restores the persisted filter, falling back to the role default for
// anything absent or unreadable.
func (s *Store) Load() domain.FilterState {
	state := s.Defaults()

	blob, err := s.store.FilterBlob()
	if err != nil {
		s.logger.Warn("failed to read persisted filters", "error", err)
	} else if len(blob) > 0 {
		merged, err := decode(blob, state)
		if err != nil {
			s.logger.Warn("ignoring malformed persisted filters", "error", err)
		} else {
			state = merged
		}
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return state
}

// Current returns the active filter
func (s *Store) Current() domain.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Apply activates state, persists it, clears the navigation cache and runs
// the re-render hook.
func (s *Store) Apply(state domain.FilterState) error {
	state = state.Canonical()

	s.mu.Lock()
	s.state = state
	hook := s.onApply
	s.mu.Unlock()

	var persistErr error
	if blob, err := encode(state); err != nil {
		persistErr = fmt.Errorf("failed to encode filters: %w", err)
	} else if err := s.store.SaveFilterBlob(blob); err != nil {
		persistErr = fmt.Errorf("failed to persist filters: %w", err)
	}
	if persistErr != nil {
		s.logger.Error("filter apply", "error", persistErr)
	}

	if s.cache != nil {
		s.cache.Clear()
	}
	s.logger.Info("filters applied", "content", state.Content, "safety", state.Safety, "sort", state.Sort)

	if hook != nil {
		hook()
	}
	return persistErr
}

// Query returns the request parameters for the active filter
func (s *Store) Query() url.Values {
	return Query(s.Current())
}

// Query encodes a filter as request parameters: every content label as c,
// every safety label as s, and one sort. Empty sets contribute nothing.
func Query(state domain.FilterState) url.Values {
	state = state.Canonical()
	q := url.Values{}
	for _, l := range state.Content {
		q.Add(ParamContent, string(l))
	}
	for _, l := range state.Safety {
		q.Add(ParamSafety, string(l))
	}
	q.Set(ParamSort, string(state.Sort))
	return q
}

// ParseQuery is the inverse of Query
func ParseQuery(q url.Values) domain.FilterState {
	state := domain.FilterState{Sort: domain.SortMode(q.Get(ParamSort))}
	for _, v := range q[ParamContent] {
		state.Content = append(state.Content, domain.RatingLabel(v))
	}
	for _, v := range q[ParamSafety] {
		state.Safety = append(state.Safety, domain.RatingLabel(v))
	}
	return state.Canonical()
}

func encode(state domain.FilterState) ([]byte, error) {
	content, safety, sort := labelsToStrings(state.Content), labelsToStrings(state.Safety), string(state.Sort)
	return msgpack.Marshal(&persisted{Content: &content, Safety: &safety, Sort: &sort})
}

func decode(blob []byte, defaults domain.FilterState) (domain.FilterState, error) {
	var p persisted
	if err := msgpack.Unmarshal(blob, &p); err != nil {
		return defaults, err
	}
	state := defaults
	if p.Content != nil {
		state.Content = stringsToLabels(*p.Content)
	}
	if p.Safety != nil {
		state.Safety = stringsToLabels(*p.Safety)
	}
	if p.Sort != nil {
		state.Sort = domain.SortMode(*p.Sort)
	}
	return state.Canonical(), nil
}

func labelsToStrings(in []domain.RatingLabel) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		out = append(out, string(l))
	}
	return out
}

func stringsToLabels(in []string) []domain.RatingLabel {
	out := make([]domain.RatingLabel, 0, len(in))
	for _, s := range in {
		out = append(out, domain.RatingLabel(s))
	}
	return slices.Clip(out)
}
