package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/search"
)

var catalog = domain.RatingCatalog{
	Content: []domain.RatingLabel{"KF", "NonKF", "Rejected", domain.Waiting},
	Safety:  []domain.RatingLabel{"Safe", "NSFW", "NSFL", domain.Waiting},
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFilterModalTogglesDraftUntilApplied(t *testing.T) {
	t.Parallel()

	m := NewFilterModal()
	m.Show(catalog, domain.FilterState{Safety: []domain.RatingLabel{"Safe"}})
	require.True(t, m.IsVisible())

	m.HandleKey(" ") // KF on
	m.HandleKey("j")
	m.HandleKey("x") // NonKF on
	m.HandleKey("j")
	m.HandleKey("j")
	m.HandleKey("j")
	m.HandleKey(" ") // Safe off
	require.Equal(t, []domain.RatingLabel{"KF", "NonKF"}, m.Draft().Content)
	require.Empty(t, m.Draft().Safety)

	handled, applied := m.HandleKey("enter")
	require.True(t, handled)
	require.NotNil(t, applied)
	require.False(t, m.IsVisible())
	require.Equal(t, []domain.RatingLabel{"KF", "NonKF"}, applied.Content)
	require.Empty(t, applied.Safety)
	require.Equal(t, domain.SortNewest, applied.Sort)
}

func TestFilterModalAnyAndSort(t *testing.T) {
	t.Parallel()

	m := NewFilterModal()
	m.Show(catalog, domain.FilterState{
		Content: []domain.RatingLabel{"KF"},
		Safety:  []domain.RatingLabel{"NSFW"},
	})

	m.HandleKey("a")
	for range len(catalog.Content) + len(catalog.Safety) + 1 {
		m.HandleKey("j")
	}
	m.HandleKey(" ") // second sort mode

	_, applied := m.HandleKey("enter")
	require.NotNil(t, applied)
	require.Empty(t, applied.Content)
	require.Empty(t, applied.Safety)
	require.Equal(t, domain.SortOldest, applied.Sort)
}

func TestFilterModalEscapeDiscardsDraft(t *testing.T) {
	t.Parallel()

	m := NewFilterModal()
	m.Show(catalog, domain.FilterState{})
	m.HandleKey(" ")

	handled, applied := m.HandleKey("esc")
	require.True(t, handled)
	require.Nil(t, applied)
	require.False(t, m.IsVisible())

	handled, _ = m.HandleKey("enter")
	require.False(t, handled, "hidden modal ignores keys")
}

func TestRatingModal(t *testing.T) {
	t.Parallel()

	options := []domain.RatingLabel{"KF", "NonKF", "Rejected"}

	t.Run("choosing another label", func(t *testing.T) {
		t.Parallel()
		m := NewRatingModal()
		m.Show("Content rating", options, "NonKF")
		m.HandleKey("j")
		_, choice := m.HandleKey("enter")
		require.NotNil(t, choice)
		require.Equal(t, domain.RatingLabel("Rejected"), *choice)
		require.False(t, m.IsVisible())
	})

	t.Run("confirming the current label is a no-op", func(t *testing.T) {
		t.Parallel()
		m := NewRatingModal()
		m.Show("Content rating", options, "NonKF")
		_, choice := m.HandleKey("enter")
		require.Nil(t, choice)
		require.False(t, m.IsVisible())
	})

	t.Run("cursor stays in range", func(t *testing.T) {
		t.Parallel()
		m := NewRatingModal()
		m.Show("Content rating", options, "KF")
		m.HandleKey("k")
		for range 5 {
			m.HandleKey("j")
		}
		_, choice := m.HandleKey("enter")
		require.NotNil(t, choice)
		require.Equal(t, domain.RatingLabel("Rejected"), *choice)
	})
}

func TestNoticeBlocksUntilDismissed(t *testing.T) {
	t.Parallel()

	var n NoticeModal
	require.False(t, n.HandleKey("j"))

	n.Show("Not authorized", "log in again")
	require.True(t, n.HandleKey("j"))
	require.True(t, n.IsVisible())
	require.Contains(t, ansi.Strip(n.View()), "Not authorized")

	require.True(t, n.HandleKey("enter"))
	require.False(t, n.IsVisible())
}

func TestListFilterNarrowsAndRestores(t *testing.T) {
	t.Parallel()

	names := []string{"Alice", "Bob", "Carol", "Bobby"}
	f := NewListFilter()
	f.Activate()
	require.True(t, f.IsTyping())

	f, _ = f.Update(runes("bo"), names)
	require.Equal(t, "bo", f.Query())
	require.ElementsMatch(t, []int{1, 3}, f.Visible(len(names)))
	require.Equal(t, []int{0, 1}, f.MatchedIndexes(1))

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyEnter}, names)
	require.False(t, f.IsTyping())
	require.True(t, f.IsActive(), "enter keeps the filter applied")

	f.Clear()
	require.False(t, f.IsActive())
	require.Equal(t, []int{0, 1, 2, 3}, f.Visible(len(names)))
}

func TestListFilterIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	f := NewListFilter()
	f.Apply("CAR", []string{"Alice", "carol"})
	require.Equal(t, []int{1}, f.Visible(2))
}

func TestHighlightMatchesKeepsText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Bobby", ansi.Strip(HighlightMatches("Bobby", []int{0, 1}, false)))
	require.Equal(t, "Zoë Ünal", ansi.Strip(HighlightMatches("Zoë Ünal", []int{2, 5}, true)))
	require.Equal(t, "plain", ansi.Strip(HighlightMatches("plain", nil, false)))
}

func TestSearchPanelActions(t *testing.T) {
	t.Parallel()

	p := NewSearchPanel()
	p.Show()
	require.True(t, p.IsVisible())

	p, _, action := p.Update(runes("al"))
	require.Equal(t, SearchChanged, action)
	require.Equal(t, "al", p.Query())

	_, _, action = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, SearchNone, action, "nothing to select yet")

	artists := []domain.Artist{{ID: 1, Name: "Alan"}, {ID: 2, Name: "Alice"}}
	accounts := []domain.Account{{TwitterID: "7", ScreenName: "alpaca"}}
	p.SetResults(search.Build("al", artists, accounts))

	p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, _, action = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, SearchSelected, action)
	r, ok := p.Selected()
	require.True(t, ok)
	require.Equal(t, search.ResultAccount, r.Kind)

	view := ansi.Strip(p.View())
	require.Contains(t, view, "Artists")
	require.Contains(t, view, "Accounts")

	p, _, action = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, SearchClosed, action)
	require.False(t, p.IsVisible())
}

func TestSearchPanelNoResultsIsNotSelectable(t *testing.T) {
	t.Parallel()

	p := NewSearchPanel()
	p.Show()
	p.SetResults(search.Build("zz", nil, nil))

	_, ok := p.Selected()
	require.False(t, ok)
	_, _, action := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, SearchNone, action)
}

func TestSearchPanelFailureStopsSearching(t *testing.T) {
	t.Parallel()

	p := NewSearchPanel()
	p.SetSize(120, 40)
	p.Show()
	p, _, _ = p.Update(runes("al"))
	p.SetSearching(true)
	require.Contains(t, ansi.Strip(p.View()), "Searching...")

	p.SetResults(search.Results{Query: "al", Failed: true})
	view := ansi.Strip(p.View())
	require.NotContains(t, view, "Searching...")
	require.Contains(t, view, "Search failed")

	_, ok := p.Selected()
	require.False(t, ok)
}
