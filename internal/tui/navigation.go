package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/katworks/sandstar/internal/feed"
	"github.com/katworks/sandstar/internal/navcache"
	"github.com/katworks/sandstar/internal/router"
)

// registerRoutes binds one load command per view kind. Handlers only build
// commands; the model applies the transition itself.
func registerRoutes(r *router.Router[tea.Cmd], svc *Services) {
	keyOf := func(t router.Transition) navcache.Key {
		return svc.Loader.Key(t.Location.Path, t.Location.Query)
	}

	r.Handle(router.Feed, func(t router.Transition) tea.Cmd {
		return LoadFeedCmd(svc.Loader, keyOf(t), feed.Request{
			Path:  t.Location.Path,
			Query: t.Location.Query,
			Page:  t.Route.Page,
		})
	})
	r.Handle(router.Account, func(t router.Transition) tea.Cmd {
		key := keyOf(t)
		return tea.Batch(
			LoadFeedCmd(svc.Loader, key, feed.Request{
				Path:      t.Location.Path,
				Query:     t.Location.Query,
				AccountID: t.Route.Param,
				Page:      t.Route.Page,
			}),
			LoadAccountCmd(svc.Directory, key, t.Route.Param),
		)
	})
	r.Handle(router.Artists, func(t router.Transition) tea.Cmd {
		return LoadArtistsCmd(svc.Directory, keyOf(t))
	})
	r.Handle(router.Artist, func(t router.Transition) tea.Cmd {
		return LoadArtistCmd(svc.Directory, keyOf(t), t.Route.Param)
	})
	r.Handle(router.Post, func(t router.Transition) tea.Cmd {
		return LoadPostCmd(svc.Directory, keyOf(t), t.Route.Param)
	})
	r.Handle(router.Media, func(t router.Transition) tea.Cmd {
		return LoadMediaCmd(svc.Directory, keyOf(t), t.Route.Param)
	})
}

// enter replaces the screen for a transition and returns its load
func (m *Model) enter(t router.Transition, load tea.Cmd) tea.Cmd {
	m.screen = screen{
		transition: t,
		key:        m.router.CurrentKey(),
		loading:    true,
	}
	m.cursor = 0
	m.offset = 0
	m.ListFilter.Clear()
	m.body.SetContent("")
	m.body.GotoTop()
	m.Loading = true
	return load
}

// navigate pushes target onto the history and shows it
func (m *Model) navigate(target string) tea.Cmd {
	if target == "" {
		return nil
	}
	t, load := m.router.Navigate(target, m.cursor)
	return m.enter(t, load)
}

func (m *Model) back() tea.Cmd {
	t, load, ok := m.router.Back(m.cursor)
	if !ok {
		return nil
	}
	return m.enter(t, load)
}

func (m *Model) forward() tea.Cmd {
	t, load, ok := m.router.Forward(m.cursor)
	if !ok {
		return nil
	}
	return m.enter(t, load)
}

// reload re-runs the current route, used after the filter changed
func (m *Model) reload() tea.Cmd {
	t, load := m.router.Reload()
	return m.enter(t, load)
}

// turnPage moves a paginated list by delta pages. Previous is disabled on
// page one and next when the last page came back short.
func (m *Model) turnPage(delta int) tea.Cmd {
	if !m.screen.kind().IsList() || m.screen.feed == nil {
		return nil
	}
	page := m.screen.feed.Page
	switch {
	case delta < 0 && !m.screen.feed.HasPrev:
		return nil
	case delta > 0 && !m.screen.feed.HasNext:
		return nil
	}
	loc := m.screen.transition.Location.WithPage(page + delta)
	return m.navigate(loc.String())
}

func (m *Model) currentRows() []row {
	return m.screen.rows(m.ListFilter.Visible)
}

func (m *Model) selectedRow() (row, bool) {
	rows := m.currentRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.currentRows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	visible := m.listHeight()
	if visible <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}
