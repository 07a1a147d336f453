package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/ratings"
	"github.com/katworks/sandstar/internal/router"
	"github.com/katworks/sandstar/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A notice blocks everything until dismissed
	if m.Notice.HandleKey(msg.String()) {
		return m, nil
	}

	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil

	case StateConfirmLogout:
		switch {
		case key.Matches(msg, Keys.Confirm):
			return m, LogoutCmd(m.svc.Auth)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil
	}

	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	if m.ListFilter.IsTyping() {
		var cmd tea.Cmd
		m.ListFilter, cmd = m.ListFilter.Update(msg, m.artistNames())
		m.cursor, m.offset = 0, 0
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.ListFilter.IsActive() {
			m.ListFilter.Clear()
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, Keys.HalfUp):
		if m.screen.transition.DetailMode {
			m.body.HalfViewUp()
		} else {
			m.moveCursor(-max(m.listHeight()/2, 1))
		}
	case key.Matches(msg, Keys.HalfDown):
		if m.screen.transition.DetailMode {
			m.body.HalfViewDown()
		} else {
			m.moveCursor(max(m.listHeight()/2, 1))
		}
	case key.Matches(msg, Keys.Home):
		m.cursor = 0
		m.clampCursor()
	case key.Matches(msg, Keys.End):
		m.cursor = len(m.currentRows()) - 1
		m.clampCursor()

	case key.Matches(msg, Keys.Enter):
		if r, ok := m.selectedRow(); ok {
			return m, m.navigate(r.target(m.screen.kind()))
		}
	case key.Matches(msg, Keys.Back):
		return m, m.back()
	case key.Matches(msg, Keys.Forward):
		return m, m.forward()
	case key.Matches(msg, Keys.NextPage):
		return m, m.turnPage(1)
	case key.Matches(msg, Keys.PrevPage):
		return m, m.turnPage(-1)
	case key.Matches(msg, Keys.Feed):
		return m, m.navigate("/")
	case key.Matches(msg, Keys.Artists):
		return m, m.navigate("/artists")

	case key.Matches(msg, Keys.Filter):
		if m.screen.kind() == router.Artists {
			return m, m.ListFilter.Activate()
		}
	case key.Matches(msg, Keys.GlobalSearch):
		return m, m.SearchPanel.Show()
	case key.Matches(msg, Keys.Filters):
		m.FilterModal.Show(m.svc.Catalog.Get(), m.svc.Filters.Current())
	case key.Matches(msg, Keys.Refresh):
		m.svc.Cache.Clear()
		return m, m.reload()

	case key.Matches(msg, Keys.RateContent):
		return m, m.openRating(domain.RatingContent)
	case key.Matches(msg, Keys.RateSafety):
		return m, m.openRating(domain.RatingSafety)
	case key.Matches(msg, Keys.EditCaption):
		return m, m.openCaption()
	case key.Matches(msg, Keys.OpenMedia):
		if r, ok := m.selectedRow(); ok && r.media != nil && m.svc.Opener != nil {
			return m, OpenMediaCmd(m.svc.Opener, *r.media)
		}

	case key.Matches(msg, Keys.Login):
		if !m.svc.Auth.IsOperator() {
			m.LoginModal.ShowSecret("Operator login", "access code")
		}
	case key.Matches(msg, Keys.Logout):
		if m.svc.Auth.IsOperator() {
			m.State = StateConfirmLogout
		}
	}

	return m, nil
}

// routeToModal gives the key to the visible modal, if any
func (m Model) routeToModal(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case m.RatingModal.IsVisible():
		_, choice := m.RatingModal.HandleKey(msg.String())
		if choice == nil {
			if !m.RatingModal.IsVisible() {
				m.pendingRating = nil
			}
			return true, m, nil
		}
		return true, m, m.applyRating(*choice)

	case m.FilterModal.IsVisible():
		_, applied := m.FilterModal.HandleKey(msg.String())
		if applied == nil {
			return true, m, nil
		}
		return true, m, m.applyFilter(*applied)

	case m.CaptionModal.IsVisible():
		var cmd tea.Cmd
		var submitted bool
		m.CaptionModal, cmd, submitted = m.CaptionModal.Update(msg)
		if submitted {
			return true, m, SaveCaptionCmd(m.svc.Mutator, m.CaptionModal.MediaID(), strings.TrimSpace(m.CaptionModal.Value()))
		}
		return true, m, cmd

	case m.LoginModal.IsVisible():
		var cmd tea.Cmd
		var submitted bool
		m.LoginModal, cmd, submitted = m.LoginModal.Update(msg)
		if !submitted {
			return true, m, cmd
		}
		code := strings.TrimSpace(m.LoginModal.Value())
		if code == "" {
			m.LoginModal.Hide()
			return true, m, nil
		}
		return true, m, LoginCmd(m.svc.Auth, code)

	case m.SearchPanel.IsVisible():
		var cmd tea.Cmd
		var action components.SearchAction
		m.SearchPanel, cmd, action = m.SearchPanel.Update(msg)
		switch action {
		case components.SearchChanged:
			if m.svc.Search.Input(m.SearchPanel.Query()) {
				m.SearchPanel.SetSearching(true)
			} else {
				m.SearchPanel.ClearResults()
			}
		case components.SearchSelected:
			r, _ := m.SearchPanel.Selected()
			m.SearchPanel.Hide()
			return true, m, m.navigate(m.svc.Search.Select(r))
		case components.SearchClosed:
			m.svc.Search.Cancel()
		}
		return true, m, cmd
	}

	return false, m, nil
}

// openRating shows the assignable labels for the selected item
func (m *Model) openRating(kind domain.RatingKind) tea.Cmd {
	if !m.svc.Auth.IsOperator() {
		return m.setStatus("Log in as operator to edit ratings", true)
	}
	r, ok := m.selectedRow()
	if !ok {
		return nil
	}
	change, current, ok := r.change(kind)
	if !ok {
		return nil
	}
	options := ratings.AssignableOptions(m.svc.Catalog.Get(), kind, current)
	m.pendingRating = &change
	m.RatingModal.Show(kind.String()+" rating", options, current)
	return nil
}

// applyRating stages the chosen label everywhere it is shown and commits it
func (m *Model) applyRating(value domain.RatingLabel) tea.Cmd {
	if m.pendingRating == nil {
		return nil
	}
	change := *m.pendingRating
	change.Value = value
	m.pendingRating = nil

	m.svc.Mutator.Stage(change)
	m.screen.applyRating(change)
	return CommitRatingCmd(m.svc.Mutator, change)
}

func (m *Model) applyFilter(state domain.FilterState) tea.Cmd {
	if state.Equal(m.svc.Filters.Current()) {
		return nil
	}
	var status tea.Cmd
	if err := m.svc.Filters.Apply(state); err != nil {
		m.logger.Error("failed to persist filters", "error", err)
		status = m.setStatus("Filters applied but not saved", true)
	}
	return tea.Batch(status, m.reload())
}

func (m *Model) openCaption() tea.Cmd {
	if !m.svc.Auth.IsOperator() {
		return m.setStatus("Log in as operator to edit captions", true)
	}
	r, ok := m.selectedRow()
	if !ok || r.media == nil {
		return nil
	}
	return m.CaptionModal.Show(r.media.ID, r.media.Caption)
}

func (m *Model) artistNames() []string {
	names := make([]string, len(m.screen.artists))
	for i, a := range m.screen.artists {
		names[i] = a.Name
	}
	return names
}
