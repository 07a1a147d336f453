package components

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katworks/sandstar/internal/tui/styles"
)

// CaptionModal is a multi-line editor for a media caption
type CaptionModal struct {
	visible bool
	mediaID int64
	area    textarea.Model
}

// NewCaptionModal creates a new caption editor
func NewCaptionModal() CaptionModal {
	ta := textarea.New()
	ta.Placeholder = "Describe this media..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetWidth(56)
	ta.SetHeight(6)
	return CaptionModal{area: ta}
}

// Show opens the editor for mediaID with the current caption
func (m *CaptionModal) Show(mediaID int64, caption string) tea.Cmd {
	m.visible = true
	m.mediaID = mediaID
	m.area.SetValue(caption)
	return m.area.Focus()
}

// Hide dismisses the editor
func (m *CaptionModal) Hide() {
	m.visible = false
	m.area.Blur()
}

// IsVisible returns whether the editor is shown
func (m CaptionModal) IsVisible() bool {
	return m.visible
}

// MediaID returns the media being edited
func (m CaptionModal) MediaID() int64 {
	return m.mediaID
}

// Value returns the edited caption
func (m CaptionModal) Value() string {
	return m.area.Value()
}

// Update handles input events, returns (modal, cmd, submitted).
// ctrl+s submits, esc discards.
func (m CaptionModal) Update(msg tea.Msg) (CaptionModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+s":
			m.Hide()
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd, false
}

// View renders the editor
func (m CaptionModal) View() string {
	if !m.visible {
		return ""
	}
	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Edit caption"),
		m.area.View(),
		"",
		styles.HelpDescStyle.Render("ctrl+s save · esc cancel"),
	))
}
