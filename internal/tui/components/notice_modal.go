package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/katworks/sandstar/internal/tui/styles"
)

// NoticeModal is a blocking message that must be dismissed
type NoticeModal struct {
	visible bool
	title   string
	body    string
}

// Show displays the notice
func (m *NoticeModal) Show(title, body string) {
	m.visible = true
	m.title = title
	m.body = body
}

// IsVisible returns whether the notice is shown
func (m NoticeModal) IsVisible() bool {
	return m.visible
}

// HandleKey consumes every key while visible; enter or esc dismisses
func (m *NoticeModal) HandleKey(key string) bool {
	if !m.visible {
		return false
	}
	if key == "enter" || key == "esc" {
		m.visible = false
	}
	return true
}

// View renders the notice
func (m NoticeModal) View() string {
	if !m.visible {
		return ""
	}
	body := lipgloss.NewStyle().Width(44).Foreground(styles.White).Render(m.body)
	return styles.NoticeStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Foreground(styles.Red).Render(m.title),
		body,
		"",
		styles.HelpDescStyle.Render("enter to dismiss"),
	))
}
