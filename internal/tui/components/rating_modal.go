package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/tui/styles"
)

// RatingModal is a small popup for choosing a rating label
type RatingModal struct {
	visible bool
	title   string
	options []domain.RatingLabel
	current domain.RatingLabel
	cursor  int
}

// NewRatingModal creates a new rating modal
func NewRatingModal() RatingModal {
	return RatingModal{}
}

// Show displays options with the cursor on the current label
func (m *RatingModal) Show(title string, options []domain.RatingLabel, current domain.RatingLabel) {
	m.visible = true
	m.title = title
	m.options = options
	m.current = current
	m.cursor = 0
	for i, opt := range options {
		if opt == current {
			m.cursor = i
			break
		}
	}
}

// Hide dismisses the modal
func (m *RatingModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m RatingModal) IsVisible() bool {
	return m.visible
}

// HandleKey processes a key press, returns (handled, choice).
// A non-nil choice is a label different from the current one.
func (m *RatingModal) HandleKey(key string) (handled bool, choice *domain.RatingLabel) {
	if !m.visible {
		return false, nil
	}

	switch key {
	case "j", "down":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		m.visible = false
		if len(m.options) == 0 {
			return true, nil
		}
		chosen := m.options[m.cursor]
		if chosen == m.current {
			return true, nil
		}
		return true, &chosen
	case "esc", "q":
		m.visible = false
	}

	return true, nil
}

// View renders the rating modal
func (m RatingModal) View() string {
	if !m.visible {
		return ""
	}

	var lines []string
	if len(m.options) == 0 {
		lines = append(lines, styles.DimStyle.Render("No ratings available"))
	}
	for i, opt := range m.options {
		prefix := "  "
		if opt == m.current {
			prefix = "✓ "
		}
		text := styles.Pad(prefix+string(opt), 20)

		style := lipgloss.NewStyle().Foreground(styles.LightGray)
		switch {
		case i == m.cursor:
			style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		case opt == m.current:
			style = lipgloss.NewStyle().Foreground(styles.Sand)
		}
		lines = append(lines, style.Render(text))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Sand).
		Background(styles.SlateDark).
		Padding(0, 1).
		Render(styles.ModalTitleStyle.Render(m.title) + "\n" + strings.Join(lines, "\n"))
}
