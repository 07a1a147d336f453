package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/tui/styles"
)

type filterSection int

const (
	sectionContent filterSection = iota
	sectionSafety
	sectionSort
)

type filterEntry struct {
	section filterSection
	label   domain.RatingLabel
	sort    domain.SortMode
}

// FilterModal edits a draft FilterState: a checkbox per rating label and a
// radio choice of sort order. Nothing changes until the draft is applied.
type FilterModal struct {
	visible bool
	entries []filterEntry
	draft   domain.FilterState
	cursor  int
}

// NewFilterModal creates a new filter modal
func NewFilterModal() FilterModal {
	return FilterModal{}
}

// Show opens the modal for the catalog's labels, starting from state
func (m *FilterModal) Show(catalog domain.RatingCatalog, state domain.FilterState) {
	m.visible = true
	m.draft = state.Canonical()
	m.cursor = 0
	m.entries = m.entries[:0]
	for _, l := range catalog.Content {
		m.entries = append(m.entries, filterEntry{section: sectionContent, label: l})
	}
	for _, l := range catalog.Safety {
		m.entries = append(m.entries, filterEntry{section: sectionSafety, label: l})
	}
	for _, s := range domain.SortModes {
		m.entries = append(m.entries, filterEntry{section: sectionSort, sort: s})
	}
}

// Hide dismisses the modal
func (m *FilterModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m FilterModal) IsVisible() bool {
	return m.visible
}

// Draft returns the state being edited
func (m FilterModal) Draft() domain.FilterState {
	return m.draft
}

// HandleKey processes a key press, returns (handled, applied).
// A non-nil applied state means the user confirmed the draft.
func (m *FilterModal) HandleKey(key string) (handled bool, applied *domain.FilterState) {
	if !m.visible {
		return false, nil
	}

	switch key {
	case "j", "down":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case " ", "x":
		m.toggle()
	case "a":
		// ANY for both rating kinds
		m.draft = domain.FilterState{Sort: m.draft.Sort}.Canonical()
	case "enter":
		m.visible = false
		state := m.draft.Canonical()
		return true, &state
	case "esc", "q":
		m.visible = false
	}

	return true, nil
}

func (m *FilterModal) toggle() {
	if m.cursor >= len(m.entries) {
		return
	}
	e := m.entries[m.cursor]
	switch e.section {
	case sectionContent:
		m.draft = m.draft.Toggle(domain.RatingContent, e.label)
	case sectionSafety:
		m.draft = m.draft.Toggle(domain.RatingSafety, e.label)
	case sectionSort:
		m.draft.Sort = e.sort
	}
}

func (m FilterModal) checked(e filterEntry) bool {
	switch e.section {
	case sectionContent:
		return m.draft.Has(domain.RatingContent, e.label)
	case sectionSafety:
		return m.draft.Has(domain.RatingSafety, e.label)
	default:
		return m.draft.Sort == e.sort
	}
}

// View renders the filter modal
func (m FilterModal) View() string {
	if !m.visible {
		return ""
	}

	const width = 28
	headings := map[filterSection]string{
		sectionContent: "Content",
		sectionSafety:  "Safety",
		sectionSort:    "Sort",
	}

	var lines []string
	prev := filterSection(-1)
	for i, e := range m.entries {
		if e.section != prev {
			if prev >= 0 {
				lines = append(lines, "")
			}
			heading := headings[e.section]
			if e.section != sectionSort && m.sectionEmpty(e.section) {
				heading += styles.DimStyle.Render("  (any)")
			}
			lines = append(lines, styles.AccentStyle.Render(heading))
			prev = e.section
		}

		var text string
		if e.section == sectionSort {
			mark := "( ) "
			if m.checked(e) {
				mark = "(•) "
			}
			text = mark + e.sort.Label()
		} else {
			mark := "[ ] "
			if m.checked(e) {
				mark = "[x] "
			}
			text = mark + string(e.label)
		}

		style := lipgloss.NewStyle().Foreground(styles.LightGray)
		if i == m.cursor {
			style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		}
		lines = append(lines, style.Render(styles.Pad(text, width)))
	}

	help := styles.HelpDescStyle.Render("space toggle · a any · enter apply · esc cancel")

	return styles.ModalStyle.Render(
		styles.ModalTitleStyle.Render("Filters") + "\n" +
			strings.Join(lines, "\n") + "\n\n" + help)
}

func (m FilterModal) sectionEmpty(s filterSection) bool {
	if s == sectionContent {
		return len(m.draft.Content) == 0
	}
	return len(m.draft.Safety) == 0
}
