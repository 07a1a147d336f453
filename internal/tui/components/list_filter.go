package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katworks/sandstar/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// ListFilter narrows a list of names with fuzzy matching as the user types
type ListFilter struct {
	input   textinput.Model
	active  bool
	query   string
	matches []fuzzy.Match
}

// NewListFilter creates an inactive filter
func NewListFilter() ListFilter {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 64
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.PlaceholderStyle = styles.DimStyle
	return ListFilter{input: ti}
}

// Activate shows the filter bar and focuses it
func (f *ListFilter) Activate() tea.Cmd {
	f.active = true
	return f.input.Focus()
}

// Clear deactivates the filter and shows every item again
func (f *ListFilter) Clear() {
	f.active = false
	f.query = ""
	f.matches = nil
	f.input.SetValue("")
	f.input.Blur()
}

// IsActive reports whether the filter bar is shown
func (f ListFilter) IsActive() bool {
	return f.active
}

// IsTyping reports whether keys go to the filter input
func (f ListFilter) IsTyping() bool {
	return f.active && f.input.Focused()
}

// Query returns the applied query
func (f ListFilter) Query() string {
	return f.query
}

// Update routes a key to the input. enter keeps the filter but returns
// focus to the list; esc clears an empty filter.
func (f ListFilter) Update(msg tea.Msg, names []string) (ListFilter, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			f.input.Blur()
			return f, nil
		case "esc":
			f.Clear()
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.Apply(f.input.Value(), names)
	return f, cmd
}

// Apply matches query against names case-insensitively
func (f *ListFilter) Apply(query string, names []string) {
	f.query = query
	if query == "" {
		f.matches = nil
		return
	}
	lower := make([]string, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(n)
	}
	f.matches = fuzzy.Find(strings.ToLower(query), lower)
}

// Visible returns the indexes of the items to show, in display order
func (f ListFilter) Visible(total int) []int {
	if f.query == "" {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, len(f.matches))
	for i, m := range f.matches {
		out[i] = m.Index
	}
	return out
}

// MatchedIndexes returns the byte offsets of the matched characters of item
func (f ListFilter) MatchedIndexes(item int) []int {
	for _, m := range f.matches {
		if m.Index == item {
			return m.MatchedIndexes
		}
	}
	return nil
}

// View renders the filter bar with a match count
func (f ListFilter) View(shown, total int) string {
	if !f.active {
		return ""
	}
	count := ""
	if f.query != "" {
		count = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", shown, total))
	}
	return f.input.View() + count
}

// HighlightMatches renders text with the matched runes emphasised
func HighlightMatches(text string, matched []int, selected bool) string {
	normal := lipgloss.NewStyle().Foreground(styles.LightGray)
	match := styles.MatchHighlightStyle
	if selected {
		normal = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		match = styles.MatchHighlightSelectedStyle
	}
	if len(matched) == 0 {
		return normal.Render(text)
	}

	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var (
		out     strings.Builder
		run     strings.Builder
		inMatch bool
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if inMatch {
			out.WriteString(match.Render(run.String()))
		} else {
			out.WriteString(normal.Render(run.String()))
		}
		run.Reset()
	}
	// matched holds byte offsets
	for i, r := range text {
		if set[i] != inMatch {
			flush()
			inMatch = set[i]
		}
		run.WriteRune(r)
	}
	flush()
	return out.String()
}
