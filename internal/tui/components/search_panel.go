package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katworks/sandstar/internal/search"
	"github.com/katworks/sandstar/internal/tui/styles"
)

// SearchAction reports what an update did to the panel
type SearchAction int

const (
	SearchNone SearchAction = iota
	SearchChanged
	SearchSelected
	SearchClosed
)

// SearchPanel is the artist and account search modal. It only displays
// results; querying is driven by the caller.
type SearchPanel struct {
	input     textinput.Model
	results   search.Results
	entries   []search.Result
	cursor    int
	visible   bool
	searching bool
	width     int
	height    int
	prevQuery string
}

// NewSearchPanel creates a new search panel
func NewSearchPanel() SearchPanel {
	ti := textinput.New()
	ti.Placeholder = "Search artists and accounts..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "f "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SearchPanel{input: ti}
}

// Show makes the panel visible with an empty query
func (p *SearchPanel) Show() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	p.prevQuery = ""
	p.ClearResults()
	return p.input.Focus()
}

// Hide hides the panel and drops its results
func (p *SearchPanel) Hide() {
	p.visible = false
	p.input.Blur()
	p.ClearResults()
}

// IsVisible returns true if the panel is visible
func (p SearchPanel) IsVisible() bool {
	return p.visible
}

// SetSize updates the panel dimensions
func (p *SearchPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	if w := width/2 - 8; w > 20 {
		p.input.Width = w
	}
}

// Query returns the current text
func (p SearchPanel) Query() string {
	return p.input.Value()
}

// SetSearching marks a lookup as pending
func (p *SearchPanel) SetSearching(v bool) {
	p.searching = v
}

// SetResults replaces the displayed results
func (p *SearchPanel) SetResults(res search.Results) {
	p.results = res
	p.entries = res.Entries()
	p.cursor = 0
	p.searching = false
}

// ClearResults empties the result list
func (p *SearchPanel) ClearResults() {
	p.results = search.Results{}
	p.entries = nil
	p.cursor = 0
	p.searching = false
}

// Selected returns the entry under the cursor
func (p SearchPanel) Selected() (search.Result, bool) {
	if p.cursor >= len(p.entries) {
		return search.Result{}, false
	}
	r := p.entries[p.cursor]
	return r, r.Kind != search.ResultNone
}

// Update handles messages
func (p SearchPanel) Update(msg tea.Msg) (SearchPanel, tea.Cmd, SearchAction) {
	if !p.visible {
		return p, nil, SearchNone
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd, SearchNone
	}

	switch keyMsg.String() {
	case "esc":
		p.Hide()
		return p, nil, SearchClosed
	case "enter":
		if _, ok := p.Selected(); ok {
			return p, nil, SearchSelected
		}
		return p, nil, SearchNone
	case "down", "ctrl+n":
		if p.cursor < len(p.entries)-1 {
			p.cursor++
		}
		return p, nil, SearchNone
	case "up", "ctrl+p":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil, SearchNone
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if q := p.input.Value(); q != p.prevQuery {
		p.prevQuery = q
		return p, cmd, SearchChanged
	}
	return p, cmd, SearchNone
}

// View renders the panel
func (p SearchPanel) View() string {
	if !p.visible {
		return ""
	}

	modalWidth := p.width / 2
	if modalWidth < 44 {
		modalWidth = 44
	}

	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	switch {
	case p.searching && len(p.entries) == 0:
		b.WriteString(styles.DimStyle.Render("Searching..."))
	case p.results.Failed:
		b.WriteString(styles.DimStyle.Render("Search failed"))
	case len(p.entries) > 0:
		p.renderGroups(&b, modalWidth-6)
	}

	return styles.ModalStyle.Width(modalWidth).Render(b.String())
}

func (p SearchPanel) renderGroups(b *strings.Builder, width int) {
	maxRows := p.height - 10
	if maxRows < 5 {
		maxRows = 5
	}

	idx, rows := 0, 0
	for gi, g := range p.results.Groups {
		if g.Title != "" {
			if gi > 0 {
				b.WriteString("\n")
			}
			b.WriteString(styles.AccentStyle.Render(g.Title))
			b.WriteString("\n")
		}
		for _, r := range g.Results {
			if rows >= maxRows {
				b.WriteString(styles.DimStyle.Render("..."))
				return
			}
			label := styles.Truncate(r.Label(), width)
			switch {
			case r.Kind == search.ResultNone:
				b.WriteString(styles.DimStyle.Render(label))
			case idx == p.cursor:
				b.WriteString(lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight).Render(styles.Pad(label, width)))
			default:
				b.WriteString(lipgloss.NewStyle().Foreground(styles.LightGray).Render(label))
			}
			b.WriteString("\n")
			idx++
			rows++
		}
	}
}
