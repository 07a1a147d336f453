package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/router"
	"github.com/katworks/sandstar/internal/tui/components"
	"github.com/katworks/sandstar/internal/tui/styles"
)

const dateLayout = "2006-01-02 15:04"

// View renders the whole screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}
	if m.State == StateConfirmLogout {
		return m.renderLogoutConfirmation()
	}

	info := m.renderInfo()
	parts := []string{m.renderTitle(), ""}
	if info != "" {
		parts = append(parts, info)
	}
	parts = append(parts, m.renderList(m.listHeight()))

	content := lipgloss.NewStyle().
		Height(m.Height - 1).
		MaxHeight(m.Height - 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	view := lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())

	for _, overlay := range []string{
		m.SearchPanel.View(),
		m.FilterModal.View(),
		m.RatingModal.View(),
		m.LoginModal.View(),
		m.CaptionModal.View(),
		m.Notice.View(),
	} {
		if overlay != "" {
			view = lipgloss.Place(m.Width, m.Height,
				lipgloss.Center, lipgloss.Center,
				overlay)
		}
	}

	return view
}

// renderTitle renders the location and the active filter
func (m Model) renderTitle() string {
	left := styles.AccentStyle.Bold(true).Render("sandstar") + styles.DimStyle.Render("  ›  ") +
		styles.TitleStyle.Render(m.breadcrumb())

	f := m.svc.Filters.Current()
	var chips []string
	if len(f.Content) > 0 {
		chips = append(chips, "c:"+joinLabels(f.Content))
	}
	if len(f.Safety) > 0 {
		chips = append(chips, "s:"+joinLabels(f.Safety))
	}
	chips = append(chips, f.Sort.Label())
	role := "anonymous"
	if m.svc.Auth.IsOperator() {
		role = "operator"
	}
	right := styles.DimStyle.Render(strings.Join(chips, "  ")+"  ·  ") + styles.AccentStyle.Render(role)

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) breadcrumb() string {
	route := m.screen.transition.Route
	switch route.Kind {
	case router.Artists:
		return "Artists"
	case router.Artist:
		return "Artist · " + route.Param
	case router.Account:
		name := route.Param
		if m.screen.account != nil {
			name = "@" + m.screen.account.ScreenName
		}
		return fmt.Sprintf("%s · page %d", name, route.Page)
	case router.Post:
		return "Post " + route.Param
	case router.Media:
		return "Media " + route.Param
	default:
		return fmt.Sprintf("Feed · page %d", route.Page)
	}
}

// renderInfo renders the block above the list: account or artist details,
// or the scrollable body of a detail view
func (m Model) renderInfo() string {
	switch m.screen.kind() {
	case router.Account:
		return m.renderAccountInfo()
	case router.Artist:
		return m.renderArtistInfo()
	case router.Post, router.Media:
		if m.screen.post == nil && m.screen.media == nil {
			return ""
		}
		return m.body.View()
	}
	return ""
}

func (m Model) renderAccountInfo() string {
	a := m.screen.account
	if a == nil {
		return ""
	}
	line := styles.TitleStyle.Render("@"+a.ScreenName) + "  " + styles.SubtitleStyle.Render(a.DisplayName)
	var facts []string
	if a.AccountStatus != "" {
		facts = append(facts, a.AccountStatus)
	}
	if a.IsProtected {
		facts = append(facts, "protected")
	}
	if a.DownloadStatus {
		facts = append(facts, "downloading")
	}
	if a.SafetyRating != "" {
		facts = append(facts, "safety "+string(a.SafetyRating))
	}
	return line + "\n" + styles.DimStyle.Render(strings.Join(facts, " · ")) + "\n"
}

func (m Model) renderArtistInfo() string {
	a := m.screen.artist
	if a == nil {
		return ""
	}
	lines := []string{styles.TitleStyle.Render(a.Name)}
	if d := oneLine(a.Description); d != "" {
		lines = append(lines, styles.SubtitleStyle.Width(m.Width).Render(d))
	}
	if len(a.Aliases) > 0 {
		names := make([]string, len(a.Aliases))
		for i, al := range a.Aliases {
			names[i] = al.AliasName
		}
		lines = append(lines, styles.DimStyle.Render("aka "+strings.Join(names, ", ")))
	}
	lines = append(lines, "", styles.AccentStyle.Render("Accounts"))
	return strings.Join(lines, "\n")
}

// detailText is the body shown for post and media views
func (m Model) detailText() string {
	width := max(m.Width-2, 20)
	wrap := lipgloss.NewStyle().Width(width)

	if p := m.screen.post; p != nil && m.screen.kind() == router.Post {
		var b strings.Builder
		b.WriteString(styles.TitleStyle.Render("@" + p.ScreenName))
		b.WriteString("  ")
		b.WriteString(styles.DimStyle.Render(p.PostDate.Local().Format(dateLayout)))
		if !p.ArchiveDate.IsZero() {
			b.WriteString(styles.DimStyle.Render("  archived " + p.ArchiveDate.Local().Format(dateLayout)))
		}
		b.WriteString("\n\n")
		b.WriteString(wrap.Render(cleanText(p.PostText)))
		return b.String()
	}

	if md := m.screen.media; md != nil {
		kind := "Image"
		if md.IsVideo() {
			kind = "Video"
		}
		var b strings.Builder
		b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("%s #%d", kind, md.ID)))
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %d×%d  %s", md.Width, md.Height, humanSize(md.FileSize))))
		b.WriteString("\n")
		if md.PostID != "" {
			b.WriteString(styles.DimStyle.Render("from post " + md.PostID))
			b.WriteString("\n")
		}
		if md.DuplicateOf != 0 {
			b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("duplicate of #%d", md.DuplicateOf)))
			b.WriteString("\n")
		}
		if m.svc.Opener != nil {
			b.WriteString(styles.LinkStyle.Render(m.svc.Opener.MediaURL(md)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		caption := cleanText(md.Caption)
		if caption == "" {
			caption = styles.DimStyle.Render("(no caption)")
		}
		b.WriteString(wrap.Render(caption))
		return b.String()
	}
	return ""
}

func (m *Model) refreshBody() {
	m.resizeBody()
	m.body.SetContent(m.detailText())
	m.body.GotoTop()
}

func (m *Model) resizeBody() {
	m.body.Width = m.Width
	m.body.Height = max((m.Height-ChromeHeight)/2, 3)
	m.ensureVisible()
}

// listHeight is the number of rows that fit under the info block
func (m Model) listHeight() int {
	h := m.Height - ChromeHeight
	if info := m.renderInfo(); info != "" {
		h -= lipgloss.Height(info)
	}
	if m.ListFilter.IsActive() {
		h--
	}
	return max(h, 1)
}

// renderList renders the windowed rows of the current screen
func (m Model) renderList(height int) string {
	if m.screen.loading {
		return RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading...")
	}
	if m.screen.err != nil {
		return RenderError(m.screen.kind(), m.screen.err)
	}

	var lines []string
	if m.ListFilter.IsActive() {
		rows := m.currentRows()
		lines = append(lines, m.ListFilter.View(len(rows), len(m.screen.artists)))
	}

	rows := m.currentRows()
	if len(rows) == 0 {
		lines = append(lines, styles.DimStyle.Render(emptyText(m.screen.kind())))
		return strings.Join(lines, "\n")
	}

	end := min(m.offset+height, len(rows))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func emptyText(kind router.Kind) string {
	switch kind {
	case router.Artists:
		return "No artists"
	case router.Artist:
		return "No accounts"
	case router.Post:
		return "No media"
	default:
		return "No posts match the current filters"
	}
}

func (m Model) renderRow(r row, selected bool) string {
	switch r.kind {
	case rowPost:
		p := r.post
		accent := styles.Sand
		parts := []styles.RowPart{
			{Text: "@" + p.ScreenName, Foreground: &accent},
			{Text: "  " + p.PostDate.Local().Format(dateLayout) + "  "},
			{Text: m.badges(domain.ItemPost, p.PostID, p.ContentRating, p.SafetyRating)},
		}
		used := lipgloss.Width(parts[0].Text) + lipgloss.Width(parts[1].Text) + lipgloss.Width(parts[2].Text)
		parts = append(parts, styles.RowPart{Text: "  " + styles.Truncate(oneLine(p.PostText), m.Width-used-6)})
		return styles.RenderListRow(parts, selected, m.Width)

	case rowMedia:
		md := r.media
		kind := "image"
		if md.IsVideo() {
			kind = "video"
		}
		id := fmt.Sprint(md.ID)
		parts := []styles.RowPart{
			{Text: fmt.Sprintf("   ▸ #%s %s %d×%d  ", id, kind, md.Width, md.Height)},
			{Text: m.badges(domain.ItemMedia, id, md.ContentRating, md.SafetyRating)},
		}
		if c := oneLine(md.Caption); c != "" {
			used := lipgloss.Width(parts[0].Text) + lipgloss.Width(parts[1].Text)
			parts = append(parts, styles.RowPart{Text: "  " + styles.Truncate(c, m.Width-used-6)})
		}
		return styles.RenderListRow(parts, selected, m.Width)

	case rowArtist:
		name := components.HighlightMatches(r.artist.Name, m.ListFilter.MatchedIndexes(r.artIdx), selected)
		restWidth := m.Width - lipgloss.Width(r.artist.Name) - 2
		rest := styles.Pad("  "+styles.Truncate(oneLine(r.artist.Description), restWidth-4), restWidth)
		restStyle := styles.DimStyle
		if selected {
			restStyle = restStyle.Background(styles.SlateLight)
		}
		return " " + name + restStyle.Render(rest)

	case rowAccount:
		a := r.account
		accent := styles.Sand
		parts := []styles.RowPart{
			{Text: "@" + a.ScreenName, Foreground: &accent},
			{Text: "  " + a.DisplayName},
		}
		if a.AccountStatus != "" {
			parts = append(parts, styles.RowPart{Text: "  · " + a.AccountStatus})
		}
		return styles.RenderListRow(parts, selected, m.Width)
	}
	return ""
}

// badges renders both ratings, marking values the server has not yet
// confirmed
func (m Model) badges(item domain.ItemKind, id string, content, safety domain.RatingLabel) string {
	render := func(kind domain.RatingKind, label domain.RatingLabel) string {
		text := string(label)
		if text == "" {
			text = "-"
		}
		if m.svc.Mutator.Unconfirmed(item, id, kind) {
			return styles.PendingBadgeStyle.Render(text + styles.UnconfirmedMark)
		}
		if kind == domain.RatingSafety {
			return styles.SafetyBadgeStyle.Render(text)
		}
		return styles.ContentBadgeStyle.Render(text)
	}
	return render(domain.RatingContent, content) + " " + render(domain.RatingSafety, safety)
}

// renderFooter renders a single-line footer
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Loading:
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading...")
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	right := m.renderPager() + styles.HelpKeyStyle.Render("?") + styles.HelpDescStyle.Render(" help")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderPager() string {
	f := m.screen.feed
	if !m.screen.kind().IsList() || f == nil {
		return ""
	}
	prev := styles.DimStyle.Render("‹ p")
	if f.HasPrev {
		prev = styles.HelpKeyStyle.Render("‹ p")
	}
	next := styles.DimStyle.Render("n ›")
	if f.HasNext {
		next = styles.HelpKeyStyle.Render("n ›")
	}
	return prev + styles.HelpDescStyle.Render(fmt.Sprintf(" page %d ", f.Page)) + next + "   "
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      RATINGS (operator)
  j/k        Up/down               c      Content rating
  g/G        First/last row        s      Safety rating
  C-u/C-d    Half page             e      Edit caption
  Enter      Open                  i      Log in
  h/l        Back/forward          L      Log out
  n/p        Next/previous page
  H          Global feed           A value marked ? is still
  A          Artists               waiting for the server.

SEARCH & VIEW                   OTHER
  f          Search artists        o      Open media in viewer
  /          Filter artist list    r      Refresh
  F          Rating filters        q      Quit
                                   ?      This help

Press ? or Esc to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderLogoutConfirmation renders the logout confirmation modal
func (m Model) renderLogoutConfirmation() string {
	modal := `
          Log Out?

  This forgets your operator code
  and reloads the current view.

       [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}

// RenderSpinner renders one spinner frame
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

// RenderError renders the inline placeholder for a failed load
func RenderError(kind router.Kind, err error) string {
	what := "posts"
	switch kind {
	case router.Artists:
		what = "artists"
	case router.Artist:
		what = "artist"
	case router.Post:
		what = "post"
	case router.Media:
		what = "media"
	}
	return styles.ErrorStyle.Render("Error loading " + what + ": " + err.Error())
}

func joinLabels(ls []domain.RatingLabel) string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = string(l)
	}
	return strings.Join(out, ",")
}

func humanSize(n int64) string {
	const unit = 1024
	if n <= 0 {
		return ""
	}
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
