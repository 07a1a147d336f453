package tui

import (
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/katworks/sandstar/internal/auth"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/feed"
	"github.com/katworks/sandstar/internal/filter"
	"github.com/katworks/sandstar/internal/navcache"
	"github.com/katworks/sandstar/internal/ratings"
	"github.com/katworks/sandstar/internal/router"
	"github.com/katworks/sandstar/internal/search"
	"github.com/katworks/sandstar/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmLogout
)

// Vertical chrome: title line, blank line and footer
const ChromeHeight = 3

const (
	statusDelay  = 3 * time.Second
	tickInterval = 100 * time.Millisecond
)

// MediaOpener hands media to an external viewer
type MediaOpener interface {
	Open(m *domain.MediaSummary) error
	MediaURL(m *domain.MediaSummary) string
}

// Services bundles everything the UI drives
type Services struct {
	Loader    *feed.Loader
	Directory *feed.Directory
	Cache     *navcache.Cache
	Filters   *filter.Store
	Auth      *auth.State
	Catalog   *ratings.Catalog
	Mutator   *ratings.Mutator
	Search    *search.Pipeline
	Opener    MediaOpener
	Logger    *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	svc    *Services
	router *router.Router[tea.Cmd]
	logger *slog.Logger

	// Current view
	screen screen
	cursor int
	offset int
	body   viewport.Model

	// UI Components
	ListFilter    components.ListFilter
	SearchPanel   components.SearchPanel
	LoginModal    components.InputModal
	RatingModal   components.RatingModal
	FilterModal   components.FilterModal
	CaptionModal  components.CaptionModal
	Notice        components.NoticeModal
	pendingRating *domain.RatingChange

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	Loading      bool
	SpinnerFrame int

	initCmd tea.Cmd
}

// NewModel creates the application model and registers one route handler
// per view.
func NewModel(svc *Services) Model {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		State:        StateBrowsing,
		svc:          svc,
		logger:       logger,
		body:         viewport.New(0, 0),
		ListFilter:   components.NewListFilter(),
		SearchPanel:  components.NewSearchPanel(),
		LoginModal:   components.NewInputModal(),
		RatingModal:  components.NewRatingModal(),
		FilterModal:  components.NewFilterModal(),
		CaptionModal: components.NewCaptionModal(),
	}

	m.router = router.New[tea.Cmd](svc.Cache, func(loc router.Location) navcache.Key {
		return svc.Loader.Key(loc.Path, loc.Query)
	}, logger)
	registerRoutes(m.router, svc)

	t, load := m.router.Navigate("/", 0)
	m.initCmd = m.enter(t, load)

	// Login and logout run this from a command goroutine; every piece it
	// touches is safe for concurrent use.
	svc.Auth.OnChange(func() {
		svc.Cache.Clear()
		svc.Directory.Reset()
		svc.Catalog.Reset()
		svc.Filters.Load()
		svc.Search.Cancel()
	})

	return m
}

// Init loads the catalog and the global feed
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadCatalogCmd(m.svc.Catalog),
		m.initCmd,
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.SearchPanel.SetSize(msg.Width, msg.Height)
		m.resizeBody()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(tickInterval)

	case FeedLoadedMsg:
		if !m.isCurrent(msg.Key) {
			return m, nil
		}
		if errors.Is(msg.Err, domain.ErrLoadInFlight) {
			// The request already running for this key will answer
			return m, nil
		}
		m.finishLoad(msg.Err)
		if msg.Err == nil {
			m.screen.feed = msg.Result
			if m.screen.transition.Scroll == router.ScrollRestore && msg.Result.Cached {
				m.cursor = msg.Result.ScrollOffset
				m.clampCursor()
			}
		}
		return m, nil

	case AccountLoadedMsg:
		if m.isCurrent(msg.Key) && msg.Err == nil {
			m.screen.account = msg.Account
		}
		return m, nil

	case ArtistsLoadedMsg:
		if !m.isCurrent(msg.Key) {
			return m, nil
		}
		m.finishLoad(msg.Err)
		m.screen.artists = msg.Artists
		return m, nil

	case ArtistLoadedMsg:
		if !m.isCurrent(msg.Key) {
			return m, nil
		}
		m.finishLoad(msg.Err)
		m.screen.artist = msg.Artist
		return m, nil

	case PostLoadedMsg:
		if !m.isCurrent(msg.Key) {
			return m, nil
		}
		m.finishLoad(msg.Err)
		m.screen.post = msg.Post
		m.refreshBody()
		return m, nil

	case MediaLoadedMsg:
		if !m.isCurrent(msg.Key) {
			return m, nil
		}
		m.finishLoad(msg.Err)
		m.screen.media = msg.Media
		m.refreshBody()
		return m, nil

	case CatalogLoadedMsg:
		if msg.Err != nil {
			return m, m.setStatus("Could not load rating catalog", true)
		}
		return m, nil

	case RatingCommittedMsg:
		if errors.Is(msg.Err, domain.ErrUnauthorized) {
			m.Notice.Show("Not authorized",
				"The server rejected the rating change. Your operator code may have been revoked; log in again to continue editing.")
		}
		return m, nil

	case CaptionSavedMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, domain.ErrUnauthorized) {
				m.Notice.Show("Not authorized", "The server rejected the caption change.")
				return m, nil
			}
			return m, m.setStatus("Caption not saved", true)
		}
		if m.screen.media != nil && m.screen.media.ID == msg.MediaID {
			m.screen.media.Caption = msg.Caption
			m.refreshBody()
		}
		return m, m.setStatus("Caption saved", false)

	case LoginResultMsg:
		if msg.Err != nil {
			text := "Could not reach the server"
			if errors.Is(msg.Err, domain.ErrAuthFailed) {
				text = "Invalid code"
			}
			m.LoginModal.SetError(text)
			return m, nil
		}
		m.LoginModal.Hide()
		return m, tea.Batch(m.reinitialise(), m.setStatus("Logged in as operator", false))

	case LogoutCompleteMsg:
		m.State = StateBrowsing
		if msg.Err != nil {
			return m, m.setStatus("Logout failed", true)
		}
		return m, tea.Batch(m.reinitialise(), m.setStatus("Logged out", false))

	case SearchResultsMsg:
		if m.SearchPanel.IsVisible() {
			m.SearchPanel.SetResults(msg.Results)
		}
		return m, nil

	case MediaOpenedMsg:
		if msg.Err != nil {
			return m, m.setStatus("Could not open viewer", true)
		}
		return m, m.setStatus("Opened in viewer", false)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case ErrMsg:
		m.logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		return m, m.setStatus(msg.Error(), true)
	}

	return m.routeToFocused(msg)
}

// routeToFocused passes non-key messages (cursor blink and the like) to
// whichever input currently has focus.
func (m Model) routeToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.CaptionModal.IsVisible():
		m.CaptionModal, cmd, _ = m.CaptionModal.Update(msg)
	case m.LoginModal.IsVisible():
		m.LoginModal, cmd, _ = m.LoginModal.Update(msg)
	case m.SearchPanel.IsVisible():
		m.SearchPanel, cmd, _ = m.SearchPanel.Update(msg)
	}
	return m, cmd
}

// reinitialise runs after the credential changed. The auth hook already
// reset the caches; the catalog is fetched again and the route reloaded.
func (m *Model) reinitialise() tea.Cmd {
	m.SearchPanel.Hide()
	t, load := m.router.Reload()
	return tea.Batch(LoadCatalogCmd(m.svc.Catalog), m.enter(t, load))
}

func (m *Model) isCurrent(key navcache.Key) bool {
	return key == m.router.CurrentKey()
}

func (m *Model) finishLoad(err error) {
	m.Loading = false
	m.screen.loading = false
	m.screen.err = err
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusDelay)
}

// TickMsg advances the spinner
type TickMsg struct{}

// TickCmd returns a command that ticks after delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}
