// Package search implements the debounced artist and account lookup behind
// the search panel.
package search

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/katworks/sandstar/internal/domain"
)

const searchTimeout = 15 * time.Second

// Searcher is the remote lookup used by the pipeline
type Searcher interface {
	SearchArtists(ctx context.Context, query string) ([]domain.Artist, error)
	SearchAccounts(ctx context.Context, query string) ([]domain.Account, error)
}

// ResultKind distinguishes entries in the results panel
type ResultKind int

const (
	ResultArtist ResultKind = iota
	ResultAccount
	ResultNone // the single "no results" entry
)

// Result is one selectable entry
type Result struct {
	Kind    ResultKind
	Artist  domain.Artist
	Account domain.Account
}

// Label returns the text shown for the entry
func (r Result) Label() string {
	switch r.Kind {
	case ResultArtist:
		return r.Artist.Name
	case ResultAccount:
		if r.Account.DisplayName != "" {
			return "@" + r.Account.ScreenName + "  " + r.Account.DisplayName
		}
		return "@" + r.Account.ScreenName
	default:
		return "No results found"
	}
}

func (r Result) tier(query string) int {
	switch r.Kind {
	case ResultArtist:
		return bestTier(query, r.Artist.Name)
	case ResultAccount:
		return bestTier(query, r.Account.ScreenName, r.Account.DisplayName)
	default:
		return tierOther
	}
}

// Group is a titled block of results
type Group struct {
	Title   string
	Results []Result
}

// Results is what the panel shows for one query. Failed marks a search
// whose lookups errored; it carries no groups.
type Results struct {
	Query  string
	Groups []Group
	Failed bool
}

// Entries flattens the groups in display order
func (r Results) Entries() []Result {
	var out []Result
	for _, g := range r.Groups {
		out = append(out, g.Results...)
	}
	return out
}

// Build groups artists above accounts. Empty groups are omitted; when both
// are empty the only group holds a single ResultNone entry.
func Build(query string, artists []domain.Artist, accounts []domain.Account) Results {
	res := Results{Query: query}

	if len(artists) == 0 && len(accounts) == 0 {
		res.Groups = []Group{{Results: []Result{{Kind: ResultNone}}}}
		return res
	}

	if len(artists) > 0 {
		g := Group{Title: "Artists", Results: make([]Result, 0, len(artists))}
		for _, a := range artists {
			g.Results = append(g.Results, Result{Kind: ResultArtist, Artist: a})
		}
		rankStable(g.Results, query)
		res.Groups = append(res.Groups, g)
	}

	if len(accounts) > 0 {
		g := Group{Title: "Accounts", Results: make([]Result, 0, len(accounts))}
		for _, a := range accounts {
			g.Results = append(g.Results, Result{Kind: ResultAccount, Account: a})
		}
		rankStable(g.Results, query)
		res.Groups = append(res.Groups, g)
	}

	return res
}

// Target returns the navigation path for a result, or "" for ResultNone
func Target(r Result) string {
	switch r.Kind {
	case ResultArtist:
		return "/artist/" + url.PathEscape(r.Artist.Name)
	case ResultAccount:
		return "/account/" + url.PathEscape(r.Account.TwitterID)
	default:
		return ""
	}
}

// Pipeline debounces input and runs the dual lookup. Results for a query
// that has since been superseded are never delivered.
type Pipeline struct {
	searcher  Searcher
	debouncer *Debouncer
	minLen    int
	logger    *slog.Logger

	mu      sync.Mutex
	seq     uint64
	deliver func(Results)
}

// NewPipeline creates a pipeline that waits delay after the last keystroke
// and ignores queries shorter than minLen runes.
func NewPipeline(searcher Searcher, delay time.Duration, minLen int, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if minLen <= 0 {
		minLen = 2
	}
	return &Pipeline{
		searcher:  searcher,
		debouncer: NewDebouncer(delay),
		minLen:    minLen,
		logger:    logger,
	}
}

// OnResults registers the function receiving completed searches. It is
// called from a background goroutine.
func (p *Pipeline) OnResults(fn func(Results)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliver = fn
}

// Input handles a change of the search text. It returns false when the
// query is too short; the caller must then hide and clear the panel.
func (p *Pipeline) Input(text string) bool {
	query := strings.TrimSpace(text)

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	if utf8.RuneCountInString(query) < p.minLen {
		p.debouncer.Cancel()
		return false
	}

	p.debouncer.Schedule(func() { p.fire(seq, query) })
	return true
}

// Cancel drops any pending or running search
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	p.seq++
	p.mu.Unlock()
	p.debouncer.Cancel()
}

// Select closes the search and returns the navigation target for r
func (p *Pipeline) Select(r Result) string {
	p.Cancel()
	return Target(r)
}

func (p *Pipeline) fire(seq uint64, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	res, err := p.Search(ctx, query)
	if err != nil {
		p.logger.Error("search failed", "query", query, "error", err)
		res = Results{Query: query, Failed: true}
	}

	p.mu.Lock()
	current := p.seq == seq
	deliver := p.deliver
	p.mu.Unlock()

	if !current {
		p.logger.Debug("dropping superseded search results", "query", query)
		return
	}
	if deliver != nil {
		deliver(res)
	}
}

// Search runs both lookups concurrently. Either failing fails the search;
// no partial results are returned.
func (p *Pipeline) Search(ctx context.Context, query string) (Results, error) {
	var (
		artists  []domain.Artist
		accounts []domain.Account
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		artists, err = p.searcher.SearchArtists(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = p.searcher.SearchAccounts(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return Results{}, err
	}

	p.logger.Debug("search completed", "query", query, "artists", len(artists), "accounts", len(accounts))
	return Build(query, artists, accounts), nil
}
