package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/katworks/sandstar/internal/adapter"
	"github.com/katworks/sandstar/internal/adapter/source/archive"
	"github.com/katworks/sandstar/internal/auth"
	"github.com/katworks/sandstar/internal/domain"
	"github.com/katworks/sandstar/internal/feed"
	"github.com/katworks/sandstar/internal/filter"
	"github.com/katworks/sandstar/internal/navcache"
	"github.com/katworks/sandstar/internal/ratings"
	"github.com/katworks/sandstar/internal/search"
	"github.com/katworks/sandstar/internal/store"
	"github.com/katworks/sandstar/internal/tui"
	"github.com/katworks/sandstar/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sandstar [flags] [login|logout]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("sandstar %s\n", Version)
		return
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, closeLog = adapter.NullLogger(), func() error { return nil }
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting sandstar", "version", Version, "command", command)

	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
		if command == "" {
			fmt.Println("Run sandstar again to start browsing.")
			return nil
		}
	}

	state, err := store.NewStateStore(cfg.StateFile(), cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	defer state.Close()

	client := archive.NewClient(cfg.Server.URL, cfg.Server.Timeout, logger)
	authState := auth.NewState(client, state, logger)

	switch command {
	case "":
		return runTUI(cfg, client, state, authState, logger)
	case "login":
		return runLogin(authState)
	case "logout":
		if err := authState.Logout(); err != nil {
			return err
		}
		fmt.Println("✓ Logged out")
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runTUI(cfg *adapter.Config, client *archive.Client, state *store.StateStore, authState *auth.State, logger *slog.Logger) error {
	cache := navcache.New(logger)
	filters := filter.NewStore(state, cache, anonymousFilter(cfg.Filters), authState.IsOperator, logger)
	filters.Load()

	pipeline := search.NewPipeline(client, cfg.Search.Debounce, cfg.Search.MinQueryLength, logger)

	model := tui.NewModel(&tui.Services{
		Loader:    feed.NewLoader(client, cache, filters, cfg.Feed.PageSize, logger),
		Directory: feed.NewDirectory(client, client, logger),
		Cache:     cache,
		Filters:   filters,
		Auth:      authState,
		Catalog:   ratings.NewCatalog(client, logger),
		Mutator:   ratings.NewMutator(cache, client, authState, logger),
		Search:    pipeline,
		Opener:    adapter.NewLauncher(cfg.Server.URL, cfg.Viewer, logger),
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Search completes on a timer goroutine; results enter the update loop
	// as a message.
	pipeline.OnResults(func(res search.Results) {
		p.Send(tui.SearchResultsMsg{Results: res})
	})

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	pipeline.Cancel()
	logger.Info("shutting down")
	return nil
}

func anonymousFilter(cfg adapter.FiltersConfig) domain.FilterState {
	state := domain.FilterState{Sort: domain.SortNewest}
	for _, l := range cfg.AnonymousContent {
		state.Content = append(state.Content, domain.RatingLabel(l))
	}
	for _, l := range cfg.AnonymousSafety {
		state.Safety = append(state.Safety, domain.RatingLabel(l))
	}
	return state.Canonical()
}

// runLogin reads an operator code without echo and verifies it
func runLogin(authState *auth.State) error {
	if authState.IsOperator() {
		fmt.Println("Already logged in as operator. Run sandstar logout first to switch codes.")
		return nil
	}

	fmt.Print("Operator code: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}

	code := strings.TrimSpace(string(raw))
	if code == "" {
		fmt.Println("No code entered.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := authState.Login(ctx, code); err != nil {
		if errors.Is(err, domain.ErrAuthFailed) {
			return fmt.Errorf("invalid code")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("✓ Logged in as operator")
	return nil
}

// runSetupFlow asks for the archive URL until one answers like an archive
func runSetupFlow(cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Sandstar!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	var serverURL string
	for {
		fmt.Print("Enter the archive URL (e.g., https://archive.example.net): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL = strings.TrimRight(strings.TrimSpace(input), "/")

		if serverURL == "" {
			fmt.Println("URL cannot be empty. Please try again.")
			continue
		}

		fmt.Println()
		if err := probeWithSpinner(serverURL); err != nil {
			fmt.Printf("\n✗ Could not reach an archive: %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}
		break
	}

	cfg.Server.URL = serverURL
	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}

// probeWithSpinner checks the archive with a visual spinner
func probeWithSpinner(serverURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- archive.Probe(ctx, serverURL)
	}()

	frame := 0
	fmt.Printf("\r%s Checking archive...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ Archive found")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking archive...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("timed out")
		}
	}
}
