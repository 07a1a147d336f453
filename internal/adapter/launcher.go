package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/katworks/sandstar/internal/domain"
)

// Launcher opens archive media in an external player or image viewer
type Launcher struct {
	baseURL string
	video   string   // configured video player, empty for detection
	image   string   // configured image viewer, empty for system default
	args    []string // additional arguments for the configured command
	logger  *slog.Logger

	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// candidatePlayers defines the preferred video player order for each platform.
// Entries prefixed with "open-a:" are macOS application bundles.
var candidatePlayers = map[string][]string{
	"darwin":  {"open-a:IINA", "vlc", "mpv"},
	"linux":   {"mpv", "celluloid", "haruna", "vlc"},
	"windows": {"vlc", "mpv"},
}

// NewLauncher creates a Launcher resolving media paths against baseURL
func NewLauncher(baseURL string, cfg ViewerConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		video:    cfg.Video,
		image:    cfg.Image,
		args:     cfg.Args,
		logger:   logger,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// MediaURL returns the absolute URL of the stored file
func (l *Launcher) MediaURL(m *domain.MediaSummary) string {
	return l.baseURL + m.ImagePath()
}

// Open launches the media: videos in a player, images in a viewer
func (l *Launcher) Open(m *domain.MediaSummary) error {
	url := l.MediaURL(m)
	if m.IsVideo() {
		return l.openVideo(url)
	}
	if l.image != "" {
		return l.launchConfigured(l.image, url)
	}
	return l.launchDefault(url)
}

func (l *Launcher) openVideo(url string) error {
	// Tier 1: User configured a specific player
	if l.video != "" {
		if _, err := l.lookPath(l.video); err == nil {
			return l.launchConfigured(l.video, url)
		}
		l.logger.Warn("configured player not found", "command", l.video)
	}

	// Tier 2: Try candidate chain
	if name, err := l.detectAndLaunch(url); err == nil {
		l.logger.Info("launched with detected player", "player", name)
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate players found, using system default")
	return l.launchDefault(url)
}

func (l *Launcher) detectAndLaunch(url string) (string, error) {
	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		if app, ok := strings.CutPrefix(name, "open-a:"); ok {
			// open -a fails fast when the bundle is missing
			if err := exec.Command("open", "-n", "-a", app, url).Run(); err == nil {
				return app, nil
			}
			continue
		}
		if _, err := l.lookPath(name); err != nil {
			l.logger.Debug("player not available", "player", name)
			continue
		}
		if err := l.start(name, url); err == nil {
			return name, nil
		}
	}

	return "", fmt.Errorf("no candidate players found")
}

func (l *Launcher) launchConfigured(command, url string) error {
	args := append(append([]string{}, l.args...), url)
	l.logger.Info("launching viewer", "command", command, "args", args)
	return l.start(command, args...)
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	l.logger.Info("launching with system default", "os", runtime.GOOS, "url", url)

	switch runtime.GOOS {
	case "darwin":
		return l.start("open", url)
	case "windows":
		return l.start("cmd", "/c", "start", "", url)
	default:
		return l.start("xdg-open", url)
	}
}
