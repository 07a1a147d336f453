package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Search  SearchConfig  `mapstructure:"search"`
	Filters FiltersConfig `mapstructure:"filters"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	State   StateConfig   `mapstructure:"state"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the archive server location
type ServerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FeedConfig holds feed paging settings
type FeedConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// SearchConfig holds search panel settings
type SearchConfig struct {
	Debounce       time.Duration `mapstructure:"debounce"`
	MinQueryLength int           `mapstructure:"min_query_length"`
}

// FiltersConfig holds the labels preselected for anonymous users
type FiltersConfig struct {
	AnonymousContent []string `mapstructure:"anonymous_content"`
	AnonymousSafety  []string `mapstructure:"anonymous_safety"`
}

// ViewerConfig holds external media viewer configuration
type ViewerConfig struct {
	Video string   `mapstructure:"video"` // Player command for mp4 media
	Image string   `mapstructure:"image"` // Viewer command for images; empty uses the system opener
	Args  []string `mapstructure:"args"`
}

// StateConfig holds where client-local state is persisted
type StateConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "",
			Timeout: 30 * time.Second,
		},
		Feed: FeedConfig{
			PageSize: 24,
		},
		Search: SearchConfig{
			Debounce:       300 * time.Millisecond,
			MinQueryLength: 2,
		},
		Filters: FiltersConfig{
			AnonymousContent: []string{"KF"},
			AnonymousSafety:  []string{"Safe"},
		},
		Viewer: ViewerConfig{
			Video: "mpv",
			Args:  []string{},
		},
		State: StateConfig{
			Dir: defaultStatePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sandstar", "sandstar.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sandstar", "sandstar.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sandstar")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sandstar")
	}
}

// defaultStatePath returns the directory holding the state database
func defaultStatePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "sandstar")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "state", "sandstar")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath(), ".")
}

func loadConfig(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. SANDSTAR_SERVER_URL
	v.SetEnvPrefix("SANDSTAR")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("state.dir", cfg.State.Dir)
	v.SetDefault("logging.level", cfg.Logging.Level)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Feed.PageSize <= 0 {
		cfg.Feed.PageSize = 24
	}
	if cfg.Search.MinQueryLength <= 0 {
		cfg.Search.MinQueryLength = 2
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.GetViper(), cfg, defaultConfigPath())
}

func saveConfig(v *viper.Viper, cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("feed.page_size", cfg.Feed.PageSize)
	v.Set("search.debounce", cfg.Search.Debounce.String())
	v.Set("search.min_query_length", cfg.Search.MinQueryLength)
	v.Set("filters.anonymous_content", cfg.Filters.AnonymousContent)
	v.Set("filters.anonymous_safety", cfg.Filters.AnonymousSafety)
	v.Set("viewer.video", cfg.Viewer.Video)
	v.Set("viewer.image", cfg.Viewer.Image)
	v.Set("viewer.args", cfg.Viewer.Args)
	v.Set("state.dir", cfg.State.Dir)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// StateFile returns the path of the state database
func (c *Config) StateFile() string {
	if c.State.Dir == "" {
		return ""
	}
	return filepath.Join(expandHome(c.State.Dir), "state.db")
}
