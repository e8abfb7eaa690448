package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "ARTICLES_AGGREGATOR_CONFIG"
	apiVersionEnv       = "ARTICLES_API_VERSION"
	databasePathEnv     = "DATABASE_PATH"
	logLevelEnv         = "LOG_LEVEL"
	articlesURLEnv      = "ARTICLES_SERVICE_URL"
	authorsURLEnv       = "AUTHORS_SERVICE_URL"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	defaultRefresh      = 5 * time.Minute
	defaultParallelism  = 4
	defaultListenAddr   = ":8080"
	applicationDataName = "articles-aggregator"
)

// API versions and the batch size each one requests.
const (
	APIVersionV1 = "v1"
	APIVersionV2 = "v2"

	BatchSizeV1 = 5
	BatchSizeV2 = 10
)

// Backend names understood by the source registry.
const (
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
	BackendArxiv  = "arxiv"
	BackendRSS    = "rss"
)

// Config holds high-level settings required across the application.
type Config struct {
	API           APIConfig          `yaml:"api"`
	Logging       LoggingConfig      `yaml:"logging"`
	Articles      ArticlesConfig     `yaml:"articles"`
	Authors       AuthorsConfig      `yaml:"authors"`
	Database      DatabaseConfig     `yaml:"database"`
	Enrichment    EnrichmentConfig   `yaml:"enrichment"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// APIConfig selects the interface version and where the HTTP API listens.
type APIConfig struct {
	Version string `yaml:"version"`
	Listen  string `yaml:"listen"`
}

// BatchSize maps the API version to the number of articles requested per read.
func (a APIConfig) BatchSize() int {
	if strings.EqualFold(strings.TrimSpace(a.Version), APIVersionV2) {
		return BatchSizeV2
	}
	return BatchSizeV1
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ArticlesConfig selects and configures the article source backend.
type ArticlesConfig struct {
	Backend    string           `yaml:"backend"`
	URL        string           `yaml:"url"`
	Feeds      []string         `yaml:"feeds"`
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig holds a concrete listing endpoint (e.g., an arXiv category URL).
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// AuthorsConfig selects and configures the author source backend.
type AuthorsConfig struct {
	Backend string `yaml:"backend"`
	URL     string `yaml:"url"`
}

// DatabaseConfig describes where the SQLite store lives.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EnrichmentConfig bounds the number of concurrent author lookups.
type EnrichmentConfig struct {
	Parallelism int `yaml:"parallelism"`
}

// SchedulerConfig defines how often the fallback cache is refreshed.
type SchedulerConfig struct {
	RefreshInterval string `yaml:"refreshInterval"`
}

// Interval parses RefreshInterval; zero disables scheduled refreshes.
func (s SchedulerConfig) Interval() time.Duration {
	if strings.TrimSpace(s.RefreshInterval) == "" {
		return defaultRefresh
	}
	d, err := time.ParseDuration(s.RefreshInterval)
	if err != nil || d < 0 {
		log.Printf("config: invalid refresh interval %q, using %s", s.RefreshInterval, defaultRefresh)
		return defaultRefresh
	}
	return d
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads the YAML file named by ARTICLES_AGGREGATOR_CONFIG (if any) and applies environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom is Load with an explicit file path; an empty path means defaults only.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if fileCfg, err := ReadFile(path); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	cfg.Normalize()

	return cfg
}

// ReadFile parses one YAML configuration file without applying defaults.
func ReadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &FileError{Path: path, Op: "read", Err: err}
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, &FileError{Path: path, Op: "parse", Err: err}
	}
	return fileCfg, nil
}

// FileError reports a configuration file that could not be used.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return "cannot " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiVersionEnv); v != "" {
		c.API.Version = v
	}

	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(articlesURLEnv); v != "" {
		c.Articles.URL = v
	}

	if v := os.Getenv(authorsURLEnv); v != "" {
		c.Authors.URL = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

// Normalize canonicalises the API version, reverting unknown values to v1, and fills defaults.
// Call it again after changing fields of a loaded Config.
func (c *Config) Normalize() {
	version := strings.ToLower(strings.TrimSpace(c.API.Version))
	if version != APIVersionV1 && version != APIVersionV2 {
		log.Printf("config: unknown api version %q, reverting to %s", c.API.Version, APIVersionV1)
		version = APIVersionV1
	}
	c.API.Version = version

	c.Articles.Backend = strings.ToLower(strings.TrimSpace(c.Articles.Backend))
	c.Authors.Backend = strings.ToLower(strings.TrimSpace(c.Authors.Backend))

	if c.Enrichment.Parallelism <= 0 {
		c.Enrichment.Parallelism = defaultParallelism
	}
}

func mergeConfig(base, override Config) Config {
	if override.API.Version != "" {
		base.API.Version = override.API.Version
	}
	if override.API.Listen != "" {
		base.API.Listen = override.API.Listen
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Articles.Backend != "" {
		base.Articles.Backend = override.Articles.Backend
	}
	if override.Articles.URL != "" {
		base.Articles.URL = override.Articles.URL
	}
	if len(override.Articles.Feeds) > 0 {
		base.Articles.Feeds = override.Articles.Feeds
	}
	if len(override.Articles.Categories) > 0 {
		base.Articles.Categories = override.Articles.Categories
	}

	if override.Authors.Backend != "" {
		base.Authors.Backend = override.Authors.Backend
	}
	if override.Authors.URL != "" {
		base.Authors.URL = override.Authors.URL
	}

	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Enrichment.Parallelism > 0 {
		base.Enrichment.Parallelism = override.Enrichment.Parallelism
	}

	if override.Scheduler.RefreshInterval != "" {
		base.Scheduler.RefreshInterval = override.Scheduler.RefreshInterval
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		API:     APIConfig{Version: APIVersionV1, Listen: defaultListenAddr},
		Logging: LoggingConfig{Level: "info"},
		Articles: ArticlesConfig{
			Backend: BackendSQLite,
			URL:     "http://localhost:8081",
			Feeds:   []string{"https://go.dev/blog/feed.atom"},
			Categories: []CategoryConfig{
				{Name: "cs.AI", URL: "https://export.arxiv.org/list/cs.AI/pastweek"},
			},
		},
		Authors:    AuthorsConfig{Backend: BackendSQLite, URL: "http://localhost:8082"},
		Database:   DatabaseConfig{Path: defaultDatabasePath()},
		Enrichment: EnrichmentConfig{Parallelism: defaultParallelism},
		Scheduler:  SchedulerConfig{RefreshInterval: defaultRefresh.String()},
	}
}

func defaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, applicationDataName, "articles.db")
}
