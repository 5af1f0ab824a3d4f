package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	ESPN     ESPNConfig     `mapstructure:"espn"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Bets     []BetConfig    `mapstructure:"bets"`
}

// ESPNConfig holds scoreboard and game summary API configuration
type ESPNConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	SportPath          string        `mapstructure:"sport_path"`
	ScoreboardInterval time.Duration `mapstructure:"scoreboard_interval"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxRetries         int           `mapstructure:"max_retries"`
	RetryDelayBase     time.Duration `mapstructure:"retry_delay_base"`
	FetchConcurrency   int           `mapstructure:"fetch_concurrency"`
}

// TrackerConfig holds reconciliation timing
type TrackerConfig struct {
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	Debounce          time.Duration `mapstructure:"debounce"`
	TerminalGrace     time.Duration `mapstructure:"terminal_grace"`
	PruneInterval     time.Duration `mapstructure:"prune_interval"`
}

// CacheConfig holds the optional Redis game stats cache
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	FinalTTL time.Duration `mapstructure:"final_ttl"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds settled bet history configuration
type StorageConfig struct {
	DBPath      string `mapstructure:"db_path"`
	MaxOutcomes int    `mapstructure:"max_outcomes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BetConfig describes a bet to track from startup. Slates name a stat and
// threshold applied to every team playing in the listed time slots; parlays
// list their legs.
type BetConfig struct {
	Title     string      `mapstructure:"title"`
	Type      string      `mapstructure:"type"`
	TimeSlots []string    `mapstructure:"time_slots"`
	Stat      string      `mapstructure:"stat"`
	Threshold int         `mapstructure:"threshold"`
	Notes     string      `mapstructure:"notes"`
	Legs      []LegConfig `mapstructure:"legs"`
}

// LegConfig is one player requirement of a parlay
type LegConfig struct {
	Player    string `mapstructure:"player"`
	Stat      string `mapstructure:"stat"`
	Threshold int    `mapstructure:"threshold"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(path)

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("SLATEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// ESPN defaults
	v.SetDefault("espn.base_url", "https://site.api.espn.com/apis/site/v2/sports")
	v.SetDefault("espn.sport_path", "football/nfl")
	v.SetDefault("espn.scoreboard_interval", "15s")
	v.SetDefault("espn.timeout", "10s")
	v.SetDefault("espn.max_retries", 3)
	v.SetDefault("espn.retry_delay_base", "1s")
	v.SetDefault("espn.fetch_concurrency", 4)

	// Tracker defaults
	v.SetDefault("tracker.reconcile_interval", "30s")
	v.SetDefault("tracker.debounce", "1s")
	v.SetDefault("tracker.terminal_grace", "30s")
	v.SetDefault("tracker.prune_interval", "5s")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "10s")
	v.SetDefault("cache.final_ttl", "6h")

	// Telegram defaults
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Storage defaults
	v.SetDefault("storage.db_path", ":memory:")
	v.SetDefault("storage.max_outcomes", 500)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate ESPN config
	if c.ESPN.BaseURL == "" {
		return fmt.Errorf("espn.base_url is required")
	}
	if c.ESPN.SportPath == "" {
		return fmt.Errorf("espn.sport_path is required")
	}
	if c.ESPN.ScoreboardInterval < 1*time.Second {
		return fmt.Errorf("espn.scoreboard_interval must be at least 1 second")
	}
	if c.ESPN.Timeout <= 0 {
		return fmt.Errorf("espn.timeout must be positive")
	}
	if c.ESPN.MaxRetries < 1 {
		return fmt.Errorf("espn.max_retries must be at least 1")
	}
	if c.ESPN.RetryDelayBase < 0 {
		return fmt.Errorf("espn.retry_delay_base must not be negative")
	}
	if c.ESPN.FetchConcurrency < 1 {
		return fmt.Errorf("espn.fetch_concurrency must be at least 1")
	}

	// Validate Tracker config
	if c.Tracker.ReconcileInterval < 1*time.Second {
		return fmt.Errorf("tracker.reconcile_interval must be at least 1 second")
	}
	if c.Tracker.Debounce < 0 {
		return fmt.Errorf("tracker.debounce must not be negative")
	}
	if c.Tracker.TerminalGrace < 0 {
		return fmt.Errorf("tracker.terminal_grace must not be negative")
	}
	if c.Tracker.PruneInterval < 1*time.Second {
		return fmt.Errorf("tracker.prune_interval must be at least 1 second")
	}

	// Validate Cache config
	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache.addr is required when cache is enabled")
		}
		if c.Cache.TTL <= 0 || c.Cache.FinalTTL <= 0 {
			return fmt.Errorf("cache.ttl and cache.final_ttl must be positive")
		}
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	if c.Storage.MaxOutcomes < 1 {
		return fmt.Errorf("storage.max_outcomes must be at least 1")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	// Validate configured bets
	for i, b := range c.Bets {
		switch b.Type {
		case "team_slate":
			if len(b.TimeSlots) == 0 {
				return fmt.Errorf("bets[%d]: team_slate needs at least one time slot", i)
			}
			if b.Stat == "" {
				return fmt.Errorf("bets[%d]: team_slate needs a stat", i)
			}
			if b.Threshold < 0 {
				return fmt.Errorf("bets[%d]: threshold must not be negative", i)
			}
		case "player_parlay":
			if len(b.Legs) == 0 {
				return fmt.Errorf("bets[%d]: player_parlay needs at least one leg", i)
			}
		default:
			return fmt.Errorf("bets[%d]: type must be one of: team_slate, player_parlay", i)
		}
	}

	return nil
}
