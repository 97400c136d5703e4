package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store type constants
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Environment variables that override file settings
const (
	EnvAddr        = "GOMOKU_ADDR"
	EnvStore       = "GOMOKU_STORE"
	EnvSQLitePath  = "GOMOKU_SQLITE_PATH"
	EnvRedisURL    = "GOMOKU_REDIS_URL"
	EnvTurnBudget  = "GOMOKU_TURN_BUDGET"
	EnvLogLevel    = "GOMOKU_LOG_LEVEL"
	EnvBcryptCost  = "GOMOKU_BCRYPT_COST"
	EnvBroadcast   = "GOMOKU_BROADCAST_INTERVAL"
	EnvSweep       = "GOMOKU_SWEEP_INTERVAL"
	EnvMaxPhotoKiB = "GOMOKU_MAX_PHOTO_KIB"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Game     GameConfig     `yaml:"game"`
	Lobby    LobbyConfig    `yaml:"lobby"`
	Store    StoreConfig    `yaml:"store"`
	Accounts AccountsConfig `yaml:"accounts"`
	LogLevel string         `yaml:"log_level"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GameConfig holds per-game settings
type GameConfig struct {
	TurnBudget time.Duration `yaml:"turn_budget"`
}

// LobbyConfig holds background worker timings
type LobbyConfig struct {
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
	SweepInterval     time.Duration `yaml:"sweep_interval"`
}

// StoreConfig selects and configures the player store
type StoreConfig struct {
	Type       string `yaml:"type"`
	SQLitePath string `yaml:"sqlite_path"`
	RedisURL   string `yaml:"redis_url"`
	RedisPool  int    `yaml:"redis_pool_size"`
}

// AccountsConfig holds registration and profile rules
type AccountsConfig struct {
	BcryptCost        int    `yaml:"bcrypt_cost"`
	MinPasswordLength int    `yaml:"min_password_length"`
	DefaultTheme      string `yaml:"default_theme"`
	MaxPhotoBytes     int    `yaml:"max_photo_bytes"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Game: GameConfig{
			TurnBudget: 5 * time.Minute,
		},
		Lobby: LobbyConfig{
			BroadcastInterval: 10 * time.Second,
			SweepInterval:     time.Second,
		},
		Store: StoreConfig{
			Type:       StoreSQLite,
			SQLitePath: "gomoku.db",
			RedisURL:   "redis://localhost:6379/0",
			RedisPool:  10,
		},
		Accounts: AccountsConfig{
			BcryptCost:        10,
			MinPasswordLength: 8,
			DefaultTheme:      "classic",
			MaxPhotoBytes:     1 << 20,
		},
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, an optional .env file, an optional YAML
// file and finally the environment. An empty path skips the YAML step.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok {
		if err := c.SetAddr(v); err != nil {
			return err
		}
	}
	if v, ok := lookup(EnvStore); ok {
		c.Store.Type = strings.ToLower(v)
	}
	if v, ok := lookup(EnvSQLitePath); ok {
		c.Store.SQLitePath = v
	}
	if v, ok := lookup(EnvRedisURL); ok {
		c.Store.RedisURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvTurnBudget, &c.Game.TurnBudget},
		{EnvBroadcast, &c.Lobby.BroadcastInterval},
		{EnvSweep, &c.Lobby.SweepInterval},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, d.key, err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup(EnvBcryptCost); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvBcryptCost, err)
		}
		c.Accounts.BcryptCost = n
	}
	if v, ok := lookup(EnvMaxPhotoKiB); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvMaxPhotoKiB, err)
		}
		c.Accounts.MaxPhotoBytes = n << 10
	}
	return nil
}

// SetAddr sets host and port from a host:port string
func (c *Config) SetAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%w: address %q: %v", ErrInvalidConfig, addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %q", ErrInvalidConfig, portStr)
	}
	c.Server.Host = host
	c.Server.Port = port
	return nil
}

// Addr returns the listen address
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Validate checks the settings that would otherwise fail later at startup
func (c Config) Validate() error {
	switch c.Store.Type {
	case StoreMemory, StoreRedis:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite store needs a path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store type %q", ErrInvalidConfig, c.Store.Type)
	}
	if c.Game.TurnBudget <= 0 {
		return fmt.Errorf("%w: turn budget must be positive", ErrInvalidConfig)
	}
	if c.Lobby.BroadcastInterval <= 0 || c.Lobby.SweepInterval <= 0 {
		return fmt.Errorf("%w: lobby intervals must be positive", ErrInvalidConfig)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}
