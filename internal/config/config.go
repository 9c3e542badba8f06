// Package config loads SectorLock settings from a TOML file and the
// environment.
//
// Settings are read, in increasing priority, from built-in defaults, the
// file at $SECTORLOCK_CONFIG (or ~/.config/sectorlock/config.toml), and
// SECTORLOCK_* environment variables, where nested keys join with '_':
//
//	SECTORLOCK_SERVER_ADDR=0.0.0.0:9000
//	SECTORLOCK_REDIS_ADDR=redis:6379
//
// A missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/matzehuels/sectorlock/pkg/journal"
	"github.com/matzehuels/sectorlock/pkg/render"
	"github.com/matzehuels/sectorlock/pkg/repeat"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/selection"
	"github.com/matzehuels/sectorlock/pkg/server"
	"github.com/matzehuels/sectorlock/pkg/session"
)

const (
	appName   = "sectorlock"
	envPrefix = "SECTORLOCK"
	envConfig = "SECTORLOCK_CONFIG"
)

// Session store and journal backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendLog    = "log"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config holds application configuration.
type Config struct {
	Engine EngineConfig `mapstructure:"engine" toml:"engine"`
	Server ServerConfig `mapstructure:"server" toml:"server"`
	Redis  RedisConfig  `mapstructure:"redis" toml:"redis"`
	Mongo  MongoConfig  `mapstructure:"mongo" toml:"mongo"`
	Render RenderConfig `mapstructure:"render" toml:"render"`
	Cache  CacheConfig  `mapstructure:"cache" toml:"cache"`
}

// EngineConfig holds selection controller settings.
type EngineConfig struct {
	Base          float64 `mapstructure:"base" toml:"base"`
	Padding       float64 `mapstructure:"padding" toml:"padding"`
	Level         int     `mapstructure:"level" toml:"level"`
	Step          int     `mapstructure:"step" toml:"step"`
	MinStep       int     `mapstructure:"min_step" toml:"min_step"`
	MaxStep       int     `mapstructure:"max_step" toml:"max_step"`
	InitialWidth  float64 `mapstructure:"initial_width" toml:"initial_width"`
	InitialHeight float64 `mapstructure:"initial_height" toml:"initial_height"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" toml:"addr"`
	SessionTTL   time.Duration `mapstructure:"session_ttl" toml:"session_ttl"`
	HoldInterval time.Duration `mapstructure:"hold_interval" toml:"hold_interval"`
	Sessions     string        `mapstructure:"sessions" toml:"sessions"`
	Journal      string        `mapstructure:"journal" toml:"journal"`
	RateLimit    float64       `mapstructure:"rate_limit" toml:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst" toml:"rate_burst"`
}

// RedisConfig holds the session store connection.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" toml:"addr"`
	Password string `mapstructure:"password" toml:"password"`
	DB       int    `mapstructure:"db" toml:"db"`
	Prefix   string `mapstructure:"prefix" toml:"prefix"`
}

// MongoConfig holds the journal connection.
type MongoConfig struct {
	URI        string `mapstructure:"uri" toml:"uri"`
	Database   string `mapstructure:"database" toml:"database"`
	Collection string `mapstructure:"collection" toml:"collection"`
}

// RenderConfig holds frame rendering settings.
type RenderConfig struct {
	Size int `mapstructure:"size" toml:"size"`
}

// CacheConfig holds the rendered frame cache.
type CacheConfig struct {
	Dir      string `mapstructure:"dir" toml:"dir"`
	Disabled bool   `mapstructure:"disabled" toml:"disabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.base", selection.DefaultBase)
	v.SetDefault("engine.padding", selection.DefaultPadding)
	v.SetDefault("engine.level", 1)
	v.SetDefault("engine.step", selection.DefaultStep)
	v.SetDefault("engine.min_step", selection.DefaultMinStep)
	v.SetDefault("engine.max_step", selection.DefaultMaxStep)
	v.SetDefault("engine.initial_width", selection.DefaultSize)
	v.SetDefault("engine.initial_height", selection.DefaultSize)

	v.SetDefault("server.addr", server.DefaultAddr)
	v.SetDefault("server.session_ttl", session.DefaultTTL)
	v.SetDefault("server.hold_interval", repeat.DefaultInterval)
	v.SetDefault("server.sessions", BackendMemory)
	v.SetDefault("server.journal", BackendLog)
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", 50)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", session.DefaultKeyPrefix)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", journal.DefaultDatabase)
	v.SetDefault("mongo.collection", journal.DefaultCollection)

	v.SetDefault("render.size", render.DefaultSize)

	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("cache.disabled", false)
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults always decode.
	_ = v.Unmarshal(&c)
	return c
}

// Load reads configuration from path, or from the default location when
// path is empty, and applies environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path == "" {
		path = Path()
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config path: %w", err)
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Cache.Dir, err = homedir.Expand(c.Cache.Dir); err != nil {
		return Config{}, fmt.Errorf("cache dir: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks settings that cannot be clamped into range.
func (c Config) Validate() error {
	switch c.Server.Sessions {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("server.sessions must be %q or %q, got %q", BackendMemory, BackendRedis, c.Server.Sessions)
	}
	switch c.Server.Journal {
	case BackendLog, BackendMongo, BackendNone:
	default:
		return fmt.Errorf("server.journal must be %q, %q or %q, got %q", BackendLog, BackendMongo, BackendNone, c.Server.Journal)
	}
	if c.Engine.Base <= 0 {
		return fmt.Errorf("engine.base must be positive, got %v", c.Engine.Base)
	}
	if c.Engine.Padding < 0 {
		return fmt.Errorf("engine.padding must not be negative, got %v", c.Engine.Padding)
	}
	if c.Engine.MinStep < 1 || c.Engine.MaxStep < c.Engine.MinStep {
		return fmt.Errorf("engine step bounds %d..%d are invalid", c.Engine.MinStep, c.Engine.MaxStep)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got %v", c.Server.RateLimit)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be positive, got %v", c.Server.SessionTTL)
	}
	return nil
}

// ControllerOptions converts the engine settings into controller options.
func (c Config) ControllerOptions() []selection.Option {
	e := c.Engine
	return []selection.Option{
		selection.WithLevel(sector.ClampLevel(e.Level)),
		selection.WithBase(e.Base),
		selection.WithPadding(e.Padding),
		selection.WithStepBounds(e.MinStep, e.MaxStep),
		selection.WithStep(e.Step),
		selection.WithInitialSize(e.InitialWidth, e.InitialHeight),
	}
}

// WriteTOML encodes c as TOML. Durations are written as strings such as
// "30m0s" so the output can be read back by Load.
func (c Config) WriteTOML(w io.Writer) error {
	type serverFile struct {
		Addr         string  `toml:"addr"`
		SessionTTL   string  `toml:"session_ttl"`
		HoldInterval string  `toml:"hold_interval"`
		Sessions     string  `toml:"sessions"`
		Journal      string  `toml:"journal"`
		RateLimit    float64 `toml:"rate_limit"`
		RateBurst    int     `toml:"rate_burst"`
	}
	type file struct {
		Engine EngineConfig `toml:"engine"`
		Server serverFile   `toml:"server"`
		Redis  RedisConfig  `toml:"redis"`
		Mongo  MongoConfig  `toml:"mongo"`
		Render RenderConfig `toml:"render"`
		Cache  CacheConfig  `toml:"cache"`
	}

	out := file{
		Engine: c.Engine,
		Server: serverFile{
			Addr:         c.Server.Addr,
			SessionTTL:   c.Server.SessionTTL.String(),
			HoldInterval: c.Server.HoldInterval.String(),
			Sessions:     c.Server.Sessions,
			Journal:      c.Server.Journal,
			RateLimit:    c.Server.RateLimit,
			RateBurst:    c.Server.RateBurst,
		},
		Redis:  c.Redis,
		Mongo:  c.Mongo,
		Render: c.Render,
		Cache:  c.Cache,
	}
	return toml.NewEncoder(w).Encode(out)
}

// Path returns the config file location: $SECTORLOCK_CONFIG when set,
// otherwise ~/.config/sectorlock/config.toml.
func Path() string {
	if p := os.Getenv(envConfig); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".", "config.toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// DefaultCacheDir returns the cache directory using XDG standard
// (~/.cache/sectorlock/).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}
