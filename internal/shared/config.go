package shared

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Cache backends accepted by [CacheConfig.Backend].
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Server   ServerConfig   `toml:"server"`
	Playback PlaybackConfig `toml:"playback"`
	Posters  PostersConfig  `toml:"posters"`
	Cache    CacheConfig    `toml:"cache"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Log      LogConfig      `toml:"log"`
}

// Duration is a [time.Duration] written as a string ("30s", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, s, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// BackendConfig describes the movie backend and how it is called.
type BackendConfig struct {
	URL           string        `toml:"url"`
	RandomPath    string        `toml:"random_path"`
	WatchlistPath string        `toml:"watchlist_path"`
	ImagePath     string        `toml:"image_path"`
	Timeout       Duration      `toml:"timeout"`
	PosterRate    float64       `toml:"poster_rate"`
	PosterBurst   int           `toml:"poster_burst"`
	Breaker       BreakerConfig `toml:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of the backend.
type BreakerConfig struct {
	FailureThreshold uint32   `toml:"failure_threshold"`
	OpenTimeout      Duration `toml:"open_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host       string   `toml:"host"`
	Port       int      `toml:"port"`
	SessionTTL Duration `toml:"session_ttl"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// PlaybackConfig builds the playback hint shown for a selected movie.
type PlaybackConfig struct {
	Command   string `toml:"command"`
	StreamURL string `toml:"stream_url"`
}

// Hint interpolates the media-server id into the playback template.
func (p PlaybackConfig) Hint(externalID string) string {
	stream := strings.ReplaceAll(p.StreamURL, "{id}", externalID)
	if p.Command == "" {
		return stream
	}
	return p.Command + " " + stream
}

// PostersConfig bounds poster dimensions. Zero keeps the original size.
type PostersConfig struct {
	MaxWidth  int `toml:"max_width"`
	MaxHeight int `toml:"max_height"`
}

// CacheConfig selects the poster cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Capacity int      `toml:"capacity"`
	TTL      Duration `toml:"ttl"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedisConfig contains redis connection settings for the shared poster cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads a TOML configuration file from the specified path and overlays it on [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: backend.url %q", ErrInvalidConfig, c.Backend.URL)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheSQLite, CacheRedis:
	case "":
		c.Cache.Backend = CacheNone
	default:
		return fmt.Errorf("%w: cache.backend %q", ErrInvalidConfig, c.Cache.Backend)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalidConfig, c.Server.Port)
	}

	if c.Posters.MaxWidth < 0 || c.Posters.MaxHeight < 0 {
		return fmt.Errorf("%w: posters dimensions must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
// An existing file is only replaced when overwrite is set.
func CreateConfigFile(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
