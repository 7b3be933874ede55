package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"farsha/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"

	// APIURLEnv overrides backend.base_url, like the front end build variable.
	APIURLEnv = "FARSHA_API_URL"

	DefaultBaseURL = "http://localhost:8000/api"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Backend    BackendConfig    `yaml:"backend"`
	Session    SessionConfig    `yaml:"session"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Booking    BookingConfig    `yaml:"booking"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port         int             `yaml:"port"`
	CookieName   string          `yaml:"cookie_name"`
	CookieSecure bool            `yaml:"cookie_secure"`
	TrustProxy   bool            `yaml:"trust_proxy"`
	GuardTimeout int             `yaml:"guard_timeout_ms"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// GuardWait is how long a route guard waits for session resolution.
// Zero means no limit.
func (c HTTPConfig) GuardWait() time.Duration {
	return time.Duration(c.GuardTimeout) * time.Millisecond
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BackendConfig struct {
	BaseURL         string `yaml:"base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c BackendConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

type SessionConfig struct {
	Storage         string `yaml:"storage"`
	SQLitePath      string `yaml:"sqlite_path"`
	TTLHours        int    `yaml:"ttl_hours"`
	LoginRateLimit  int    `yaml:"login_rate_limit"`
	LoginRateWindow int    `yaml:"login_rate_window"`
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c SessionConfig) LoginWindow() time.Duration {
	return time.Duration(c.LoginRateWindow) * time.Second
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BookingConfig struct {
	DaysAhead int `yaml:"days_ahead"`
}

type ExportConfig struct {
	SheetName string `yaml:"sheet_name"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend base_url must be http(s), got %q", c.Backend.BaseURL)
	}
	if u.Host == "" {
		return errors.New("backend base_url has no host")
	}

	switch c.Session.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.Address == "" {
			return errors.New("session.storage=redis requires redis.address")
		}
	case StorageSQLite:
		if c.Session.SQLitePath == "" {
			return errors.New("session.storage=sqlite requires session.sqlite_path")
		}
	default:
		return fmt.Errorf("unknown session.storage %q", c.Session.Storage)
	}

	if c.HTTP.GuardTimeout < 0 {
		return errors.New("http.guard_timeout_ms must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if env := strings.TrimSpace(os.Getenv(APIURLEnv)); env != "" {
		c.Backend.BaseURL = env
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBaseURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 10
	}

	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.CookieName == "" {
		c.HTTP.CookieName = "farsha_vid"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Session.Storage == "" {
		if c.Redis.Address != "" {
			c.Session.Storage = StorageRedis
		} else {
			c.Session.Storage = StorageMemory
		}
	}
	c.Session.Storage = strings.ToLower(strings.TrimSpace(c.Session.Storage))
	if c.Session.TTLHours == 0 {
		c.Session.TTLHours = 24 * 30
	}
	if c.Session.LoginRateLimit == 0 {
		c.Session.LoginRateLimit = 10
	}
	if c.Session.LoginRateWindow == 0 {
		c.Session.LoginRateWindow = 60
	}

	if c.Booking.DaysAhead == 0 {
		c.Booking.DaysAhead = models.BookingDaysAhead
	}
	if c.Exports.SheetName == "" {
		c.Exports.SheetName = "رزروها"
	}
}
