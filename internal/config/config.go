// Package config handles configuration loading and validation for the gateway
// and the promo service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/api-gateway/config.toml",
	"configs/config.toml",
	"configs/config.yaml",
}

// reservedPaths are gateway routes the metrics endpoint must not shadow.
var reservedPaths = []string{"/api/v1", "/healthz", "/gateway/status"}

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config           string `kong:"short='c',help='Path to TOML or YAML config file.',env='CONFIG_PATH'"`
	Host             string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port             int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	UserServiceURL   string `kong:"help='User service base URL (overrides config).',env='USER_SERVICE_URL'"`
	PromoServiceHost string `kong:"help='Promo service host (overrides config).',env='PROMO_SERVICE_HOST'"`
	PromoServicePort int    `kong:"help='Promo service port (overrides config).',env='PROMO_SERVICE_PORT'"`
	LogLevel         string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server       ServerConfig       `toml:"server" yaml:"server"`
	UserService  UserServiceConfig  `toml:"user_service" yaml:"user_service"`
	PromoService PromoServiceConfig `toml:"promo_service" yaml:"promo_service"`
	Log          LogConfig          `toml:"log" yaml:"log"`
	Metrics      MetricsConfig      `toml:"metrics" yaml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds gateway HTTP server settings.
type ServerConfig struct {
	Host         string          `toml:"host" yaml:"host"`
	Port         int             `toml:"port" yaml:"port"` // 0 means "use default" (8080)
	BodyMaxBytes int64           `toml:"body_max_bytes" yaml:"body_max_bytes"`
	RateLimit    RateLimitConfig `toml:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

// UserServiceConfig holds the HTTP passthrough backend settings.
type UserServiceConfig struct {
	BaseURL         string `toml:"base_url" yaml:"base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
	IdleConnections int    `toml:"idle_connections" yaml:"idle_connections"`
}

// PromoServiceConfig holds the promo RPC backend settings. Host and Port are
// dialed by the gateway; ListenHost and Port are bound by the promo service.
type PromoServiceConfig struct {
	Host           string `toml:"host" yaml:"host"`
	Port           int    `toml:"port" yaml:"port"`
	ListenHost     string `toml:"listen_host" yaml:"listen_host"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// Load reads the config file (if any) and applies CLI overrides.
// An explicit path (via --config or CONFIG_PATH) must exist. Without one, the
// search paths are tried in order and defaults are used when none is present.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}

	var cfg Config
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// decodeFile picks the decoder from the file extension; TOML is the default.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// LoadEnvFiles loads KEY=VALUE pairs from the given dotenv files into the
// process environment without overriding variables that are already set.
// Missing files are skipped so a bare deployment needs no .env at all.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.UserServiceURL != "" {
		c.UserService.BaseURL = cli.UserServiceURL
	}
	if cli.PromoServiceHost != "" {
		c.PromoService.Host = cli.PromoServiceHost
	}
	if cli.PromoServicePort != 0 {
		c.PromoService.Port = cli.PromoServicePort
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	// User service URL: optional (defaulted), but must be absolute http(s) when set.
	if c.UserService.BaseURL != "" {
		u, err := url.Parse(c.UserService.BaseURL)
		if err != nil {
			return fmt.Errorf("user_service.base_url is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("user_service.base_url must use http or https; got %q", c.UserService.BaseURL)
		}
		if u.Host == "" {
			return fmt.Errorf("user_service.base_url must include a host; got %q", c.UserService.BaseURL)
		}
	}

	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.PromoService.Port < 0 || c.PromoService.Port > 65535 {
		return fmt.Errorf("promo_service.port must be 0–65535; got %d", c.PromoService.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.UserService.TimeoutSeconds < 0 {
		return fmt.Errorf("user_service.timeout_seconds must be non-negative; got %d", c.UserService.TimeoutSeconds)
	}
	if c.UserService.IdleConnections < 0 {
		return fmt.Errorf("user_service.idle_connections must be non-negative; got %d", c.UserService.IdleConnections)
	}
	if c.PromoService.TimeoutSeconds < 0 {
		return fmt.Errorf("promo_service.timeout_seconds must be non-negative; got %d", c.PromoService.TimeoutSeconds)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}

	// Log fields.
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range reservedPaths {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// setDefaults fills zero-valued fields with the values of the reference
// deployment. Zero means "unset" for integer fields.
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 10 * 1024 * 1024 // 10 MB
	}
	if c.UserService.BaseURL == "" {
		c.UserService.BaseURL = "http://user-service:8000"
	}
	if c.UserService.TimeoutSeconds == 0 {
		c.UserService.TimeoutSeconds = 30
	}
	if c.UserService.IdleConnections == 0 {
		c.UserService.IdleConnections = 100
	}
	if c.PromoService.Host == "" {
		c.PromoService.Host = "promo-service"
	}
	if c.PromoService.Port == 0 {
		c.PromoService.Port = 50051
	}
	if c.PromoService.ListenHost == "" {
		c.PromoService.ListenHost = "0.0.0.0"
	}
	if c.PromoService.TimeoutSeconds == 0 {
		c.PromoService.TimeoutSeconds = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Target returns the address the gateway dials.
func (c *PromoServiceConfig) Target() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ListenAddr returns the address the promo service binds.
func (c *PromoServiceConfig) ListenAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.Port))
}

// FilePath returns the config file that was loaded, or empty when running on defaults.
func (c *Config) FilePath() string {
	return c.filePath
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
