package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the screener's runtime settings.
type Config struct {
	APIURL         string        `env:"SCREENER_API_URL"`
	RequestTimeout time.Duration `env:"SCREENER_REQUEST_TIMEOUT"`
	Debounce       time.Duration `env:"SCREENER_DEBOUNCE"`
	PageSize       int           `env:"SCREENER_PAGE_SIZE"`
	CatalogTTL     time.Duration `env:"SCREENER_CATALOG_TTL"`
	LogFile        string        `env:"SCREENER_LOG_FILE"`
	LogLevel       string        `env:"SCREENER_LOG_LEVEL"`
}

const (
	defaultConfigPath     = "~/.config/screener/config.toml"
	defaultAPIURL         = "http://127.0.0.1:8080"
	defaultRequestTimeout = 10 * time.Second
	defaultDebounce       = 250 * time.Millisecond
	defaultPageSize       = 50
	defaultCatalogTTL     = 10 * time.Minute
	defaultLogFile        = "~/.local/state/screener/screener.log"
	defaultLogLevel       = "info"
)

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		Debounce:       defaultDebounce,
		PageSize:       defaultPageSize,
		CatalogTTL:     defaultCatalogTTL,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
	}
}

// Load reads the TOML config at path (empty uses the default location),
// falling back to defaults when the file is missing. SCREENER_* environment
// variables, including those from a .env file in the working directory,
// override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.readFile(resolved); err != nil {
		return Config{}, err
	}

	_ = godotenv.Load()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		RequestTimeout string `toml:"request_timeout"`
		Debounce       string `toml:"debounce"`
		PageSize       int    `toml:"page_size"`
		CatalogTTL     string `toml:"catalog_ttl"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}
	if c.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, c.RequestTimeout); err != nil {
		return err
	}
	if c.Debounce, err = parseDuration("debounce", raw.Debounce, c.Debounce); err != nil {
		return err
	}
	if c.CatalogTTL, err = parseDuration("catalog_ttl", raw.CatalogTTL, c.CatalogTTL); err != nil {
		return err
	}
	if raw.PageSize != 0 {
		c.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// normalize trims values and restores defaults for anything unusable.
func (c *Config) normalize() {
	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.Debounce < 0 {
		c.Debounce = 0
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.CatalogTTL <= 0 {
		c.CatalogTTL = defaultCatalogTTL
	}
	c.LogFile = strings.TrimSpace(c.LogFile)
	if c.LogFile == "" {
		c.LogFile = defaultLogFile
	}
	if c.LogFile != "-" {
		c.LogFile = mustExpand(c.LogFile)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

func parseDuration(key, raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	return d, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
