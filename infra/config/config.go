package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable of the client. Durations are stored as whole
// seconds or milliseconds so the TOML file stays flat and numeric.
type Config struct {
	BaseURL              string `toml:"base_url"`
	Count                int    `toml:"count"`
	PageSize             int    `toml:"page_size"`
	CacheSize            int    `toml:"cache_size"`
	Concurrency          int    `toml:"concurrency"`
	ChildConcurrency     int    `toml:"child_concurrency"`
	CommentPrefetchDepth int    `toml:"comment_prefetch_depth"`
	FileCache            bool   `toml:"file_cache"`
	CacheDir             string `toml:"cache_dir"`
	TTLSecs              int    `toml:"ttl"`
	MaxStaleSecs         int    `toml:"max_stale"`
	RetentionSecs        int    `toml:"retention"`
	TopIDsTTLSecs        int    `toml:"top_ids_ttl"`
	RequestTimeoutSecs   int    `toml:"request_timeout"`
	PrefetchIdleMillis   int    `toml:"prefetch_idle_delay"`
	MaxCommentPrefetches int    `toml:"max_comment_prefetches"`
	DefaultVisibleLevels int    `toml:"default_visible_levels"`
	TickMillis           int    `toml:"tick_interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:              "https://hacker-news.firebaseio.com/v0",
		Count:                30,
		PageSize:             30,
		CacheSize:            500,
		Concurrency:          20,
		ChildConcurrency:     4,
		CommentPrefetchDepth: 1,
		FileCache:            true,
		CacheDir:             DefaultCacheDir(),
		TTLSecs:              60 * 60,
		MaxStaleSecs:         24 * 60 * 60,
		RetentionSecs:        7 * 24 * 60 * 60,
		TopIDsTTLSecs:        30,
		RequestTimeoutSecs:   15,
		PrefetchIdleMillis:   400,
		MaxCommentPrefetches: 2,
		DefaultVisibleLevels: 2,
		TickMillis:           120,
	}
}

// DefaultCacheDir is <user cache dir>/hntui, or ./.hntui-cache when the
// platform reports no cache directory.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".hntui-cache"
	}
	return filepath.Join(dir, "hntui")
}

// DefaultPath returns <user config dir>/hntui/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, "hntui", "config.toml"), nil
}

// Load builds the configuration from defaults, the TOML file at path and
// HNTUI_* environment variables, in that order. An empty path means the
// default location, which may be absent. An explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	if err := cfg.loadFile(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from the environment.
//
//	HNTUI_BASE_URL    API root (default: https://hacker-news.firebaseio.com/v0)
//	HNTUI_CACHE_DIR   cache root (default: <user cache dir>/hntui)
//	HNTUI_FILE_CACHE  "false" or "0" disables the disk tier
//	HNTUI_<OPTION>    any numeric option by its upper-cased TOML key
func (c *Config) applyEnv() error {
	if v := os.Getenv("HNTUI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("HNTUI_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("HNTUI_FILE_CACHE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HNTUI_FILE_CACHE %q: %w", v, err)
		}
		c.FileCache = b
	}

	for key, field := range c.intFields() {
		name := "HNTUI_" + strings.ToUpper(key)
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*field = n
	}
	return nil
}

// intFields maps each numeric option's TOML key to its field.
func (c *Config) intFields() map[string]*int {
	return map[string]*int{
		"count":                  &c.Count,
		"page_size":              &c.PageSize,
		"cache_size":             &c.CacheSize,
		"concurrency":            &c.Concurrency,
		"child_concurrency":      &c.ChildConcurrency,
		"comment_prefetch_depth": &c.CommentPrefetchDepth,
		"ttl":                    &c.TTLSecs,
		"max_stale":              &c.MaxStaleSecs,
		"retention":              &c.RetentionSecs,
		"top_ids_ttl":            &c.TopIDsTTLSecs,
		"request_timeout":        &c.RequestTimeoutSecs,
		"prefetch_idle_delay":    &c.PrefetchIdleMillis,
		"max_comment_prefetches": &c.MaxCommentPrefetches,
		"default_visible_levels": &c.DefaultVisibleLevels,
		"tick_interval":          &c.TickMillis,
	}
}

// Validate rejects non-positive numeric options and inconsistent TTLs.
func (c Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid base_url %q: must be an absolute URL", c.BaseURL)
	}

	for key, field := range c.intFields() {
		if key == "comment_prefetch_depth" {
			if *field < 0 {
				return fmt.Errorf("invalid %s %d: must not be negative", key, *field)
			}
			continue
		}
		if *field <= 0 {
			return fmt.Errorf("invalid %s %d: must be positive", key, *field)
		}
	}

	if c.FileCache && c.CacheDir == "" {
		return errors.New("invalid cache_dir: required when file_cache is enabled")
	}
	if c.MaxStaleSecs < c.TTLSecs {
		return fmt.Errorf("invalid max_stale %d: must be at least ttl %d", c.MaxStaleSecs, c.TTLSecs)
	}
	if c.RetentionSecs <= c.TTLSecs {
		return fmt.Errorf("invalid retention %d: must be greater than ttl %d", c.RetentionSecs, c.TTLSecs)
	}
	return nil
}

func (c Config) TTL() time.Duration            { return secs(c.TTLSecs) }
func (c Config) MaxStale() time.Duration       { return secs(c.MaxStaleSecs) }
func (c Config) Retention() time.Duration      { return secs(c.RetentionSecs) }
func (c Config) TopIDsTTL() time.Duration      { return secs(c.TopIDsTTLSecs) }
func (c Config) RequestTimeout() time.Duration { return secs(c.RequestTimeoutSecs) }

func (c Config) PrefetchIdleDelay() time.Duration {
	return time.Duration(c.PrefetchIdleMillis) * time.Millisecond
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

func secs(n int) time.Duration { return time.Duration(n) * time.Second }
