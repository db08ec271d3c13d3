// Package config loads hub-server settings from an optional YAML file,
// an optional .env file and HUB_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           int      `yaml:"port"`
	DatabasePath   string   `yaml:"database_path"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustedProxies may set X-Forwarded-For; empty trusts no one and the
	// socket address identifies the voter.
	TrustedProxies []string `yaml:"trusted_proxies"`
	Data           Data     `yaml:"data"`
	Votes          Votes    `yaml:"votes"`
	Browse         Browse   `yaml:"browse"`
	Schedule       Schedule `yaml:"schedule"`
	Log            Log      `yaml:"log"`
}

// Data locates the three static JSON documents
type Data struct {
	BaseURL        string        `yaml:"base_url"` // http(s):// or file:///abs/dir/
	ResourcesPath  string        `yaml:"resources_path"`
	CategoriesPath string        `yaml:"categories_path"`
	TagsPath       string        `yaml:"tags_path"`
	Timeout        time.Duration `yaml:"timeout"`
	ReportDupes    bool          `yaml:"report_duplicates"`
}

type Votes struct {
	ServiceURL string        `yaml:"service_url"` // empty: votes are stored locally
	Window     time.Duration `yaml:"window"`
	RateLimit  float64       `yaml:"rate_limit"` // requests per second per client
	RateBurst  int           `yaml:"rate_burst"`
	MaxRetry   time.Duration `yaml:"max_retry"`
}

type Browse struct {
	PageSizes       []int  `yaml:"page_sizes"`
	DefaultPageSize int    `yaml:"default_page_size"`
	Language        string `yaml:"language"` // BCP 47 tag for alphabetical sorting
}

// Schedule holds cron expressions; empty disables the job
type Schedule struct {
	Refresh  string `yaml:"refresh"`
	VoteSync string `yaml:"vote_sync"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console|json
}

// Load reads path (if non-empty), then .env, then environment overrides.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	setString(&c.DatabasePath, "HUB_DB_PATH")
	setString(&c.Data.BaseURL, "HUB_DATA_URL")
	setString(&c.Votes.ServiceURL, "HUB_VOTE_SERVICE_URL")
	setString(&c.Browse.Language, "HUB_LANGUAGE")
	setString(&c.Schedule.Refresh, "HUB_REFRESH_SCHEDULE")
	setString(&c.Schedule.VoteSync, "HUB_VOTE_SYNC_SCHEDULE")
	setString(&c.Log.Level, "HUB_LOG_LEVEL")
	setString(&c.Log.Format, "HUB_LOG_FORMAT")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("HUB_VOTE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HUB_VOTE_WINDOW %q: %w", v, err)
		}
		c.Votes.Window = d
	}
	if v := os.Getenv("HUB_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HUB_TRUSTED_PROXIES"); v != "" {
		c.TrustedProxies = splitList(v)
	}
	if v := os.Getenv("HUB_PAGE_SIZES"); v != "" {
		sizes := []int{}
		for _, s := range splitList(v) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("HUB_PAGE_SIZES %q: %w", v, err)
			}
			sizes = append(sizes, n)
		}
		c.Browse.PageSizes = sizes
	}
	return nil
}

// Validate checks values and fills defaults.
func (c *Config) Validate() error {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "hub.db"
	}
	if c.Data.BaseURL == "" {
		c.Data.BaseURL = "file:///srv/hub/data/"
	}
	if !strings.HasSuffix(c.Data.BaseURL, "/") {
		c.Data.BaseURL += "/"
	}
	if c.Data.ResourcesPath == "" {
		c.Data.ResourcesPath = "resources/all-resources.json"
	}
	if c.Data.CategoriesPath == "" {
		c.Data.CategoriesPath = "categories/categories.json"
	}
	if c.Data.TagsPath == "" {
		c.Data.TagsPath = "tags/tags.json"
	}
	if c.Data.Timeout <= 0 {
		c.Data.Timeout = 15 * time.Second
	}

	if c.Votes.Window <= 0 {
		c.Votes.Window = 24 * time.Hour
	}
	if c.Votes.RateLimit <= 0 {
		c.Votes.RateLimit = 3
	}
	if c.Votes.RateBurst <= 0 {
		c.Votes.RateBurst = 5
	}
	if c.Votes.MaxRetry <= 0 {
		c.Votes.MaxRetry = 30 * time.Second
	}

	if len(c.Browse.PageSizes) == 0 {
		c.Browse.PageSizes = []int{75, 100, 150}
	}
	for _, n := range c.Browse.PageSizes {
		if n <= 0 {
			return fmt.Errorf("page size %d must be > 0", n)
		}
	}
	if c.Browse.DefaultPageSize == 0 {
		c.Browse.DefaultPageSize = c.Browse.PageSizes[0]
	}
	if !c.AllowsPageSize(c.Browse.DefaultPageSize) {
		return fmt.Errorf("default page size %d is not one of %v", c.Browse.DefaultPageSize, c.Browse.PageSizes)
	}
	if c.Browse.Language == "" {
		c.Browse.Language = "en"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	return nil
}

// AllowsPageSize reports whether n is one of the configured page sizes
func (c *Config) AllowsPageSize(n int) bool {
	for _, s := range c.Browse.PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
