package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Category is one menu section to scrape. Order in Config.Categories is the
// display order written to the snapshot.
type Category struct {
	Name string `mapstructure:"name"`
	Slug string `mapstructure:"slug"`
	Icon string `mapstructure:"icon"`
}

// Config holds all application configuration.
type Config struct {
	// Source site
	BaseURL    string
	Categories []Category
	Render     string // "static", "headless"

	// Output
	RawDir        string
	OptimizedDir  string
	SnapshotPath  string
	UpdatesPath   string
	DBOwner       string
	SchemaVersion int

	// Image optimizer
	FFmpegPath   string
	MaxDimension int
	Quality      int

	// HTTP behaviour
	HTTPTimeout   time.Duration
	RespectRobots bool
	DelayProfile  string // "off", "normal", "cautious"
	RatePerSecond float64
	RateBurst     int
	ProxyURL      string
	Workers       int

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string // stderr, file, both
	LogFile   string

	// Database for the apply command
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string
}

// DefaultCategories is the brobar.delivery menu as published.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Бургери", Slug: "burgers"},
		{Name: "Сети", Slug: "sets"},
		{Name: "Перші страви", Slug: "persi stravi"},
		{Name: "Соуси", Slug: "sauces"},
		{Name: "Напої", Slug: "drinks"},
		{Name: "Фрі та сир", Slug: "fries-and-cheese"},
		{Name: "Салати", Slug: "salad"},
		{Name: "Гарячі страви", Slug: "hot"},
		{Name: "Гарячі закуски", Slug: "snacks"},
		{Name: "Холодні закуски", Slug: "holodni"},
	}
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://brobar.delivery",
		Categories:    DefaultCategories(),
		Render:        "static",
		RawDir:        "uploads_backup",
		OptimizedDir:  "uploads",
		SnapshotPath:  "backup_product_db.sql",
		UpdatesPath:   "scripts/update_images.sql",
		DBOwner:       "sanin",
		SchemaVersion: 3,
		FFmpegPath:    "ffmpeg",
		MaxDimension:  800,
		Quality:       80,
		HTTPTimeout:   30 * time.Second,
		RespectRobots: true,
		DelayProfile:  "off",
		RateBurst:     1,
		Workers:       1,
		LogLevel:      "info",
		LogFormat:     "text",
		LogOutput:     "stderr",
		LogFile:       "logs/brobar-menu.log",
		DBPort:        "5432",
		DBSSLMode:     "disable",
	}
}

// LoadFile reads a YAML/TOML/JSON config file through viper. Keys that are
// absent in the file keep their current values.
func (c *Config) LoadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if v.IsSet("categories") {
		var cats []Category
		if err := v.UnmarshalKey("categories", &cats); err != nil {
			return fmt.Errorf("decode categories: %w", err)
		}
		c.Categories = cats
	}

	strs := map[string]*string{
		"base_url":      &c.BaseURL,
		"render":        &c.Render,
		"raw_dir":       &c.RawDir,
		"optimized_dir": &c.OptimizedDir,
		"snapshot_path": &c.SnapshotPath,
		"updates_path":  &c.UpdatesPath,
		"db_owner":      &c.DBOwner,
		"ffmpeg_path":   &c.FFmpegPath,
		"delay_profile": &c.DelayProfile,
		"proxy_url":     &c.ProxyURL,
		"log_level":     &c.LogLevel,
		"log_format":    &c.LogFormat,
		"log_output":    &c.LogOutput,
		"log_file":      &c.LogFile,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	ints := map[string]*int{
		"schema_version": &c.SchemaVersion,
		"max_dimension":  &c.MaxDimension,
		"quality":        &c.Quality,
		"rate_burst":     &c.RateBurst,
		"workers":        &c.Workers,
	}
	for key, dst := range ints {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	if v.IsSet("respect_robots") {
		c.RespectRobots = v.GetBool("respect_robots")
	}
	if v.IsSet("rate_per_second") {
		c.RatePerSecond = v.GetFloat64("rate_per_second")
	}
	if v.IsSet("http_timeout") {
		c.HTTPTimeout = v.GetDuration("http_timeout")
	}
	return nil
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("BROBAR_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("BROBAR_RENDER"); v != "" {
		c.Render = v
	}
	if v := os.Getenv("BROBAR_RAW_DIR"); v != "" {
		c.RawDir = v
	}
	if v := os.Getenv("BROBAR_OPTIMIZED_DIR"); v != "" {
		c.OptimizedDir = v
	}
	if v := os.Getenv("BROBAR_SNAPSHOT"); v != "" {
		c.SnapshotPath = v
	}
	if v := os.Getenv("BROBAR_UPDATES"); v != "" {
		c.UpdatesPath = v
	}
	if v := os.Getenv("BROBAR_DB_OWNER"); v != "" {
		c.DBOwner = v
	}
	if v := os.Getenv("BROBAR_FFMPEG"); v != "" {
		c.FFmpegPath = v
	}
	if v := os.Getenv("BROBAR_MAX_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDimension = n
		}
	}
	if v := os.Getenv("BROBAR_QUALITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Quality = n
		}
	}
	if v := os.Getenv("BROBAR_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTPTimeout = d
		}
	}
	if v := os.Getenv("BROBAR_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("BROBAR_DELAY_PROFILE"); v != "" {
		c.DelayProfile = v
	}
	if v := os.Getenv("BROBAR_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("BROBAR_PROXY"); v != "" {
		c.ProxyURL = v
	}
	if v := os.Getenv("BROBAR_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("BROBAR_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BROBAR_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("BROBAR_LOG_OUTPUT"); v != "" {
		c.LogOutput = v
	}

	// Same variable names the backend services use.
	if v := os.Getenv("DB_USER"); v != "" {
		c.DBUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DBPassword = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DBHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.DBPort = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.DBName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		c.DBSSLMode = v
	}
}

// Validate reports configuration that would produce a broken snapshot.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base url is empty")
	}
	if len(c.Categories) == 0 {
		return errors.New("no categories configured")
	}
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Slug == "" {
			return fmt.Errorf("category %d (%q) has no slug", i, cat.Name)
		}
		if seen[cat.Slug] {
			return fmt.Errorf("duplicate category slug %q", cat.Slug)
		}
		seen[cat.Slug] = true
	}
	if c.MaxDimension <= 0 {
		return fmt.Errorf("max dimension must be positive, got %d", c.MaxDimension)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be within 1..100, got %d", c.Quality)
	}
	if c.Render != "static" && c.Render != "headless" {
		return fmt.Errorf("unknown render mode %q", c.Render)
	}
	return nil
}

// DatabaseURL builds a postgres connection string from the DB_* settings.
// Credentials are percent-encoded.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}
