package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Categories) != 10 {
		t.Errorf("expected 10 default categories, got %d", len(cfg.Categories))
	}
	if cfg.Categories[2].Slug != "persi stravi" {
		t.Errorf("category slugs must be kept verbatim, got %q", cfg.Categories[2].Slug)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no categories", func(c *Config) { c.Categories = nil }},
		{"duplicate slug", func(c *Config) {
			c.Categories = []Category{{Name: "A", Slug: "x"}, {Name: "B", Slug: "x"}}
		}},
		{"empty slug", func(c *Config) { c.Categories = []Category{{Name: "A"}} }},
		{"zero max dimension", func(c *Config) { c.MaxDimension = 0 }},
		{"quality too high", func(c *Config) { c.Quality = 101 }},
		{"unknown render", func(c *Config) { c.Render = "curl" }},
		{"empty base url", func(c *Config) { c.BaseURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	content := `base_url: http://localhost:8080
raw_dir: /tmp/raw
quality: 70
http_timeout: 5s
respect_robots: false
categories:
  - name: Піца
    slug: pizza
  - name: Десерти
    slug: desserts
    icon: fa-cake
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RawDir != "/tmp/raw" {
		t.Errorf("RawDir = %q", cfg.RawDir)
	}
	if cfg.Quality != 70 {
		t.Errorf("Quality = %d", cfg.Quality)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.RespectRobots {
		t.Errorf("RespectRobots should be false")
	}
	if cfg.MaxDimension != 800 {
		t.Errorf("unset keys must keep defaults, MaxDimension = %d", cfg.MaxDimension)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[1].Slug != "desserts" || cfg.Categories[1].Icon != "fa-cake" {
		t.Errorf("categories = %+v", cfg.Categories)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BROBAR_BASE_URL", "http://example.test")
	t.Setenv("BROBAR_QUALITY", "65")
	t.Setenv("BROBAR_RESPECT_ROBOTS", "false")
	t.Setenv("BROBAR_WORKERS", "not-a-number")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "products")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	if cfg.BaseURL != "http://example.test" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Quality != 65 {
		t.Errorf("Quality = %d", cfg.Quality)
	}
	if cfg.RespectRobots {
		t.Error("RespectRobots should be false")
	}
	if cfg.Workers != 1 {
		t.Errorf("unparseable env must be ignored, Workers = %d", cfg.Workers)
	}
	want := "postgres://:@db:5432/products?sslmode=disable"
	if got := cfg.DatabaseURL(); got != want {
		t.Errorf("DatabaseURL = %q, want %q", got, want)
	}
}

func TestDatabaseURLEscapesCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBUser = "app"
	cfg.DBPassword = "p@ss/w:rd"
	cfg.DBHost = "db"
	cfg.DBPort = "5432"
	cfg.DBName = "products"

	u, err := url.Parse(cfg.DatabaseURL())
	if err != nil {
		t.Fatalf("parse %q: %v", cfg.DatabaseURL(), err)
	}
	if got := u.User.Username(); got != "app" {
		t.Errorf("user = %q, want app", got)
	}
	if got, _ := u.User.Password(); got != "p@ss/w:rd" {
		t.Errorf("password = %q, want p@ss/w:rd", got)
	}
	if u.Host != "db:5432" {
		t.Errorf("host = %q, want db:5432", u.Host)
	}
	if u.Path != "/products" {
		t.Errorf("path = %q, want /products", u.Path)
	}
}
