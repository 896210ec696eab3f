package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/trivial-event-tracker/internal/config"
)

// isolate clears every variable Load reads so the host environment cannot leak in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"TET_CONFIG", "SUPABASE_URL", "SUPABASE_KEY",
		"TET_STORE_URL", "TET_STORE_KEY", "TET_STORE_TABLE", "TET_STORE_BACKEND",
		"TET_DISPLAY_LOCALE", "TET_SERVER_CORS_ORIGINS", "TET_SERVER_RATE_LIMIT",
		"TET_LOG_LEVEL", "TET_LOG_FORMAT", "TET_STORE_TIMEOUT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingSecret(t *testing.T) {
	isolate(t)
	path := writeFile(t, "display:\n  locale: de\n")

	_, err := config.Load(path)
	if !errors.Is(err, config.ErrMissingSecret) {
		t.Fatalf("Load() error = %v, want ErrMissingSecret", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, `store:
  url: https://example.supabase.co
  key: anon-key
  page_size: 50
display:
  locale: de
server:
  cors_origins: ["http://localhost:3000"]
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.URL != "https://example.supabase.co" || cfg.Store.Key != "anon-key" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.Store.PageSize)
	}
	if cfg.Display.Locale != "de" {
		t.Errorf("Locale = %q, want %q", cfg.Display.Locale, "de")
	}
	// Untouched keys keep their defaults.
	if cfg.Store.Backend != "rest" || cfg.Store.Table != config.DefaultTable {
		t.Errorf("Backend/Table = %q/%q, want rest/%s", cfg.Store.Backend, cfg.Store.Table, config.DefaultTable)
	}
	if cfg.Store.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Store.Timeout)
	}
	if cfg.Server.Addr != "127.0.0.1:8501" {
		t.Errorf("Addr = %q, want 127.0.0.1:8501", cfg.Server.Addr)
	}
	if want := []string{"http://localhost:3000"}; !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "store:\n  url: https://file.supabase.co\n  key: file-key\n")
	t.Setenv("TET_STORE_URL", "https://env.supabase.co")
	t.Setenv("TET_STORE_TABLE", "tracker_events")
	t.Setenv("TET_STORE_TIMEOUT", "30s")
	t.Setenv("TET_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TET_SERVER_RATE_LIMIT", "0")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.URL != "https://env.supabase.co" {
		t.Errorf("URL = %q, want env value", cfg.Store.URL)
	}
	if cfg.Store.Key != "file-key" {
		t.Errorf("Key = %q, want file value", cfg.Store.Key)
	}
	if cfg.Store.Table != "tracker_events" {
		t.Errorf("Table = %q, want tracker_events", cfg.Store.Table)
	}
	if cfg.Store.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Store.Timeout)
	}
	if cfg.Server.RateLimit != 0 {
		t.Errorf("RateLimit = %d, want 0", cfg.Server.RateLimit)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadLegacySupabaseEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, "display:\n  locale: en\n")
	t.Setenv("SUPABASE_URL", "https://legacy.supabase.co")
	t.Setenv("SUPABASE_KEY", "legacy-key")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.URL != "https://legacy.supabase.co" || cfg.Store.Key != "legacy-key" {
		t.Errorf("store = %+v, want legacy values", cfg.Store)
	}

	t.Setenv("TET_STORE_KEY", "new-key")
	cfg, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.Key != "new-key" {
		t.Errorf("Key = %q, want TET_STORE_KEY to win", cfg.Store.Key)
	}
}

func TestLoadWritesTemplateOnFirstRun(t *testing.T) {
	home := isolate(t)
	t.Setenv("SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("SUPABASE_KEY", "k")

	if _, err := config.Load(""); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	path := filepath.Join(home, ".tet", "config.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	for _, col := range []string{"event_name", "event_date", "notes", "plus id", "created_at"} {
		if !strings.Contains(string(raw), col) {
			t.Errorf("template does not document column %q", col)
		}
	}

	// The template itself must load cleanly.
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() of template error: %v", err)
	}
	if cfg.Store.URL != "https://x.supabase.co" {
		t.Errorf("URL = %q, want env value over empty template value", cfg.Store.URL)
	}
	if cfg.Display.Locale != "en" {
		t.Errorf("Locale = %q, want en", cfg.Display.Locale)
	}
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	isolate(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, "store:\n  url: https://p.supabase.co\n  key: k\n")
	t.Setenv(config.ConfigPathEnvVar, path)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Store.URL != "https://p.supabase.co" {
		t.Errorf("URL = %q, want value from $TET_CONFIG file", cfg.Store.URL)
	}
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		var c config.Config
		c.Store = config.StoreConfig{
			Backend: "rest", URL: "https://x.supabase.co", Key: "k",
			Table: "events", Timeout: time.Second, PageSize: 10,
		}
		c.Display.Locale = "en"
		c.Log = config.LogConfig{Level: "warn", Format: "console"}
		c.Server = config.ServerConfig{Addr: ":8501", ShutdownTimeout: time.Second}
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
		secret  bool
	}{
		{"valid", func(*config.Config) {}, false, false},
		{"postgres", func(c *config.Config) {
			c.Store.Backend = "postgres"
			c.Store.URL = "postgres://tet@localhost:5432/tet"
		}, false, false},
		{"missing key", func(c *config.Config) { c.Store.Key = " " }, true, true},
		{"missing url", func(c *config.Config) { c.Store.URL = "" }, true, true},
		{"unknown backend", func(c *config.Config) { c.Store.Backend = "sqlite" }, true, false},
		{"unknown locale", func(c *config.Config) { c.Display.Locale = "fr" }, true, false},
		{"bad table", func(c *config.Config) { c.Store.Table = "events; drop" }, true, false},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, true, false},
		{"zero page size", func(c *config.Config) { c.Store.PageSize = 0 }, true, false},
		{"rest with postgres url", func(c *config.Config) {
			c.Store.URL = "postgres://localhost/tet"
		}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, config.ErrMissingSecret); got != tt.secret {
				t.Errorf("errors.Is(err, ErrMissingSecret) = %v, want %v", got, tt.secret)
			}
		})
	}
}
