package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
	"github.com/Tiliavir/trivial-event-tracker/internal/validation"
)

// ErrMissingSecret is returned when the store endpoint or access key is not
// configured. The process cannot do anything useful without them.
var ErrMissingSecret = errors.New("missing store secret")

// Config is the root configuration for tet.
type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Display DisplayConfig `koanf:"display"`
	Log     LogConfig     `koanf:"log"`
	Server  ServerConfig  `koanf:"server"`
}

// StoreConfig selects and configures the remote event table.
type StoreConfig struct {
	// Backend is "rest" (Supabase / PostgREST) or "postgres" (direct SQL).
	Backend string `koanf:"backend" validate:"oneof=rest postgres"`
	// URL is the project URL (rest) or a postgres:// connection URL.
	URL string `koanf:"url"`
	// Key is the API key (rest) or the database password (postgres).
	Key         string        `koanf:"key"`
	Table       string        `koanf:"table" validate:"required"`
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	PageSize    int           `koanf:"page_size" validate:"min=1"`
	AutoMigrate bool          `koanf:"auto_migrate"`
}

// DisplayConfig controls labels in rendered output.
type DisplayConfig struct {
	Locale string `koanf:"locale" validate:"oneof=en de"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// ServerConfig configures `tet serve`.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

const (
	// EnvPrefix prefixes every environment override, e.g. TET_STORE_URL.
	EnvPrefix = "TET_"
	// ConfigPathEnvVar overrides the config file location.
	ConfigPathEnvVar = "TET_CONFIG"
	// DefaultTable is the remote table holding events.
	DefaultTable = "events"
)

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend:  "rest",
			Table:    DefaultTable,
			Timeout:  15 * time.Second,
			PageSize: 1000,
		},
		Display: DisplayConfig{Locale: "en"},
		Log:     LogConfig{Level: "warn", Format: "console"},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8501",
			RateLimit:       120,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# tet configuration – ~/.tet/config.yaml
#
# Every key can be overridden from the environment: store.url -> TET_STORE_URL,
# server.rate_limit -> TET_SERVER_RATE_LIMIT. SUPABASE_URL and SUPABASE_KEY
# are honoured as well.

store:
  # "rest" talks to a Supabase / PostgREST project over HTTPS.
  # "postgres" connects to the database directly.
  backend: rest

  # Required. Project URL (https://<project>.supabase.co) for rest,
  # postgres://user@host:5432/db for postgres.
  url: ""

  # Required. Anon / publishable API key for rest, database password for postgres.
  # Prefer TET_STORE_KEY over writing the key into this file.
  key: ""

  # Columns: event_name text, event_date date, notes text, plus id
  # (identity) and created_at (timestamptz default now()). Supabase adds
  # the last two to every new table; history is read in id order.
  table: events
  timeout: 15s
  # Rows fetched per request when reading the full history (rest only).
  page_size: 1000
  # Create the events table if it does not exist (postgres only).
  auto_migrate: false

display:
  # Weekday and month labels: en, de
  locale: en

log:
  # trace, debug, info, warn, error, disabled
  level: warn
  # console or json
  format: console

server:
  addr: 127.0.0.1:8501
  # Requests per minute per client IP; 0 disables the limit.
  rate_limit: 120
  cors_origins: ["*"]
  shutdown_timeout: 10s
`

// DefaultPath returns ~/.tet/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tet", "config.yaml"), nil
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment, in that order of precedence (environment wins). An empty path
// means $TET_CONFIG or ~/.tet/config.yaml; the latter is created with an
// annotated template on first run. The returned error wraps ErrMissingSecret
// when the store URL or key is missing.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigPathEnvVar)
		explicit = path != ""
	}
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return defaultConfig(), err
		}
		path = p
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return defaultConfig(), fmt.Errorf("loading defaults: %w", err)
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	case os.IsNotExist(statErr) && !explicit:
		if err := writeDefault(path); err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("could not create config file")
		}
	case os.IsNotExist(statErr):
		return defaultConfig(), fmt.Errorf("config file %s does not exist", path)
	default:
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, statErr)
	}

	if err := k.Load(env.Provider("SUPABASE_", ".", legacyEnvTransform), nil); err != nil {
		return defaultConfig(), fmt.Errorf("loading environment: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return defaultConfig(), fmt.Errorf("loading environment: %w", err)
	}
	if err := splitListValues(k, "server.cors_origins"); err != nil {
		return defaultConfig(), err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

var sections = map[string]bool{"store": true, "display": true, "log": true, "server": true}

// envTransform maps TET_STORE_PAGE_SIZE to store.page_size. Variables that do
// not name a known section are ignored.
func envTransform(key string) string {
	rest := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(rest, "_")
	if !ok || !sections[section] || field == "" {
		return ""
	}
	return section + "." + field
}

func legacyEnvTransform(key string) string {
	switch key {
	case "SUPABASE_URL":
		return "store.url"
	case "SUPABASE_KEY":
		return "store.key"
	}
	return ""
}

// splitListValues turns comma-separated strings from the environment into
// slices for the given keys.
func splitListValues(k *koanf.Koanf, keys ...string) error {
	for _, key := range keys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var items []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return nil
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the configuration. Missing secrets are reported first and
// wrap ErrMissingSecret.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Store.URL) == "" {
		missing = append(missing, "store.url ("+EnvPrefix+"STORE_URL)")
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		missing = append(missing, "store.key ("+EnvPrefix+"STORE_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSecret, strings.Join(missing, ", "))
	}

	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !tableName.MatchString(c.Store.Table) {
		return fmt.Errorf("invalid configuration: store.table %q is not a plain identifier", c.Store.Table)
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid configuration: unknown log.level %q", c.Log.Level)
	}

	u, err := url.Parse(c.Store.URL)
	if err != nil {
		return fmt.Errorf("invalid configuration: store.url: %w", err)
	}
	switch c.Store.Backend {
	case "rest":
		if u.Scheme != "https" && u.Scheme != "http" {
			return fmt.Errorf("invalid configuration: store.url must be an http(s) URL for the rest backend")
		}
	case "postgres":
		if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			return fmt.Errorf("invalid configuration: store.url must be a postgres:// URL for the postgres backend")
		}
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// template atomically.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
