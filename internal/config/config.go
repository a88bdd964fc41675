package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID   string `env:"NEXT_PUBLIC_FIREBASE_PROJECT_ID"`
	ClientEmail string `env:"FIREBASE_CLIENT_EMAIL"`
	PrivateKey  string `env:"FIREBASE_PRIVATE_KEY"`

	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Record greeted by the page and served by /api/user.
	UserCollection string `env:"USER_COLLECTION" envDefault:"users"`
	UserID         string `env:"USER_ID" envDefault:"leerob"`

	APIBaseURL    string        `env:"API_BASE_URL"`
	FetchTimeout  time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s"`
	RenderTimeout time.Duration `env:"RENDER_TIMEOUT" envDefault:"3s"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"APP_ENV" envDefault:"development"`
}

// dotenvFiles are read in order; variables already set are never overridden.
var dotenvFiles = []string{".env.local", ".env"}

// Load reads .env files when present and then the process environment.
func Load() (Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return LoadFrom(environ())
}

// LoadFrom parses the configuration from an explicit variable set.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	// NEXT_PUBLIC_FIREBASE_PROJECT_ID または GOOGLE_CLOUD_PROJECT を読む
	if cfg.ProjectID == "" {
		cfg.ProjectID = vars["GOOGLE_CLOUD_PROJECT"]
	}
	if cfg.ProjectID == "" {
		return Config{}, errors.New("missing NEXT_PUBLIC_FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT")
	}

	cfg.PrivateKey = UnescapePrivateKey(cfg.PrivateKey)
	if (cfg.ClientEmail == "") != (cfg.PrivateKey == "") {
		return Config{}, errors.New("FIREBASE_CLIENT_EMAIL and FIREBASE_PRIVATE_KEY must be set together")
	}

	allowed := []string{}
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	cfg.AllowedOrigins = allowed

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://127.0.0.1:" + cfg.Port
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

// HasCredentials reports whether explicit service account credentials were
// supplied. Without them Application Default Credentials are used.
func (c Config) HasCredentials() bool {
	return c.ClientEmail != "" && c.PrivateKey != ""
}

func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// UnescapePrivateKey turns literal "\n" sequences into newlines. Hosting
// dashboards store multi-line PEM keys on a single line.
func UnescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

func environ() map[string]string {
	vars := map[string]string{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}
	return vars
}
