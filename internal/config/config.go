package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/joho/godotenv"
)

type OAuthProvider struct {
	Key         string
	Secret      string
	CallbackURL string
}

// Enabled reports whether the provider has credentials configured.
func (p OAuthProvider) Enabled() bool {
	return p.Key != "" && p.Secret != ""
}

type Config struct {
	Addr            string
	DatabasePath    string
	MigrationsPath  string
	Rules           scoring.Ruleset
	SessionLifetime time.Duration
	AdminEmails     []string
	AllowedOrigins  []string
	Discord         OAuthProvider
	Google          OAuthProvider
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	} else if err != nil {
		slog.Info("no .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	rules, err := scoring.RulesetByName(get("RULESET", scoring.RulesetLatest))
	if err != nil {
		return nil, fmt.Errorf("invalid RULESET: %w", err)
	}

	lifetime, err := time.ParseDuration(get("SESSION_LIFETIME", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME: %w", err)
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME: must be positive, got %s", lifetime)
	}

	return &Config{
		Addr:            get("ADDR", ":8080"),
		DatabasePath:    get("DATABASE_PATH", "volley.db"),
		MigrationsPath:  get("MIGRATIONS_PATH", "file://migrations"),
		Rules:           rules,
		SessionLifetime: lifetime,
		AdminEmails:     splitList(getenv("ADMIN_EMAILS")),
		AllowedOrigins:  splitList(get("ALLOWED_ORIGINS", "*")),
		Discord: OAuthProvider{
			Key:         getenv("DISCORD_KEY"),
			Secret:      getenv("DISCORD_SECRET"),
			CallbackURL: getenv("DISCORD_CALLBACK_URL"),
		},
		Google: OAuthProvider{
			Key:         getenv("GOOGLE_KEY"),
			Secret:      getenv("GOOGLE_SECRET"),
			CallbackURL: getenv("GOOGLE_CALLBACK_URL"),
		},
	}, nil
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
