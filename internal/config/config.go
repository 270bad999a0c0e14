package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverSupabase = "supabase"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Backend struct {
		Driver      string `yaml:"driver"`
		URL         string `yaml:"url"`
		AccessToken string `yaml:"access_token"`
	} `yaml:"backend"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		QuestionCount    int    `yaml:"question_count"`
		TimerSeconds     int    `yaml:"timer_seconds"`
		RevealDelay      string `yaml:"reveal_delay"`
		HintWindow       string `yaml:"hint_window"`
		AttemptTTL       string `yaml:"attempt_ttl"`
		PoolTTL          string `yaml:"pool_ttl"`
		LeaderboardLimit int    `yaml:"leaderboard_limit"`
	} `yaml:"quiz"`
	Admin struct {
		JWTSecret string `yaml:"jwt_secret"`
		TokenTTL  string `yaml:"token_ttl"`
	} `yaml:"admin"`
	Seed struct {
		Questions string `yaml:"questions"`
	} `yaml:"seed"`
}

// Load reads YAML config from path and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides file values with non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Backend.Driver, "BACKEND_DRIVER")
	set(&c.Backend.URL, "BACKEND_URL")
	set(&c.Backend.AccessToken, "BACKEND_ACCESS_TOKEN")
	set(&c.Postgres.URL, "DATABASE_URL")
	set(&c.Redis.Addr, "REDIS_ADDR")
	set(&c.Admin.JWTSecret, "ADMIN_JWT_SECRET")
}

// Driver returns the configured backend driver, defaulting to memory.
func (c Config) Driver() string {
	d := strings.ToLower(strings.TrimSpace(c.Backend.Driver))
	if d == "" {
		return DriverMemory
	}
	return d
}

// SQLitePath returns the sqlite DSN, defaulting to a file in the working directory.
func (c Config) SQLitePath() string {
	if c.SQLite.Path == "" {
		return "file:quiz.db?cache=shared"
	}
	return c.SQLite.Path
}

// ValidAccessToken accepts publishable keys and anything long enough to be a real key.
func ValidAccessToken(token string) bool {
	return len(token) > 20 || strings.HasPrefix(token, "sb_publishable_")
}

// BackendConfigured reports whether the hosted backend can be reached.
func (c Config) BackendConfigured() bool {
	return strings.TrimSpace(c.Backend.URL) != "" && ValidAccessToken(c.Backend.AccessToken)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// IntOr returns v, or fallback when v is not positive.
func IntOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
