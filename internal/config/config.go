package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BackendURL      string        `yaml:"backend_url"`
	Port            string        `yaml:"port"`
	HTTPTimeout     time.Duration `yaml:"-"`
	BackendRetries  int           `yaml:"backend_retries"`
	RefreshInterval time.Duration `yaml:"-"`
	LogLevel        slog.Level    `yaml:"-"`
	BreakEvenROAS   float64       `yaml:"break_even_roas"`
	DatePreset      string        `yaml:"date_preset"`
	AccountName     string        `yaml:"account_name"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	StubPort        string        `yaml:"stub_port"`
	FixturePath     string        `yaml:"fixture_path"`

	// YAML carries durations and level as plain values.
	TimeoutSeconds int    `yaml:"http_timeout_seconds"`
	RefreshSeconds int    `yaml:"refresh_interval_seconds"`
	LogLevelName   string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		BackendURL:     "http://127.0.0.1:5000",
		Port:           "8080",
		BackendRetries: 2,
		BreakEvenROAS:  1.34,
		DatePreset:     "today",
		AccountName:    "Meta Ad Account (Preview)",
		StubPort:       "5000",
		FixturePath:    "fixtures/demo.yaml",
		TimeoutSeconds: 15,
		LogLevelName:   "info",
	}
}

// FromEnv builds a config from defaults and environment variables only.
func FromEnv() Config {
	c := defaults()
	c.applyEnv()
	c.finish()
	return c
}

// Load reads an optional .env file and an optional YAML file at path, then
// applies environment overrides. Env wins over the file.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	c := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyEnv()
	c.finish()
	return c, nil
}

func (c *Config) applyEnv() {
	c.BackendURL = envOr("BACKEND_URL", c.BackendURL)
	c.Port = envOr("PORT", c.Port)
	c.StubPort = envOr("STUB_PORT", c.StubPort)
	c.FixturePath = envOr("STUB_FIXTURE", c.FixturePath)
	c.DatePreset = envOr("DATE_PRESET", c.DatePreset)
	c.AccountName = envOr("ACCOUNT_NAME", c.AccountName)
	c.LogLevelName = envOr("LOG_LEVEL", c.LogLevelName)
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("REFRESH_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.RefreshSeconds = n
		}
	}
	if v := os.Getenv("BACKEND_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.BackendRetries = n
		}
	}
	if v := os.Getenv("BREAK_EVEN_ROAS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.BreakEvenROAS = f
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitCSV(v)
	}
}

func (c *Config) finish() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	c.HTTPTimeout = time.Duration(c.TimeoutSeconds) * time.Second
	c.RefreshInterval = time.Duration(c.RefreshSeconds) * time.Second
	if c.BreakEvenROAS <= 0 {
		c.BreakEvenROAS = 1.34
	}
	c.LogLevel = parseLevel(c.LogLevelName)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
