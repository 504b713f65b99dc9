// Package config loads service configuration from an optional YAML file and
// environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Dhaka must resolve on minimal images

	"github.com/EmpoweredVote/election-results/internal/results/provider"
	"github.com/goccy/go-yaml"
	"golang.org/x/text/language"
)

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "config.yaml"

var (
	ErrInvalidInterval = errors.New("results.refresh_interval must be positive")
	ErrInvalidTimeout  = errors.New("results.fetch_timeout must be positive")
	ErrInvalidLocale   = errors.New("results.locale is not a valid BCP 47 tag")
	ErrInvalidTimezone = errors.New("results.timezone is not a known IANA zone")
)

// Duration is a time.Duration that reads "3m", "90s" or a bare number of
// seconds from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(b []byte) error {
	v, err := parseDuration(strings.Trim(strings.TrimSpace(string(b)), `"'`))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return v, nil
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Results ResultsConfig `yaml:"results"`
	Archive ArchiveConfig `yaml:"archive"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port            string   `yaml:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type ResultsConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"-"` // env only
	PromptFile string `yaml:"prompt_file"`
	StaticPath string `yaml:"static_path"`

	// RefreshInterval is the polling period; revisions have used 180-300s.
	RefreshInterval Duration `yaml:"refresh_interval"`
	FetchTimeout    Duration `yaml:"fetch_timeout"`

	DegradeOnTransportError bool `yaml:"degrade_on_transport_error"`

	Locale   string `yaml:"locale"`
	Timezone string `yaml:"timezone"`

	ManualRefresh RateConfig `yaml:"manual_refresh"`
	Messages      Messages   `yaml:"messages"`
}

// RateConfig is a token bucket: one token every Every, at most Burst saved.
type RateConfig struct {
	Every Duration `yaml:"every"`
	Burst int      `yaml:"burst"`
}

// Messages are the user-facing strings the service itself produces.
type Messages struct {
	TransportError string `yaml:"transport_error"`
	Degraded       string `yaml:"degraded"`
}

type ArchiveConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Schema      string `yaml:"schema"`
}

// Enabled reports whether snapshots should be archived.
func (a ArchiveConfig) Enabled() bool { return a.DatabaseURL != "" }

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port: "5050",
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
			},
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Results: ResultsConfig{
			Provider:        string(provider.ProviderGemini),
			Model:           provider.DefaultModel,
			RefreshInterval: Duration(3 * time.Minute),
			FetchTimeout:    Duration(90 * time.Second),
			Locale:          "bn-BD",
			Timezone:        "Asia/Dhaka",
			ManualRefresh: RateConfig{
				Every: Duration(30 * time.Second),
				Burst: 2,
			},
			Messages: Messages{
				TransportError: "সারাদেশের ত্রয়োদশ সংসদ নির্বাচনের সঠিক তথ্য সংগ্রহ করতে সমস্যা হচ্ছে। অনুগ্রহ করে ইন্টারনেট কানেকশন চেক করুন।",
				Degraded:       provider.DefaultDegradedNewsFlash,
			},
		},
		Archive: ArchiveConfig{Schema: "results"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults (a missing file is not an error), then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by CONFIG_PATH (default config.yaml).
//
// Environment variables:
//   - PORT: listen port (default 5050)
//   - GEMINI_API_KEY or API_KEY: Gemini credential (required for gemini)
//   - RESULTS_PROVIDER: "gemini" or "static"
//   - RESULTS_MODEL, RESULTS_PROMPT_FILE, RESULTS_STATIC_PATH
//   - RESULTS_REFRESH_INTERVAL, RESULTS_FETCH_TIMEOUT: durations ("3m", "180")
//   - RESULTS_DEGRADE_ON_TRANSPORT: "true" to never surface transport errors
//   - RESULTS_LOCALE, RESULTS_TIMEZONE
//   - ARCHIVE_DATABASE_URL (falls back to DATABASE_URL): enables the archive
//   - LOG_LEVEL, LOG_DEVELOPMENT
//   - CORS_ALLOWED_ORIGINS: comma separated
func LoadFromEnv() (Config, error) {
	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	if v := env("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	if v := env("GEMINI_API_KEY"); v != "" {
		c.Results.APIKey = v
	} else {
		setString(&c.Results.APIKey, "API_KEY")
	}
	if v := env("RESULTS_PROVIDER"); v != "" {
		c.Results.Provider = strings.ToLower(v)
	}
	setString(&c.Results.Model, "RESULTS_MODEL")
	setString(&c.Results.PromptFile, "RESULTS_PROMPT_FILE")
	setString(&c.Results.StaticPath, "RESULTS_STATIC_PATH")
	setString(&c.Results.Locale, "RESULTS_LOCALE")
	setString(&c.Results.Timezone, "RESULTS_TIMEZONE")

	if err := setDuration(&c.Results.RefreshInterval, "RESULTS_REFRESH_INTERVAL"); err != nil {
		return err
	}
	if err := setDuration(&c.Results.FetchTimeout, "RESULTS_FETCH_TIMEOUT"); err != nil {
		return err
	}
	if err := setBool(&c.Results.DegradeOnTransportError, "RESULTS_DEGRADE_ON_TRANSPORT"); err != nil {
		return err
	}

	if v := env("ARCHIVE_DATABASE_URL"); v != "" {
		c.Archive.DatabaseURL = v
	} else {
		setString(&c.Archive.DatabaseURL, "DATABASE_URL")
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	return setBool(&c.Log.Development, "LOG_DEVELOPMENT")
}

// Validate checks durations, locale and timezone, then the provider settings.
func (c Config) Validate() error {
	if c.Results.RefreshInterval <= 0 {
		return ErrInvalidInterval
	}
	if c.Results.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if _, err := language.Parse(c.Results.Locale); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLocale, c.Results.Locale)
	}
	if _, err := time.LoadLocation(c.Results.Timezone); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Results.Timezone)
	}
	return c.Results.providerConfig("").Validate()
}

// ProviderConfig builds the provider configuration, reading the prompt file
// if one is configured.
func (r ResultsConfig) ProviderConfig() (provider.Config, error) {
	var prompt string
	if r.PromptFile != "" {
		b, err := os.ReadFile(r.PromptFile)
		if err != nil {
			return provider.Config{}, fmt.Errorf("read prompt file: %w", err)
		}
		prompt = strings.TrimSpace(string(b))
	}
	return r.providerConfig(prompt), nil
}

func (r ResultsConfig) providerConfig(prompt string) provider.Config {
	return provider.Config{
		Provider:                provider.ProviderType(r.Provider),
		GeminiKey:               r.APIKey,
		Model:                   r.Model,
		Prompt:                  prompt,
		StaticPath:              r.StaticPath,
		DegradeOnTransportError: r.DegradeOnTransportError,
		DegradedNewsFlash:       r.Messages.Degraded,
	}
}

// Tag returns the parsed display locale, falling back to Bengali.
func (r ResultsConfig) Tag() language.Tag {
	tag, err := language.Parse(r.Locale)
	if err != nil {
		return language.Bengali
	}
	return tag
}

// Location returns the display timezone, falling back to UTC.
func (r ResultsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *Duration, key string) error {
	v := env(key)
	if v == "" {
		return nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = Duration(d)
	return nil
}

func setBool(dst *bool, key string) error {
	v := env(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
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
