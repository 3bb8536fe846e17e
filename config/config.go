/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads client and record store settings from defaults, a YAML
// file, a .env file and the process environment, in increasing precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	terrors "github.com/suparena/typedmodel/errors"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes the client settings in the environment.
	EnvPrefix = "NOTION_"

	DefaultTimeoutMS = 60_000
	MinTimeoutMS     = 30_000
	DefaultBaseURL   = "https://api.notion.com"
	DefaultVersion   = "2022-06-28"
)

// Secret is a string that never prints its value.
type Secret string

const redacted = "**********"

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// Reveal returns the secret value.
func (s Secret) Reveal() string {
	return string(s)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Secret) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Settings configures the API client.
type Settings struct {
	TimeoutMS int    `yaml:"timeout_ms" json:"timeout_ms"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Version   string `yaml:"version" json:"version"`
	Token     Secret `yaml:"token" json:"token"`
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() Settings {
	return Settings{
		TimeoutMS: DefaultTimeoutMS,
		BaseURL:   DefaultBaseURL,
		Version:   DefaultVersion,
	}
}

// Timeout returns TimeoutMS as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

func (s Settings) Validate() error {
	if s.TimeoutMS < MinTimeoutMS {
		return terrors.NewValidationError("timeout_ms", fmt.Sprintf("must be at least %d", MinTimeoutMS))
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return terrors.NewValidationError("base_url", fmt.Sprintf("%q is not an http or https URL", s.BaseURL))
	}
	if s.Version == "" {
		return terrors.NewValidationError("version", "must not be empty")
	}
	return nil
}

// StoreSettings configures the DynamoDB record store.
type StoreSettings struct {
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey Secret `yaml:"secret_key" json:"secret_key"`
	Region    string `yaml:"region" json:"region"`
	Table     string `yaml:"table" json:"table"`
}

func (s StoreSettings) Validate() error {
	switch {
	case s.AccessKey == "":
		return terrors.NewValidationError("access_key", "must not be empty")
	case s.SecretKey == "":
		return terrors.NewValidationError("secret_key", "must not be empty")
	case s.Region == "":
		return terrors.NewValidationError("region", "must not be empty")
	case s.Table == "":
		return terrors.NewValidationError("table", "must not be empty")
	}
	return nil
}

// Config is the full configuration document.
type Config struct {
	Notion Settings      `yaml:"notion" json:"notion"`
	Store  StoreSettings `yaml:"store" json:"store"`
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	file    string
	envFile string
	environ func() []string
}

// WithFile reads a YAML configuration file. The file must exist.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithEnvFile reads a .env file. A missing file is ignored.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = path
	}
}

// WithEnviron replaces the process environment, given as KEY=VALUE pairs.
func WithEnviron(environ []string) Option {
	return func(l *loader) {
		l.environ = func() []string { return environ }
	}
}

// Load builds a Config and validates its client settings. Store settings are
// validated by the caller when a store is opened.
func Load(opts ...Option) (*Config, error) {
	l := loader{envFile: ".env", environ: os.Environ}
	for _, opt := range opts {
		opt(&l)
	}

	cfg := &Config{Notion: DefaultSettings()}

	if l.file != "" {
		data, err := os.ReadFile(l.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", l.file, err)
		}
	}

	env, err := l.env()
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}

	if err := cfg.Notion.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// env merges the .env file with the environment, the environment winning.
// Keys are upper-cased.
func (l loader) env() (map[string]string, error) {
	env := make(map[string]string)
	if l.envFile != "" {
		values, err := godotenv.Read(l.envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", l.envFile, err)
		}
		for k, v := range values {
			env[strings.ToUpper(k)] = v
		}
	}
	for _, kv := range l.environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[strings.ToUpper(k)] = v
		}
	}
	return env, nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	if v, ok := env[EnvPrefix+"TIMEOUT_MS"]; ok {
		ms, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return terrors.NewValidationError("timeout_ms", fmt.Sprintf("%q is not an integer", v))
		}
		cfg.Notion.TimeoutMS = ms
	}
	if v, ok := env[EnvPrefix+"BASE_URL"]; ok {
		cfg.Notion.BaseURL = v
	}
	if v, ok := env[EnvPrefix+"VERSION"]; ok {
		cfg.Notion.Version = v
	}
	if v, ok := env[EnvPrefix+"TOKEN"]; ok {
		cfg.Notion.Token = Secret(v)
	}

	if v, ok := env["AWS_ACCESS_KEY"]; ok {
		cfg.Store.AccessKey = v
	}
	if v, ok := env["AWS_SECRET_KEY"]; ok {
		cfg.Store.SecretKey = Secret(v)
	}
	if v, ok := env["AWS_REGION"]; ok {
		cfg.Store.Region = v
	}
	if v, ok := env["AWS_DDB_TABLE"]; ok {
		cfg.Store.Table = v
	}
	return nil
}
