// ABOUTME: Process configuration for crmsync: backend selection, credentials, and tuning
// ABOUTME: Reads an optional JSON file at the XDG path, then .env, then CRMSYNC_* environment overrides
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Backend names accepted by CRMSYNC_BACKEND.
const (
	BackendRemote = "remote"
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
	BackendMock   = "mock"
)

// Config holds every setting the binaries read at startup.
type Config struct {
	// Backend is one of remote, sqlite, charm, mock. Empty selects remote when
	// credentials are present and mock otherwise.
	Backend string `json:"backend"`

	ProjectID   string        `json:"project_id"`
	PublicKey   string        `json:"public_key"`
	APIURL      string        `json:"api_url"`
	HTTPTimeout time.Duration `json:"http_timeout"`

	DBPath   string `json:"db_path"`
	CharmDir string `json:"charm_dir"`

	MockLatencyMin time.Duration `json:"mock_latency_min"`
	MockLatencyMax time.Duration `json:"mock_latency_max"`

	LogLevel string `json:"log_level"`
	Listen   string `json:"listen"`
}

// Dir returns the XDG data directory for crmsync.
func Dir() string {
	return filepath.Join(xdg.DataHome, "crmsync")
}

// Path returns the location of the optional JSON config file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "crmsync", "config.json")
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HTTPTimeout:    30 * time.Second,
		DBPath:         filepath.Join(Dir(), "crm.db"),
		MockLatencyMin: 200 * time.Millisecond,
		MockLatencyMax: 400 * time.Millisecond,
		LogLevel:       "info",
		Listen:         ":8080",
	}
}

// Load builds the configuration. envFiles are passed to godotenv; a missing
// .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	cfg := Default()

	if err := LoadFile(Path(), cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the JSON file at path into cfg. A missing file is not an error.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies CRMSYNC_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CRMSYNC_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("CRMSYNC_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
	}
	if v := os.Getenv("CRMSYNC_PUBLIC_KEY"); v != "" {
		cfg.PublicKey = v
	}
	if v := os.Getenv("CRMSYNC_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("CRMSYNC_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CRMSYNC_CHARM_DIR"); v != "" {
		cfg.CharmDir = v
	}
	if v := os.Getenv("CRMSYNC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CRMSYNC_LISTEN"); v != "" {
		cfg.Listen = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"CRMSYNC_HTTP_TIMEOUT", &cfg.HTTPTimeout},
		{"CRMSYNC_MOCK_LATENCY_MIN", &cfg.MockLatencyMin},
		{"CRMSYNC_MOCK_LATENCY_MAX", &cfg.MockLatencyMax},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// UnmarshalJSON reads durations the same way the environment does: "30s",
// or a bare number of milliseconds. Keys absent from the file keep their
// current values.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		HTTPTimeout    json.RawMessage `json:"http_timeout"`
		MockLatencyMin json.RawMessage `json:"mock_latency_min"`
		MockLatencyMax json.RawMessage `json:"mock_latency_max"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	fields := []struct {
		key string
		raw json.RawMessage
		dst *time.Duration
	}{
		{"http_timeout", aux.HTTPTimeout, &c.HTTPTimeout},
		{"mock_latency_min", aux.MockLatencyMin, &c.MockLatencyMin},
		{"mock_latency_max", aux.MockLatencyMax, &c.MockLatencyMax},
	}
	for _, f := range fields {
		v := strings.TrimSpace(string(f.raw))
		if v == "" || v == "null" {
			continue
		}
		if strings.HasPrefix(v, `"`) {
			if err := json.Unmarshal(f.raw, &v); err != nil {
				return fmt.Errorf("invalid %s: %w", f.key, err)
			}
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = parsed
	}
	return nil
}

// MarshalJSON writes durations in their readable form ("30s").
func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	return json.Marshal(struct {
		plain
		HTTPTimeout    string `json:"http_timeout"`
		MockLatencyMin string `json:"mock_latency_min"`
		MockLatencyMax string `json:"mock_latency_max"`
	}{plain(c), c.HTTPTimeout.String(), c.MockLatencyMin.String(), c.MockLatencyMax.String()})
}

// parseDuration accepts Go durations ("250ms") or bare milliseconds ("250").
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// HasRemoteCredentials reports whether the hosted record service can be used.
func (c *Config) HasRemoteCredentials() bool {
	return c.ProjectID != "" && c.PublicKey != ""
}

// ResolvedBackend returns the backend to open, applying the default rule.
func (c *Config) ResolvedBackend() string {
	if c.Backend != "" {
		return c.Backend
	}
	if c.HasRemoteCredentials() {
		return BackendRemote
	}
	return BackendMock
}

func (c *Config) Validate() error {
	switch c.ResolvedBackend() {
	case BackendRemote:
		if !c.HasRemoteCredentials() {
			return fmt.Errorf("remote backend requires CRMSYNC_PROJECT_ID and CRMSYNC_PUBLIC_KEY")
		}
		if c.APIURL == "" {
			return fmt.Errorf("remote backend requires CRMSYNC_API_URL")
		}
	case BackendSQLite, BackendCharm, BackendMock:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.MockLatencyMin < 0 || c.MockLatencyMax < c.MockLatencyMin {
		return fmt.Errorf("mock latency range %s-%s is invalid", c.MockLatencyMin, c.MockLatencyMax)
	}
	return nil
}

// Save writes the configuration as JSON, readable only by the owner since
// it may carry the public key.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
