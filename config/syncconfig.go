// Package config persists two distinct documents: the portable JSON sync
// configuration written by 'chacrab init' ({backend, database_url,
// session_timeout_secs}), and a desktop-local TOML preferences file for
// clipboard commands and CLI display defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	// EnvConfigPathKey overrides the default sync config file location.
	EnvConfigPathKey = "CHACRAB_CONFIG_PATH"

	defaultConfigDirName  = "chacrab"
	defaultConfigFileName = "config.json"

	DefaultSessionTimeoutSecs = 300
)

// SyncConfig is the persisted, spec-mandated sync configuration document.
//
//nolint:tagliatelle
type SyncConfig struct {
	Backend            string `json:"backend"`
	DatabaseURL        string `json:"database_url"`
	SessionTimeoutSecs int    `json:"session_timeout_secs"`
}

// SessionTimeout returns the configured session inactivity timeout as a
// [time.Duration].
func (c SyncConfig) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSecs) * time.Second
}

// Path resolves the sync config file location: an explicit override, then
// CHACRAB_CONFIG_PATH, then the XDG-style default.
func Path(override string) (string, error) {
	if len(override) > 0 {
		return override, nil
	}

	if p, ok := os.LookupEnv(EnvConfigPathKey); ok && len(p) > 0 {
		return p, nil
	}

	return defaultPath()
}

func defaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: user config dir: %w", err)
	}

	return filepath.Join(dir, defaultConfigDirName, defaultConfigFileName), nil
}

// Load reads and parses the sync config at path. A missing file is not an
// error; it returns (nil, nil) so callers can distinguish "not yet
// initialized" from a parse failure.
func Load(path string) (*SyncConfig, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("config: read file: %w", err)
	}

	var c SyncConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	return &c, nil
}

// Save writes c to path as indented JSON, creating parent directories as
// needed. The file is written with owner-only permissions since
// database_url may embed credentials.
func Save(path string, c SyncConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("config: write file: %w", err)
	}

	return nil
}
