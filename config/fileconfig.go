package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// EnvPreferencesPathKey overrides the default preferences file location.
	EnvPreferencesPathKey = "CHACRAB_PREFERENCES_PATH"

	defaultPreferencesFileName = "preferences.toml"
)

// PreferencesError reports a validation failure in the TOML preferences
// file, naming the offending option.
type PreferencesError struct {
	Opt string
	Err error
}

func (e *PreferencesError) Error() string {
	return "preferences: " + strings.Join([]string{e.Opt, e.Err.Error()}, ": ")
}

func (e *PreferencesError) Unwrap() error { return e.Err }

// Preferences holds desktop-local, non-portable CLI preferences: things
// the JSON sync config deliberately does not cover. Only 'chacrab config
// validate' loads this file; no other command applies its clipboard or
// display settings, and 'show --copy' uses the clipboard package defaults.
//
//nolint:tagalign
type Preferences struct {
	Clipboard *ClipboardConfig `toml:"clipboard" comment:"Clipboard configuration: both copy and paste commands must be either both set or both unset." json:"clipboard"`
	Display   *DisplayConfig   `toml:"display" comment:"CLI display settings; no command applies them." json:"display"`

	path string
}

// ClipboardConfig defines commands used to copy revealed secrets to, and
// paste from, the system clipboard.
//
//nolint:tagalign,tagliatelle
type ClipboardConfig struct {
	CopyCmd  []string `toml:"copy_cmd,commented"  comment:"The command used for copying to the clipboard (default: ['xsel', '-ib'] if not set)" json:"copy_cmd,omitempty"`
	PasteCmd []string `toml:"paste_cmd,commented" comment:"The command used for pasting from the clipboard (default: ['xsel', '-ob'] if not set)" json:"paste_cmd,omitempty"`
}

// DisplayConfig holds CLI output defaults.
//
//nolint:tagalign,tagliatelle
type DisplayConfig struct {
	Quiet   *bool `toml:"quiet,commented" comment:"Suppress non-essential output by default" json:"quiet,omitempty"`
	NoColor *bool `toml:"no_color,commented" comment:"Disable ANSI color by default" json:"no_color,omitempty"`
}

func newPreferences() *Preferences {
	return &Preferences{
		Clipboard: &ClipboardConfig{},
		Display:   &DisplayConfig{},
	}
}

// LoadPreferences loads the preferences file from path, or the default
// location if path is empty. A missing file at the default location is
// not an error; it yields an empty [Preferences].
func LoadPreferences(path string) (*Preferences, error) {
	defaultPath, err := defaultPreferencesPath()
	if err != nil {
		return nil, err
	}

	resolved := cmp.Or(path, defaultPath)

	p, err := parsePreferences(resolved)
	if err != nil {
		if len(path) == 0 && errors.Is(err, fs.ErrNotExist) {
			p = newPreferences()
		} else {
			return nil, err
		}
	} else {
		p.path = resolved
	}

	return p, p.validate()
}

func defaultPreferencesPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("preferences: user config dir: %w", err)
	}

	path := filepath.Join(dir, defaultConfigDirName, defaultPreferencesFileName)
	if p, ok := os.LookupEnv(EnvPreferencesPathKey); ok && len(p) > 0 {
		path = p
	}

	return path, nil
}

func parsePreferences(path string) (*Preferences, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("preferences: stat file: %w", err)
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	p := newPreferences()
	if err := toml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("preferences: parse file: %w", err)
	}

	return p, nil
}

func (p *Preferences) validate() error {
	if p == nil {
		return &PreferencesError{Err: errors.New("cannot validate a nil preferences file")}
	}

	if (len(p.Clipboard.CopyCmd) == 0) != (len(p.Clipboard.PasteCmd) == 0) {
		return &PreferencesError{Opt: "clipboard", Err: errors.New("both 'copy_cmd' and 'paste_cmd' must be set or unset together")}
	}

	return nil
}

// Path returns the file path the preferences were loaded from, or "" if
// none was found.
func (p *Preferences) Path() string { return p.path }

// GenerateDefault renders a commented-out default preferences document,
// for 'chacrab config generate'.
func GenerateDefault() ([]byte, error) {
	return toml.Marshal(newPreferences())
}
