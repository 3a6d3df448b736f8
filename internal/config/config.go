package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

// Editor holds editing behavior settings.
type Editor struct {
	// QuietIntervalMS is how long a typing burst may pause, in
	// milliseconds, before the open undo batch commits.
	QuietIntervalMS int `toml:"quiet_interval_ms"`

	// MaxUndoEntries bounds the undo timeline.
	MaxUndoEntries int `toml:"max_undo_entries"`

	// MaxDepth bounds block nesting.
	MaxDepth int `toml:"max_depth"`
}

// UI holds appearance settings. Colors are hex strings like "#7aa2f7".
type UI struct {
	Theme         string `toml:"theme"`
	AccentColor   string `toml:"accent_color"`
	CodeColor     string `toml:"code_color"`
	LinkColor     string `toml:"link_color"`
	ShowStatusBar bool   `toml:"show_status_bar"`
}

// Storage holds persistence settings.
type Storage struct {
	AutosaveEnabled    bool `toml:"autosave_enabled"`
	AutosaveIntervalMS int  `toml:"autosave_interval_ms"`
}

// Config is the whole configuration tree.
type Config struct {
	Editor  Editor  `toml:"editor"`
	UI      UI      `toml:"ui"`
	Storage Storage `toml:"storage"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: Editor{
			QuietIntervalMS: 500,
			MaxUndoEntries:  100,
			MaxDepth:        32,
		},
		UI: UI{
			Theme:         "dark",
			AccentColor:   "#7aa2f7",
			CodeColor:     "#9ece6a",
			LinkColor:     "#7dcfff",
			ShowStatusBar: true,
		},
		Storage: Storage{
			AutosaveEnabled:    true,
			AutosaveIntervalMS: 30000,
		},
	}
}

// LoadFile reads TOML configuration from path over the defaults. A missing
// file is not an error; the defaults come back unchanged. The result is
// clamped into valid ranges.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg.Clamped(), nil
}

// envMapping pairs each recognized environment variable with the field it
// overrides.
var envMapping = map[string]func(*Config, string){
	"INKWELL_THEME":                func(c *Config, v string) { c.UI.Theme = v },
	"INKWELL_ACCENT_COLOR":         func(c *Config, v string) { c.UI.AccentColor = v },
	"INKWELL_CODE_COLOR":           func(c *Config, v string) { c.UI.CodeColor = v },
	"INKWELL_LINK_COLOR":           func(c *Config, v string) { c.UI.LinkColor = v },
	"INKWELL_SHOW_STATUS_BAR":      func(c *Config, v string) { setBool(&c.UI.ShowStatusBar, v) },
	"INKWELL_QUIET_INTERVAL_MS":    func(c *Config, v string) { setInt(&c.Editor.QuietIntervalMS, v) },
	"INKWELL_MAX_UNDO_ENTRIES":     func(c *Config, v string) { setInt(&c.Editor.MaxUndoEntries, v) },
	"INKWELL_MAX_DEPTH":            func(c *Config, v string) { setInt(&c.Editor.MaxDepth, v) },
	"INKWELL_AUTOSAVE":             func(c *Config, v string) { setBool(&c.Storage.AutosaveEnabled, v) },
	"INKWELL_AUTOSAVE_INTERVAL_MS": func(c *Config, v string) { setInt(&c.Storage.AutosaveIntervalMS, v) },
}

// FromEnv applies INKWELL_* environment overrides. Unparsable values are
// ignored so a stray variable cannot take the editor down. The result is
// clamped into valid ranges.
func FromEnv(cfg Config) Config {
	for env, apply := range envMapping {
		if v, ok := os.LookupEnv(env); ok {
			apply(&cfg, v)
		}
	}
	return cfg.Clamped()
}

// Load reads the file at path and applies environment overrides on top.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	return FromEnv(cfg), nil
}

// DefaultPath returns the standard config location:
// os.UserConfigDir()/inkwell/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "inkwell", "config.toml"), nil
}

// Clamped returns a copy with every field forced into its valid range, so a
// hand-edited file or a mid-reload surprise degrades instead of breaking the
// session. Unknown themes and unparsable colors fall back to the defaults.
func (c Config) Clamped() Config {
	def := Default()
	if c.Editor.QuietIntervalMS <= 0 {
		c.Editor.QuietIntervalMS = def.Editor.QuietIntervalMS
	}
	if c.Editor.MaxUndoEntries < 2 {
		c.Editor.MaxUndoEntries = def.Editor.MaxUndoEntries
	}
	if c.Editor.MaxDepth <= 0 {
		c.Editor.MaxDepth = def.Editor.MaxDepth
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		c.UI.Theme = def.UI.Theme
	}
	clampColor(&c.UI.AccentColor, def.UI.AccentColor)
	clampColor(&c.UI.CodeColor, def.UI.CodeColor)
	clampColor(&c.UI.LinkColor, def.UI.LinkColor)
	if c.Storage.AutosaveIntervalMS < 1000 {
		c.Storage.AutosaveIntervalMS = def.Storage.AutosaveIntervalMS
	}
	return c
}

// QuietInterval returns the batching pause as a duration.
func (c Config) QuietInterval() time.Duration {
	return time.Duration(c.Editor.QuietIntervalMS) * time.Millisecond
}

// AutosaveInterval returns the autosave period as a duration.
func (c Config) AutosaveInterval() time.Duration {
	return time.Duration(c.Storage.AutosaveIntervalMS) * time.Millisecond
}

func clampColor(s *string, fallback string) {
	if _, err := colorful.Hex(*s); err != nil {
		*s = fallback
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
