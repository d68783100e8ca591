// Package config handles the resolved notification configuration and the
// style files it is loaded from.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultWidth         = 350
	DefaultPadding       = 10
	DefaultBorderSize    = 5
	DefaultBorderRadius  = 10
	DefaultEdge          = 20
	DefaultOffset        = 250
	DefaultStackGap      = 10
	DefaultFontSize      = 25
	DefaultTimeout       = 5 * time.Second
	DefaultVolume        = 100
	DefaultBackground    = "#1a1a1a"
	DefaultTextColor     = "#ffffff"
	DefaultBorderColor   = "#ffffff"
	defaultStyleFileName = "config"
)

// Config is a fully resolved notification configuration.
type Config struct {
	Display  DisplayConfig  `toml:"display" yaml:"display"`
	Stack    StackConfig    `toml:"stack" yaml:"stack"`
	Font     FontConfig     `toml:"font" yaml:"font"`
	Colors   ColorConfig    `toml:"colors" yaml:"colors"`
	Behavior BehaviorConfig `toml:"behavior" yaml:"behavior"`
	Audio    AudioConfig    `toml:"audio" yaml:"audio"`
}

// DisplayConfig contains geometry settings, in logical pixels.
type DisplayConfig struct {
	Position      string `toml:"position" yaml:"position"`             // top-left, top, ..., default
	Width         int    `toml:"width" yaml:"width"`                   // Minimum popup width
	Padding       int    `toml:"padding" yaml:"padding"`               // Space between border and text
	BorderSize    int    `toml:"border_size" yaml:"border_size"`       // 0 disables the border
	BorderRadius  int    `toml:"border_radius" yaml:"border_radius"`   // Corner radius
	Edge          int    `toml:"edge" yaml:"edge"`                     // Margin from anchored edges
	DefaultOffset int    `toml:"default_offset" yaml:"default_offset"` // Top margin for the default position
	Scale         int    `toml:"scale" yaml:"scale"`                   // Buffer scale, 0 = follow the output
}

// StackConfig contains stacking settings.
type StackConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	Gap     int  `toml:"gap" yaml:"gap"` // Space after each stacked popup
}

// FontConfig contains text settings.
type FontConfig struct {
	File string  `toml:"file" yaml:"file"` // TrueType file, empty = built-in face
	Size float64 `toml:"size" yaml:"size"` // Points, ignored for the built-in face
	Hint string  `toml:"hint" yaml:"hint"` // default, none, vertical, full
}

// ColorConfig contains popup colours.
type ColorConfig struct {
	Background Color `toml:"background" yaml:"background"`
	Text       Color `toml:"text" yaml:"text"`
	Border     Color `toml:"border" yaml:"border"`
}

// BehaviorConfig contains lifetime settings.
type BehaviorConfig struct {
	Timeout Duration `toml:"timeout" yaml:"timeout"` // "0" closes the popup at once
}

// AudioConfig contains sound settings.
type AudioConfig struct {
	Sound  string `toml:"sound" yaml:"sound"`   // Sound file played on show, empty = silent
	Volume int    `toml:"volume" yaml:"volume"` // 0-100
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Position:      string(PositionDefault),
			Width:         DefaultWidth,
			Padding:       DefaultPadding,
			BorderSize:    DefaultBorderSize,
			BorderRadius:  DefaultBorderRadius,
			Edge:          DefaultEdge,
			DefaultOffset: DefaultOffset,
			Scale:         0,
		},
		Stack: StackConfig{
			Enabled: true,
			Gap:     DefaultStackGap,
		},
		Font: FontConfig{
			Size: DefaultFontSize,
			Hint: string(HintDefault),
		},
		Colors: ColorConfig{
			Background: MustColor(DefaultBackground),
			Text:       MustColor(DefaultTextColor),
			Border:     MustColor(DefaultBorderColor),
		},
		Behavior: BehaviorConfig{
			Timeout: Duration(DefaultTimeout),
		},
		Audio: AudioConfig{
			Volume: DefaultVolume,
		},
	}
}

// ConfigDir returns the creak config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "creak")
}

// StylePath maps a --style value onto a file: empty selects the default
// config file, a value containing '/' is a path, anything else is a name in
// the config directory.
func StylePath(style string) string {
	switch {
	case style == "":
		return filepath.Join(ConfigDir(), defaultStyleFileName)
	case strings.Contains(style, "/"):
		return expandPath(style)
	default:
		return filepath.Join(ConfigDir(), style)
	}
}

// FindStyleFile returns the first existing file among path and path with a
// .toml, .yaml or .yml extension.
func FindStyleFile(path string) (string, bool) {
	for _, candidate := range []string{path, path + ".toml", path + ".yaml", path + ".yml"} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Format is a style file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from the file extension. Files without a
// recognised extension are TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Decode overlays a style document onto cfg.
func Decode(cfg *Config, data []byte, format Format) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse yaml style: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse toml style: %w", err)
		}
	}
	return nil
}

// LoadConfig loads configuration from the specified path.
// Returns the default config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read style file: %w", err)
	}

	if err := Decode(cfg, data, FormatFor(path)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Encode renders cfg as a style document.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		return toml.Marshal(cfg)
	}
}

// Save writes the configuration in the encoding implied by path's
// extension, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Encode(c, FormatFor(path))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParsePosition(c.Display.Position); err != nil {
		return err
	}

	if c.Display.Width < 1 {
		return fmt.Errorf("width must be at least 1, got %d", c.Display.Width)
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"padding", c.Display.Padding},
		{"border_size", c.Display.BorderSize},
		{"border_radius", c.Display.BorderRadius},
		{"edge", c.Display.Edge},
		{"default_offset", c.Display.DefaultOffset},
		{"scale", c.Display.Scale},
		{"stack gap", c.Stack.Gap},
	} {
		if f.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", f.name, f.value)
		}
	}

	if c.Font.Size <= 0 {
		return fmt.Errorf("font size must be positive, got %g", c.Font.Size)
	}
	validHint := false
	for _, h := range ValidHints() {
		if c.Font.Hint == string(h) {
			validHint = true
			break
		}
	}
	if !validHint {
		return fmt.Errorf("invalid text hint %q, must be one of: %v", c.Font.Hint, ValidHints())
	}

	if c.Behavior.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Behavior.Timeout)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	return nil
}

// ResolvedPosition returns the validated display position.
func (c *Config) ResolvedPosition() Position {
	p, err := ParsePosition(c.Display.Position)
	if err != nil {
		return PositionDefault
	}
	return p
}

// FontFile returns the font path with ~ expanded.
func (c *Config) FontFile() string {
	return expandPath(c.Font.File)
}

// SoundFile returns the sound path with ~ expanded.
func (c *Config) SoundFile() string {
	return expandPath(c.Audio.Sound)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
