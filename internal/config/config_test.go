package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "default", cfg.Display.Position)
	assert.Equal(t, 350, cfg.Display.Width)
	assert.Equal(t, 10, cfg.Display.Padding)
	assert.Equal(t, 5, cfg.Display.BorderSize)
	assert.Equal(t, 10, cfg.Display.BorderRadius)
	assert.Equal(t, 20, cfg.Display.Edge)
	assert.Equal(t, 250, cfg.Display.DefaultOffset)
	assert.Equal(t, 0, cfg.Display.Scale)
	assert.True(t, cfg.Stack.Enabled)
	assert.Equal(t, 10, cfg.Stack.Gap)
	assert.Equal(t, 5*time.Second, cfg.Behavior.Timeout.Duration())
	assert.Equal(t, Color{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}, cfg.Colors.Background)
	assert.Equal(t, Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, cfg.Colors.Text)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := `
[display]
position = "bottom-right"
width = 420
border_size = 0

[stack]
gap = 4

[font]
size = 14.0
hint = "full"

[colors]
background = "#00000080"
text = "ffcc00"

[behavior]
timeout = "2500ms"

[audio]
volume = 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "bottom-right", cfg.Display.Position)
	assert.Equal(t, 420, cfg.Display.Width)
	assert.Equal(t, 0, cfg.Display.BorderSize)
	assert.Equal(t, 10, cfg.Display.Padding, "unset keys keep defaults")
	assert.Equal(t, 4, cfg.Stack.Gap)
	assert.True(t, cfg.Stack.Enabled)
	assert.Equal(t, 14.0, cfg.Font.Size)
	assert.Equal(t, "full", cfg.Font.Hint)
	assert.Equal(t, Color{A: 0x80}, cfg.Colors.Background)
	assert.Equal(t, Color{R: 0xff, G: 0xcc, A: 0xff}, cfg.Colors.Text)
	assert.Equal(t, 2500*time.Millisecond, cfg.Behavior.Timeout.Duration())
	assert.Equal(t, 40, cfg.Audio.Volume)
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "media.yaml")

	content := `
display:
  position: top-left
  edge: 8
stack:
  enabled: false
behavior:
  timeout: 1500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "top-left", cfg.Display.Position)
	assert.Equal(t, 8, cfg.Display.Edge)
	assert.False(t, cfg.Stack.Enabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.Behavior.Timeout.Duration())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad toml", content: "[display\nwidth = 1"},
		{name: "bad position", content: "[display]\nposition = \"middle\""},
		{name: "bad color", content: "[colors]\ntext = \"#zzzzzz\""},
		{name: "bad duration", content: "[behavior]\ntimeout = \"soon\""},
		{name: "bad volume", content: "[audio]\nvolume = 101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Display.Position = "left"
	cfg.Colors.Border = Color{R: 1, G: 2, B: 3, A: 4}
	cfg.Behavior.Timeout = Duration(90 * time.Second)
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_SaveYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.yaml")

	cfg := DefaultConfig()
	cfg.Display.Position = "bottom-right"
	cfg.Colors.Background = Color{R: 0x20, G: 0x20, B: 0x20, A: 0xe6}
	cfg.Behavior.Timeout = Duration(3 * time.Second)
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "position: bottom-right")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero width", mutate: func(c *Config) { c.Display.Width = 0 }},
		{name: "negative padding", mutate: func(c *Config) { c.Display.Padding = -1 }},
		{name: "negative gap", mutate: func(c *Config) { c.Stack.Gap = -1 }},
		{name: "zero font size", mutate: func(c *Config) { c.Font.Size = 0 }},
		{name: "unknown hint", mutate: func(c *Config) { c.Font.Hint = "slight" }},
		{name: "negative scale", mutate: func(c *Config) { c.Display.Scale = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestStylePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")

	assert.Equal(t, "/cfg/creak/config", StylePath(""))
	assert.Equal(t, "/cfg/creak/alerts", StylePath("alerts"))
	assert.Equal(t, "/tmp/x/style", StylePath("/tmp/x/style"))
	assert.Equal(t, "./local/style", StylePath("./local/style"))
}

func TestFindStyleFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "media")

	_, ok := FindStyleFile(base)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(base+".yaml", []byte("{}"), 0644))
	got, ok := FindStyleFile(base)
	require.True(t, ok)
	assert.Equal(t, base+".yaml", got)

	require.NoError(t, os.WriteFile(base, []byte(""), 0644))
	got, ok = FindStyleFile(base)
	require.True(t, ok)
	assert.Equal(t, base, got, "exact name wins")
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatFor("/x/config"))
	assert.Equal(t, FormatTOML, FormatFor("/x/a.toml"))
	assert.Equal(t, FormatYAML, FormatFor("/x/a.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("/x/a.YML"))
}
