package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/creak/internal/config"
)

func parseShowFlags(t *testing.T, args ...string) (*pflag.FlagSet, *showOptions) {
	t.Helper()
	var o showOptions
	f := pflag.NewFlagSet("creak", pflag.ContinueOnError)
	registerShowFlags(f, &o)
	require.NoError(t, f.Parse(args))
	return f, &o
}

func TestApplyFlags_OnlyChangedOverride(t *testing.T) {
	f, o := parseShowFlags(t, "--width", "400", "--timeout", "1500", "--background", "#102030")

	cfg := config.DefaultConfig()
	cfg.Display.Padding = 33
	require.NoError(t, applyFlags(f, o, cfg))

	assert.Equal(t, 400, cfg.Display.Width)
	assert.Equal(t, 1500*time.Millisecond, cfg.Behavior.Timeout.Duration())
	assert.Equal(t, config.Color{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, cfg.Colors.Background)
	assert.Equal(t, 33, cfg.Display.Padding, "unset flags keep the style value")
	assert.Equal(t, config.DefaultBorderSize, cfg.Display.BorderSize)
}

func TestApplyFlags_ZeroValuesApply(t *testing.T) {
	f, o := parseShowFlags(t, "--border-size", "0", "--timeout", "0", "--no-stack")

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlags(f, o, cfg))

	assert.Equal(t, 0, cfg.Display.BorderSize)
	assert.Equal(t, time.Duration(0), cfg.Behavior.Timeout.Duration())
	assert.False(t, cfg.Stack.Enabled)
}

func TestApplyFlags_Position(t *testing.T) {
	tests := []struct {
		args []string
		want config.Position
	}{
		{[]string{"--top-right"}, config.PositionTopRight},
		{[]string{"--bottom-center"}, config.PositionBottom},
		{[]string{"--top-center"}, config.PositionTop},
		{[]string{"--position", "left"}, config.PositionLeft},
		{nil, config.PositionDefault},
	}

	for _, tt := range tests {
		f, o := parseShowFlags(t, tt.args...)
		cfg := config.DefaultConfig()
		require.NoError(t, applyFlags(f, o, cfg))
		assert.Equal(t, string(tt.want), cfg.Display.Position, tt.args)
	}
}

func TestApplyFlags_ConflictingPositions(t *testing.T) {
	f, o := parseShowFlags(t, "--top-left", "--bottom")
	err := applyFlags(f, o, config.DefaultConfig())
	assert.ErrorContains(t, err, "conflicting position flags")
}

func TestApplyFlags_InvalidColor(t *testing.T) {
	var o showOptions
	f := pflag.NewFlagSet("creak", pflag.ContinueOnError)
	registerShowFlags(f, &o)
	assert.Error(t, f.Parse([]string{"--text", "white"}))
}

func TestApplyFlags_Font(t *testing.T) {
	f, o := parseShowFlags(t, "--font", "~/fonts/x.ttf", "--font-size", "14.5", "--text-hint", "full", "--sound", "/tmp/ding.ogg", "--volume", "40")

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlags(f, o, cfg))

	assert.Equal(t, "~/fonts/x.ttf", cfg.Font.File)
	assert.Equal(t, 14.5, cfg.Font.Size)
	assert.Equal(t, "full", cfg.Font.Hint)
	assert.Equal(t, "/tmp/ding.ogg", cfg.Audio.Sound)
	assert.Equal(t, 40, cfg.Audio.Volume)
	assert.NoError(t, cfg.Validate())
}
