package config

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML and YAML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	// Integer milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return fmt.Errorf("invalid duration %q: must not be negative", s)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	if dur < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Set implements pflag.Value so durations can be passed on the command line.
func (d *Duration) Set(s string) error { return d.UnmarshalText([]byte(s)) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// Type implements pflag.Value.
func (d *Duration) Type() string { return "duration" }

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int64 {
	return time.Duration(d).Milliseconds()
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Color is an sRGB colour with straight alpha, written as #RRGGBB or
// #RRGGBBAA.
type Color struct {
	R, G, B, A uint8
}

// ParseColor parses a hex colour. The leading '#' is optional.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c := Color{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// MustColor is ParseColor for literals known to be valid.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// String returns #RRGGBB, or #RRGGBBAA when not opaque.
func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Set implements pflag.Value.
func (c *Color) Set(s string) error { return c.UnmarshalText([]byte(s)) }

// Type implements pflag.Value.
func (c *Color) Type() string { return "color" }

// NRGBA returns the colour for image/color consumers.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Position is a named screen anchor. Notifications only stack against
// others sharing the same position.
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTop         Position = "top"
	PositionTopRight    Position = "top-right"
	PositionLeft        Position = "left"
	PositionCenter      Position = "center"
	PositionRight       Position = "right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottom      Position = "bottom"
	PositionBottomRight Position = "bottom-right"
	PositionDefault     Position = "default"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTop,
		PositionTopRight,
		PositionLeft,
		PositionCenter,
		PositionRight,
		PositionBottomLeft,
		PositionBottom,
		PositionBottomRight,
		PositionDefault,
	}
}

// positionAliases maps accepted spellings onto canonical positions.
var positionAliases = map[string]Position{
	"top-center":    PositionTop,
	"bottom-center": PositionBottom,
}

// ParsePosition validates a position name.
func ParsePosition(s string) (Position, error) {
	if p, ok := positionAliases[s]; ok {
		return p, nil
	}
	for _, p := range ValidPositions() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid position %q, must be one of: %v", s, ValidPositions())
}

// IsBottom reports whether the position stacks upwards from the bottom edge.
func (p Position) IsBottom() bool {
	return p == PositionBottomLeft || p == PositionBottom || p == PositionBottomRight
}

// Hint is the glyph hinting mode.
type Hint string

const (
	HintDefault  Hint = "default"
	HintNone     Hint = "none"
	HintVertical Hint = "vertical"
	HintFull     Hint = "full"
)

// ValidHints returns all valid hint values.
func ValidHints() []Hint {
	return []Hint{HintDefault, HintNone, HintVertical, HintFull}
}
