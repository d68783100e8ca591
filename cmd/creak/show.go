package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/creak/internal/alert"
	"github.com/jmylchreest/creak/internal/audio"
	"github.com/jmylchreest/creak/internal/config"
	"github.com/jmylchreest/creak/internal/ledger"
	"github.com/jmylchreest/creak/internal/style"
)

// positionFlags maps the shorthand position flags onto positions.
var positionFlags = []struct {
	name     string
	position config.Position
}{
	{"top-left", config.PositionTopLeft},
	{"top", config.PositionTop},
	{"top-center", config.PositionTop},
	{"top-right", config.PositionTopRight},
	{"left", config.PositionLeft},
	{"center", config.PositionCenter},
	{"right", config.PositionRight},
	{"bottom-left", config.PositionBottomLeft},
	{"bottom", config.PositionBottom},
	{"bottom-center", config.PositionBottom},
	{"bottom-right", config.PositionBottomRight},
}

// showOptions holds flag values. Only flags the user set override the style.
type showOptions struct {
	style string
	name  string
	class string

	position      string
	width         int
	padding       int
	borderSize    int
	borderRadius  int
	edge          int
	defaultOffset int
	scale         int
	stackGap      int
	stack         bool
	noStack       bool

	font     string
	fontSize float64
	textHint string

	background config.Color
	text       config.Color
	border     config.Color

	timeout config.Duration

	sound  string
	volume int
}

var showOpts showOptions

func init() {
	registerShowFlags(rootCmd.Flags(), &showOpts)
	rootCmd.MarkFlagsMutuallyExclusive("stack", "no-stack")
}

// registerShowFlags defines the popup flags on f, bound to o.
func registerShowFlags(f *pflag.FlagSet, o *showOptions) {
	f.SortFlags = false

	f.StringVar(&o.style, "style", "",
		"Style name in ~/.config/creak, bundled style, or path to a style file")
	f.StringVar(&o.name, "name", "", "Name recorded in the stack, used by 'clear by name'")
	f.StringVar(&o.class, "class", "", "Class recorded in the stack, used by 'clear by class'")

	for _, p := range positionFlags {
		f.Bool(p.name, false, fmt.Sprintf("Anchor the popup %s", p.position))
	}
	f.StringVar(&o.position, "position", "",
		"Anchor position (top-left, top, top-right, left, center, right, bottom-left, bottom, bottom-right, default)")

	f.Var(&o.timeout, "timeout", "Time before the popup closes, e.g. 5s or milliseconds (0 closes at once)")
	f.IntVar(&o.width, "width", 0, "Minimum popup width in pixels")
	f.StringVar(&o.font, "font", "", "TrueType font file")
	f.Float64Var(&o.fontSize, "font-size", 0, "Font size in points")
	f.StringVar(&o.textHint, "text-hint", "", "Glyph hinting (default, none, vertical, full)")
	f.IntVar(&o.padding, "padding", 0, "Space between border and text in pixels")
	f.IntVar(&o.borderSize, "border-size", 0, "Border width in pixels (0 disables)")
	f.IntVar(&o.borderRadius, "border-radius", 0, "Corner radius in pixels")
	f.Var(&o.background, "background", "Background colour #RRGGBB[AA]")
	f.Var(&o.text, "text", "Text colour #RRGGBB[AA]")
	f.Var(&o.border, "border", "Border colour #RRGGBB[AA]")
	f.IntVar(&o.edge, "edge", 0, "Margin from the anchored screen edges in pixels")
	f.IntVar(&o.defaultOffset, "default-offset", 0, "Top margin for the default position in pixels")
	f.IntVar(&o.stackGap, "stack-gap", 0, "Space between stacked popups in pixels")
	f.BoolVar(&o.stack, "stack", false, "Stack below other popups at the same position")
	f.BoolVar(&o.noStack, "no-stack", false, "Ignore other popups")
	f.IntVar(&o.scale, "scale", 0, "Buffer scale (0 = follow the output)")
	f.StringVar(&o.sound, "sound", "", "Sound file played when the popup appears (wav, ogg, mp3)")
	f.IntVar(&o.volume, "volume", 0, "Sound volume 0-100")
}

func runShow(cmd *cobra.Command, args []string) error {
	st, err := style.Load(showOpts.style, logger)
	if err != nil {
		return fmt.Errorf("failed to load style: %w", err)
	}
	cfg := st.Config

	if err := applyFlags(cmd.Flags(), &showOpts, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("resolved configuration", "style", st.Name, "source", st.Source, "position", cfg.Display.Position)

	var store *ledger.Store
	if cfg.Stack.Enabled {
		store, err = openStore()
		if err != nil {
			logger.Warn("failed to open stack, showing unstacked", "error", err)
			store = nil
		}
	}

	stopping, stopSignals := alert.WatchSignals(logger)
	defer stopSignals()

	player := audio.NewPlayer(logger)
	defer player.Close()

	runner := &alert.Runner{
		Config:   cfg,
		Store:    store,
		Player:   player,
		Stopping: stopping,
		Logger:   logger,
	}
	reason, err := runner.Show(context.Background(), alert.Notification{
		Message: alert.Message(args[0], args[1:]),
		Name:    showOpts.name,
		Class:   showOpts.class,
	})
	if err != nil {
		return err
	}
	logger.Debug("popup finished", "reason", reason)
	return nil
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(flags *pflag.FlagSet, o *showOptions, cfg *config.Config) error {
	var chosen []string
	for _, p := range positionFlags {
		if on, _ := flags.GetBool(p.name); on {
			chosen = append(chosen, "--"+p.name)
			cfg.Display.Position = string(p.position)
		}
	}
	if flags.Changed("position") {
		chosen = append(chosen, "--position")
		cfg.Display.Position = o.position
	}
	if len(chosen) > 1 {
		return fmt.Errorf("conflicting position flags: %v", chosen)
	}

	setInt := func(name string, dst *int, v int) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setInt("width", &cfg.Display.Width, o.width)
	setInt("padding", &cfg.Display.Padding, o.padding)
	setInt("border-size", &cfg.Display.BorderSize, o.borderSize)
	setInt("border-radius", &cfg.Display.BorderRadius, o.borderRadius)
	setInt("edge", &cfg.Display.Edge, o.edge)
	setInt("default-offset", &cfg.Display.DefaultOffset, o.defaultOffset)
	setInt("scale", &cfg.Display.Scale, o.scale)
	setInt("stack-gap", &cfg.Stack.Gap, o.stackGap)
	setInt("volume", &cfg.Audio.Volume, o.volume)

	if flags.Changed("stack") {
		cfg.Stack.Enabled = o.stack
	}
	if flags.Changed("no-stack") {
		cfg.Stack.Enabled = !o.noStack
	}

	if flags.Changed("font") {
		cfg.Font.File = o.font
	}
	if flags.Changed("font-size") {
		cfg.Font.Size = o.fontSize
	}
	if flags.Changed("text-hint") {
		cfg.Font.Hint = o.textHint
	}
	if flags.Changed("background") {
		cfg.Colors.Background = o.background
	}
	if flags.Changed("text") {
		cfg.Colors.Text = o.text
	}
	if flags.Changed("border") {
		cfg.Colors.Border = o.border
	}
	if flags.Changed("timeout") {
		cfg.Behavior.Timeout = o.timeout
	}
	if flags.Changed("sound") {
		cfg.Audio.Sound = o.sound
	}
	return nil
}
