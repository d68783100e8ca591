package surface

import (
	"github.com/jmylchreest/creak/internal/config"
	"github.com/jmylchreest/creak/internal/wayland"
)

// Margins are layer surface margins in logical pixels.
type Margins struct {
	Top, Right, Bottom, Left int32
}

// Placement is where and how large the popup is requested.
type Placement struct {
	Anchor  wayland.Anchor
	Margins Margins
	Width   int
	Height  int
}

// Place maps a position to its anchor edges and base margins. Anchored
// edges sit edge pixels from the screen border; the default position hangs
// from the top, centred, defaultOffset pixels down.
func Place(pos config.Position, edge, defaultOffset int) (wayland.Anchor, Margins) {
	e := int32(edge)
	switch pos {
	case config.PositionTopLeft:
		return wayland.AnchorTop | wayland.AnchorLeft, Margins{Top: e, Left: e}
	case config.PositionTop:
		return wayland.AnchorTop, Margins{Top: e}
	case config.PositionTopRight:
		return wayland.AnchorTop | wayland.AnchorRight, Margins{Top: e, Right: e}
	case config.PositionLeft:
		return wayland.AnchorLeft, Margins{Left: e}
	case config.PositionCenter:
		return 0, Margins{}
	case config.PositionRight:
		return wayland.AnchorRight, Margins{Right: e}
	case config.PositionBottomLeft:
		return wayland.AnchorBottom | wayland.AnchorLeft, Margins{Bottom: e, Left: e}
	case config.PositionBottom:
		return wayland.AnchorBottom, Margins{Bottom: e}
	case config.PositionBottomRight:
		return wayland.AnchorBottom | wayland.AnchorRight, Margins{Bottom: e, Right: e}
	default:
		return wayland.AnchorTop, Margins{Top: int32(defaultOffset)}
	}
}

// Stacked returns m pushed offset pixels away from the stacking edge:
// bottom positions grow upwards, everything else grows downwards.
func (m Margins) Stacked(pos config.Position, offset int) Margins {
	if pos.IsBottom() {
		m.Bottom += int32(offset)
	} else {
		m.Top += int32(offset)
	}
	return m
}

// NewPlacement builds the placement for a popup of the given logical size
// at stack offset.
func NewPlacement(cfg *config.Config, width, height, offset int) Placement {
	pos := cfg.ResolvedPosition()
	anchor, margins := Place(pos, cfg.Display.Edge, cfg.Display.DefaultOffset)
	return Placement{
		Anchor:  anchor,
		Margins: margins.Stacked(pos, offset),
		Width:   width,
		Height:  height,
	}
}
