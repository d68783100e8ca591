// Package render measures and draws notification popups.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jmylchreest/creak/internal/config"
)

// lineSpacing is the distance between baselines as a multiple of the font
// height.
const lineSpacing = 1.2

// Renderer draws popups for one configuration.
type Renderer struct {
	cfg  *config.Config
	font *truetype.Font
}

// New parses the configured font, falling back to Go Regular when no font
// file is set.
func New(cfg *config.Config) (*Renderer, error) {
	data := goregular.TTF
	if path := cfg.FontFile(); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
		data = b
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Renderer{cfg: cfg, font: f}, nil
}

func (r *Renderer) face(scale int) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    r.cfg.Font.Size * float64(scale),
		DPI:     72,
		Hinting: hinting(r.cfg.Font.Hint),
	})
}

func hinting(h string) font.Hinting {
	switch config.Hint(h) {
	case config.HintVertical:
		return font.HintingVertical
	case config.HintFull:
		return font.HintingFull
	default:
		return font.HintingNone
	}
}

// inset is the distance from the popup edge to the text box.
func (r *Renderer) inset() int {
	return r.cfg.Display.Padding + r.cfg.Display.BorderSize
}

// textWidth is the wrap width for text in a popup of the configured width.
func (r *Renderer) textWidth(logicalWidth int) float64 {
	return math.Max(float64(logicalWidth-2*r.inset()), 1)
}

// Measure returns the logical size of the popup for message: at least the
// configured width, and tall enough for the wrapped text plus padding and
// border on both sides.
func (r *Renderer) Measure(message string) (width, height int) {
	dc := gg.NewContext(1, 1)
	face := r.face(1)
	defer face.Close()
	dc.SetFontFace(face)

	lines := dc.WordWrap(message, r.textWidth(r.cfg.Display.Width))
	textW, textH := dc.MeasureMultilineString(strings.Join(lines, "\n"), lineSpacing)

	frame := 2 * r.inset()
	width = max(r.cfg.Display.Width, int(math.Ceil(textW))+frame)
	height = max(int(math.Ceil(textH))+frame, frame+1)
	return width, height
}

// Render draws message into a new image of logical size width x height at
// the given buffer scale.
func (r *Renderer) Render(message string, width, height, scale int) *image.RGBA {
	scale = max(scale, 1)
	s := float64(scale)
	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	dc := gg.NewContextForRGBA(img)

	d := r.cfg.Display
	border := float64(d.BorderSize) * s
	w := float64(width)*s - border
	h := float64(height)*s - border
	radius := math.Min(float64(d.BorderRadius)*s, math.Min(w/2, h/2))

	dc.DrawRoundedRectangle(border/2, border/2, w, h, radius)
	dc.SetColor(r.cfg.Colors.Background.NRGBA())
	dc.FillPreserve()
	if d.BorderSize > 0 {
		dc.SetLineWidth(border)
		dc.SetColor(r.cfg.Colors.Border.NRGBA())
		dc.Stroke()
	} else {
		dc.ClearPath()
	}

	face := r.face(scale)
	defer face.Close()
	dc.SetFontFace(face)
	dc.SetColor(r.cfg.Colors.Text.NRGBA())

	inset := float64(r.inset()) * s
	dc.DrawStringWrapped(message, inset, inset, 0, 0, r.textWidth(width)*s, lineSpacing, gg.AlignCenter)
	return img
}

// CopyARGB writes img into dst as little-endian ARGB8888 with the given
// row stride. Both formats are alpha-premultiplied.
func CopyARGB(dst []byte, stride int, img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		row := dst[y*stride : y*stride+b.Dx()*4]
		for x := 0; x < len(src); x += 4 {
			row[x+0] = src[x+2]
			row[x+1] = src[x+1]
			row[x+2] = src[x+0]
			row[x+3] = src[x+3]
		}
	}
}

// ARGB returns the pixel of c packed the way CopyARGB stores it, for tests
// and diagnostics.
func ARGB(c color.Color) uint32 {
	r, g, b, a := c.RGBA()
	return (a>>8)<<24 | (r>>8)<<16 | (g>>8)<<8 | b>>8
}
