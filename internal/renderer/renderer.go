// Package renderer paints frame states onto RGBA canvases: the slide image
// under its affine transform, the caption panel and the revealed glyphs.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/slides2video/internal/geometry"
	"github.com/ivlev/slides2video/internal/textreveal"
)

// Renderer draws frames for one canvas size and caption style.
type Renderer struct {
	Face         font.Face
	LineHeight   float64
	PanelOpacity float64
	Background   color.Color
	TextColor    color.NRGBA
	// Interpolator scales the slide image; nil means bilinear.
	Interpolator draw.Transformer
}

func New(face font.Face, lineHeight, panelOpacity float64) *Renderer {
	return &Renderer{
		Face:         face,
		LineHeight:   lineHeight,
		PanelOpacity: panelOpacity,
		Background:   color.Black,
		TextColor:    color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Render paints src placed by g with caption st onto dst. dst is fully
// overwritten.
func (r *Renderer) Render(dst *image.RGBA, src image.Image, g geometry.Geometry, st textreveal.State) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)

	sb := src.Bounds()
	if sb.Dx() > 0 && sb.Dy() > 0 {
		sx := g.Width() / float64(sb.Dx())
		sy := g.Height() / float64(sb.Dy())
		// Maps source pixels to canvas pixels.
		s2d := f64.Aff3{
			sx, 0, g.DrawX - sx*float64(sb.Min.X),
			0, sy, g.DrawY - sy*float64(sb.Min.Y),
		}
		r.interpolator().Transform(dst, s2d, src, sb, draw.Over, nil)
	}

	if st.Empty() {
		return
	}
	r.drawPanel(dst, st.Box)
	r.drawText(dst, st.Lines)
}

func (r *Renderer) interpolator() draw.Transformer {
	if r.Interpolator != nil {
		return r.Interpolator
	}
	return draw.BiLinear
}

func (r *Renderer) drawPanel(dst *image.RGBA, b textreveal.Box) {
	rect := image.Rect(round(b.X), round(b.Y), round(b.X+b.W), round(b.Y+b.H)).Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	panel := color.NRGBA{A: uint8(clamp01(r.PanelOpacity) * 255)}
	draw.Draw(dst, rect, image.NewUniform(panel), image.Point{}, draw.Over)
}

// drawText draws glyph by glyph so each letter carries its own alpha. Lines
// are vertically centred in their line box.
func (r *Renderer) drawText(dst *image.RGBA, lines []textreveal.Line) {
	m := r.Face.Metrics()
	textH := fromFixed(m.Ascent + m.Descent)
	baseline := fromFixed(m.Ascent) + (r.LineHeight-textH)/2

	d := &font.Drawer{Dst: dst, Face: r.Face}
	for _, line := range lines {
		d.Dot = fixed.Point26_6{X: toFixed(line.X), Y: toFixed(line.Y + baseline)}
		prev := rune(-1)
		for _, g := range line.Glyphs {
			if prev >= 0 {
				d.Dot.X += r.Face.Kern(prev, g.Rune)
			}
			prev = g.Rune

			c := r.TextColor
			c.A = uint8(clamp01(g.Alpha) * float64(c.A))
			if c.A == 0 {
				adv, _ := r.Face.GlyphAdvance(g.Rune)
				d.Dot.X += adv
				continue
			}
			d.Src = image.NewUniform(c)
			d.DrawString(string(g.Rune))
		}
	}
}

// SavePNG writes img to path. It is used for the optional frame staging.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
