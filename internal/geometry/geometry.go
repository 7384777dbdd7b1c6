// Package geometry places a slide image on the canvas for a single frame:
// cover-fit base size, zoom from the effect schedule and the draw offset.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/slides2video/internal/effects"
)

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("image has zero size")

// coverSlack absorbs float rounding when checking canvas coverage.
const coverSlack = 1e-6

// Point is a position in source image pixels.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Geometry fully determines how the source image is drawn for one frame.
type Geometry struct {
	BaseWidth  float64
	BaseHeight float64
	Zoom       float64
	DrawX      float64
	DrawY      float64
}

// Width is the drawn width after zoom.
func (g Geometry) Width() float64 { return g.BaseWidth * g.Zoom }

// Height is the drawn height after zoom.
func (g Geometry) Height() float64 { return g.BaseHeight * g.Zoom }

// Covers reports whether the drawn rectangle fills a w x h canvas.
func (g Geometry) Covers(w, h int) bool {
	return g.DrawX <= coverSlack &&
		g.DrawY <= coverSlack &&
		g.DrawX+g.Width() >= float64(w)-coverSlack &&
		g.DrawY+g.Height() >= float64(h)-coverSlack
}

// Frame is the per-frame input to the planner.
type Frame struct {
	ImageW, ImageH int
	Effect         effects.Kind
	Index          int
	Total          int
	// Focal is the subject centre in source image pixels, if one was found.
	Focal *Point
}

// Planner computes frame geometry for a fixed canvas.
type Planner struct {
	CanvasW, CanvasH int
	Schedule         effects.Schedule
}

// CoverFit scales an image so it fills the canvas, cropping rather than
// letterboxing.
func (p Planner) CoverFit(iw, ih int) (w, h, scale float64, err error) {
	if iw <= 0 || ih <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: %dx%d", ErrEmptyImage, iw, ih)
	}
	scale = math.Max(float64(p.CanvasW)/float64(iw), float64(p.CanvasH)/float64(ih))
	return float64(iw) * scale, float64(ih) * scale, scale, nil
}

// Plan returns the geometry for one frame.
func (p Planner) Plan(f Frame) (Geometry, error) {
	baseW, baseH, scale, err := p.CoverFit(f.ImageW, f.ImageH)
	if err != nil {
		return Geometry{}, err
	}

	g := Geometry{
		BaseWidth:  baseW,
		BaseHeight: baseH,
		Zoom:       p.Schedule.Zoom(f.Effect, f.Index, f.Total),
	}

	zw, zh := g.Width(), g.Height()
	cw, ch := float64(p.CanvasW), float64(p.CanvasH)

	if f.Effect.PansToFocus() && f.Focal != nil {
		// Zoom is applied around the image origin, so the focal point lands
		// at focal*scale*zoom inside the drawn rectangle.
		g.DrawX = clamp(cw/2-f.Focal.X*scale*g.Zoom, cw-zw, 0)
		g.DrawY = clamp(ch/2-f.Focal.Y*scale*g.Zoom, ch-zh, 0)
		return g, nil
	}

	g.DrawX = (cw - zw) / 2
	g.DrawY = (ch - zh) / 2
	return g, nil
}

// clamp bounds v to [lo, hi]. When the drawn image is smaller than the
// canvas (lo > hi) the image is centred.
func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
