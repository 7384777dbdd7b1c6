// Package timeline expands one slide into the ordered frame states handed to
// the frame renderer.
package timeline

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/ivlev/slides2video/internal/effects"
	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/geometry"
	"github.com/ivlev/slides2video/internal/textreveal"
)

// Slide is a resolved slide entry: defaults applied, values validated.
type Slide struct {
	Image      string
	Text       string
	Duration   float64
	Effect     effects.Kind
	Focus      string
	TextReveal float64
}

// FrameCount is duration x fps rounded to the nearest frame.
func FrameCount(duration float64, fps int) int {
	return int(math.Round(duration * float64(fps)))
}

// SnapDuration rounds duration to the frame grid.
func SnapDuration(duration float64, fps int) float64 {
	return float64(FrameCount(duration, fps)) / float64(fps)
}

// Clip is a slide together with what the loader and detector found out
// about its image.
type Clip struct {
	Index          int
	Slide          Slide
	ImageW, ImageH int
	Focal          *geometry.Point
}

// FrameState is everything the renderer needs to paint one frame.
type FrameState struct {
	Index    int
	Geometry geometry.Geometry
	Reveal   textreveal.State
}

// ClipDescriptor names the clip file materialised for a slide.
type ClipDescriptor struct {
	SlideIndex int     `yaml:"slide"`
	FrameCount int     `yaml:"frames"`
	Duration   float64 `yaml:"duration"`
	OutputPath string  `yaml:"output"`
}

// Describe returns the clip descriptor for slide index inside dir.
func Describe(index int, s Slide, fps int, dir string) ClipDescriptor {
	frames := FrameCount(s.Duration, fps)
	return ClipDescriptor{
		SlideIndex: index,
		FrameCount: frames,
		Duration:   float64(frames) / float64(fps),
		OutputPath: filepath.Join(dir, fmt.Sprintf("clip%03d.mp4", index)),
	}
}

// Compiler builds frame sequences for a fixed canvas, frame rate and font.
type Compiler struct {
	FPS      int
	Geometry geometry.Planner
	Text     textreveal.Planner
}

// Build returns exactly FrameCount(duration, fps) frame states for clip.
// The result is fully materialised; calling Build again yields the same
// sequence.
func (c Compiler) Build(clip Clip) ([]FrameState, error) {
	total := FrameCount(clip.Slide.Duration, c.FPS)
	if total <= 0 {
		return nil, errs.Config(clip.Index, "duration %.3fs yields no frames at %d fps", clip.Slide.Duration, c.FPS)
	}

	if _, _, _, err := c.Geometry.CoverFit(clip.ImageW, clip.ImageH); err != nil {
		return nil, errs.Asset(clip.Index, "cover fit", err)
	}

	reveal, err := c.Text.Prepare(clip.Slide.Text, clip.Slide.TextReveal, total)
	if err != nil {
		return nil, errs.Config(clip.Index, "caption: %v", err)
	}

	frames := make([]FrameState, total)
	for i := range frames {
		g, err := c.Geometry.Plan(geometry.Frame{
			ImageW: clip.ImageW,
			ImageH: clip.ImageH,
			Effect: clip.Slide.Effect,
			Index:  i,
			Total:  total,
			Focal:  clip.Focal,
		})
		if err != nil {
			return nil, errs.Asset(clip.Index, "plan geometry", err)
		}
		frames[i] = FrameState{Index: i, Geometry: g, Reveal: reveal.At(i)}
	}
	return frames, nil
}

// Durations returns the frame-snapped durations of slides in order.
func Durations(slides []Slide, fps int) []float64 {
	out := make([]float64, len(slides))
	for i, s := range slides {
		out[i] = SnapDuration(s.Duration, fps)
	}
	return out
}
