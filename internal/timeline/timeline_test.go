package timeline

import (
	"errors"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/slides2video/internal/effects"
	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/geometry"
	"github.com/ivlev/slides2video/internal/textreveal"
)

type monoMeasurer float64

func (m monoMeasurer) Measure(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * float64(m)
}

func testCompiler(fps int) Compiler {
	return Compiler{
		FPS: fps,
		Geometry: geometry.Planner{
			CanvasW:  1280,
			CanvasH:  720,
			Schedule: effects.Schedule{Rate: 0.0015, OutStart: 1.15},
		},
		Text: textreveal.Planner{
			Measurer: monoMeasurer(18),
			FPS:      fps,
			Layout: textreveal.Layout{
				CanvasW: 1280, CanvasH: 720,
				MaxWidth: 1120, LineHeight: 50, Padding: 20, BottomMargin: 50, FadeWindow: 0.5,
			},
		},
	}
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 100, FrameCount(4, 25))
	assert.Equal(t, 38, FrameCount(1.5, 25))
	assert.Equal(t, 90, FrameCount(3, 30))
	assert.InDelta(t, 1.52, SnapDuration(1.5, 25), 1e-12)
	assert.Equal(t, []float64{4, 4}, Durations([]Slide{{Duration: 4}, {Duration: 4}}, 25))
}

func TestBuildYieldsEveryFrame(t *testing.T) {
	c := testCompiler(25)
	for _, slide := range []Slide{
		{Image: "a.png", Text: "Hello world", Duration: 4, Effect: effects.ZoomIn, TextReveal: 2},
		{Image: "b.png", Text: "", Duration: 4, Effect: effects.ZoomOut},
		{Image: "c.png", Text: "Focus", Duration: 2.2, Effect: effects.Focus, TextReveal: 1},
	} {
		frames, err := c.Build(Clip{Slide: slide, ImageW: 1920, ImageH: 1080, Focal: &geometry.Point{X: 800, Y: 400}})
		require.NoError(t, err)
		require.Len(t, frames, FrameCount(slide.Duration, 25))
		for i, f := range frames {
			assert.Equal(t, i, f.Index)
			assert.True(t, f.Geometry.Covers(1280, 720))
		}
	}
}

func TestBuildIsRestartable(t *testing.T) {
	c := testCompiler(25)
	clip := Clip{
		Slide:  Slide{Text: "Hello world", Duration: 4, Effect: effects.ZoomOut, TextReveal: 2},
		ImageW: 800, ImageH: 600,
	}
	first, err := c.Build(clip)
	require.NoError(t, err)
	second, err := c.Build(clip)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, "Hello", first[25].Reveal.VisibleText)
	assert.InDelta(t, 1.15, first[0].Geometry.Zoom, 1e-12)
	assert.InDelta(t, 1.0, first[99].Geometry.Zoom, 1e-12)
}

func TestBuildErrors(t *testing.T) {
	c := testCompiler(25)

	_, err := c.Build(Clip{Index: 3, Slide: Slide{Duration: 0.01}, ImageW: 10, ImageH: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfig))
	assert.Equal(t, 3, errs.SlideOf(err))

	_, err = c.Build(Clip{Index: 1, Slide: Slide{Duration: 4, Text: "caption"}, ImageW: 10, ImageH: 10})
	assert.True(t, errors.Is(err, errs.ErrConfig), "missing reveal time")

	_, err = c.Build(Clip{Index: 2, Slide: Slide{Duration: 4}, ImageW: 0, ImageH: 10})
	assert.True(t, errors.Is(err, errs.ErrAsset))
}

func TestDescribe(t *testing.T) {
	d := Describe(2, Slide{Duration: 4}, 25, "clips")
	assert.Equal(t, ClipDescriptor{SlideIndex: 2, FrameCount: 100, Duration: 4, OutputPath: filepath.Join("clips", "clip002.mp4")}, d)
}
