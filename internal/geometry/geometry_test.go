package geometry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/slides2video/internal/effects"
)

func testPlanner() Planner {
	return Planner{
		CanvasW:  1280,
		CanvasH:  720,
		Schedule: effects.Schedule{Rate: 0.0015, OutStart: 1.15},
	}
}

func TestCoverFit(t *testing.T) {
	p := testPlanner()

	tests := []struct {
		name         string
		iw, ih       int
		wantW, wantH float64
	}{
		{"same aspect", 640, 360, 1280, 720},
		{"portrait crops height", 720, 1280, 1280, 1280 * 1280.0 / 720},
		{"wide crops width", 4000, 1000, 720 * 4.0, 720},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, _, err := p.CoverFit(tt.iw, tt.ih)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantW, w, 1e-9)
			assert.InDelta(t, tt.wantH, h, 1e-9)
			assert.GreaterOrEqual(t, w, 1280.0-1e-9)
			assert.GreaterOrEqual(t, h, 720.0-1e-9)
		})
	}

	_, _, _, err := p.CoverFit(0, 10)
	assert.True(t, errors.Is(err, ErrEmptyImage))
}

func TestPlanAlwaysCoversCanvas(t *testing.T) {
	p := testPlanner()
	sizes := [][2]int{{640, 360}, {720, 1280}, {4000, 1000}, {333, 777}}
	focals := []*Point{nil, {X: 0, Y: 0}, {X: 10000, Y: 10000}, {X: 100, Y: 300}}
	const total = 100

	for _, kind := range []effects.Kind{effects.None, effects.ZoomIn, effects.ZoomOut, effects.Focus} {
		for _, size := range sizes {
			for _, focal := range focals {
				for i := 0; i < total; i++ {
					g, err := p.Plan(Frame{ImageW: size[0], ImageH: size[1], Effect: kind, Index: i, Total: total, Focal: focal})
					require.NoError(t, err)
					require.GreaterOrEqual(t, g.Zoom, effects.MinZoom)
					require.True(t, g.Covers(1280, 720), "kind=%s size=%v focal=%v frame=%d geometry=%+v", kind, size, focal, i, g)
				}
			}
		}
	}
}

func TestPlanCentresWithoutFocal(t *testing.T) {
	p := testPlanner()
	g, err := p.Plan(Frame{ImageW: 640, ImageH: 360, Effect: effects.ZoomIn, Index: 100, Total: 100})
	require.NoError(t, err)

	assert.InDelta(t, 1.15, g.Zoom, 1e-12)
	assert.InDelta(t, (1280-g.Width())/2, g.DrawX, 1e-9)
	assert.InDelta(t, (720-g.Height())/2, g.DrawY, 1e-9)

	// focus without a detected subject falls back to centre pan
	f, err := p.Plan(Frame{ImageW: 640, ImageH: 360, Effect: effects.Focus, Index: 100, Total: 100})
	require.NoError(t, err)
	assert.Equal(t, g, f)
}

func TestPlanCentresOnFocal(t *testing.T) {
	p := testPlanner()
	// 640x360 -> scale 2; at frame 100 zoom is 1.15.
	focal := &Point{X: 330, Y: 185}
	g, err := p.Plan(Frame{ImageW: 640, ImageH: 360, Effect: effects.Focus, Index: 100, Total: 100, Focal: focal})
	require.NoError(t, err)

	screenX := g.DrawX + focal.X*2*g.Zoom
	screenY := g.DrawY + focal.Y*2*g.Zoom
	assert.InDelta(t, 640, screenX, 1e-9)
	assert.InDelta(t, 360, screenY, 1e-9)
}

func TestPlanClampsFocalAtEdges(t *testing.T) {
	p := testPlanner()
	g, err := p.Plan(Frame{ImageW: 640, ImageH: 360, Effect: effects.Focus, Index: 50, Total: 100, Focal: &Point{X: 0, Y: 0}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.DrawX)
	assert.Equal(t, 0.0, g.DrawY)
}
