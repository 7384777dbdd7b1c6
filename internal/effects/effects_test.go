package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"zoom-in", ZoomIn, false},
		{"Zoom-Out", ZoomOut, false},
		{" focus ", Focus, false},
		{"spin", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZoomSchedules(t *testing.T) {
	s := Schedule{Rate: 0.0015, OutStart: 1.15}
	const total = 100

	assert.Equal(t, 1.0, s.Zoom(None, 50, total))
	assert.InDelta(t, 1.0, s.Zoom(ZoomIn, 0, total), 1e-12)
	assert.InDelta(t, 1.15, s.Zoom(ZoomIn, 100, total), 1e-12)
	assert.Equal(t, s.Zoom(ZoomIn, 42, total), s.Zoom(Focus, 42, total))

	assert.InDelta(t, 1.15, s.Zoom(ZoomOut, 0, total), 1e-12)
	assert.InDelta(t, 1.0, s.Zoom(ZoomOut, total-1, total), 1e-12)

	prev := s.Zoom(ZoomOut, 0, total)
	for i := 1; i < total; i++ {
		z := s.Zoom(ZoomOut, i, total)
		assert.LessOrEqual(t, z, prev, "zoom-out must not increase at frame %d", i)
		prev = z
	}
}

func TestZoomNeverBelowEpsilon(t *testing.T) {
	s := Schedule{Rate: -1, OutStart: 1.15}
	for _, k := range []Kind{None, ZoomIn, ZoomOut, Focus} {
		for i := 0; i < 10; i++ {
			assert.GreaterOrEqual(t, s.Zoom(k, i, 10), MinZoom)
		}
	}
	assert.InDelta(t, 1.15, s.Zoom(ZoomOut, 0, 1), 1e-12, "single-frame clip stays at start zoom")
}
