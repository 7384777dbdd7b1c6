package effects

import (
	"fmt"
	"strings"
)

// Kind is the visual effect applied to a slide.
type Kind string

const (
	None    Kind = "none"
	ZoomIn  Kind = "zoom-in"
	ZoomOut Kind = "zoom-out"
	Focus   Kind = "focus"
)

// MinZoom is the lower bound applied to every zoom factor.
const MinZoom = 1e-6

// Parse maps a slide's effect string to a Kind. An empty value is None.
func Parse(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", None:
		return None, nil
	case ZoomIn, ZoomOut, Focus:
		return k, nil
	default:
		return "", fmt.Errorf("unknown effect %q", s)
	}
}

// Schedule holds the zoom parameters shared by every slide of a run.
type Schedule struct {
	// Rate is the per-frame zoom increment for zoom-in and focus.
	Rate float64
	// OutStart is the zoom factor zoom-out starts from.
	OutStart float64
}

// Zoom returns the zoom factor for frame i of a clip of total frames.
// It depends on nothing but its arguments.
func (s Schedule) Zoom(kind Kind, i, total int) float64 {
	var z float64
	switch kind {
	case ZoomIn, Focus:
		z = 1 + s.Rate*float64(i)
	case ZoomOut:
		z = s.OutStart
		if total > 1 {
			z = s.OutStart - (s.OutStart-1)*float64(i)/float64(total-1)
		}
	default:
		z = 1
	}
	if z < MinZoom {
		z = MinZoom
	}
	return z
}

// PansToFocus reports whether the effect centres on a detected subject.
func (k Kind) PansToFocus() bool {
	return k == Focus
}
