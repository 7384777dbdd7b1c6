// Package director reads and writes slide lists and drafts new ones from a
// folder of slide images.
package director

import (
	"fmt"

	"github.com/ivlev/slides2video/internal/analyzer"
	"github.com/ivlev/slides2video/internal/effects"
)

// Page is what the analyzer found on one slide image.
type Page struct {
	Image         string
	Width, Height int
	Blocks        []analyzer.Block
}

// Director drafts slide lists. A slide whose dominant block covers between
// MinFocusShare and MaxFocusShare of the image gets a focus pan onto that
// block; the others alternate zoom-in and zoom-out.
type Director struct {
	Duration      float64
	MinFocusShare float64
	MaxFocusShare float64
}

// NewDirector creates a Director with default settings.
func NewDirector(duration float64) *Director {
	return &Director{
		Duration:      duration,
		MinFocusShare: 0.02,
		MaxFocusShare: 0.6,
	}
}

// Draft builds a slide list for pages. durations, when it has one entry per
// page, overrides the default duration.
func (d *Director) Draft(pages []Page, durations []float64) (*Scenario, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no slide images")
	}
	if durations != nil && len(durations) != len(pages) {
		return nil, fmt.Errorf("%d durations for %d slides", len(durations), len(pages))
	}

	slides := make([]Slide, len(pages))
	zoomIn := true
	for i, p := range pages {
		slide := Slide{Image: p.Image}
		if durations != nil {
			slide.Duration = Float(durations[i])
		} else {
			slide.Duration = Float(d.Duration)
		}

		if label, ok := d.focusLabel(p); ok {
			slide.Effect = string(effects.Focus)
			slide.Focus = label
		} else {
			slide.Effect = string(effects.ZoomOut)
			if zoomIn {
				slide.Effect = string(effects.ZoomIn)
			}
			zoomIn = !zoomIn
		}
		slides[i] = slide
	}

	return &Scenario{Version: "1.0", Slides: slides}, nil
}

// focusLabel names the dominant block by its reading-order position.
func (d *Director) focusLabel(p Page) (string, bool) {
	area := float64(p.Width * p.Height)
	if area <= 0 || len(p.Blocks) == 0 {
		return "", false
	}

	best, _ := analyzer.Largest(p.Blocks)
	share := float64(best.Area()) / area
	if share < d.MinFocusShare || share > d.MaxFocusShare {
		return "", false
	}

	for i, b := range analyzer.ReadingOrder(p.Blocks) {
		if b.Rect == best.Rect {
			return fmt.Sprintf("region_%d", i+1), true
		}
	}
	return "", false
}
