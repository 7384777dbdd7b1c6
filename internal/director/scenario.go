package director

import (
	"strings"

	"github.com/ivlev/slides2video/internal/effects"
	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/timeline"
)

// Scenario is a slide list as stored on disk. A bare top-level list of
// slides is accepted as well.
type Scenario struct {
	Version string  `yaml:"version,omitempty"`
	Slides  []Slide `yaml:"slides"`
}

// Slide is one entry of the slide list. Optional values are pointers so an
// explicit zero can be told apart from a missing key.
type Slide struct {
	Image      string   `yaml:"image"`
	Text       string   `yaml:"text,omitempty"`
	Duration   *float64 `yaml:"duration,omitempty"`
	Effect     string   `yaml:"effect,omitempty"`
	Focus      string   `yaml:"focus,omitempty"`
	TextReveal *float64 `yaml:"text_reveal,omitempty"`
}

// Defaults fill in what a slide entry leaves out.
type Defaults struct {
	Duration float64
	// Reveal is used for captions without text_reveal; 0 makes such a
	// caption a configuration error.
	Reveal float64
}

// Resolve applies defaults and validates the entry. index is the slide's
// position, used for error reporting.
func (s Slide) Resolve(index int, def Defaults) (timeline.Slide, error) {
	if strings.TrimSpace(s.Image) == "" {
		return timeline.Slide{}, errs.Config(index, "image is missing")
	}

	effect, err := effects.Parse(s.Effect)
	if err != nil {
		return timeline.Slide{}, errs.Config(index, "%v", err)
	}

	duration := def.Duration
	if s.Duration != nil {
		duration = *s.Duration
	}
	if duration <= 0 {
		return timeline.Slide{}, errs.Config(index, "duration %.3fs must be positive", duration)
	}

	reveal := def.Reveal
	if s.TextReveal != nil {
		reveal = *s.TextReveal
	}
	if strings.TrimSpace(s.Text) != "" && reveal <= 0 {
		return timeline.Slide{}, errs.Config(index, "caption needs a positive text_reveal")
	}

	return timeline.Slide{
		Image:      s.Image,
		Text:       s.Text,
		Duration:   duration,
		Effect:     effect,
		Focus:      s.Focus,
		TextReveal: reveal,
	}, nil
}

// Resolve resolves every slide in order. The first invalid entry stops it
// unless skip is set, in which case invalid entries are dropped and their
// errors returned alongside.
func (sc *Scenario) Resolve(def Defaults, skip bool) ([]timeline.Slide, []int, []error) {
	var (
		slides  []timeline.Slide
		indices []int
		failed  []error
	)
	for i, s := range sc.Slides {
		r, err := s.Resolve(i, def)
		if err != nil {
			failed = append(failed, err)
			if !skip {
				return nil, nil, failed
			}
			continue
		}
		slides = append(slides, r)
		indices = append(indices, i)
	}
	return slides, indices, failed
}

// Float returns a pointer to v, for building slides in code.
func Float(v float64) *float64 { return &v }
