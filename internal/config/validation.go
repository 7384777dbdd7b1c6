package config

import (
	"strings"

	"github.com/ivlev/slides2video/internal/errs"
)

var corners = map[string]bool{
	"top-left":     true,
	"top-right":    true,
	"bottom-left":  true,
	"bottom-right": true,
}

// Validate checks the run-wide settings. Slide entries are validated when
// they are resolved.
func (c Config) Validate() error {
	switch {
	case c.Video.Width <= 0 || c.Video.Height <= 0:
		return errs.Config(errs.NoSlide, "invalid canvas %dx%d", c.Video.Width, c.Video.Height)
	case c.Video.Width%2 != 0 || c.Video.Height%2 != 0:
		return errs.Config(errs.NoSlide, "canvas %dx%d must have even dimensions for yuv420p", c.Video.Width, c.Video.Height)
	case c.Video.FPS <= 0:
		return errs.Config(errs.NoSlide, "invalid frame rate %d", c.Video.FPS)
	case c.Slides.Duration <= 0:
		return errs.Config(errs.NoSlide, "invalid default slide duration %.3f", c.Slides.Duration)
	case c.Slides.ZoomRate < 0:
		return errs.Config(errs.NoSlide, "zoom rate must not be negative")
	case c.Slides.ZoomOutStart < 1:
		return errs.Config(errs.NoSlide, "zoom-out start %.3f must be at least 1", c.Slides.ZoomOutStart)
	case c.Text.FontSize <= 0 || c.Text.LineHeight <= 0:
		return errs.Config(errs.NoSlide, "font size and line height must be positive")
	case c.Text.FadeWindow <= 0 || c.Text.FadeWindow > 1:
		return errs.Config(errs.NoSlide, "fade window %.3f must be in (0, 1]", c.Text.FadeWindow)
	case float64(c.Video.Width)-2*c.Text.SideMargin <= 0:
		return errs.Config(errs.NoSlide, "side margin %.0f leaves no room for text", c.Text.SideMargin)
	case c.Transitions.Duration < 0 || c.Transitions.FirstDuration < 0:
		return errs.Config(errs.NoSlide, "transition durations must not be negative")
	case c.Transitions.Duration > 0 && len(c.Transitions.Pool) == 0:
		return errs.Config(errs.NoSlide, "transition pool is empty")
	case c.Transitions.PinnedCount < 0:
		return errs.Config(errs.NoSlide, "pinned transition count must not be negative")
	case c.Encoder.Retries < 0:
		return errs.Config(errs.NoSlide, "encoder retries must not be negative")
	case c.Promo.Duration < 0:
		return errs.Config(errs.NoSlide, "promo duration must not be negative")
	}

	for _, style := range c.Transitions.Pool {
		if strings.TrimSpace(style) == "" {
			return errs.Config(errs.NoSlide, "transition pool contains an empty style")
		}
	}

	switch c.Audio.Policy {
	case AudioPolicySingle, AudioPolicyPerClip:
	default:
		return errs.Config(errs.NoSlide, "unknown audio policy %q", c.Audio.Policy)
	}

	if c.Logo.Path != "" || c.Logo.QRText != "" {
		if c.Logo.Width <= 0 || c.Logo.Height <= 0 {
			return errs.Config(errs.NoSlide, "logo size %dx%d is invalid", c.Logo.Width, c.Logo.Height)
		}
		if !corners[c.Logo.Corner] {
			return errs.Config(errs.NoSlide, "unknown logo corner %q", c.Logo.Corner)
		}
	}

	if strings.TrimSpace(c.Paths.Output) == "" {
		return errs.Config(errs.NoSlide, "output path is empty")
	}
	return nil
}
