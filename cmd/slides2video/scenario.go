package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/director"
	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/source"
	"github.com/ivlev/slides2video/internal/timeline"
)

// defaultScenarioDir is searched for the newest slide list when none is
// given.
const defaultScenarioDir = "input/scenarios"

// loadSlides reads and resolves the slide list named in cfg, or the newest
// one in input/scenarios.
func loadSlides(cfg config.Config) ([]timeline.Slide, []int, error) {
	path := cfg.Slides.ScenarioInput
	if path == "" {
		latest, err := director.FindLatestScenario(defaultScenarioDir)
		if err != nil {
			return nil, nil, errs.Config(errs.NoSlide, "no slide list given and none found in %s", defaultScenarioDir)
		}
		path = latest
	}

	sc, err := director.ReadScenario(path)
	if err != nil {
		return nil, nil, err
	}
	def := director.Defaults{Duration: cfg.Slides.Duration}
	slides, indices, failed := sc.Resolve(def, cfg.ContinueOnSlideError)
	if len(failed) > 0 && !cfg.ContinueOnSlideError {
		return nil, nil, failed[0]
	}
	for _, err := range failed {
		logger().Warn().Err(err).Int("slide", errs.SlideOf(err)+1).Msg("skipping slide")
	}

	base := filepath.Dir(path)
	for i := range slides {
		slides[i].Image = resolveImage(slides[i].Image, base)
	}
	return slides, indices, nil
}

// resolveImage keeps paths that exist as given and otherwise tries them
// relative to the slide list's directory.
func resolveImage(image, base string) string {
	ref, err := source.ParseRef(image)
	if err != nil || filepath.IsAbs(ref.File) {
		return image
	}
	if _, err := os.Stat(ref.File); !errors.Is(err, os.ErrNotExist) {
		return image
	}
	candidate := filepath.Join(base, image)
	if _, err := os.Stat(filepath.Join(base, ref.File)); err == nil {
		return candidate
	}
	return image
}
