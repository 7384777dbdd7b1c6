package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/geometry"
)

// imageInfo is what preflight learned about one slide image.
type imageInfo struct {
	width, height int
	focal         *geometry.Point
	err           error
}

type assets struct {
	images    []imageInfo
	narration float64
	promo     float64
}

// preflight probes every input in parallel before any clip is rendered.
// It only reads. Slide failures are recorded instead of returned when
// ContinueOnSlideError is set.
func (p *Project) preflight(ctx context.Context) (*assets, error) {
	a := &assets{images: make([]imageInfo, len(p.Slides))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.Config.Workers))

	for i, s := range p.Slides {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info := &a.images[i]

			w, h, err := p.loader.Dimensions(s.Image)
			if err == nil && s.Effect.PansToFocus() {
				var pt geometry.Point
				var ok bool
				if pt, ok, err = p.focal.Detect(s.Image, s.Focus); ok && err == nil {
					info.focal = &pt
				}
			}
			if err != nil {
				err = slideError(err, p.Indices[i], "preflight")
				if p.Config.ContinueOnSlideError {
					info.err = err
					return nil
				}
				return err
			}
			info.width, info.height = w, h
			return nil
		})
	}

	if path := p.Config.Audio.Narration; path != "" {
		g.Go(func() error {
			d, err := p.prober.Duration(gctx, path)
			if err == nil && d <= 0 {
				err = errors.New("no audio duration")
			}
			if err != nil {
				return errs.Asset(errs.NoSlide, "probe narration "+path, err)
			}
			a.narration = d
			return nil
		})
	}

	if promo := p.Config.Promo; promo.Path != "" {
		if promo.Duration > 0 {
			a.promo = promo.Duration
		} else {
			g.Go(func() error {
				d, err := p.prober.Duration(gctx, promo.Path)
				if err == nil && d <= 0 {
					err = errors.New("no video duration")
				}
				if err != nil {
					return errs.Asset(errs.NoSlide, "probe promo "+promo.Path, err)
				}
				a.promo = d
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return a, nil
}

// slideError tags err with the slide index, wrapping untyped errors as
// asset errors.
func slideError(err error, slide int, op string) error {
	if _, ok := errs.KindOf(err); ok {
		return errs.AtSlide(err, slide)
	}
	return errs.Asset(slide, op, err)
}
