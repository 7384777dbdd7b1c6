package engine

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/ivlev/slides2video/internal/audio"
	"github.com/ivlev/slides2video/internal/director"
	"github.com/ivlev/slides2video/internal/effects"
	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/geometry"
	"github.com/ivlev/slides2video/internal/renderer"
	"github.com/ivlev/slides2video/internal/textreveal"
	"github.com/ivlev/slides2video/internal/timeline"
	"github.com/ivlev/slides2video/internal/transition"
)

// ClipPlan is one rendered slide clip.
type ClipPlan struct {
	Clip       timeline.Clip           `yaml:"-"`
	Descriptor timeline.ClipDescriptor `yaml:"clip"`
	Image      string                  `yaml:"image"`
	Effect     effects.Kind            `yaml:"effect"`
	Focal      *geometry.Point         `yaml:"focal,omitempty"`
	Frames     []timeline.FrameState   `yaml:"-"`
}

// Plan is everything decided before the first frame is painted.
type Plan struct {
	Promo       string           `yaml:"promo,omitempty"`
	Clips       []ClipPlan       `yaml:"slides"`
	Transitions transition.Plan  `yaml:"timeline"`
	Narration   string           `yaml:"narration,omitempty"`
	Audio       *audio.Alignment `yaml:"audio,omitempty"`
	// Skipped holds the slide errors tolerated under ContinueOnSlideError.
	Skipped []error `yaml:"-"`
}

// Inputs lists the merge inputs in program order.
func (p *Plan) Inputs() []string {
	inputs := make([]string, 0, len(p.Clips)+1)
	if p.Promo != "" {
		inputs = append(inputs, p.Promo)
	}
	for _, c := range p.Clips {
		inputs = append(inputs, c.Descriptor.OutputPath)
	}
	return inputs
}

// Captions lists the caption of every merge input, empty for the promo.
func (p *Plan) Captions() []string {
	captions := make([]string, 0, len(p.Clips)+1)
	if p.Promo != "" {
		captions = append(captions, "")
	}
	for _, c := range p.Clips {
		captions = append(captions, c.Clip.Slide.Text)
	}
	return captions
}

// Plan runs preflight and compiles frames, transitions and audio without
// encoding anything.
func (p *Project) Plan(ctx context.Context) (*Plan, error) {
	if len(p.Slides) == 0 {
		return nil, errs.Config(errs.NoSlide, "slide list is empty")
	}

	a, err := p.preflight(ctx)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Promo: p.Config.Promo.Path, Narration: p.Config.Audio.Narration}

	var kept []int
	for i, info := range a.images {
		if info.err != nil {
			p.skip(plan, info.err)
			continue
		}
		kept = append(kept, i)
	}

	durations := make([]float64, len(kept))
	for j, i := range kept {
		durations[j] = p.Slides[i].Duration
	}
	if p.Config.Audio.FitSlides && a.narration > 0 && len(kept) > 0 {
		durations, err = p.fitToNarration(durations, a)
		if err != nil {
			return nil, err
		}
	}

	compiler := p.compiler()
	fps := p.Config.Video.FPS
	clipsDir := p.clipsDir()
	for j, i := range kept {
		s := p.Slides[i]
		s.Duration = timeline.SnapDuration(durations[j], fps)
		info := a.images[i]
		clip := timeline.Clip{
			Index:  p.Indices[i],
			Slide:  s,
			ImageW: info.width,
			ImageH: info.height,
			Focal:  info.focal,
		}

		frames, err := compiler.Build(clip)
		if err != nil {
			if p.Config.ContinueOnSlideError && (errors.Is(err, errs.ErrAsset) || errors.Is(err, errs.ErrConfig)) {
				p.skip(plan, err)
				continue
			}
			return nil, err
		}

		plan.Clips = append(plan.Clips, ClipPlan{
			Clip:       clip,
			Descriptor: timeline.Describe(clip.Index, s, fps, clipsDir),
			Image:      s.Image,
			Effect:     s.Effect,
			Focal:      info.focal,
			Frames:     frames,
		})
	}
	if len(plan.Clips) == 0 {
		return nil, errs.Config(errs.NoSlide, "no slides left to render")
	}

	if plan.Transitions, err = p.schedule(plan, a.promo); err != nil {
		return nil, err
	}

	if a.narration > 0 {
		req := audio.FromSchedule(audio.Policy(p.Config.Audio.Policy), a.narration, plan.Transitions)
		req.PadShort = p.Config.Audio.PadShort
		req.Tolerance = p.Config.SyncTolerance()
		al, err := audio.Align(req)
		if err != nil {
			return nil, err
		}
		plan.Audio = &al
	}

	p.log.Info().
		Int("slides", len(plan.Clips)).
		Int("skipped", len(plan.Skipped)).
		Float64("seconds", plan.Transitions.Total).
		Msg("timeline planned")
	return plan, nil
}

func (p *Project) skip(plan *Plan, err error) {
	p.log.Warn().Err(err).Int("slide", errs.SlideOf(err)+1).Msg("skipping slide")
	plan.Skipped = append(plan.Skipped, err)
}

// fitToNarration stretches slide durations so the program, promo included,
// lasts exactly as long as the narration.
func (p *Project) fitToNarration(durations []float64, a *assets) ([]float64, error) {
	t := p.Config.Transitions
	clips := len(durations)
	if a.promo > 0 {
		clips++
	}
	var overlap float64
	for k := 0; k < clips-1; k++ {
		if k == 0 && t.FirstDuration > 0 {
			overlap += t.FirstDuration
		} else {
			overlap += t.Duration
		}
	}

	target := a.narration - a.promo
	if target <= 0 {
		return nil, errs.Sync("narration %.3fs is shorter than the %.3fs promo", a.narration, a.promo)
	}
	out, err := director.ScaleDurations(durations, target, overlap, p.Config.Video.FPS)
	if err != nil {
		return nil, errs.Sync("fit slides to %.3fs narration: %v", a.narration, err)
	}
	return out, nil
}

// schedule folds the promo, if any, and the slide clips into transitions.
func (p *Project) schedule(plan *Plan, promo float64) (transition.Plan, error) {
	t := p.Config.Transitions
	opts := transition.Options{
		Duration:      t.Duration,
		FirstDuration: t.FirstDuration,
		Policy:        transition.NewPinned(t.PinnedStyle, t.PinnedCount, t.Pool, t.Seed),
	}

	durations := make([]float64, 0, len(plan.Clips)+1)
	if plan.Promo != "" {
		durations = append(durations, promo)
		opts.SlideOffset = 1
		opts.Normalize = p.video.Normalize()
	}
	for _, c := range plan.Clips {
		durations = append(durations, c.Descriptor.Duration)
	}

	tp, err := transition.Schedule(durations, opts)
	if err != nil {
		return transition.Plan{}, remapSlide(err, plan.Clips)
	}
	return tp, nil
}

// remapSlide turns a position among the scheduled clips back into a slide
// list index, which differs once slides have been skipped.
func remapSlide(err error, clips []ClipPlan) error {
	var e *errs.Error
	if !errors.As(err, &e) || e.Slide < 0 || e.Slide >= len(clips) {
		return err
	}
	out := *e
	out.Slide = clips[e.Slide].Clip.Index
	return &out
}

func (p *Project) compiler() timeline.Compiler {
	cfg := p.Config
	return timeline.Compiler{
		FPS: cfg.Video.FPS,
		Geometry: geometry.Planner{
			CanvasW: cfg.Video.Width,
			CanvasH: cfg.Video.Height,
			Schedule: effects.Schedule{
				Rate:     cfg.Slides.ZoomRate,
				OutStart: cfg.Slides.ZoomOutStart,
			},
		},
		Text: textreveal.Planner{
			Measurer: renderer.FontMeasurer{Face: p.face},
			FPS:      cfg.Video.FPS,
			Layout: textreveal.Layout{
				CanvasW:      cfg.Video.Width,
				CanvasH:      cfg.Video.Height,
				MaxWidth:     float64(cfg.Video.Width) - 2*cfg.Text.SideMargin,
				LineHeight:   cfg.Text.LineHeight,
				Padding:      cfg.Text.Padding,
				BottomMargin: cfg.Text.BottomMargin,
				FadeWindow:   cfg.Text.FadeWindow,
			},
		},
	}
}

func (p *Project) clipsDir() string  { return filepath.Join(p.Config.Paths.WorkDir, "clips") }
func (p *Project) framesDir() string { return filepath.Join(p.Config.Paths.WorkDir, "frames") }
