// Package engine runs a render end to end: preflight, per-slide clip
// generation, merge, overlay and sidecar output.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"

	"github.com/ivlev/slides2video/internal/analyzer"
	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/renderer"
	"github.com/ivlev/slides2video/internal/source"
	"github.com/ivlev/slides2video/internal/system"
	"github.com/ivlev/slides2video/internal/timeline"
	"github.com/ivlev/slides2video/internal/video"
)

// Prober reports media durations in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbe probes with the ffprobe binary.
type FFProbe struct{}

func (FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	return system.ProbeDuration(ctx, path)
}

// Deps are the adapters a project talks to. Nil fields get the production
// implementation.
type Deps struct {
	Loader  source.Loader
	Focal   analyzer.FocalDetector
	Encoder video.Encoder
	Prober  Prober
	Face    font.Face
	Logger  *zerolog.Logger
}

// Project is one render of a resolved slide list.
type Project struct {
	Config config.Config
	Slides []timeline.Slide
	// Indices maps each slide to its position in the slide list.
	Indices []int

	loader  source.Loader
	focal   analyzer.FocalDetector
	encoder video.Encoder
	prober  Prober
	face    font.Face
	host    system.HostReport
	video   video.Settings
	log     zerolog.Logger
}

// New wires a project. indices may be nil when slides are the full list.
func New(ctx context.Context, cfg config.Config, slides []timeline.Slide, indices []int, deps Deps) (*Project, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if indices == nil {
		indices = make([]int, len(slides))
		for i := range indices {
			indices[i] = i
		}
	}
	if len(indices) != len(slides) {
		return nil, fmt.Errorf("%d slide indices for %d slides", len(indices), len(slides))
	}

	p := &Project{
		Config:  cfg,
		Slides:  slides,
		Indices: indices,
		loader:  deps.Loader,
		focal:   deps.Focal,
		encoder: deps.Encoder,
		prober:  deps.Prober,
		face:    deps.Face,
		host:    system.CollectHost(ctx),
	}
	if deps.Logger != nil {
		p.log = deps.Logger.With().Str("component", "engine").Logger()
	} else {
		p.log = zerolog.Nop()
	}

	if p.loader == nil {
		p.loader = source.NewFileLoader(cfg.Slides.PDFDPI)
	}
	if p.focal == nil {
		focal, err := analyzer.NewFocalDetector(cfg.Detector, p.loader)
		if err != nil {
			return nil, err
		}
		p.focal = focal
	}
	if p.prober == nil {
		p.prober = FFProbe{}
	}
	if p.face == nil {
		face, err := renderer.LoadFace(cfg.Text.FontFile, cfg.Text.FontSize)
		if err != nil {
			return nil, err
		}
		p.face = face
	}
	p.video = p.settings(ctx)
	if p.encoder == nil {
		p.encoder = video.NewFFmpegEncoder(p.log, p.video, cfg.Encoder.Timeout, cfg.Encoder.Retries)
	}
	return p, nil
}

// settings resolves "auto" codec and thread choices against the host.
func (p *Project) settings(ctx context.Context) video.Settings {
	cfg := p.Config
	codec := cfg.Encoder.Name
	if codec == "" || codec == "auto" {
		codec = system.BestH264Encoder(ctx)
	}
	threads := cfg.Encoder.Threads
	if threads == 0 {
		threads = p.host.EncoderThreads()
	}
	return video.Settings{
		Codec:        codec,
		Quality:      cfg.Encoder.Quality,
		Preset:       cfg.Encoder.Preset,
		Threads:      threads,
		Width:        cfg.Video.Width,
		Height:       cfg.Video.Height,
		FPS:          cfg.Video.FPS,
		AudioCodec:   cfg.Audio.Codec,
		AudioBitrate: cfg.Audio.Bitrate,
	}
}

// Run renders the project to Config.Paths.Output. The output file is either
// complete or absent.
func (p *Project) Run(ctx context.Context) (*Report, error) {
	report := &Report{Build: p.Config.BuildVersion, Host: p.host}
	start := time.Now()

	if err := p.prepareDirs(); err != nil {
		return nil, err
	}

	plan, err := p.Plan(ctx)
	if err != nil {
		return nil, err
	}
	report.Preflight = time.Since(start)
	report.Slides = len(plan.Clips)
	report.Skipped = len(plan.Skipped)
	report.Program = plan.Transitions.Total

	renderStart := time.Now()
	clips, err := p.renderClips(ctx, plan)
	if err != nil {
		return nil, err
	}
	report.Render = time.Since(renderStart)

	mergeStart := time.Now()
	if err := p.writeOutput(ctx, plan, clips); err != nil {
		return nil, err
	}
	report.Merge = time.Since(mergeStart)

	report.Total = time.Since(start)
	p.log.Info().
		Str("output", p.Config.Paths.Output).
		Float64("seconds", plan.Transitions.Total).
		Dur("took", report.Total).
		Msg("video ready")

	if p.Config.ShowStats {
		p.logReport(report)
	}
	return report, nil
}
