package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/engine"
)

// runFlags are the config overrides shared by render and plan.
type runFlags struct {
	scenario  string
	output    string
	narration string
	policy    string
	promo     string
	workers   int
	fps       int
	encoder   string
	skip      bool
	fit       bool
	stats     bool
	subtitles bool
	stage     bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.scenario, "slides", "s", "", "Slide list (YAML or JSON); default: newest in input/scenarios")
	fl.StringVarP(&f.output, "output", "o", "", "Output video path")
	fl.StringVarP(&f.narration, "narration", "a", "", "Narration audio; \"latest\" picks the newest file in input/audio")
	fl.StringVar(&f.policy, "audio-policy", "", "Narration alignment: single or per-clip")
	fl.StringVar(&f.promo, "promo", "", "Clip played before the first slide")
	fl.IntVarP(&f.workers, "workers", "w", 0, "Parallel preflight probes")
	fl.IntVar(&f.fps, "fps", 0, "Frame rate")
	fl.StringVar(&f.encoder, "encoder", "", "H.264 encoder, or auto to prefer hardware")
	fl.BoolVar(&f.skip, "continue-on-error", false, "Skip slides with missing images or invalid entries")
	fl.BoolVar(&f.fit, "fit-narration", false, "Stretch slide durations to the narration length")
	fl.BoolVar(&f.stats, "stats", false, "Print a performance report and append it to benchmark.log")
	fl.BoolVar(&f.subtitles, "subtitles", false, "Write an SRT sidecar from slide captions")
	fl.BoolVar(&f.stage, "stage-frames", false, "Keep every rendered frame as PNG in the work dir")
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if f.scenario != "" {
		cfg.Slides.ScenarioInput = f.scenario
	}
	if f.output != "" {
		cfg.Paths.Output = f.output
	}
	if f.narration != "" {
		cfg.Audio.Narration = f.narration
	}
	if f.policy != "" {
		cfg.Audio.Policy = f.policy
	}
	if f.promo != "" {
		cfg.Promo.Path = f.promo
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.fps > 0 {
		cfg.Video.FPS = f.fps
	}
	if f.encoder != "" {
		cfg.Encoder.Name = f.encoder
	}
	if fl.Changed("continue-on-error") {
		cfg.ContinueOnSlideError = f.skip
	}
	if fl.Changed("fit-narration") {
		cfg.Audio.FitSlides = f.fit
	}
	if fl.Changed("stats") {
		cfg.ShowStats = f.stats
	}
	if fl.Changed("subtitles") {
		cfg.Subtitles.Enabled = f.subtitles
	}
	if fl.Changed("stage-frames") {
		cfg.Paths.StageFrames = f.stage
	}
}

// project loads config, resolves the slide list and wires the engine.
func (f *runFlags) project(cmd *cobra.Command) (*engine.Project, error) {
	cfg, err := loadConfig(cmd, func(c *config.Config) { f.apply(cmd, c) })
	if err != nil {
		return nil, err
	}
	if err := resolveNarration(&cfg); err != nil {
		return nil, err
	}

	slides, indices, err := loadSlides(cfg)
	if err != nil {
		return nil, err
	}

	return engine.New(cmd.Context(), cfg, slides, indices, engine.Deps{Logger: logger()})
}

func newRenderCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the slide list to a video",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := flags.project(cmd)
			if err != nil {
				return err
			}
			if _, err := p.Run(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s\n", p.Config.Paths.Output)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
