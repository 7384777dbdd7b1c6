package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/slides2video/internal/analyzer"
	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/director"
	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/source"
	"github.com/ivlev/slides2video/internal/system"
)

const (
	defaultImagesDir = "input/images"
	defaultAudioDir  = "input/audio"
)

// resolveNarration expands the "latest" shorthand to the newest audio file.
func resolveNarration(cfg *config.Config) error {
	if cfg.Audio.Narration != "latest" {
		return nil
	}
	latest, err := system.FindLatest(defaultAudioDir, system.AudioExtensions)
	if err != nil {
		return errs.Asset(errs.NoSlide, "find narration", err)
	}
	logger().Info().Str("narration", latest).Msg("using newest narration")
	cfg.Audio.Narration = latest
	return nil
}

func newInitCmd() *cobra.Command {
	var (
		images    string
		output    string
		narration string
		configOut string
		seed      int64
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Draft a slide list from a folder of images and PDFs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, func(c *config.Config) {
				if images != "" {
					c.Slides.ImagesDir = images
				}
				if narration != "" {
					c.Audio.Narration = narration
				}
				if seed != 0 {
					c.Transitions.Seed = seed
				}
			})
			if err != nil {
				return err
			}
			if err := resolveNarration(&cfg); err != nil {
				return err
			}

			dir := cfg.Slides.ImagesDir
			if dir == "" {
				dir = defaultImagesDir
			}
			files, err := source.Files(dir)
			if err != nil {
				return errs.Asset(errs.NoSlide, "list "+dir, err)
			}
			if len(files) == 0 {
				return errs.Asset(errs.NoSlide, "list "+dir, fmt.Errorf("no images or PDFs"))
			}

			pages, err := analyzePages(cfg, files)
			if err != nil {
				return err
			}

			var durations []float64
			if cfg.Audio.Narration != "" {
				total, err := system.ProbeDuration(cmd.Context(), cfg.Audio.Narration)
				if err != nil {
					return errs.Asset(errs.NoSlide, "probe narration", err)
				}
				r := rand.New(rand.NewSource(cfg.Transitions.Seed))
				if cfg.Transitions.Seed == 0 {
					r = rand.New(rand.NewSource(time.Now().UnixNano()))
				}
				durations, err = director.FitDurations(len(pages), total, cfg.Transitions.Duration, cfg.Video.FPS, r)
				if err != nil {
					return errs.Config(errs.NoSlide, "fit %d slides to %.2fs narration: %v", len(pages), total, err)
				}
			}

			sc, err := director.NewDirector(cfg.Slides.Duration).Draft(pages, durations)
			if err != nil {
				return errs.Config(errs.NoSlide, "draft slide list: %v", err)
			}

			path := output
			if path == "" {
				path = director.GenerateScenarioPath(defaultScenarioDir, time.Now())
			}
			if err := director.WriteScenario(sc, path); err != nil {
				return fmt.Errorf("write slide list: %w", err)
			}
			logger().Info().Int("slides", len(sc.Slides)).Str("path", path).Msg("slide list drafted")

			if configOut != "" {
				cfg.Slides.ScenarioInput = path
				if err := config.Save(cfg, configOut); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				logger().Info().Str("path", configOut).Msg("starter config written")
			}
			fmt.Fprintln(os.Stdout, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&images, "images", "i", "", "Folder of slide images and PDFs (default input/images)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Slide list path (default input/scenarios/slides_<time>.yaml)")
	cmd.Flags().StringVarP(&narration, "narration", "a", "", "Fit durations to this audio; \"latest\" picks the newest in input/audio")
	cmd.Flags().StringVar(&configOut, "config-out", "", "Also write the effective config, pointing at the new slide list")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for duration jitter (0 = random)")
	return cmd
}

// analyzePages detects content blocks on every slide image so the director
// can decide where a focus pan is worthwhile.
func analyzePages(cfg config.Config, files []string) ([]director.Page, error) {
	loader := source.NewFileLoader(cfg.Slides.PDFDPI)
	var det analyzer.Detector
	if cfg.Detector.Variant != "none" {
		var err error
		if det, err = analyzer.NewDetector(cfg.Detector); err != nil {
			return nil, errs.Config(errs.NoSlide, "%v", err)
		}
	}

	log := logger()
	pages := make([]director.Page, len(files))
	for i, file := range files {
		pages[i].Image = file
		if det == nil {
			continue
		}

		img, err := loader.Load(file)
		if err != nil {
			return nil, errs.AtSlide(err, i)
		}
		small, _ := analyzer.Downscale(img, cfg.Detector.MaxDimension)
		blocks, err := det.Detect(small)
		if err != nil {
			log.Warn().Err(err).Str("image", filepath.Base(file)).Msg("block detection failed")
			continue
		}
		b := small.Bounds()
		pages[i].Width, pages[i].Height = b.Dx(), b.Dy()
		pages[i].Blocks = blocks
		log.Debug().Str("image", filepath.Base(file)).Int("blocks", len(blocks)).Msg("analyzed")
	}
	return pages, nil
}
