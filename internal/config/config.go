package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/slides2video/internal/errs"
)

// Config is the immutable run configuration. It is loaded once and passed
// explicitly to every component.
type Config struct {
	Video       VideoConfig      `yaml:"video"`
	Slides      SlideDefaults    `yaml:"slides"`
	Text        TextConfig       `yaml:"text"`
	Transitions TransitionConfig `yaml:"transitions"`
	Audio       AudioConfig      `yaml:"audio"`
	Logo        LogoConfig       `yaml:"logo"`
	Promo       PromoConfig      `yaml:"promo"`
	Paths       PathsConfig      `yaml:"paths"`
	Encoder     EncoderConfig    `yaml:"encoder"`
	Detector    DetectorConfig   `yaml:"detector"`
	Subtitles   SubtitleConfig   `yaml:"subtitles"`

	Workers              int  `yaml:"workers"`
	ContinueOnSlideError bool `yaml:"continue_on_slide_error"`
	ShowStats            bool `yaml:"show_stats"`
	Verbose              bool `yaml:"verbose"`

	BuildVersion string `yaml:"-"`
}

type VideoConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

type SlideDefaults struct {
	Duration      float64 `yaml:"duration"`
	ZoomRate      float64 `yaml:"zoom_rate"`
	ZoomOutStart  float64 `yaml:"zoom_out_start"`
	PDFDPI        int     `yaml:"pdf_dpi"`
	ImagesDir     string  `yaml:"images_dir"`
	ScenarioInput string  `yaml:"scenario"`
}

type TextConfig struct {
	FontFile     string  `yaml:"font_file"`
	FontSize     float64 `yaml:"font_size"`
	LineHeight   float64 `yaml:"line_height"`
	Padding      float64 `yaml:"padding"`
	SideMargin   float64 `yaml:"side_margin"`
	BottomMargin float64 `yaml:"bottom_margin"`
	FadeWindow   float64 `yaml:"fade_window"`
	PanelOpacity float64 `yaml:"panel_opacity"`
}

type TransitionConfig struct {
	Pool          []string `yaml:"pool"`
	Duration      float64  `yaml:"duration"`
	FirstDuration float64  `yaml:"first_duration"`
	PinnedStyle   string   `yaml:"pinned_style"`
	PinnedCount   int      `yaml:"pinned_count"`
	Seed          int64    `yaml:"seed"`
}

type AudioConfig struct {
	Narration string  `yaml:"narration"`
	Policy    string  `yaml:"policy"`
	PadShort  bool    `yaml:"pad_short"`
	Tolerance float64 `yaml:"tolerance"`
	Codec     string  `yaml:"codec"`
	Bitrate   string  `yaml:"bitrate"`
	// FitSlides scales slide durations so the program matches the
	// narration length.
	FitSlides bool `yaml:"fit_slides"`
}

type LogoConfig struct {
	Path    string `yaml:"path"`
	QRText  string `yaml:"qr_text"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	MarginX int    `yaml:"margin_x"`
	MarginY int    `yaml:"margin_y"`
	Corner  string `yaml:"corner"`
}

type PromoConfig struct {
	Path     string  `yaml:"path"`
	Duration float64 `yaml:"duration"`
}

type PathsConfig struct {
	WorkDir     string `yaml:"work_dir"`
	Output      string `yaml:"output"`
	StageFrames bool   `yaml:"stage_frames"`
}

type EncoderConfig struct {
	Name    string        `yaml:"name"`
	Quality int           `yaml:"quality"`
	Preset  string        `yaml:"preset"`
	Retries int           `yaml:"retries"`
	Timeout time.Duration `yaml:"timeout"`
	Threads int           `yaml:"threads"`
}

type DetectorConfig struct {
	Variant       string  `yaml:"variant"`
	MinBlockArea  int     `yaml:"min_block_area"`
	EdgeThreshold float64 `yaml:"edge_threshold"`
	MaxDimension  int     `yaml:"max_dimension"`
}

type SubtitleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Audio policies.
const (
	AudioPolicySingle  = "single"
	AudioPolicyPerClip = "per-clip"
)

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Video: VideoConfig{Width: 1280, Height: 720, FPS: 25},
		Slides: SlideDefaults{
			Duration:     4,
			ZoomRate:     0.0015,
			ZoomOutStart: 1.15,
			PDFDPI:       150,
		},
		Text: TextConfig{
			FontSize:     36,
			LineHeight:   50,
			Padding:      20,
			SideMargin:   80,
			BottomMargin: 50,
			FadeWindow:   0.5,
			PanelOpacity: 0.5,
		},
		Transitions: TransitionConfig{
			Pool:          []string{"fade", "wipeleft", "slideup", "pixelize", "circlecrop", "dissolve"},
			Duration:      1,
			FirstDuration: 2,
			PinnedStyle:   "fade",
			PinnedCount:   3,
		},
		Audio: AudioConfig{
			Policy:   AudioPolicySingle,
			PadShort: true,
			Codec:    "aac",
			Bitrate:  "192k",
		},
		Logo: LogoConfig{
			Width:   120,
			Height:  120,
			MarginX: 20,
			MarginY: 20,
			Corner:  "top-right",
		},
		Paths: PathsConfig{
			WorkDir: "work",
			Output:  filepath.Join("output", "final_video.mp4"),
		},
		Encoder: EncoderConfig{
			Name:    "libx264",
			Quality: 23,
			Preset:  "medium",
			Timeout: 10 * time.Minute,
		},
		Detector: DetectorConfig{
			Variant:       "contrast",
			MinBlockArea:  500,
			EdgeThreshold: 30,
			MaxDimension:  640,
		},
		Workers: 4,
	}
}

// Load reads a YAML file over the defaults. An empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, errs.Config(errs.NoSlide, "config file %s not found", path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.Config(errs.NoSlide, "parse %s: %v", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// FrameTolerance is the duration of one frame, the rounding bound for
// timeline comparisons.
func (c Config) FrameTolerance() float64 {
	if c.Video.FPS <= 0 {
		return 0
	}
	return 1.0 / float64(c.Video.FPS)
}

// SyncTolerance returns the configured audio/video tolerance, falling back
// to one frame.
func (c Config) SyncTolerance() float64 {
	if c.Audio.Tolerance > 0 {
		return c.Audio.Tolerance
	}
	return c.FrameTolerance()
}
