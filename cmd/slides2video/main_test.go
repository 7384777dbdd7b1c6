package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/director"
	"github.com/ivlev/slides2video/internal/errs"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("plain"), 1},
		{errs.Config(errs.NoSlide, "bad"), 2},
		{fmt.Errorf("wrapped: %w", errs.Asset(0, "load", os.ErrNotExist)), 3},
		{errs.Timeline(1, "overlap"), 4},
		{errs.Sync("short"), 4},
		{errs.Encode(2, "encode", errors.New("exit 1")), 5},
		{errs.Timeout(2, "encode", errors.New("deadline")), 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), tt.err.Error())
	}
}

func TestResolveImage(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "slide.png"), nil, 0o644))

	assert.Equal(t, filepath.Join(base, "slide.png"), resolveImage("slide.png", base))
	assert.Equal(t, filepath.Join(base, "slide.png"), resolveImage(filepath.Join(base, "slide.png"), "elsewhere"))
	assert.Equal(t, "absent.png", resolveImage("absent.png", base))

	require.NoError(t, os.WriteFile(filepath.Join(base, "deck.pdf"), nil, 0o644))
	assert.Equal(t, filepath.Join(base, "deck.pdf#2"), resolveImage("deck.pdf#2", base))
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	var flags runFlags
	cmd := &cobra.Command{Use: "render"}
	flags.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--output", "out.mp4",
		"--audio-policy", "per-clip",
		"--fps", "30",
		"--subtitles",
		"--continue-on-error=false",
	}))

	cfg := config.Default()
	cfg.ContinueOnSlideError = true
	cfg.ShowStats = true
	flags.apply(cmd, &cfg)

	assert.Equal(t, "out.mp4", cfg.Paths.Output)
	assert.Equal(t, config.AudioPolicyPerClip, cfg.Audio.Policy)
	assert.Equal(t, 30, cfg.Video.FPS)
	assert.True(t, cfg.Subtitles.Enabled)
	assert.False(t, cfg.ContinueOnSlideError)
	assert.True(t, cfg.ShowStats, "unset flags keep config values")
}

func writeSlidePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 160, 90))
	for y := 0; y < 90; y++ {
		for x := 0; x < 160; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= 40 && x < 100 && y >= 20 && y < 60 {
				c = color.RGBA{A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestInitDraftsSlideListAndConfig(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(images, 0o755))
	writeSlidePNG(t, filepath.Join(images, "01.png"))
	writeSlidePNG(t, filepath.Join(images, "02.png"))

	slides := filepath.Join(dir, "slides.yaml")
	cfgOut := filepath.Join(dir, "config.yaml")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"init", "--images", images, "--output", slides, "--config-out", cfgOut})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	sc, err := director.ReadScenario(slides)
	require.NoError(t, err)
	require.Len(t, sc.Slides, 2)
	assert.Equal(t, filepath.Join(images, "01.png"), sc.Slides[0].Image)

	cfg, err := config.Load(cfgOut)
	require.NoError(t, err)
	assert.Equal(t, slides, cfg.Slides.ScenarioInput)
	assert.Equal(t, images, cfg.Slides.ImagesDir)
}

func TestLoadSlidesSkipsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
slides:
  - image: a.png
    duration: 2
  - duration: 3
  - image: c.png
`), 0o644))

	cfg := config.Default()
	cfg.Slides.ScenarioInput = path

	_, _, err := loadSlides(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfig))
	assert.Equal(t, 1, errs.SlideOf(err))

	cfg.ContinueOnSlideError = true
	slides, indices, err := loadSlides(cfg)
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, []int{0, 2}, indices)
	assert.Equal(t, 4.0, slides[1].Duration, "default duration applies")
}
