package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/renderer"
	"github.com/ivlev/slides2video/internal/system"
	"github.com/ivlev/slides2video/internal/video"
)

// prepareDirs recreates the staging directories. Other work dir content,
// such as benchmark.log, survives between runs.
func (p *Project) prepareDirs() error {
	for _, dir := range []string{p.framesDir(), p.clipsDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// renderClips encodes every planned clip in order and returns the merge
// inputs.
func (p *Project) renderClips(ctx context.Context, plan *Plan) ([]string, error) {
	for n, c := range plan.Clips {
		if err := ctx.Err(); err != nil {
			return nil, errs.Encode(c.Clip.Index, "render", err)
		}
		p.log.Info().
			Int("slide", c.Clip.Index+1).
			Int("clip", n+1).
			Int("of", len(plan.Clips)).
			Int("frames", len(c.Frames)).
			Str("effect", string(c.Effect)).
			Msg("rendering clip")
		if err := p.renderClip(ctx, c); err != nil {
			return nil, err
		}
	}
	return plan.Inputs(), nil
}

func (p *Project) renderClip(ctx context.Context, c ClipPlan) error {
	src, err := p.loader.Load(c.Image)
	if err != nil {
		return slideError(err, c.Clip.Index, "load image")
	}

	r := renderer.New(p.face, p.Config.Text.LineHeight, p.Config.Text.PanelOpacity)
	canvas := image.Rect(0, 0, p.Config.Video.Width, p.Config.Video.Height)
	stage := p.Config.Paths.StageFrames

	return p.encoder.EncodeClip(ctx, video.ClipJob{
		Slide:  c.Clip.Index,
		Frames: len(c.Frames),
		Output: c.Descriptor.OutputPath,
		Buffer:  func() *image.RGBA { return system.GetImage(canvas) },
		Release: system.PutImage,
		Render: func(i int, dst *image.RGBA) error {
			f := c.Frames[i]
			r.Render(dst, src, f.Geometry, f.Reveal)
			if stage {
				name := fmt.Sprintf("slide%03d_frame%04d.png", c.Clip.Index, i)
				if err := renderer.SavePNG(filepath.Join(p.framesDir(), name), dst); err != nil {
					return errs.Encode(c.Clip.Index, "stage frame", err)
				}
			}
			return nil
		},
	})
}
