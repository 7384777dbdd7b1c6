package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/overlay"
	"github.com/ivlev/slides2video/internal/subtitle"
	"github.com/ivlev/slides2video/internal/video"
)

// writeOutput merges the clips next to the final path and renames the
// result into place once every pass, the subtitle sidecar included, has
// succeeded.
func (p *Project) writeOutput(ctx context.Context, plan *Plan, clips []string) error {
	output := p.Config.Paths.Output
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return errs.Encode(errs.NoSlide, "create output dir", err)
	}

	merged := partialPath(output, "merge")
	defer os.Remove(merged)

	p.log.Info().Int("clips", len(clips)).Int("transitions", len(plan.Transitions.Descriptors)).Msg("merging clips")
	err := p.encoder.Merge(ctx, video.MergeJob{
		Clips:     clips,
		Plan:      plan.Transitions,
		Narration: plan.Narration,
		Audio:     plan.Audio,
		Output:    merged,
	})
	if err != nil {
		return err
	}

	final := merged
	logo, ok, err := overlay.Logo(p.Config.Logo, p.Config.Paths.WorkDir)
	if err != nil {
		return err
	}
	if ok {
		stamped := partialPath(output, "logo")
		defer os.Remove(stamped)

		l := p.Config.Logo
		p.log.Info().Str("logo", logo).Str("corner", l.Corner).Msg("adding logo")
		err := p.encoder.Overlay(ctx, video.OverlayJob{
			Input:   merged,
			Logo:    logo,
			Output:  stamped,
			Width:   l.Width,
			Height:  l.Height,
			MarginX: l.MarginX,
			MarginY: l.MarginY,
			Corner:  l.Corner,
		})
		if err != nil {
			return err
		}
		final = stamped
	}

	if p.Config.Subtitles.Enabled {
		if err := p.writeSubtitles(plan); err != nil {
			return err
		}
	}

	if err := os.Rename(final, output); err != nil {
		return errs.Encode(errs.NoSlide, "publish output", err)
	}
	return nil
}

// partialPath is a hidden sibling of output that keeps its extension, so
// ffmpeg still infers the container.
func partialPath(output, stage string) string {
	dir, base := filepath.Split(output)
	ext := filepath.Ext(base)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.partial%s", strings.TrimSuffix(base, ext), stage, ext))
}

// SubtitlePath is where the caption sidecar is written.
func (p *Project) SubtitlePath() string {
	if path := p.Config.Subtitles.Path; path != "" {
		return path
	}
	output := p.Config.Paths.Output
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".srt"
}

func (p *Project) writeSubtitles(plan *Plan) error {
	entries, err := subtitle.FromTimeline(plan.Captions(), plan.Transitions.ClipStarts(), plan.Transitions.Total)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		p.log.Debug().Msg("no captions, skipping subtitles")
		return nil
	}
	path := p.SubtitlePath()
	if err := subtitle.WriteFile(path, entries); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}
	p.log.Info().Str("path", path).Int("cues", len(entries)).Msg("subtitles written")
	return nil
}
