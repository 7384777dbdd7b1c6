// Package video drives ffmpeg: encoding rendered frames into clips,
// merging clips with transitions and narration, and the logo overlay pass.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/slides2video/internal/audio"
	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/transition"
)

// ClipJob is one clip to encode. Render paints frame i into dst; it is
// called in order and may be called again from the start on retry.
type ClipJob struct {
	Slide  int
	Frames int
	Output string
	Render func(i int, dst *image.RGBA) error
	// Buffer returns the canvas frames are painted into. Nil allocates one.
	Buffer func() *image.RGBA
	// Release is called with the buffer after the last frame.
	Release func(*image.RGBA)
}

// MergeJob joins clips with the scheduled transitions and, when Narration
// is set, the aligned audio. The output is cut to Plan.Total.
type MergeJob struct {
	Clips     []string
	Plan      transition.Plan
	Narration string
	Audio     *audio.Alignment
	Output    string
}

// OverlayJob stamps a logo of Width x Height at a corner of Input.
type OverlayJob struct {
	Input   string
	Logo    string
	Output  string
	Width   int
	Height  int
	MarginX int
	MarginY int
	Corner  string
}

// Encoder performs the blocking units of work of a render.
type Encoder interface {
	EncodeClip(ctx context.Context, job ClipJob) error
	Merge(ctx context.Context, job MergeJob) error
	Overlay(ctx context.Context, job OverlayJob) error
}

// FFmpegEncoder runs every unit as its own ffmpeg process bounded by
// Timeout. Clip encoding is retried up to Retries times on EncodeError.
type FFmpegEncoder struct {
	Settings Settings
	Timeout  time.Duration
	Retries  int
	Binary   string
	log      zerolog.Logger
}

func NewFFmpegEncoder(log zerolog.Logger, settings Settings, timeout time.Duration, retries int) *FFmpegEncoder {
	return &FFmpegEncoder{
		Settings: settings,
		Timeout:  timeout,
		Retries:  retries,
		Binary:   "ffmpeg",
		log:      log.With().Str("component", "ffmpeg").Logger(),
	}
}

func (e *FFmpegEncoder) EncodeClip(ctx context.Context, job ClipJob) error {
	if job.Frames <= 0 {
		return errs.Encode(job.Slide, "encode clip", fmt.Errorf("no frames"))
	}

	var err error
	for attempt := 0; attempt <= e.Retries; attempt++ {
		if attempt > 0 {
			e.log.Warn().Err(err).Int("slide", job.Slide+1).Int("attempt", attempt+1).Msg("retrying clip")
		}
		err = e.encodeOnce(ctx, job)
		if err == nil || !errors.Is(err, errs.ErrEncode) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (e *FFmpegEncoder) encodeOnce(ctx context.Context, job ClipJob) error {
	if err := ctx.Err(); err != nil {
		return errs.Encode(job.Slide, "encode clip", err)
	}

	uctx, cancel := e.unitContext(ctx)
	defer cancel()

	args := e.Settings.clipArgs(job)
	e.log.Debug().Strs("args", args).Msg("encoding clip")

	cmd := exec.CommandContext(uctx, e.Binary, args...)
	var stderr tail
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errs.Encode(job.Slide, "stdin pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return errs.Encode(job.Slide, "start ffmpeg", err)
	}

	writeErr := e.writeFrames(stdin, job)
	stdin.Close()
	waitErr := cmd.Wait()

	if errors.Is(uctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return errs.Timeout(job.Slide, "encode clip", fmt.Errorf("exceeded %s", e.Timeout))
	}
	if waitErr != nil {
		return errs.Encode(job.Slide, "encode clip", fmt.Errorf("%w: %s", waitErr, stderr.String()))
	}
	if writeErr != nil {
		return writeErr
	}
	return nil
}

func (e *FFmpegEncoder) writeFrames(w io.Writer, job ClipJob) error {
	rect := image.Rect(0, 0, e.Settings.Width, e.Settings.Height)
	var buf *image.RGBA
	if job.Buffer != nil {
		buf = job.Buffer()
	} else {
		buf = image.NewRGBA(rect)
	}
	if job.Release != nil {
		defer job.Release(buf)
	}
	if buf.Rect != rect {
		return errs.Encode(job.Slide, "write frames", fmt.Errorf("buffer %v does not match canvas %v", buf.Rect, rect))
	}

	for i := 0; i < job.Frames; i++ {
		if err := job.Render(i, buf); err != nil {
			return err
		}
		if _, err := w.Write(buf.Pix); err != nil {
			return errs.Encode(job.Slide, "write frames", fmt.Errorf("frame %d: %w", i, err))
		}
	}
	return nil
}

func (e *FFmpegEncoder) Merge(ctx context.Context, job MergeJob) error {
	if len(job.Clips) == 0 {
		return errs.Encode(errs.NoSlide, "merge", fmt.Errorf("no clips"))
	}
	args := e.Settings.mergeArgs(job)
	e.log.Info().Int("clips", len(job.Clips)).Float64("total", job.Plan.Total).Msg("merging clips")
	return e.run(ctx, "merge", args)
}

func (e *FFmpegEncoder) Overlay(ctx context.Context, job OverlayJob) error {
	args, err := e.Settings.overlayArgs(job)
	if err != nil {
		return errs.Encode(errs.NoSlide, "overlay", err)
	}
	e.log.Info().Str("logo", job.Logo).Str("corner", job.Corner).Msg("applying overlay")
	return e.run(ctx, "overlay", args)
}

func (e *FFmpegEncoder) run(ctx context.Context, op string, args []string) error {
	if err := ctx.Err(); err != nil {
		return errs.Encode(errs.NoSlide, op, err)
	}
	uctx, cancel := e.unitContext(ctx)
	defer cancel()

	e.log.Debug().Strs("args", args).Msg("executing ffmpeg")
	cmd := exec.CommandContext(uctx, e.Binary, args...)
	var stderr tail
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(uctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return errs.Timeout(errs.NoSlide, op, fmt.Errorf("exceeded %s", e.Timeout))
	}
	if err != nil {
		return errs.Encode(errs.NoSlide, op, fmt.Errorf("%w: %s", err, stderr.String()))
	}
	return nil
}

func (e *FFmpegEncoder) unitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout > 0 {
		return context.WithTimeout(ctx, e.Timeout)
	}
	return context.WithCancel(ctx)
}

// tailLimit bounds how much ffmpeg stderr is kept for error messages.
const tailLimit = 4 << 10

// tail keeps the last tailLimit bytes written to it.
type tail struct {
	buf bytes.Buffer
}

func (t *tail) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if extra := t.buf.Len() - tailLimit; extra > 0 {
		t.buf.Next(extra)
	}
	return n, nil
}

func (t *tail) String() string {
	return strings.TrimSpace(t.buf.String())
}
