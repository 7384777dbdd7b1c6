package video

import (
	"fmt"
	"strconv"

	"github.com/ivlev/slides2video/internal/transition"
)

// Settings are the encoder parameters shared by every unit of work.
type Settings struct {
	Codec        string
	Quality      int
	Preset       string
	Threads      int
	Width        int
	Height       int
	FPS          int
	AudioCodec   string
	AudioBitrate string
}

// qualityArgs maps the single quality knob onto each encoder's own option.
func (s Settings) qualityArgs() []string {
	switch s.Codec {
	case "h264_videotoolbox":
		// VideoToolbox ignores -crf; quality 75 means 7.5 Mbit/s.
		return []string{"-b:v", fmt.Sprintf("%dk", s.Quality*100)}
	case "h264_nvenc":
		return []string{"-cq", strconv.Itoa(s.Quality)}
	default:
		preset := s.Preset
		if preset == "" {
			preset = "medium"
		}
		return []string{"-crf", strconv.Itoa(s.Quality), "-preset", preset}
	}
}

func (s Settings) videoOut() []string {
	args := []string{"-c:v", s.Codec, "-pix_fmt", "yuv420p"}
	args = append(args, s.qualityArgs()...)
	if s.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(s.Threads))
	}
	return args
}

func (s Settings) audioOut() []string {
	codec := s.AudioCodec
	if codec == "" {
		codec = "aac"
	}
	args := []string{"-c:a", codec}
	if s.AudioBitrate != "" {
		args = append(args, "-b:a", s.AudioBitrate)
	}
	return args
}

// clipArgs reads frames as raw RGBA from stdin.
func (s Settings) clipArgs(job ClipJob) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", strconv.Itoa(s.FPS),
		"-i", "-",
		"-frames:v", strconv.Itoa(job.Frames),
		"-r", strconv.Itoa(s.FPS),
	}
	args = append(args, s.videoOut()...)
	return append(args, job.Output)
}

// Normalize is the filter chain that brings a foreign clip, such as a promo,
// to the canvas geometry, frame rate and timebase of rendered clips.
func (s Settings) Normalize() string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,fps=%d,format=yuv420p,settb=AVTB",
		s.Width, s.Height, s.Width, s.Height, s.FPS)
}

// audioLabel is the filter pad carrying the aligned narration.
const audioLabel = "aout"

func (s Settings) mergeArgs(job MergeJob) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, c := range job.Clips {
		args = append(args, "-i", c)
	}

	graph := job.Plan.FilterGraph()
	if job.Narration != "" && job.Audio != nil {
		args = append(args, "-i", job.Narration)
		audioGraph := job.Audio.FilterGraph(len(job.Clips), audioLabel)
		if graph != "" {
			graph += ";"
		}
		graph += audioGraph
	}
	if graph != "" {
		args = append(args, "-filter_complex", graph)
	}

	args = append(args, "-map", job.Plan.MapLabel())
	if job.Narration != "" && job.Audio != nil {
		args = append(args, "-map", transition.MapArg(audioLabel))
		args = append(args, s.audioOut()...)
	}

	args = append(args, s.videoOut()...)
	args = append(args,
		"-r", strconv.Itoa(s.FPS),
		"-t", seconds(job.Plan.Total),
		"-movflags", "+faststart",
		job.Output,
	)
	return args
}

// Corner positions for the overlay filter.
var cornerExpr = map[string]string{
	"top-left":     "x=%d:y=%d",
	"top-right":    "x=main_w-overlay_w-%d:y=%d",
	"bottom-left":  "x=%d:y=main_h-overlay_h-%d",
	"bottom-right": "x=main_w-overlay_w-%d:y=main_h-overlay_h-%d",
}

func (s Settings) overlayArgs(job OverlayJob) ([]string, error) {
	pos, ok := cornerExpr[job.Corner]
	if !ok {
		return nil, fmt.Errorf("unknown corner %q", job.Corner)
	}
	graph := fmt.Sprintf("[1:v]scale=%d:%d[logo];[0:v][logo]overlay=%s:format=auto,format=yuv420p[vout]",
		job.Width, job.Height, fmt.Sprintf(pos, job.MarginX, job.MarginY))

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", job.Input,
		"-i", job.Logo,
		"-filter_complex", graph,
		"-map", "[vout]",
		"-map", "0:a?",
		"-c:a", "copy",
	}
	args = append(args, s.videoOut()...)
	args = append(args, "-movflags", "+faststart", job.Output)
	return args, nil
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
