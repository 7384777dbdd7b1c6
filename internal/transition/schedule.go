// Package transition schedules the cross-fades that join clips into one
// program and compiles them into an ffmpeg filter graph.
package transition

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/slides2video/internal/errs"
)

// DefaultDuration is the cross-fade length used when none is configured.
const DefaultDuration = 1.0

// Options configures the scheduler.
type Options struct {
	// Duration is the cross-fade length. Zero joins clips back to back.
	Duration float64
	// FirstDuration overrides Duration for the first transition when > 0.
	FirstDuration float64
	Policy        Policy
	// Normalize is a filter chain applied to every input before blending,
	// e.g. to bring a promo clip to the canvas size and frame rate.
	Normalize string
	// SlideOffset is the clip index of the first slide; a leading promo clip
	// makes it 1. Used to report errors against slide indices.
	SlideOffset int
}

// Descriptor is one cross-fade between the program so far (LeftLabel) and
// clip RightIndex. Offset is measured from the start of the program.
type Descriptor struct {
	LeftLabel   string  `yaml:"left"`
	RightIndex  int     `yaml:"right_index"`
	Style       string  `yaml:"style"`
	Duration    float64 `yaml:"duration"`
	Offset      float64 `yaml:"offset"`
	OutputLabel string  `yaml:"output"`
}

// Node is one filter in the graph: labelled inputs, an operation and
// labelled outputs. Stream specifiers such as "0:v" are inputs, everything
// else is a filter pad.
type Node struct {
	Inputs  []string `yaml:"inputs"`
	Op      string   `yaml:"op"`
	Outputs []string `yaml:"outputs"`
}

// Plan is the compiled transition schedule.
type Plan struct {
	Clips       []float64    `yaml:"clips"`
	Descriptors []Descriptor `yaml:"transitions"`
	Nodes       []Node       `yaml:"nodes"`
	Output      string       `yaml:"output"`
	// Total is the program length: clip durations minus cross-fade overlaps.
	Total float64 `yaml:"total"`
}

func (o Options) durationFor(k int) float64 {
	if k == 0 && o.FirstDuration > 0 {
		return o.FirstDuration
	}
	return o.Duration
}

func (o Options) slide(clip int) int {
	if s := clip - o.SlideOffset; s >= 0 {
		return s
	}
	return errs.NoSlide
}

// Schedule folds the clips left to right into a chain of cross-fades.
func Schedule(durations []float64, opts Options) (Plan, error) {
	if len(durations) == 0 {
		return Plan{}, errs.Timeline(errs.NoSlide, "no clips to schedule")
	}
	for i, d := range durations {
		if d <= 0 {
			return Plan{}, errs.Timeline(opts.slide(i), "clip %d has non-positive duration %.3fs", i, d)
		}
	}
	if opts.Policy == nil {
		opts.Policy = Cycle{"fade"}
	}

	plan := Plan{Clips: append([]float64(nil), durations...)}

	labels := make([]string, len(durations))
	for i := range durations {
		labels[i] = fmt.Sprintf("%d:v", i)
		if opts.Normalize != "" {
			out := fmt.Sprintf("n%d", i)
			plan.Nodes = append(plan.Nodes, Node{Inputs: []string{labels[i]}, Op: opts.Normalize, Outputs: []string{out}})
			labels[i] = out
		}
	}

	accumulated := durations[0]
	current := labels[0]
	for i := 1; i < len(durations); i++ {
		k := i - 1
		td := opts.durationFor(k)
		if td < 0 {
			return Plan{}, errs.Timeline(opts.slide(i), "negative transition duration %.3fs", td)
		}
		if durations[i] < td {
			return Plan{}, errs.Timeline(opts.slide(i), "transition %.3fs is longer than the clip (%.3fs)", td, durations[i])
		}
		if durations[i-1] < td {
			return Plan{}, errs.Timeline(opts.slide(i-1), "transition %.3fs is longer than the clip (%.3fs)", td, durations[i-1])
		}

		offset := accumulated - td
		if offset < 0 {
			return Plan{}, errs.Timeline(opts.slide(i), "transition offset %.3fs is negative", offset)
		}

		d := Descriptor{
			LeftLabel:   current,
			RightIndex:  i,
			Style:       opts.Policy.Style(k),
			Duration:    td,
			Offset:      offset,
			OutputLabel: fmt.Sprintf("x%d", i),
		}
		plan.Descriptors = append(plan.Descriptors, d)
		plan.Nodes = append(plan.Nodes, Node{
			Inputs:  []string{current, labels[i]},
			Op:      blendOp(d),
			Outputs: []string{d.OutputLabel},
		})

		accumulated += durations[i] - td
		current = d.OutputLabel
	}

	plan.Output = current
	plan.Total = accumulated
	return plan, nil
}

func blendOp(d Descriptor) string {
	if d.Duration == 0 {
		return "concat=n=2:v=1:a=0"
	}
	return fmt.Sprintf("xfade=transition=%s:duration=%s:offset=%s",
		d.Style, formatSeconds(d.Duration), formatSeconds(d.Offset))
}

// ClipStarts returns where each clip begins on the program timeline.
func (p Plan) ClipStarts() []float64 {
	starts := make([]float64, len(p.Clips))
	for _, d := range p.Descriptors {
		starts[d.RightIndex] = d.Offset
	}
	return starts
}

// FilterGraph renders the nodes as an ffmpeg filter_complex chain.
func (p Plan) FilterGraph() string {
	return RenderNodes(p.Nodes)
}

// MapLabel is the -map argument selecting the program's video.
func (p Plan) MapLabel() string {
	return MapArg(p.Output)
}

// RenderNodes joins nodes into filter_complex syntax.
func RenderNodes(nodes []Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		var b strings.Builder
		for _, in := range n.Inputs {
			b.WriteString("[" + in + "]")
		}
		b.WriteString(n.Op)
		for _, out := range n.Outputs {
			b.WriteString("[" + out + "]")
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ";")
}

// MapArg formats a label for -map: stream specifiers pass through, filter
// pads are bracketed.
func MapArg(label string) string {
	if strings.Contains(label, ":") {
		return label
	}
	return "[" + label + "]"
}

// formatSeconds prints v with microsecond precision and no trailing zeros.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
