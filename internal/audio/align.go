// Package audio aligns the narration track with the transition schedule and
// compiles the trim/join filter graph for it.
package audio

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/transition"
)

// Policy selects how the narration is cut.
type Policy string

const (
	// Single trims the whole narration to the program length.
	Single Policy = "single"
	// PerClip cuts one segment per clip at raw clip boundaries and joins them
	// with cross-fades matching the video transitions.
	PerClip Policy = "per-clip"
)

// Segment is a span of the narration source, in seconds.
type Segment struct {
	SourceStart float64 `yaml:"start"`
	SourceEnd   float64 `yaml:"end"`
}

// Length is the segment duration.
func (s Segment) Length() float64 { return s.SourceEnd - s.SourceStart }

// Request describes what the narration has to line up with.
type Request struct {
	Policy Policy
	// Narration is the source track duration.
	Narration float64
	// Clips are the clip durations, Transitions the cross-fade durations
	// between consecutive clips, Total the program length.
	Clips       []float64
	Transitions []float64
	Total       float64
	// PadShort appends silence to a narration that ends too early instead of
	// failing.
	PadShort  bool
	Tolerance float64
}

// Alignment is the audio side of the merge.
type Alignment struct {
	Policy   Policy    `yaml:"policy"`
	Segments []Segment `yaml:"segments"`
	// Joins are the cross-fade lengths between consecutive segments.
	Joins []float64 `yaml:"joins,omitempty"`
	// Pad is the silence appended to the source, in seconds.
	Pad float64 `yaml:"pad,omitempty"`
	// Length is the audio duration after joining; it matches the video
	// program length within tolerance.
	Length float64 `yaml:"length"`
}

// FromSchedule builds a request from a transition plan.
func FromSchedule(policy Policy, narration float64, plan transition.Plan) Request {
	fades := make([]float64, len(plan.Descriptors))
	for i, d := range plan.Descriptors {
		fades[i] = d.Duration
	}
	return Request{
		Policy:      policy,
		Narration:   narration,
		Clips:       plan.Clips,
		Transitions: fades,
		Total:       plan.Total,
	}
}

// Align computes the narration segments for req.
func Align(req Request) (Alignment, error) {
	if req.Total <= 0 {
		return Alignment{}, errs.Sync("program length %.3fs is not positive", req.Total)
	}
	if req.Narration <= 0 {
		return Alignment{}, errs.Sync("narration has no duration")
	}

	switch req.Policy {
	case Single, "":
		return alignSingle(req)
	case PerClip:
		return alignPerClip(req)
	default:
		return Alignment{}, errs.Sync("unknown audio policy %q", req.Policy)
	}
}

func alignSingle(req Request) (Alignment, error) {
	a := Alignment{
		Policy:   Single,
		Segments: []Segment{{SourceStart: 0, SourceEnd: req.Total}},
		Length:   req.Total,
	}
	pad, err := padding(req, req.Total)
	if err != nil {
		return Alignment{}, err
	}
	a.Pad = pad
	return a, nil
}

func alignPerClip(req Request) (Alignment, error) {
	if len(req.Clips) == 0 {
		return Alignment{}, errs.Sync("no clips to align")
	}
	if len(req.Transitions) != len(req.Clips)-1 {
		return Alignment{}, errs.Sync("%d clips need %d transitions, got %d", len(req.Clips), len(req.Clips)-1, len(req.Transitions))
	}

	a := Alignment{Policy: PerClip, Joins: append([]float64(nil), req.Transitions...)}
	start := 0.0
	for _, d := range req.Clips {
		a.Segments = append(a.Segments, Segment{SourceStart: start, SourceEnd: start + d})
		start += d
	}

	pad, err := padding(req, start)
	if err != nil {
		return Alignment{}, err
	}
	a.Pad = pad

	length := start
	for _, j := range a.Joins {
		length -= j
	}
	a.Length = length

	if diff := math.Abs(length - req.Total); diff > req.Tolerance+1e-9 {
		return Alignment{}, errs.Sync("joined narration is %.3fs but the video is %.3fs (off by %.3fs)", length, req.Total, diff)
	}
	return a, nil
}

func padding(req Request, needed float64) (float64, error) {
	short := needed - req.Narration
	if short <= req.Tolerance {
		return 0, nil
	}
	if !req.PadShort {
		return 0, errs.Sync("narration is %.3fs but %.3fs are needed", req.Narration, needed)
	}
	return short, nil
}

// SourceEnd is the furthest point of the source the segments reach.
func (a Alignment) SourceEnd() float64 {
	if len(a.Segments) == 0 {
		return 0
	}
	return a.Segments[len(a.Segments)-1].SourceEnd
}

// Nodes compiles the alignment into filter nodes reading audio stream input
// and ending in the pad named out.
func (a Alignment) Nodes(input int, out string) []transition.Node {
	src := fmt.Sprintf("%d:a", input)
	var nodes []transition.Node

	if a.Pad > 0 {
		nodes = append(nodes, transition.Node{
			Inputs:  []string{src},
			Op:      "apad=whole_dur=" + seconds(a.SourceEnd()),
			Outputs: []string{"apadded"},
		})
		src = "apadded"
	}

	if len(a.Segments) == 1 {
		s := a.Segments[0]
		nodes = append(nodes, transition.Node{
			Inputs:  []string{src},
			Op:      trimOp(s),
			Outputs: []string{out},
		})
		return nodes
	}

	split := transition.Node{
		Inputs: []string{src},
		Op:     fmt.Sprintf("asplit=%d", len(a.Segments)),
	}
	for i := range a.Segments {
		split.Outputs = append(split.Outputs, fmt.Sprintf("as%d", i))
	}
	nodes = append(nodes, split)

	for i, s := range a.Segments {
		nodes = append(nodes, transition.Node{
			Inputs:  []string{split.Outputs[i]},
			Op:      trimOp(s),
			Outputs: []string{fmt.Sprintf("at%d", i)},
		})
	}

	current := "at0"
	for i := 1; i < len(a.Segments); i++ {
		next := fmt.Sprintf("aj%d", i)
		if i == len(a.Segments)-1 {
			next = out
		}
		op := "concat=n=2:v=0:a=1"
		if i-1 < len(a.Joins) && a.Joins[i-1] > 0 {
			op = "acrossfade=d=" + seconds(a.Joins[i-1]) + ":c1=tri:c2=tri"
		}
		nodes = append(nodes, transition.Node{
			Inputs:  []string{current, fmt.Sprintf("at%d", i)},
			Op:      op,
			Outputs: []string{next},
		})
		current = next
	}
	return nodes
}

// FilterGraph renders Nodes as filter_complex syntax.
func (a Alignment) FilterGraph(input int, out string) string {
	return transition.RenderNodes(a.Nodes(input, out))
}

func trimOp(s Segment) string {
	return fmt.Sprintf("atrim=start=%s:end=%s,asetpts=PTS-STARTPTS", seconds(s.SourceStart), seconds(s.SourceEnd))
}

func seconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
