// Package textreveal computes the caption layout and the letter-by-letter
// reveal state of a slide for any frame.
package textreveal

import (
	"errors"
	"math"
	"strings"
)

// ErrNoReveal is returned when a caption has no positive reveal time.
var ErrNoReveal = errors.New("text reveal duration must be positive")

// Measurer maps a string to its rendered pixel width for a fixed font.
type Measurer interface {
	Measure(s string) float64
}

// Glyph is one visible character and its opacity.
type Glyph struct {
	Rune  rune
	Alpha float64
}

// Line is a wrapped line restricted to its visible characters. X and Y are
// the top-left of the line's text area on the canvas.
type Line struct {
	Glyphs []Glyph
	Width  float64
	X, Y   float64
}

// Box is the caption background panel on the canvas.
type Box struct {
	X, Y, W, H float64
}

// State is the caption as drawn for a single frame.
type State struct {
	VisibleText string
	Lines       []Line
	Box         Box
	Letters     int
	Total       int
}

// Empty reports whether nothing is drawn.
func (s State) Empty() bool { return len(s.Lines) == 0 }

// Layout holds the caption placement settings.
type Layout struct {
	CanvasW, CanvasH int
	MaxWidth         float64
	LineHeight       float64
	Padding          float64
	BottomMargin     float64
	// FadeWindow is the fraction of a letter's reveal interval over which the
	// newest letter fades in.
	FadeWindow float64
}

// Planner prepares captions for a fixed font and layout.
type Planner struct {
	Measurer Measurer
	Layout   Layout
	FPS      int
}

// Wrap breaks text greedily into lines no wider than maxWidth. A single word
// wider than maxWidth still gets its own line. Joining the result with single
// spaces gives back the trimmed text.
func Wrap(m Measurer, text string, maxWidth float64) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	words := strings.Split(text, " ")
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if m.Measure(candidate) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}

// RevealFrames is the length in frames of the reveal window, capped at the
// clip length.
func RevealFrames(fps int, reveal float64, total int) (float64, error) {
	if reveal <= 0 || math.IsNaN(reveal) {
		return 0, ErrNoReveal
	}
	return math.Min(float64(fps)*reveal, float64(total)), nil
}

// LettersToShow returns how many letters are visible at frame i. At least one
// letter is always shown.
func LettersToShow(i int, revealFrames float64, total int) int {
	if total <= 0 {
		return 0
	}
	n := total
	if float64(i) < revealFrames {
		n = int(math.Floor(float64(i*total) / revealFrames))
	}
	return max(1, min(n, total))
}

// Reveal is a caption prepared for one clip. At is a pure function of the
// frame index.
type Reveal struct {
	layout       Layout
	measurer     Measurer
	lines        [][]rune
	offsets      []int
	total        int
	revealFrames float64
	anchorX      float64
}

// Prepare wraps the caption and computes the reveal window for a clip of
// totalFrames frames. Empty text yields a Reveal whose states are empty.
func (p Planner) Prepare(text string, reveal float64, totalFrames int) (*Reveal, error) {
	r := &Reveal{layout: p.Layout, measurer: p.Measurer}

	wrapped := Wrap(p.Measurer, text, p.Layout.MaxWidth)
	if len(wrapped) == 0 {
		return r, nil
	}

	rf, err := RevealFrames(p.FPS, reveal, totalFrames)
	if err != nil {
		return nil, err
	}
	r.revealFrames = rf

	widest := 0.0
	offset := 0
	for _, l := range wrapped {
		runes := []rune(l)
		r.lines = append(r.lines, runes)
		r.offsets = append(r.offsets, offset)
		offset += len(runes) + 1
		widest = math.Max(widest, p.Measurer.Measure(l))
	}
	r.total = offset - 1
	// The panel is anchored on the fully revealed layout so text does not
	// drift sideways while letters appear.
	r.anchorX = (float64(p.Layout.CanvasW) - widest - 2*p.Layout.Padding) / 2
	return r, nil
}

// Total is the number of letters, spaces included.
func (r *Reveal) Total() int { return r.total }

// RevealFrames is the reveal window in frames.
func (r *Reveal) RevealFrames() float64 { return r.revealFrames }

// At returns the caption state for frame i.
func (r *Reveal) At(i int) State {
	if r.total == 0 {
		return State{}
	}

	n := LettersToShow(i, r.revealFrames, r.total)
	newest := n - 1
	newestAlpha := 1.0
	// The first letter is on screen from frame 0 and never fades.
	if newest > 0 && float64(i) < r.revealFrames {
		exact := float64(i*r.total) / r.revealFrames
		progress := exact - math.Floor(exact)
		newestAlpha = math.Min(1, progress/r.layout.FadeWindow)
	}

	st := State{Letters: n, Total: r.total}
	var visible []string
	widest := 0.0
	for li, runes := range r.lines {
		start := r.offsets[li]
		count := min(len(runes), n-start)
		if count <= 0 {
			break
		}

		glyphs := make([]Glyph, count)
		for k := 0; k < count; k++ {
			alpha := 1.0
			if start+k == newest {
				alpha = newestAlpha
			}
			glyphs[k] = Glyph{Rune: runes[k], Alpha: alpha}
		}
		text := string(runes[:count])
		width := r.measurer.Measure(text)
		widest = math.Max(widest, width)

		visible = append(visible, text)
		st.Lines = append(st.Lines, Line{Glyphs: glyphs, Width: width})
	}
	st.VisibleText = strings.Join(visible, " ")

	l := r.layout
	st.Box = Box{
		X: r.anchorX,
		W: widest + 2*l.Padding,
		H: float64(len(st.Lines))*l.LineHeight + 2*l.Padding,
	}
	st.Box.Y = float64(l.CanvasH) - l.BottomMargin - st.Box.H
	for k := range st.Lines {
		st.Lines[k].X = st.Box.X + l.Padding
		st.Lines[k].Y = st.Box.Y + l.Padding + float64(k)*l.LineHeight
	}
	return st
}
