package textreveal

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monoMeasurer gives every rune the same advance.
type monoMeasurer float64

func (m monoMeasurer) Measure(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * float64(m)
}

func testPlanner() Planner {
	return Planner{
		Measurer: monoMeasurer(10),
		FPS:      25,
		Layout: Layout{
			CanvasW:      1280,
			CanvasH:      720,
			MaxWidth:     1120,
			LineHeight:   50,
			Padding:      20,
			BottomMargin: 50,
			FadeWindow:   0.5,
		},
	}
}

func TestWrap(t *testing.T) {
	m := monoMeasurer(10)

	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"fits", "Hello world", 200, []string{"Hello world"}},
		{"breaks", "Hello brave new world", 110, []string{"Hello brave", "new world"}},
		{"overlong word keeps its own line", "a supercalifragilistic b", 50, []string{"a", "supercalifragilistic", "b"}},
		{"single overflowing word", "supercalifragilistic", 10, []string{"supercalifragilistic"}},
		{"trims", "  padded text ", 500, []string{"padded text"}},
		{"empty", "   ", 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(m, tt.text, tt.maxWidth))
		})
	}
}

func TestWrapRoundTrip(t *testing.T) {
	m := monoMeasurer(7)
	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		" leading and trailing ",
		"double  spaces  survive",
		"Überall ist es schön, sagt man",
	}
	for _, text := range texts {
		for _, width := range []float64{1, 50, 120, 10000} {
			lines := Wrap(m, text, width)
			require.NotEmpty(t, lines)
			assert.Equal(t, strings.TrimSpace(text), strings.Join(lines, " "))
			for _, l := range lines {
				if m.Measure(l) > width {
					assert.NotContains(t, l, " ", "only a single word may overflow")
				}
			}
		}
	}
}

func TestRevealFrames(t *testing.T) {
	rf, err := RevealFrames(25, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rf)

	rf, err = RevealFrames(25, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rf, "capped by clip length")

	_, err = RevealFrames(25, 0, 100)
	assert.True(t, errors.Is(err, ErrNoReveal))
}

func TestLettersToShow(t *testing.T) {
	// Hello world: 11 letters over 50 frames
	assert.Equal(t, 5, LettersToShow(25, 50, 11))
	assert.Equal(t, 1, LettersToShow(0, 50, 11))
	assert.Equal(t, 11, LettersToShow(50, 50, 11))
	assert.Equal(t, 0, LettersToShow(3, 50, 0))

	for _, rf := range []float64{1, 7.5, 50, 100} {
		prev := 0
		for i := 0; i < 120; i++ {
			n := LettersToShow(i, rf, 11)
			assert.GreaterOrEqual(t, n, 1)
			assert.GreaterOrEqual(t, n, prev, "non-decreasing at frame %d", i)
			if float64(i) >= rf {
				assert.Equal(t, 11, n)
			}
			prev = n
		}
	}
}

func TestRevealHelloWorld(t *testing.T) {
	r, err := testPlanner().Prepare("Hello world", 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 11, r.Total())
	assert.Equal(t, 50.0, r.RevealFrames())

	st := r.At(25)
	assert.Equal(t, "Hello", st.VisibleText)
	assert.Equal(t, 5, st.Letters)
	require.Len(t, st.Lines, 1)
	require.Len(t, st.Lines[0].Glyphs, 5)

	// 25*11/50 = 5.5: the newest letter has used up its 0.5 fade window
	for _, g := range st.Lines[0].Glyphs[:4] {
		assert.Equal(t, 1.0, g.Alpha)
	}
	assert.InDelta(t, 1.0, st.Lines[0].Glyphs[4].Alpha, 1e-9)

	st = r.At(27)
	// 27*11/50 = 5.94 -> 5 letters, newest progress 0.94 -> alpha 1
	assert.Equal(t, "Hello", st.VisibleText)

	st = r.At(29)
	// 29*11/50 = 6.38 -> 6 letters; newest is the space, progress 0.38
	assert.Equal(t, "Hello ", st.VisibleText)
	assert.InDelta(t, 0.76, st.Lines[0].Glyphs[5].Alpha, 1e-9)

	full := r.At(99)
	assert.Equal(t, "Hello world", full.VisibleText)
	for _, g := range full.Lines[0].Glyphs {
		assert.Equal(t, 1.0, g.Alpha)
	}
}

func TestRevealAlphaNeverDecreases(t *testing.T) {
	r, err := testPlanner().Prepare("Hello world", 2, 100)
	require.NoError(t, err)

	first := r.At(0)
	require.Len(t, first.Lines, 1)
	assert.Equal(t, 1.0, first.Lines[0].Glyphs[0].Alpha, "first letter is visible on frame 0")

	alpha := make([]float64, r.Total())
	for i := 0; i < 100; i++ {
		k := 0
		for _, line := range r.At(i).Lines {
			for _, g := range line.Glyphs {
				assert.GreaterOrEqual(t, g.Alpha, alpha[k], "letter %d at frame %d", k, i)
				alpha[k] = g.Alpha
				k++
			}
			k++ // the space consumed by the line break
		}
	}
}

func TestRevealExcludesHiddenLettersFromBox(t *testing.T) {
	p := testPlanner()
	r, err := p.Prepare("Hello world", 2, 100)
	require.NoError(t, err)

	partial := r.At(25)
	full := r.At(60)
	assert.InDelta(t, 5*10+2*20, partial.Box.W, 1e-9)
	assert.InDelta(t, 11*10+2*20, full.Box.W, 1e-9)
	assert.Equal(t, partial.Box.X, full.Box.X, "panel stays anchored")
	assert.InDelta(t, 50+2*20, full.Box.H, 1e-9)
	assert.InDelta(t, 720-50-full.Box.H, full.Box.Y, 1e-9)
}

func TestRevealMultiline(t *testing.T) {
	p := testPlanner()
	p.Layout.MaxWidth = 110
	r, err := p.Prepare("Hello brave new world", 1, 50)
	require.NoError(t, err)
	require.Equal(t, 21, r.Total())

	// frame 0 shows a single letter on the first line only
	st := r.At(0)
	require.Len(t, st.Lines, 1)
	assert.Equal(t, "H", st.VisibleText)
	assert.Equal(t, 0.0, st.Lines[0].Glyphs[0].Alpha)

	// 15 letters: "Hello brave" + space + "new"
	st = r.At(18) // 18*21/25 = 15.12
	assert.Equal(t, 15, st.Letters)
	require.Len(t, st.Lines, 2)
	assert.Equal(t, "Hello brave new", st.VisibleText)
	assert.InDelta(t, st.Lines[0].Y+50, st.Lines[1].Y, 1e-9)
	assert.InDelta(t, 2*50+2*20, st.Box.H, 1e-9)

	prevLetters := 0
	for i := 0; i < 50; i++ {
		s := r.At(i)
		assert.GreaterOrEqual(t, s.Letters, prevLetters)
		prevLetters = s.Letters
	}
	assert.Equal(t, 21, prevLetters)
}

func TestPrepareErrors(t *testing.T) {
	p := testPlanner()

	_, err := p.Prepare("caption", 0, 100)
	assert.True(t, errors.Is(err, ErrNoReveal))

	r, err := p.Prepare("", 0, 100)
	require.NoError(t, err)
	assert.True(t, r.At(10).Empty())
}
