package director

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/slides2video/internal/analyzer"
	"github.com/ivlev/slides2video/internal/effects"
	"github.com/ivlev/slides2video/internal/errs"
)

func TestDraft(t *testing.T) {
	d := NewDirector(4)

	pages := []Page{
		{
			Image: "a.png", Width: 1000, Height: 500,
			Blocks: []analyzer.Block{
				{Rect: image.Rect(50, 50, 200, 100)},
				{Rect: image.Rect(50, 150, 350, 300)},
			},
		},
		{Image: "b.png", Width: 1000, Height: 500},
		{Image: "c.png", Width: 1000, Height: 500},
		{
			Image: "d.png", Width: 1000, Height: 500,
			Blocks: []analyzer.Block{{Rect: image.Rect(0, 0, 1000, 500)}},
		},
	}

	scenario, err := d.Draft(pages, nil)
	require.NoError(t, err)
	require.Len(t, scenario.Slides, 4)
	assert.Equal(t, "1.0", scenario.Version)

	first := scenario.Slides[0]
	assert.Equal(t, "a.png", first.Image)
	assert.Equal(t, string(effects.Focus), first.Effect)
	assert.Equal(t, "region_2", first.Focus)
	assert.Equal(t, 4.0, *first.Duration)

	assert.Equal(t, string(effects.ZoomIn), scenario.Slides[1].Effect)
	assert.Equal(t, string(effects.ZoomOut), scenario.Slides[2].Effect)
	assert.Equal(t, string(effects.ZoomIn), scenario.Slides[3].Effect, "full-page block is not a subject")
}

func TestDraftDurations(t *testing.T) {
	d := NewDirector(4)
	pages := []Page{{Image: "a.png"}, {Image: "b.png"}}

	scenario, err := d.Draft(pages, []float64{2.5, 3})
	require.NoError(t, err)
	assert.Equal(t, 2.5, *scenario.Slides[0].Duration)
	assert.Equal(t, 3.0, *scenario.Slides[1].Duration)

	_, err = d.Draft(pages, []float64{1})
	assert.Error(t, err)
	_, err = d.Draft(nil, nil)
	assert.Error(t, err)
}

func TestScenarioWriteRead(t *testing.T) {
	scenario := &Scenario{
		Version: "1.0",
		Slides: []Slide{
			{Image: "a.png", Text: "Hello", Duration: Float(5), Effect: "zoom-in", TextReveal: Float(2)},
			{Image: "deck.pdf#2", Effect: "focus", Focus: "region_1"},
		},
	}

	path := filepath.Join(t.TempDir(), "lists", "slides.yaml")
	require.NoError(t, WriteScenario(scenario, path))

	read, err := ReadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, scenario, read)
}

func TestParseScenarioForms(t *testing.T) {
	list := []byte(`
- image: a.png
  text: Hi
  textReveal: 1.5
- image: b.png
  duration: 0
`)
	sc, err := ParseScenario(list)
	require.NoError(t, err)
	require.Len(t, sc.Slides, 2)
	assert.Equal(t, 1.5, *sc.Slides[0].TextReveal)
	require.NotNil(t, sc.Slides[1].Duration, "explicit zero is kept")
	assert.Zero(t, *sc.Slides[1].Duration)

	jsonList := []byte(`[{"image": "a.png", "duration": 3, "effect": "zoom-out"}]`)
	sc, err = ParseScenario(jsonList)
	require.NoError(t, err)
	assert.Equal(t, "zoom-out", sc.Slides[0].Effect)

	for _, bad := range []string{"", "slides: []", "just text", "[{image: [}"} {
		_, err := ParseScenario([]byte(bad))
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, errs.ErrConfig), bad)
	}
}

func TestResolve(t *testing.T) {
	def := Defaults{Duration: 4}

	s, err := Slide{Image: "a.png"}.Resolve(0, def)
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Duration)
	assert.Equal(t, effects.None, s.Effect)

	s, err = Slide{Image: "a.png", Text: "Hi", TextReveal: Float(1), Effect: "Zoom-In"}.Resolve(0, def)
	require.NoError(t, err)
	assert.Equal(t, effects.ZoomIn, s.Effect)
	assert.Equal(t, 1.0, s.TextReveal)

	tests := []struct {
		name  string
		slide Slide
	}{
		{"missing image", Slide{}},
		{"zero duration", Slide{Image: "a.png", Duration: Float(0)}},
		{"negative duration", Slide{Image: "a.png", Duration: Float(-2)}},
		{"unknown effect", Slide{Image: "a.png", Effect: "spin"}},
		{"caption without reveal", Slide{Image: "a.png", Text: "Hi"}},
		{"caption with zero reveal", Slide{Image: "a.png", Text: "Hi", TextReveal: Float(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.slide.Resolve(3, def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrConfig))
			assert.Equal(t, 3, errs.SlideOf(err))
		})
	}
}

func TestScenarioResolveSkip(t *testing.T) {
	sc := &Scenario{Slides: []Slide{
		{Image: "a.png"},
		{Image: "b.png", Effect: "spin"},
		{Image: "c.png"},
	}}

	_, _, failed := sc.Resolve(Defaults{Duration: 4}, false)
	require.Len(t, failed, 1)

	slides, indices, failed := sc.Resolve(Defaults{Duration: 4}, true)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, errs.SlideOf(failed[0]))
	assert.Len(t, slides, 2)
	assert.Equal(t, []int{0, 2}, indices)
	assert.Equal(t, "c.png", slides[1].Image)
}
