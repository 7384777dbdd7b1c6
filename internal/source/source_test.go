package source

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/slides2video/internal/errs"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{"slides/a.png", Ref{File: "slides/a.png", Page: -1}, false},
		{"deck.pdf", Ref{File: "deck.pdf", Page: 0}, false},
		{"deck.PDF#3", Ref{File: "deck.PDF", Page: 2}, false},
		{"deck.pdf#0", Ref{}, true},
		{"deck.pdf#x", Ref{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slide.png")
	writePNG(t, path, 64, 48)

	l := NewFileLoader(0)
	w, h, err := l.Dimensions(path)
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	img, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
}

func TestFileLoaderMissing(t *testing.T) {
	_, err := NewFileLoader(150).Load(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrAsset))
	assert.Equal(t, errs.NoSlide, errs.SlideOf(err))

	_, _, err = NewFileLoader(150).Dimensions(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.True(t, errors.Is(err, errs.ErrAsset))
}

func TestFilesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, files)
}
