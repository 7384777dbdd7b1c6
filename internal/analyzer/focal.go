package analyzer

import (
	"image"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/geometry"
	"github.com/ivlev/slides2video/internal/source"
)

// FocalDetector locates the subject a slide should pan towards. ok is false
// when nothing matching label was found; the pan then stays centred.
type FocalDetector interface {
	Detect(path, label string) (p geometry.Point, ok bool, err error)
}

// Focus labels understood by BlockFocal. "region_N" selects the N-th block
// in reading order. The contrast detector cannot classify subjects, so any
// other label falls back to the largest block.
const (
	LabelLargest = "largest"
	LabelFirst   = "first"
	regionPrefix = "region_"
)

// BlockFocal runs a Detector on a downscaled copy of the slide image and
// maps the chosen block centre back to source pixels.
type BlockFocal struct {
	Loader   source.Loader
	Detector Detector
	// MaxDimension bounds the longer side of the analysed copy; 0 analyses
	// the full image.
	MaxDimension int
}

func (f *BlockFocal) Detect(path, label string) (geometry.Point, bool, error) {
	img, err := f.Loader.Load(path)
	if err != nil {
		return geometry.Point{}, false, err
	}

	small, scale := Downscale(img, f.MaxDimension)
	blocks, err := f.Detector.Detect(small)
	if err != nil {
		return geometry.Point{}, false, errs.Asset(errs.NoSlide, "detect "+path, err)
	}

	block, ok := Pick(blocks, label)
	if !ok {
		return geometry.Point{}, false, nil
	}

	c := block.Center().Sub(small.Bounds().Min)
	return geometry.Point{X: float64(c.X) / scale, Y: float64(c.Y) / scale}, true, nil
}

// Pick selects a block by focus label.
func Pick(blocks []Block, label string) (Block, bool) {
	if len(blocks) == 0 {
		return Block{}, false
	}

	label = strings.ToLower(strings.TrimSpace(label))
	switch {
	case label == LabelFirst:
		return ReadingOrder(blocks)[0], true
	case strings.HasPrefix(label, regionPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(label, regionPrefix))
		ordered := ReadingOrder(blocks)
		if err != nil || n < 1 || n > len(ordered) {
			return Block{}, false
		}
		return ordered[n-1], true
	default:
		return Largest(blocks)
	}
}

// Downscale shrinks img so its longer side is at most maxDim and returns the
// applied scale factor.
func Downscale(img image.Image, maxDim int) (image.Image, float64) {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if maxDim <= 0 || longest <= maxDim {
		return img, 1
	}

	scale := float64(maxDim) / float64(longest)
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, float64(w) / float64(b.Dx())
}

// NoFocal never finds a subject.
type NoFocal struct{}

func (NoFocal) Detect(string, string) (geometry.Point, bool, error) {
	return geometry.Point{}, false, nil
}
