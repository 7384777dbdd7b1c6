package analyzer

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ContrastDetector finds text and picture regions with a Sobel edge pass,
// a square dilation that merges nearby edges and a connected-component scan.
type ContrastDetector struct {
	MinBlockArea  int
	EdgeThreshold float64
	// DilateSize and DilatePasses shape the merge step.
	DilateSize   int
	DilatePasses int
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:  500,
		EdgeThreshold: 30,
		DilateSize:    5,
		DilatePasses:  2,
	}
}

func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	gray := grayscale(img)
	m := sobel(gray, d.EdgeThreshold)
	for i := 0; i < d.DilatePasses; i++ {
		m = m.dilate(d.DilateSize / 2)
	}

	origin := img.Bounds().Min
	var blocks []Block
	for _, r := range m.components() {
		if r.Dx()*r.Dy() < d.MinBlockArea {
			continue
		}
		blocks = append(blocks, Block{
			Rect:       r.Add(origin),
			Type:       "unknown",
			Confidence: 0.7,
		})
	}
	return blocks, nil
}

func grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// mask is a binary image with zero origin.
type mask struct {
	w, h int
	bits []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, bits: make([]bool, w*h)}
}

func (m *mask) at(x, y int) bool { return m.bits[y*m.w+x] }

func sobel(gray *image.Gray, threshold float64) *mask {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	m := newMask(w, h)
	px := func(x, y int) float64 { return float64(gray.Pix[y*gray.Stride+x]) }

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			gy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			if math.Hypot(gx, gy) > threshold {
				m.bits[y*w+x] = true
			}
		}
	}
	return m
}

// dilate sets every pixel whose (2r+1)-square neighbourhood has a set pixel.
func (m *mask) dilate(r int) *mask {
	if r <= 0 {
		return m
	}
	out := newMask(m.w, m.h)
	for y := r; y < m.h-r; y++ {
		for x := r; x < m.w-r; x++ {
			out.bits[y*m.w+x] = m.any(x-r, y-r, x+r, y+r)
		}
	}
	return out
}

func (m *mask) any(x0, y0, x1, y1 int) bool {
	for y := y0; y <= y1; y++ {
		row := m.bits[y*m.w : (y+1)*m.w]
		for x := x0; x <= x1; x++ {
			if row[x] {
				return true
			}
		}
	}
	return false
}

// components returns the bounding box of every 4-connected set region.
func (m *mask) components() []image.Rectangle {
	seen := make([]bool, len(m.bits))
	var rects []image.Rectangle
	var stack []int

	for start, set := range m.bits {
		if !set || seen[start] {
			continue
		}
		r := image.Rect(start%m.w, start/m.w, start%m.w+1, start/m.w+1)
		seen[start] = true
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%m.w, p/m.w
			r = r.Union(image.Rect(x, y, x+1, y+1))

			for _, n := range [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}} {
				if n[0] < 0 || n[0] >= m.w || n[1] < 0 || n[1] >= m.h {
					continue
				}
				i := n[1]*m.w + n[0]
				if m.bits[i] && !seen[i] {
					seen[i] = true
					stack = append(stack, i)
				}
			}
		}
		rects = append(rects, r)
	}
	return rects
}
