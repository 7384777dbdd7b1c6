// Package analyzer finds regions of interest on slide images and turns them
// into focal points for subject-tracked pans.
package analyzer

import (
	"image"
	"sort"
)

// Block is a detected region of interest in image pixels.
type Block struct {
	Rect       image.Rectangle
	Type       string
	Confidence float64
}

// Area is the block's pixel area.
func (b Block) Area() int { return b.Rect.Dx() * b.Rect.Dy() }

// Center is the block centre.
func (b Block) Center() image.Point {
	return image.Point{X: b.Rect.Min.X + b.Rect.Dx()/2, Y: b.Rect.Min.Y + b.Rect.Dy()/2}
}

// Detector finds blocks on an image.
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}

// rowThreshold is the vertical distance under which two blocks count as one
// text row.
const rowThreshold = 20

// ReadingOrder sorts blocks top-to-bottom, then left-to-right within a row.
// The input is not modified.
func ReadingOrder(blocks []Block) []Block {
	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)

	sort.SliceStable(sorted, func(i, j int) bool {
		dy := sorted[i].Rect.Min.Y - sorted[j].Rect.Min.Y
		if dy > rowThreshold || dy < -rowThreshold {
			return dy < 0
		}
		return sorted[i].Rect.Min.X < sorted[j].Rect.Min.X
	})
	return sorted
}

// Largest returns the block with the biggest area.
func Largest(blocks []Block) (Block, bool) {
	if len(blocks) == 0 {
		return Block{}, false
	}
	best := blocks[0]
	for _, b := range blocks[1:] {
		if b.Area() > best.Area() {
			best = b
		}
	}
	return best, true
}
