package source

import (
	"fmt"
	"image"
	"math"

	"github.com/gen2brain/go-fitz"
)

// MuPDF reports page bounds at 72 dpi.
const pdfBaseDPI = 72.0

// PageCount returns the number of pages in a PDF.
func PageCount(file string) (int, error) {
	doc, err := fitz.New(file)
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// A document is opened per call so concurrent preflight workers never share
// a MuPDF context.
func renderPDFPage(ref Ref, dpi int) (image.Image, error) {
	doc, err := fitz.New(ref.File)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if ref.Page >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range, document has %d", ref.Page+1, doc.NumPage())
	}
	return doc.ImageDPI(ref.Page, float64(dpi))
}

func pdfPageSize(ref Ref, dpi int) (int, int, error) {
	doc, err := fitz.New(ref.File)
	if err != nil {
		return 0, 0, err
	}
	defer doc.Close()

	if ref.Page >= doc.NumPage() {
		return 0, 0, fmt.Errorf("page %d out of range, document has %d", ref.Page+1, doc.NumPage())
	}
	rect, err := doc.Bound(ref.Page)
	if err != nil {
		return 0, 0, err
	}
	scale := float64(dpi) / pdfBaseDPI
	w := int(math.Round(float64(rect.Dx()) * scale))
	h := int(math.Round(float64(rect.Dy()) * scale))
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("page %d has zero size", ref.Page+1)
	}
	return w, h, nil
}
