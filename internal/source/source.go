// Package source loads slide images from disk. Raster formats are decoded
// through the image registry; PDF pages are addressed as "deck.pdf#3" and
// rasterised with MuPDF.
package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/slides2video/internal/errs"
)

// Loader decodes slide images. Failures are AssetErrors without a slide
// index; callers attach it.
type Loader interface {
	Load(path string) (image.Image, error)
	Dimensions(path string) (width, height int, err error)
}

// ImageExtensions are the raster formats Files picks up.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// FileLoader reads images and PDF pages from the local file system.
type FileLoader struct {
	// DPI is used when rasterising PDF pages.
	DPI int
}

func NewFileLoader(dpi int) *FileLoader {
	if dpi <= 0 {
		dpi = 150
	}
	return &FileLoader{DPI: dpi}
}

// Ref is a parsed image reference.
type Ref struct {
	File string
	// Page is the zero-based PDF page, or -1 for raster files.
	Page int
}

func (r Ref) IsPDF() bool { return r.Page >= 0 }

// ParseRef splits "deck.pdf#3" into the file and zero-based page. A PDF
// without a page suffix addresses its first page.
func ParseRef(path string) (Ref, error) {
	file, frag, hasFrag := strings.Cut(path, "#")
	if !strings.EqualFold(filepath.Ext(file), ".pdf") {
		return Ref{File: path, Page: -1}, nil
	}
	if !hasFrag {
		return Ref{File: file, Page: 0}, nil
	}
	n, err := strconv.Atoi(frag)
	if err != nil || n < 1 {
		return Ref{}, fmt.Errorf("invalid page %q in %s", frag, path)
	}
	return Ref{File: file, Page: n - 1}, nil
}

func (l *FileLoader) Load(path string) (image.Image, error) {
	ref, err := ParseRef(path)
	if err != nil {
		return nil, errs.Asset(errs.NoSlide, "load "+path, err)
	}
	if ref.IsPDF() {
		img, err := renderPDFPage(ref, l.DPI)
		if err != nil {
			return nil, errs.Asset(errs.NoSlide, "render "+path, err)
		}
		return img, nil
	}

	f, err := os.Open(ref.File)
	if err != nil {
		return nil, errs.Asset(errs.NoSlide, "open "+path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errs.Asset(errs.NoSlide, "decode "+path, err)
	}
	return img, nil
}

func (l *FileLoader) Dimensions(path string) (int, int, error) {
	ref, err := ParseRef(path)
	if err != nil {
		return 0, 0, errs.Asset(errs.NoSlide, "probe "+path, err)
	}
	if ref.IsPDF() {
		w, h, err := pdfPageSize(ref, l.DPI)
		if err != nil {
			return 0, 0, errs.Asset(errs.NoSlide, "probe "+path, err)
		}
		return w, h, nil
	}

	f, err := os.Open(ref.File)
	if err != nil {
		return 0, 0, errs.Asset(errs.NoSlide, "open "+path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errs.Asset(errs.NoSlide, "decode "+path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, errs.Asset(errs.NoSlide, "probe "+path, fmt.Errorf("image has zero size"))
	}
	return cfg.Width, cfg.Height, nil
}

// Files lists the slide images of dir in name order. PDFs are expanded to
// one reference per page.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var paths []string
	for _, name := range names {
		full := filepath.Join(dir, name)
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".pdf" {
			pages, err := PageCount(full)
			if err != nil {
				return nil, errs.Asset(errs.NoSlide, "open "+full, err)
			}
			for p := 1; p <= pages; p++ {
				paths = append(paths, fmt.Sprintf("%s#%d", full, p))
			}
			continue
		}
		if isImage(ext) {
			paths = append(paths, full)
		}
	}
	return paths, nil
}

func isImage(ext string) bool {
	for _, e := range ImageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
