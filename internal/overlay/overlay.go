// Package overlay prepares the logo stamped onto the finished video.
package overlay

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/errs"
)

// qrFile is the name of the generated QR logo inside the work directory.
const qrFile = "logo_qr.png"

// Logo returns the image file for the overlay pass. An explicit path wins;
// otherwise QRText is rendered as a QR code into dir. ok is false when no
// logo is configured.
func Logo(cfg config.LogoConfig, dir string) (path string, ok bool, err error) {
	switch {
	case cfg.Path != "":
		if _, err := os.Stat(cfg.Path); err != nil {
			return "", false, errs.Asset(errs.NoSlide, "logo", err)
		}
		return cfg.Path, true, nil
	case cfg.QRText != "":
		path := filepath.Join(dir, qrFile)
		if err := QRCode(cfg.QRText, max(cfg.Width, cfg.Height), path); err != nil {
			return "", false, errs.Asset(errs.NoSlide, "qr logo", err)
		}
		return path, true, nil
	default:
		return "", false, nil
	}
}

// QRCode writes content as a size x size PNG QR code with a transparent
// background, so it blends into the corner it is placed in.
func QRCode(content string, size int, path string) error {
	if size <= 0 {
		return fmt.Errorf("invalid qr size %d", size)
	}
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	q.BackgroundColor = color.Transparent
	q.ForegroundColor = color.White
	q.DisableBorder = true

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return q.WriteFile(size, path)
}
