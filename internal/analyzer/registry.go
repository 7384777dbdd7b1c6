package analyzer

import (
	"fmt"

	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/source"
)

// NewDetector creates a block detector for the configured variant.
func NewDetector(cfg config.DetectorConfig) (Detector, error) {
	switch cfg.Variant {
	case "contrast", "":
		d := NewContrastDetector()
		if cfg.MinBlockArea > 0 {
			d.MinBlockArea = cfg.MinBlockArea
		}
		if cfg.EdgeThreshold > 0 {
			d.EdgeThreshold = cfg.EdgeThreshold
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", cfg.Variant)
	}
}

// NewFocalDetector wires the configured detector to loader. Variant "none"
// disables subject tracking.
func NewFocalDetector(cfg config.DetectorConfig, loader source.Loader) (FocalDetector, error) {
	if cfg.Variant == "none" {
		return NoFocal{}, nil
	}
	det, err := NewDetector(cfg)
	if err != nil {
		return nil, err
	}
	return &BlockFocal{Loader: loader, Detector: det, MaxDimension: cfg.MaxDimension}, nil
}
