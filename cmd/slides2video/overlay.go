package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/errs"
	"github.com/ivlev/slides2video/internal/overlay"
	"github.com/ivlev/slides2video/internal/system"
	"github.com/ivlev/slides2video/internal/video"
)

func newOverlayCmd() *cobra.Command {
	var (
		logo   string
		qr     string
		corner string
	)
	cmd := &cobra.Command{
		Use:   "overlay <input> <output>",
		Short: "Stamp a logo or QR code onto an existing video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			cfg, err := loadConfig(cmd, func(c *config.Config) {
				if logo != "" {
					c.Logo.Path = logo
				}
				if qr != "" {
					c.Logo.QRText = qr
				}
				if corner != "" {
					c.Logo.Corner = corner
				}
			})
			if err != nil {
				return err
			}
			if _, err := os.Stat(input); err != nil {
				return errs.Asset(errs.NoSlide, "open "+input, err)
			}

			if err := os.MkdirAll(cfg.Paths.WorkDir, 0o755); err != nil {
				return fmt.Errorf("create work dir: %w", err)
			}
			path, ok, err := overlay.Logo(cfg.Logo, cfg.Paths.WorkDir)
			if err != nil {
				return err
			}
			if !ok {
				return errs.Config(errs.NoSlide, "no logo configured; pass --logo or --qr")
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			codec := cfg.Encoder.Name
			if codec == "auto" {
				codec = system.BestH264Encoder(cmd.Context())
			}
			enc := video.NewFFmpegEncoder(*logger(), video.Settings{
				Codec:   codec,
				Quality: cfg.Encoder.Quality,
				Preset:  cfg.Encoder.Preset,
				Threads: cfg.Encoder.Threads,
			}, cfg.Encoder.Timeout, 0)

			l := cfg.Logo
			err = enc.Overlay(cmd.Context(), video.OverlayJob{
				Input:   input,
				Logo:    path,
				Output:  output,
				Width:   l.Width,
				Height:  l.Height,
				MarginX: l.MarginX,
				MarginY: l.MarginY,
				Corner:  l.Corner,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&logo, "logo", "", "Logo image")
	cmd.Flags().StringVar(&qr, "qr", "", "Render this text or URL as a QR code logo")
	cmd.Flags().StringVar(&corner, "corner", "", "top-left, top-right, bottom-left or bottom-right")
	return cmd
}
