package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/slides2video/internal/config"
	"github.com/ivlev/slides2video/internal/logging"
	"github.com/ivlev/slides2video/internal/system"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	verbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "slides2video",
		Short:         "Compile a slide list into an animated video",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Init(verbose)
			system.InitResourceLimits(log.Logger)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newOverlayCmd())
	return cmd
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, overrides func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	cfg.BuildVersion = version
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	if overrides != nil {
		overrides(&cfg)
	}
	if cfg.Verbose && !verbose {
		logging.Init(true)
	}
	return cfg, cfg.Validate()
}

func logger() *zerolog.Logger {
	l := logging.WithComponent("cli")
	return &l
}
