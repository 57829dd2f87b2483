// Package main is the entry point for the probe viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/shunkie/lightprobe/internal/config"
	"github.com/shunkie/lightprobe/internal/logger"
)

func main() {
	envDir := flag.String("env", "", "Directory with the source cubemap faces (required)")
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if *envDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: probeview -env <dir> [options]")
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, logger.FileConfig{Path: cfg.Logging.LogFile}, true)
	defer log.Sync()

	log.Info("=== Probe Viewer ===")
	log.Sugar().Debugf("Config: %+v", cfg)

	app, err := NewApp(cfg, *envDir, log)
	if err != nil {
		log.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		log.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("viewer closed normally")
}
