package main

import (
	"GopherView/internal/config"
	"GopherView/internal/engine"
	"GopherView/internal/loader"
	"GopherView/internal/logger"
	"GopherView/internal/ui"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

func main() {
	logger.Init()
	defer logger.Sync()

	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		logger.Log.Warn("Using default config", zap.String("path", path), zap.Error(err))
	}
	if cfg.Debug {
		logger.InitWithDebug(true)
	}

	viewer := engine.NewViewer(cfg)
	defer viewer.Close()

	// An optional model path on the command line is opened at startup
	if len(os.Args) > 1 {
		file := os.Args[1]
		if viewer.Open(loader.FileHandle(file)) {
			cfg.LastDirectory = filepath.Dir(file)
		} else {
			logger.Log.Warn("Ignoring startup file", zap.String("file", file))
		}
	}

	ui.Run(viewer, &cfg)

	if err := config.Save(path, cfg); err != nil {
		logger.Log.Error("Failed to save config", zap.String("path", path), zap.Error(err))
	}
}
