package config

import (
	"GopherView/internal/logger"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const fileName = "viewer_config.json"

// Config holds viewer settings that survive restarts. Light state is never stored here.
type Config struct {
	WindowWidth   int     `json:"window_width"`
	WindowHeight  int     `json:"window_height"`
	PanelWidth    float32 `json:"panel_width"`
	FrameRate     int     `json:"frame_rate"`
	RenderScale   float32 `json:"render_scale"` // Fraction of the viewport resolution the software renderer draws at
	WatchModel    bool    `json:"watch_model"`  // Reload the model when its file changes on disk
	Debug         bool    `json:"debug"`
	LastDirectory string  `json:"last_directory,omitempty"`
}

func Default() Config {
	return Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		PanelWidth:   320,
		FrameRate:    30,
		RenderScale:  0.5,
		WatchModel:   true,
	}
}

// Path returns the config location under the user config dir, or the working dir if that is unknown.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return fileName
	}
	return filepath.Join(dir, "gopherview", fileName)
}

// Load reads the config at path. A missing file yields defaults and no error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Log.Info("No config file found, using defaults", zap.String("path", path))
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving config %s: %w", path, err)
	}
	return nil
}

// normalize replaces zero or out-of-range values with defaults.
func (c *Config) normalize() {
	def := Default()
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		c.WindowWidth, c.WindowHeight = def.WindowWidth, def.WindowHeight
	}
	if c.PanelWidth <= 0 {
		c.PanelWidth = def.PanelWidth
	}
	if c.FrameRate <= 0 || c.FrameRate > 240 {
		c.FrameRate = def.FrameRate
	}
	if c.RenderScale <= 0 || c.RenderScale > 1 {
		c.RenderScale = def.RenderScale
	}
}
