package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "folio"

type Config struct {
	ColorMode string `koanf:"color_mode"` // "auto", "truecolor" or "256"

	// Embedded image display
	Images ImagesConfig `koanf:"images"`

	// Log output (the terminal is owned by the UI)
	Log LogConfig `koanf:"log"`
}

// ImagesConfig holds image loading and display settings.
type ImagesConfig struct {
	Dir        string `koanf:"dir"`         // root of extracted images (default: cwd)
	CacheDir   string `koanf:"cache_dir"`   // resized image cache (default: xdg cache)
	SizeIndex  *bool  `koanf:"size_index"`  // persist image dimensions (default: true)
	Tiled      *bool  `koanf:"tiled"`       // render through the tile index when scrolling (default: true)
	MinSize    int    `koanf:"min_size"`    // smaller images are ignored, in pixels (default: 64)
	MinRows    int    `koanf:"min_rows"`    // shortest image height in rows (default: 6)
	MaxRows    int    `koanf:"max_rows"`    // tallest image height in rows (default: 30)
	CellWidth  int    `koanf:"cell_width"`  // font cell width override in pixels (0 = detect)
	CellHeight int    `koanf:"cell_height"` // font cell height override in pixels (0 = detect)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn" or "error" (default: "info")
	File  string `koanf:"file"`  // default: $XDG_STATE_HOME/folio/folio.log
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{ColorMode: "auto"}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.ColorMode = strings.ToLower(strings.TrimSpace(cfg.ColorMode))
	cfg.Images.Dir = expandPath(cfg.Images.Dir)
	cfg.Images.CacheDir = expandPath(cfg.Images.CacheDir)
	cfg.Log.File = expandPath(cfg.Log.File)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/folio/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetImagesConfig returns the image configuration with defaults applied.
func (c *Config) GetImagesConfig() ImagesConfig {
	cfg := c.Images

	if cfg.MinSize <= 0 {
		cfg.MinSize = 64
	}
	if cfg.MinRows <= 0 {
		cfg.MinRows = 6
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 30
	}
	if cfg.MaxRows < cfg.MinRows {
		cfg.MaxRows = cfg.MinRows
	}
	if cfg.CellWidth < 0 || cfg.CellHeight < 0 {
		cfg.CellWidth, cfg.CellHeight = 0, 0
	}

	return cfg
}

// SizeIndexEnabled reports whether image dimensions are persisted.
func (c ImagesConfig) SizeIndexEnabled() bool {
	return c.SizeIndex == nil || *c.SizeIndex
}

// TiledEnabled reports whether scrolling renders through the tile index.
func (c ImagesConfig) TiledEnabled() bool {
	return c.Tiled == nil || *c.Tiled
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.File == "" {
		cfg.File = filepath.Join(xdg.StateHome, appName, appName+".log")
	}

	return cfg
}
