// Package config loads and saves output settings of the invpend command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPlot          = "invpend.png"
	DefaultPlotWidth     = 8.0
	DefaultPlotHeight    = 6.0
	DefaultPreviewHeight = 10
	DefaultPreviewWidth  = 72
)

// ErrInvalidConfig is returned when config values are out of range
var ErrInvalidConfig = errors.New("invalid config")

// Config stores output settings
type Config struct {
	Plot    PlotConfig    `yaml:"plot"`
	Export  ExportConfig  `yaml:"export"`
	Preview PreviewConfig `yaml:"preview"`
}

// PlotConfig configures state trajectory plot
type PlotConfig struct {
	// File is plot file; its extension selects the image format
	File string `yaml:"file"`
	// Width is plot width in inches
	Width float64 `yaml:"width"`
	// Height is plot height in inches
	Height float64 `yaml:"height"`
}

// ExportConfig configures trajectory export.
// Empty paths disable the export.
type ExportConfig struct {
	CSV     string `yaml:"csv"`
	JSON    string `yaml:"json"`
	Packets string `yaml:"packets"`
	// CAN is force command CAN frames file in candump text format
	CAN string `yaml:"can"`
}

// PreviewConfig configures terminal preview of the trajectory
type PreviewConfig struct {
	Enabled bool `yaml:"enabled"`
	Height  int  `yaml:"height"`
	Width   int  `yaml:"width"`
}

// DefaultConfig returns default config
func DefaultConfig() *Config {
	return &Config{
		Plot: PlotConfig{
			File:   DefaultPlot,
			Width:  DefaultPlotWidth,
			Height: DefaultPlotHeight,
		},
		Preview: PreviewConfig{
			Height: DefaultPreviewHeight,
			Width:  DefaultPreviewWidth,
		},
	}
}

// Load reads config from the YAML file stored in path.
// Values missing in the file are set to their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path in YAML format
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks config values are in range
func (c *Config) Validate() error {
	if c.Plot.File != "" {
		switch ext := strings.ToLower(filepath.Ext(c.Plot.File)); ext {
		case ".png", ".jpg", ".jpeg", ".svg", ".pdf", ".eps", ".tif", ".tiff":
		default:
			return fmt.Errorf("%w: unsupported plot format %q", ErrInvalidConfig, ext)
		}

		if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
			return fmt.Errorf("%w: plot size %vx%v", ErrInvalidConfig, c.Plot.Width, c.Plot.Height)
		}
	}

	if c.Preview.Enabled && (c.Preview.Height <= 0 || c.Preview.Width <= 0) {
		return fmt.Errorf("%w: preview size %dx%d", ErrInvalidConfig, c.Preview.Width, c.Preview.Height)
	}

	return nil
}
