// Package config loads the image-label-mcp configuration file.
//
// The file is TOML. Every key is optional; missing keys keep their defaults,
// and a missing file is the same as an empty one.
//
//	[font]
//	default = "goregular"        # name, path or URL
//	size = 16                     # pixels
//	cache_dir = ""                # system font index; "" = user cache dir
//	download_dir = ""             # fonts fetched by URL; "" = temp dir
//
//	[render]
//	mode = "bottom-left"          # bottom-left, top-left, center
//	on_out_of_bounds = "clip"     # clip, reject
//	background = "#FFFFFF"
//
//	[ocr]
//	language = "eng"
//
//	[log]
//	level = "info"
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/image-label-mcp/internal/fontcat"
	"github.com/ironsheep/image-label-mcp/internal/label"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "IMAGE_LABEL_MCP_CONFIG"

// EnvLogLevel overrides [log] level.
const EnvLogLevel = "IMAGE_LABEL_MCP_LOG_LEVEL"

// Config is the full configuration.
type Config struct {
	Font   FontConfig   `toml:"font"`
	Render RenderConfig `toml:"render"`
	OCR    OCRConfig    `toml:"ocr"`
	Log    LogConfig    `toml:"log"`
}

// FontConfig selects the default font and where font files live.
type FontConfig struct {
	Default     string  `toml:"default"`
	Size        float64 `toml:"size"`
	CacheDir    string  `toml:"cache_dir"`
	DownloadDir string  `toml:"download_dir"`
}

// RenderConfig holds label defaults.
type RenderConfig struct {
	Mode          string `toml:"mode"`
	OnOutOfBounds string `toml:"on_out_of_bounds"`
	Background    string `toml:"background"`
}

// OCRConfig configures label read-back.
type OCRConfig struct {
	Language string `toml:"language"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "off": true,
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Font: FontConfig{
			Default: fontcat.DefaultFont,
			Size:    16,
		},
		Render: RenderConfig{
			Mode:          label.BottomLeft.String(),
			OnOutOfBounds: label.Clip.String(),
			Background:    "#FFFFFF",
		},
		OCR: OCRConfig{
			Language: "eng",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path. An empty path or a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks every enumerated and numeric value.
func (c *Config) Validate() error {
	if c.Font.Size <= 0 {
		return fmt.Errorf("font.size must be > 0, got %v", c.Font.Size)
	}
	if _, err := c.AnchorMode(); err != nil {
		return fmt.Errorf("render.mode: %w", err)
	}
	if _, err := c.BoundsPolicy(); err != nil {
		return fmt.Errorf("render.on_out_of_bounds: %w", err)
	}
	if _, err := c.Background(); err != nil {
		return fmt.Errorf("render.background: %w", err)
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, error, or off", c.Log.Level)
	}
	return nil
}

// AnchorMode returns the parsed default anchor mode.
func (c *Config) AnchorMode() (label.AnchorMode, error) {
	return label.ParseAnchorMode(c.Render.Mode)
}

// BoundsPolicy returns the parsed out-of-bounds policy.
func (c *Config) BoundsPolicy() (label.BoundsPolicy, error) {
	return label.ParseBoundsPolicy(c.Render.OnOutOfBounds)
}

// Background returns the parsed default label background.
func (c *Config) Background() (label.Color, error) {
	return label.ParseColor(c.Render.Background)
}

// ApplyEnv overrides values from the environment.
func (c *Config) ApplyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}
