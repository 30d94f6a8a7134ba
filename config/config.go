// Package config loads host configuration for the webview binary.
//
// Values are resolved in order: defaults, then an optional YAML file, then
// environment variables prefixed with WEBVIEW (for example
// WEBVIEW_ENGINE_CACHE_PATH, WEBVIEW_PAGE_URL, WEBVIEW_LOG_LEVEL).
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	webview "github.com/wippyai/webview"
	"github.com/wippyai/webview/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WEBVIEW"

// Config holds all host configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine" envconfig:"ENGINE"`
	Page    PageConfig    `yaml:"page" envconfig:"PAGE"`
	Log     LogConfig     `yaml:"log" envconfig:"LOG"`
	Metrics MetricsConfig `yaml:"metrics" envconfig:"METRICS"`
	UI      UIConfig      `yaml:"ui" envconfig:"UI"`
}

// EngineConfig holds engine-level paths. Empty values use engine defaults.
type EngineConfig struct {
	CachePath             string `yaml:"cache_path" envconfig:"CACHE_PATH"`
	BrowserSubprocessPath string `yaml:"browser_subprocess_path" envconfig:"BROWSER_SUBPROCESS_PATH"`
	SchemePath            string `yaml:"scheme_path" envconfig:"SCHEME_PATH"`
}

// PageConfig holds the settings of the page opened at startup.
type PageConfig struct {
	URL               string  `yaml:"url" envconfig:"URL"`
	FrameRate         uint32  `yaml:"frame_rate" envconfig:"FRAME_RATE"`
	Width             uint32  `yaml:"width" envconfig:"WIDTH"`
	Height            uint32  `yaml:"height" envconfig:"HEIGHT"`
	DeviceScaleFactor float32 `yaml:"device_scale_factor" envconfig:"DEVICE_SCALE_FACTOR"`
	Offscreen         bool    `yaml:"offscreen" envconfig:"OFFSCREEN"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string   `yaml:"level" envconfig:"LEVEL"`
	Development bool     `yaml:"development" envconfig:"DEV"`
	OutputPaths []string `yaml:"output_paths" envconfig:"OUTPUT_PATHS"`
}

// MetricsConfig holds Prometheus settings. An empty Addr disables the
// HTTP endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" envconfig:"ENABLED"`
	Addr      string `yaml:"addr" envconfig:"ADDR"`
	Namespace string `yaml:"namespace" envconfig:"NAMESPACE"`
}

// UIConfig holds settings of the interactive terminal UI.
type UIConfig struct {
	// RefreshHz caps how often frame events redraw the UI.
	RefreshHz float64 `yaml:"refresh_hz" envconfig:"REFRESH_HZ"`
}

// Default returns the default configuration.
func Default() *Config {
	page := webview.DefaultPageOptions()
	return &Config{
		Page: PageConfig{
			URL:               "about:blank",
			FrameRate:         page.FrameRate,
			Width:             page.Width,
			Height:            page.Height,
			DeviceScaleFactor: page.DeviceScaleFactor,
			Offscreen:         page.IsOffscreen,
		},
		Log: LogConfig{
			Level:       "info",
			OutputPaths: []string{"stderr"},
		},
		Metrics: MetricsConfig{
			Namespace: "webview",
		},
		UI: UIConfig{
			RefreshHz: 10,
		},
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			nf := errors.NotFound(errors.PhaseConfig, "config file", path)
			nf.Cause = err
			return nil, nf
		case err != nil:
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err,
				fmt.Sprintf("read config %s", path))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err,
				fmt.Sprintf("parse config %s", path))
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "apply environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration or returns the defaults on any error.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks the configuration for values the engine would reject.
func (c *Config) Validate() error {
	if c.Page.URL == "" {
		return errors.InvalidData(errors.PhaseConfig, []string{"page", "url"}, "must not be empty")
	}
	if u, err := url.Parse(c.Page.URL); err != nil || u.Scheme == "" {
		return errors.InvalidData(errors.PhaseConfig, []string{"page", "url"},
			fmt.Sprintf("not an absolute url: %q", c.Page.URL))
	}
	if c.Page.FrameRate < 1 || c.Page.FrameRate > 240 {
		return errors.InvalidData(errors.PhaseConfig, []string{"page", "frame_rate"},
			fmt.Sprintf("%d outside 1..240", c.Page.FrameRate))
	}
	if c.Page.Width == 0 || c.Page.Height == 0 {
		return errors.InvalidData(errors.PhaseConfig, []string{"page", "size"},
			fmt.Sprintf("%dx%d has a zero dimension", c.Page.Width, c.Page.Height))
	}
	if c.Page.DeviceScaleFactor <= 0 {
		return errors.InvalidData(errors.PhaseConfig, []string{"page", "device_scale_factor"},
			"must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.InvalidData(errors.PhaseConfig, []string{"log", "level"},
			fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	if c.UI.RefreshHz <= 0 {
		return errors.InvalidData(errors.PhaseConfig, []string{"ui", "refresh_hz"}, "must be positive")
	}
	return nil
}

// Options converts the engine section.
func (c EngineConfig) Options() webview.Options {
	return webview.Options{
		CachePath:             c.CachePath,
		BrowserSubprocessPath: c.BrowserSubprocessPath,
		SchemePath:            c.SchemePath,
	}
}

// Options converts the page section.
func (c PageConfig) Options() webview.PageOptions {
	return webview.PageOptions{
		FrameRate:         c.FrameRate,
		Width:             c.Width,
		Height:            c.Height,
		DeviceScaleFactor: c.DeviceScaleFactor,
		IsOffscreen:       c.Offscreen,
	}
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
