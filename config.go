package canopy

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// LoggingConfig selects how log output is produced.
type LoggingConfig struct {
	Level       string `yaml:"level"`                 // none, debug, info, warn, error
	Format      string `yaml:"format,omitempty"`      // console (default) or json
	Destination string `yaml:"destination,omitempty"` // file path; stderr when empty
}

// RunConfig describes a window and the stylesheets loaded into it. It is
// usually read from YAML with LoadRunConfig.
type RunConfig struct {
	Title           string        `yaml:"title"`
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	TPS             int           `yaml:"tps,omitempty"`
	Resizable       bool          `yaml:"resizable,omitempty"`
	ShowFPS         bool          `yaml:"show_fps,omitempty"`
	Debug           bool          `yaml:"debug,omitempty"`
	Stylesheets     []string      `yaml:"stylesheets,omitempty"`
	ScreenshotDir   string        `yaml:"screenshot_dir,omitempty"`
	TestScript      string        `yaml:"test_script,omitempty"`
	ExitAfterScript bool          `yaml:"exit_after_script,omitempty"`
	DoubleClick     time.Duration `yaml:"double_click,omitempty"`
	Logging         LoggingConfig `yaml:"logging"`
}

// DefaultRunConfig returns the configuration used for fields a file leaves
// out.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:       "canopy",
		Width:       800,
		Height:      600,
		TPS:         60,
		DoubleClick: defaultDoubleClickInterval,
		Logging:     LoggingConfig{Level: "info"},
	}
}

// LoadRunConfig reads a YAML run configuration on top of DefaultRunConfig.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &ResourceError{Op: "read config", Path: path, Err: err}
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c RunConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	case c.TPS < 0:
		return fmt.Errorf("tps %d must not be negative", c.TPS)
	case c.DoubleClick < 0:
		return errors.New("double_click must not be negative")
	}
	if _, err := c.Logging.level(); err != nil {
		return err
	}
	return nil
}

func (c LoggingConfig) level() (zapcore.Level, error) {
	switch c.Level {
	case "", "none":
		return zapcore.InvalidLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return lvl, fmt.Errorf("logging level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds a zap logger from the configuration. Level "none" or an
// empty level returns a no-op logger.
func (c LoggingConfig) NewLogger() (*zap.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	if lvl == zapcore.InvalidLevel {
		return zap.NewNop(), nil
	}

	var enc zapcore.Encoder
	switch c.Format {
	case "", "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("logging format %q: want console or json", c.Format)
	}

	sink := zapcore.Lock(os.Stderr)
	if c.Destination != "" {
		f, err := os.OpenFile(c.Destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, &ResourceError{Op: "open log", Path: c.Destination, Err: err}
		}
		sink = zapcore.Lock(f)
	}
	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}
