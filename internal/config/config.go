// Package config loads the hcs configuration from defaults, a config file,
// HCS_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ayusman/hcs/internal/capture"
	"github.com/ayusman/hcs/internal/control"
	"github.com/ayusman/hcs/internal/detector"
	"github.com/ayusman/hcs/internal/gesture"
	"github.com/ayusman/hcs/internal/pointer"
)

// EnvPrefix prefixes environment overrides, e.g. HCS_POINTER_SMOOTHING.
const EnvPrefix = "HCS"

// Input backends.
const (
	BackendRobotgo = "robotgo"
	BackendPlugin  = "plugin"
)

type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Pointer    PointerConfig    `mapstructure:"pointer"`
	Actions    ActionsConfig    `mapstructure:"actions"`
	Input      InputConfig      `mapstructure:"input"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Preview    PreviewConfig    `mapstructure:"preview"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CameraConfig struct {
	Source string `mapstructure:"source"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

type DetectorConfig struct {
	StaticImageMode        bool    `mapstructure:"static_image_mode"`
	MaxHands               int     `mapstructure:"max_hands"`
	MinDetectionConfidence float64 `mapstructure:"min_detection_confidence"`
	MinTrackingConfidence  float64 `mapstructure:"min_tracking_confidence"`
	FlipType               bool    `mapstructure:"flip_type"`
	Script                 string  `mapstructure:"script"`
	Python                 string  `mapstructure:"python"`
}

type ClassifierConfig struct {
	Model         string  `mapstructure:"model"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

type PointerConfig struct {
	Landmark       int     `mapstructure:"landmark"`
	FrameReduction int     `mapstructure:"frame_reduction"`
	Smoothing      float64 `mapstructure:"smoothing"`
}

type ActionsConfig struct {
	ClickInterval         time.Duration `mapstructure:"click_interval"`
	GrabInterval          time.Duration `mapstructure:"grab_interval"`
	NavigateInterval      time.Duration `mapstructure:"navigate_interval"`
	Debounce              string        `mapstructure:"debounce"`
	ReleaseGrabOnHandLoss bool          `mapstructure:"release_grab_on_hand_loss"`
	LeftHand              string        `mapstructure:"left_hand"`
}

type InputConfig struct {
	Backend       string        `mapstructure:"backend"`
	PluginDir     string        `mapstructure:"plugin_dir"`
	Plugin        string        `mapstructure:"plugin"`
	PluginTimeout time.Duration `mapstructure:"plugin_timeout"`
}

type JournalConfig struct {
	// Path of the sqlite journal. Empty disables journaling.
	Path string `mapstructure:"path"`
}

type MetricsConfig struct {
	// Addr to serve /metrics on. Empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

type PreviewConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	ExitKey string `mapstructure:"exit_key"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("camera.source", capture.DefaultSource)
	v.SetDefault("camera.width", capture.DefaultWidth)
	v.SetDefault("camera.height", capture.DefaultHeight)

	d := detector.DefaultConfig()
	v.SetDefault("detector.static_image_mode", d.StaticImageMode)
	v.SetDefault("detector.max_hands", d.MaxHands)
	v.SetDefault("detector.min_detection_confidence", d.MinConfidence)
	v.SetDefault("detector.min_tracking_confidence", d.MinTrackingConf)
	v.SetDefault("detector.flip_type", d.FlipType)
	v.SetDefault("detector.script", "")
	v.SetDefault("detector.python", "")

	v.SetDefault("classifier.model", "hand-gestures-model.db")
	v.SetDefault("classifier.min_confidence", gesture.DefaultMinConfidence)

	v.SetDefault("pointer.landmark", pointer.DefaultLandmark)
	v.SetDefault("pointer.frame_reduction", pointer.DefaultFrameReduction)
	v.SetDefault("pointer.smoothing", pointer.DefaultSmoothing)

	a := control.DefaultConfig()
	v.SetDefault("actions.click_interval", a.ClickInterval)
	v.SetDefault("actions.grab_interval", a.GrabInterval)
	v.SetDefault("actions.navigate_interval", a.NavigateInterval)
	v.SetDefault("actions.debounce", string(a.Debounce))
	v.SetDefault("actions.release_grab_on_hand_loss", a.ReleaseGrabOnHandLoss)
	v.SetDefault("actions.left_hand", string(a.LeftHand))

	v.SetDefault("input.backend", BackendRobotgo)
	v.SetDefault("input.plugin_dir", "~/.hcs/plugins")
	v.SetDefault("input.plugin", "")
	v.SetDefault("input.plugin_timeout", 2*time.Second)

	v.SetDefault("journal.path", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("preview.enabled", true)
	v.SetDefault("preview.exit_key", "q")
}

// Load reads the configuration into a Config. When file is set it must exist;
// otherwise values come from defaults, the environment and any flags already
// bound to v.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Input.PluginDir = expandHome(cfg.Input.PluginDir)
	cfg.Classifier.Model = expandHome(cfg.Classifier.Model)
	cfg.Journal.Path = expandHome(cfg.Journal.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil || lvl == zerolog.NoLevel {
		add("unknown log.level %q", c.Log.Level)
	}

	if c.Camera.Source == "" {
		add("camera.source must be set")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		add("camera size %dx%d must be positive", c.Camera.Width, c.Camera.Height)
	}

	if c.Detector.MaxHands < 1 {
		add("detector.max_hands must be at least 1")
	}
	if !unit(c.Detector.MinDetectionConfidence) || !unit(c.Detector.MinTrackingConfidence) {
		add("detector confidences must be within [0,1]")
	}

	if c.Classifier.Model == "" {
		add("classifier.model must be set")
	}
	if !unit(c.Classifier.MinConfidence) {
		add("classifier.min_confidence %v must be within [0,1]", c.Classifier.MinConfidence)
	}

	if c.Pointer.Landmark < 0 || c.Pointer.Landmark >= detector.NumLandmarks {
		add("pointer.landmark %d must be within 0..%d", c.Pointer.Landmark, detector.NumLandmarks-1)
	}
	if c.Pointer.Smoothing < 1 {
		add("pointer.smoothing %v must be at least 1", c.Pointer.Smoothing)
	}
	if r := c.Pointer.FrameReduction; r < 0 || 2*r >= c.Camera.Width || 2*r >= c.Camera.Height {
		add("pointer.frame_reduction %d leaves no control region in a %dx%d frame", r, c.Camera.Width, c.Camera.Height)
	}

	if err := c.ControlConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("actions: %w", err))
	}

	switch c.Input.Backend {
	case BackendRobotgo:
	case BackendPlugin:
		if c.Input.Plugin == "" {
			add("input.plugin must name a plugin when input.backend is %q", BackendPlugin)
		}
		if c.Input.PluginTimeout <= 0 {
			add("input.plugin_timeout must be positive")
		}
	default:
		add("unknown input.backend %q", c.Input.Backend)
	}

	if c.Preview.Enabled && len([]rune(c.Preview.ExitKey)) != 1 {
		add("preview.exit_key %q must be a single character", c.Preview.ExitKey)
	}

	return errors.Join(errs...)
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// CaptureConfig returns the video source settings.
func (c *Config) CaptureConfig() capture.Config {
	return capture.Config{
		Source: c.Camera.Source,
		Width:  c.Camera.Width,
		Height: c.Camera.Height,
	}
}

// DetectorConfig returns the hand detector settings.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		StaticImageMode: c.Detector.StaticImageMode,
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetectionConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
		FlipType:        c.Detector.FlipType,
		Script:          c.Detector.Script,
		Python:          c.Detector.Python,
	}
}

// PointerConfig returns the motion filter settings for a screen of the given size.
func (c *Config) PointerConfig(screenWidth, screenHeight int) pointer.Config {
	return pointer.Config{
		Landmark:       c.Pointer.Landmark,
		FrameReduction: c.Pointer.FrameReduction,
		Smoothing:      c.Pointer.Smoothing,
		ScreenWidth:    screenWidth,
		ScreenHeight:   screenHeight,
	}
}

// ControlConfig returns the action state machine settings.
func (c *Config) ControlConfig() control.Config {
	return control.Config{
		ClickInterval:         c.Actions.ClickInterval,
		GrabInterval:          c.Actions.GrabInterval,
		NavigateInterval:      c.Actions.NavigateInterval,
		Debounce:              control.DebounceMode(c.Actions.Debounce),
		ReleaseGrabOnHandLoss: c.Actions.ReleaseGrabOnHandLoss,
		LeftHand:              control.LeftHandStrategy(c.Actions.LeftHand),
	}
}

// ExitKey returns the preview exit key.
func (c *Config) ExitKey() rune {
	for _, r := range c.Preview.ExitKey {
		return r
	}
	return 'q'
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
