package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ayusman/hcs/internal/app"
	"github.com/ayusman/hcs/internal/capture"
	"github.com/ayusman/hcs/internal/config"
	"github.com/ayusman/hcs/internal/control"
	"github.com/ayusman/hcs/internal/detector"
	"github.com/ayusman/hcs/internal/gesture"
	"github.com/ayusman/hcs/internal/input"
	"github.com/ayusman/hcs/internal/logging"
	"github.com/ayusman/hcs/internal/metrics"
	"github.com/ayusman/hcs/internal/plugin"
	"github.com/ayusman/hcs/internal/pointer"
	"github.com/ayusman/hcs/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start gesture pointer control",
	Long: `Opens the video source and the hand detector, loads the gesture model and
drives the pointer until the video ends, the exit key is pressed in the preview
window, or the process is interrupted.`,
	RunE: run,
}

// flagBindings maps run flags to configuration keys.
var flagBindings = map[string]string{
	"source":       "camera.source",
	"model":        "classifier.model",
	"smoothing":    "pointer.smoothing",
	"debounce":     "actions.debounce",
	"left-hand":    "actions.left_hand",
	"backend":      "input.backend",
	"plugin":       "input.plugin",
	"journal":      "journal.path",
	"metrics-addr": "metrics.addr",
	"preview":      "preview.enabled",
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.String("source", capture.DefaultSource, "Camera device index or video file")
	flags.String("model", "hand-gestures-model.db", "Gesture model artifact")
	flags.Float64("smoothing", pointer.DefaultSmoothing, "Pointer smoothing factor (1 disables smoothing)")
	flags.String("debounce", string(control.DebounceBlocking), "Debounce mode: blocking or timestamp")
	flags.String("left-hand", string(control.LeftHandClassifier), "Left hand strategy: classifier, finger-count or none")
	flags.String("backend", config.BackendRobotgo, "Input backend: robotgo or plugin")
	flags.String("plugin", "", "Input plugin name for the plugin backend")
	flags.String("journal", "", "SQLite file to journal actions to")
	flags.String("metrics-addr", "", "Address to serve Prometheus metrics on, e.g. :9090")
	flags.Bool("preview", true, "Show the preview window")

	for flag, key := range flagBindings {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.Flags().AddFlagSet(flags)
	rootCmd.RunE = runCmd.RunE
}

func run(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := gesture.LoadModel(cfg.Classifier.Model)
	if err != nil {
		return fmt.Errorf("load gesture model: %w", err)
	}
	log.Info().
		Str("model", cfg.Classifier.Model).
		Ints("classes", model.Classes()).
		Float64("min_confidence", cfg.Classifier.MinConfidence).
		Msg("gesture model loaded")

	backend, err := newBackend(cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	screenW, screenH, err := backend.ScreenSize()
	if err != nil {
		return fmt.Errorf("screen size: %w", err)
	}

	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig(), log)
	if err != nil {
		return fmt.Errorf("hand detector: %w", err)
	}
	defer det.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ctrl := control.New(cfg.ControlConfig(), control.Deps{
		Backend:    backend,
		Filter:     pointer.NewFilter(cfg.PointerConfig(screenW, screenH)),
		Recognizer: gesture.NewRecognizer(model, cfg.Classifier.MinConfidence),
		Log:        log,
	})

	var journal *app.Journal
	if cfg.Journal.Path != "" {
		st, err := store.New(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer st.Close()

		journal, err = app.StartJournal(st.Journal(), log)
		if err != nil {
			return fmt.Errorf("start journal session: %w", err)
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to end journal session")
			}
		}()
	}
	app.Observe(ctrl, m, journal)

	if cfg.Metrics.Addr != "" {
		go serveMetrics(ctx, cfg.Metrics.Addr, reg, log)
	}

	var preview capture.Preview = capture.Headless{}
	if cfg.Preview.Enabled {
		window := capture.NewWindow(capture.DefaultWindowTitle, cfg.ExitKey())
		defer window.Close()
		preview = window
	}

	log.Info().
		Str("source", cfg.Camera.Source).
		Int("screen_width", screenW).
		Int("screen_height", screenH).
		Str("backend", cfg.Input.Backend).
		Str("debounce", cfg.Actions.Debounce).
		Str("left_hand", cfg.Actions.LeftHand).
		Float64("smoothing", cfg.Pointer.Smoothing).
		Int("frame_reduction", cfg.Pointer.FrameReduction).
		Msg("starting")

	return app.New(app.Deps{
		Camera:     capture.NewCamera(cfg.CaptureConfig()),
		Detector:   det,
		Controller: ctrl,
		Preview:    preview,
		Metrics:    m,
		Log:        log,
	}).Run(ctx)
}

func newBackend(cfg *config.Config, log zerolog.Logger) (input.Backend, error) {
	switch cfg.Input.Backend {
	case config.BackendPlugin:
		manager := plugin.NewManager(cfg.Input.PluginDir, log)
		b, err := input.NewPluginBackend(manager, cfg.Input.Plugin, cfg.Input.PluginTimeout)
		if err != nil {
			return nil, fmt.Errorf("input plugin %q: %w", cfg.Input.Plugin, err)
		}
		log.Info().Str("plugin", cfg.Input.Plugin).Str("dir", cfg.Input.PluginDir).Msg("using plugin input backend")
		return b, nil
	default:
		b, err := input.NewRobotBackend()
		if err != nil {
			return nil, fmt.Errorf("robotgo input backend: %w", err)
		}
		return b, nil
	}
}

func serveMetrics(ctx context.Context, addr string, g prometheus.Gatherer, log zerolog.Logger) {
	if err := metrics.Serve(ctx, addr, g, log); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
	}
}
