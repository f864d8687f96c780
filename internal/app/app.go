// Package app runs the control loop: read a frame, detect hands, drive the
// pointer controller and show the preview until the source ends or the user exits.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/ayusman/hcs/internal/capture"
	"github.com/ayusman/hcs/internal/detector"
	"github.com/ayusman/hcs/internal/metrics"
)

// FrameController turns the hands of one frame into pointer actions.
type FrameController interface {
	ProcessFrame(frameSize image.Point, hands []detector.Hand) error
}

// Deps are the collaborators of an App.
type Deps struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Controller FrameController
	// Preview defaults to capture.Headless.
	Preview capture.Preview
	// Metrics may be nil.
	Metrics *metrics.Metrics
	Log     zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// App is the single-threaded capture loop. Debounce sleeps in the controller
// block the whole loop.
type App struct {
	camera     capture.Camera
	detector   detector.Detector
	controller FrameController
	preview    capture.Preview
	metrics    *metrics.Metrics
	log        zerolog.Logger
	now        func() time.Time
}

// New creates an App.
func New(deps Deps) *App {
	preview := deps.Preview
	if preview == nil {
		preview = capture.Headless{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		camera:     deps.Camera,
		detector:   deps.Detector,
		controller: deps.Controller,
		preview:    preview,
		metrics:    deps.Metrics,
		log:        deps.Log.With().Str("component", "app").Logger(),
		now:        now,
	}
}

// Run opens the camera and processes frames until the source runs out, the
// exit key is pressed or ctx is done, all of which return nil. An error is
// returned when the camera fails or the input backend rejects an action.
// The camera is closed on return.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.log.Warn().Err(err).Msg("error closing camera")
		}
	}()

	fps := capture.NewFPSMeter(a.now)
	a.log.Info().Msg("control loop started")

	for frames := 0; ; frames++ {
		if err := ctx.Err(); err != nil {
			a.log.Info().Int("frames", frames).Msg("control loop stopped: context done")
			return nil
		}

		frame, err := a.camera.ReadFrame()
		if errors.Is(err, capture.ErrNoFrame) {
			a.log.Info().Int("frames", frames).Msg("control loop stopped: end of stream")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		exit, err := a.step(frame, fps)
		frame.Close()
		if err != nil {
			a.log.Error().Err(err).Int("frames", frames).Msg("control loop aborted")
			return err
		}
		if exit {
			a.log.Info().Int("frames", frames+1).Msg("control loop stopped: exit key")
			return nil
		}
	}
}

// step processes one frame and reports whether the preview asked to exit.
func (a *App) step(frame *gocv.Mat, fps *capture.FPSMeter) (bool, error) {
	a.metrics.Frame()

	start := a.now()
	hands, err := a.detector.Detect(frame)
	a.metrics.Detection(a.now().Sub(start))
	if err != nil {
		a.log.Warn().Err(err).Msg("hand detection failed")
		a.metrics.DetectionError()
		hands = nil
	}
	for _, h := range hands {
		a.metrics.Hand(h.Type.String())
	}

	if err := a.controller.ProcessFrame(capture.FrameSize(frame), hands); err != nil {
		return false, err
	}

	if rate := fps.Update(); rate > 0 {
		a.metrics.FPS(rate)
		a.log.Debug().Float64("fps", rate).Int("hands", len(hands)).Msg("frame")
	}

	return a.preview.Show(frame), nil
}
