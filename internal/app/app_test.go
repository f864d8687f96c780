package app

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/hcs/internal/capture"
	"github.com/ayusman/hcs/internal/control"
	"github.com/ayusman/hcs/internal/detector"
	"github.com/ayusman/hcs/internal/gesture"
	"github.com/ayusman/hcs/internal/input"
	"github.com/ayusman/hcs/internal/metrics"
	"github.com/ayusman/hcs/internal/pointer"
	"github.com/ayusman/hcs/internal/store"
)

// scriptedRecognizer returns one queued gesture per call, then nil results.
type scriptedRecognizer struct {
	queue []gesture.Type
	calls int
}

func (r *scriptedRecognizer) Predict(hand *detector.Hand) (*gesture.ClassificationResult, error) {
	i := r.calls
	r.calls++
	if i >= len(r.queue) {
		return nil, nil
	}
	return &gesture.ClassificationResult{Type: r.queue[i], Score: 0.93}, nil
}

// manualClock never sleeps for real.
type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time        { return c.now }
func (c *manualClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

// exitAfter asks to exit on the n-th shown frame.
type exitAfter struct {
	n     int
	shown int
}

func (p *exitAfter) Show(*gocv.Mat) bool {
	p.shown++
	return p.shown >= p.n
}

func (p *exitAfter) Close() error { return nil }

type harness struct {
	camera   *capture.MockCamera
	detector *detector.MockDetector
	backend  *input.MockBackend
	ctrl     *control.Controller
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newHarness(t *testing.T, frames int, gestures ...gesture.Type) *harness {
	t.Helper()

	h := &harness{
		camera:   capture.NewBlankCamera(frames, 1280, 720),
		detector: detector.NewMockDetector(),
		backend:  input.NewMockBackend(1920, 1080),
		registry: prometheus.NewRegistry(),
	}
	t.Cleanup(h.camera.Release)

	h.metrics = metrics.New(h.registry)
	h.ctrl = control.New(control.DefaultConfig(), control.Deps{
		Backend:    h.backend,
		Filter:     pointer.NewFilter(pointer.DefaultConfig(1920, 1080)),
		Recognizer: &scriptedRecognizer{queue: gestures},
		Clock:      &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Log:        zerolog.Nop(),
	})
	return h
}

func (h *harness) app(preview capture.Preview) *App {
	return New(Deps{
		Camera:     h.camera,
		Detector:   h.detector,
		Controller: h.ctrl,
		Preview:    preview,
		Metrics:    h.metrics,
		Log:        zerolog.Nop(),
	})
}

func (h *harness) counter(t *testing.T, name string) float64 {
	t.Helper()

	families, err := h.registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestApp_PointerConvergesOnStillHand(t *testing.T) {
	const frames = 20
	h := newHarness(t, frames)
	h.detector.SetHands([]detector.Hand{detector.HandAt(detector.HandRight, 640, 360)})

	require.NoError(t, h.app(nil).Run(context.Background()))

	moves := h.backend.Moves()
	require.Len(t, moves, frames)
	assert.Empty(t, h.backend.Actions())

	// The control region 160..1120 x 160..560 maps (640,360) to the screen center.
	covered := 1 - math.Pow(6.0/7.0, frames)
	last := moves[len(moves)-1]
	assert.InDelta(t, 1920-960*covered, float64(last.X), 1)
	assert.InDelta(t, 540*covered, float64(last.Y), 1)

	for i := 1; i < len(moves); i++ {
		assert.LessOrEqual(t, moves[i].X, moves[i-1].X, "x approaches 960 from the right")
		assert.GreaterOrEqual(t, moves[i].Y, moves[i-1].Y, "y approaches 540 from the top")
	}

	assert.Equal(t, float64(frames), h.counter(t, "hcs_frames_total"))
	assert.Equal(t, float64(frames), h.counter(t, "hcs_hands_detected_total"))
	assert.True(t, h.camera.Closed())
}

func TestApp_GrabToggleEndToEnd(t *testing.T) {
	h := newHarness(t, 2, gesture.Grab, gesture.Grab)
	h.detector.SetHands([]detector.Hand{detector.HandAt(detector.HandRight, 640, 360)})
	Observe(h.ctrl, h.metrics, nil)

	require.NoError(t, h.app(nil).Run(context.Background()))

	assert.Equal(t, []string{"down", "up"}, h.backend.Actions())
	assert.False(t, h.ctrl.GrabActive())
	assert.Equal(t, 2.0, h.counter(t, "hcs_actions_total"))
	assert.Equal(t, 2.0, h.counter(t, "hcs_classifications_total"))
}

func TestApp_NoHandsNoActions(t *testing.T) {
	h := newHarness(t, 5, gesture.Click)

	require.NoError(t, h.app(nil).Run(context.Background()))

	assert.Empty(t, h.backend.Calls)
	assert.Equal(t, 5, h.detector.Calls())
}

func TestApp_DetectionErrorContinues(t *testing.T) {
	h := newHarness(t, 3)
	h.detector.SetError(errors.New("service crashed"))

	require.NoError(t, h.app(nil).Run(context.Background()))

	assert.Equal(t, 3, h.camera.Reads(), "every frame is read despite detection errors")
	assert.Empty(t, h.backend.Calls)
	assert.Equal(t, 3.0, h.counter(t, "hcs_detection_errors_total"))
}

func TestApp_BackendErrorIsFatal(t *testing.T) {
	h := newHarness(t, 5)
	h.detector.SetHands([]detector.Hand{detector.HandAt(detector.HandRight, 640, 360)})
	backendErr := errors.New("display gone")
	h.backend.Err = backendErr

	err := h.app(nil).Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.Equal(t, 1, h.camera.Reads())
	assert.True(t, h.camera.Closed())
}

func TestApp_ExitKey(t *testing.T) {
	h := newHarness(t, 10)
	preview := &exitAfter{n: 2}

	require.NoError(t, h.app(preview).Run(context.Background()))

	assert.Equal(t, 2, preview.shown)
	assert.Equal(t, 2, h.camera.Reads())
	assert.True(t, h.camera.Closed())
}

func TestApp_ContextCancelled(t *testing.T) {
	h := newHarness(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.app(nil).Run(ctx))

	assert.Zero(t, h.camera.Reads())
	assert.True(t, h.camera.Closed())
}

func TestApp_JournalRecordsActions(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer s.Close()

	journal, err := StartJournal(s.Journal(), zerolog.Nop())
	require.NoError(t, err)

	h := newHarness(t, 3, gesture.Grab, gesture.Neutral, gesture.Click)
	h.detector.SetHands([]detector.Hand{detector.HandAt(detector.HandRight, 640, 360)})
	Observe(h.ctrl, h.metrics, journal)

	require.NoError(t, h.app(nil).Run(context.Background()))
	require.NoError(t, journal.Close())

	events, err := s.Journal().Events(journal.SessionID())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "grab_down", events[0].Action)
	assert.Equal(t, "grab", events[0].Gesture)
	assert.Equal(t, "Right", events[0].Hand)
	assert.Equal(t, "click", events[1].Action)
	assert.InDelta(t, 0.93, events[1].Score, 1e-9)

	moves := h.backend.Moves()
	assert.Equal(t, moves[len(moves)-1].X, events[1].X)

	session, err := s.Journal().GetSession(journal.SessionID())
	require.NoError(t, err)
	assert.True(t, session.EndedAt.Valid)
}
