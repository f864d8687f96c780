// Package metrics exposes the control loop's Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds the control loop collectors. A nil *Metrics records nothing.
type Metrics struct {
	frames          prometheus.Counter
	hands           *prometheus.CounterVec
	classifications *prometheus.CounterVec
	actions         *prometheus.CounterVec
	detectErrors    prometheus.Counter
	detectDuration  prometheus.Histogram
	fps             prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hcs_frames_total",
			Help: "Frames processed by the control loop.",
		}),
		hands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hcs_hands_detected_total",
			Help: "Hands detected, by hand type.",
		}, []string{"hand"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hcs_classifications_total",
			Help: "Hand classifications, by hand type and gesture.",
		}, []string{"hand", "gesture"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hcs_actions_total",
			Help: "Pointer actions sent to the input backend.",
		}, []string{"action"}),
		detectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hcs_detection_errors_total",
			Help: "Frames whose hand detection failed.",
		}),
		detectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hcs_detection_duration_seconds",
			Help:    "Time spent detecting hands in one frame.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 8),
		}),
		fps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcs_fps",
			Help: "Instantaneous frame rate of the control loop.",
		}),
	}

	reg.MustRegister(
		m.frames,
		m.hands,
		m.classifications,
		m.actions,
		m.detectErrors,
		m.detectDuration,
		m.fps,
	)
	return m
}

// Frame counts one processed frame.
func (m *Metrics) Frame() {
	if m == nil {
		return
	}
	m.frames.Inc()
}

// Hand counts one detected hand.
func (m *Metrics) Hand(hand string) {
	if m == nil {
		return
	}
	m.hands.WithLabelValues(hand).Inc()
}

// Classification counts one classification. Use "unclassified" for hands
// below the confidence threshold.
func (m *Metrics) Classification(hand, gesture string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(hand, gesture).Inc()
}

// Action counts one pointer action.
func (m *Metrics) Action(action string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action).Inc()
}

// DetectionError counts one failed detection.
func (m *Metrics) DetectionError() {
	if m == nil {
		return
	}
	m.detectErrors.Inc()
}

// Detection records how long one detection took.
func (m *Metrics) Detection(d time.Duration) {
	if m == nil {
		return
	}
	m.detectDuration.Observe(d.Seconds())
}

// FPS sets the current frame rate.
func (m *Metrics) FPS(v float64) {
	if m == nil {
		return
	}
	m.fps.Set(v)
}

// Serve exposes g on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
