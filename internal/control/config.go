// Package control turns per-frame hand detections into pointer motion and
// debounced pointer actions.
package control

import (
	"fmt"
	"time"
)

// DebounceMode selects how the minimum interval between actions is enforced.
type DebounceMode string

const (
	// DebounceBlocking sleeps for the interval after every action, stalling the loop.
	DebounceBlocking DebounceMode = "blocking"
	// DebounceTimestamp drops repeated actions of the same kind until the
	// interval has elapsed, without blocking frame processing.
	DebounceTimestamp DebounceMode = "timestamp"
)

// LeftHandStrategy selects how the left hand's gestures are decided.
type LeftHandStrategy string

const (
	// LeftHandClassifier runs the gesture classifier on the left hand.
	LeftHandClassifier LeftHandStrategy = "classifier"
	// LeftHandFingerCount navigates back when the left hand shows no extended fingers.
	LeftHandFingerCount LeftHandStrategy = "finger-count"
	// LeftHandNone ignores the left hand.
	LeftHandNone LeftHandStrategy = "none"
)

const (
	DefaultClickInterval    = 200 * time.Millisecond
	DefaultGrabInterval     = 300 * time.Millisecond
	DefaultNavigateInterval = 300 * time.Millisecond
)

// Config holds the action state machine settings.
type Config struct {
	ClickInterval    time.Duration
	GrabInterval     time.Duration
	NavigateInterval time.Duration
	Debounce         DebounceMode
	// ReleaseGrabOnHandLoss releases a held grab on the first frame without a right hand.
	ReleaseGrabOnHandLoss bool
	LeftHand              LeftHandStrategy
}

// DefaultConfig returns the default action settings.
func DefaultConfig() Config {
	return Config{
		ClickInterval:    DefaultClickInterval,
		GrabInterval:     DefaultGrabInterval,
		NavigateInterval: DefaultNavigateInterval,
		Debounce:         DebounceBlocking,
		LeftHand:         LeftHandClassifier,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ClickInterval <= 0 || c.GrabInterval <= 0 || c.NavigateInterval <= 0 {
		return fmt.Errorf("action intervals must be positive")
	}
	switch c.Debounce {
	case DebounceBlocking, DebounceTimestamp:
	default:
		return fmt.Errorf("unknown debounce mode %q", c.Debounce)
	}
	switch c.LeftHand {
	case LeftHandClassifier, LeftHandFingerCount, LeftHandNone:
	default:
		return fmt.Errorf("unknown left hand strategy %q", c.LeftHand)
	}
	return nil
}

// Clock tells time and blocks. Tests replace it with a fake.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}
