package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the hands found in it, in pixel coordinates.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// StaticImageMode runs full detection on every frame instead of tracking.
	StaticImageMode bool

	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// FlipType swaps Left/Right so hand types match a mirrored preview.
	FlipType bool

	// Script is the path of the MediaPipe service script. Empty means search the usual places.
	Script string

	// Python is the interpreter used to run Script. Empty means a venv python or python3.
	Python string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.8,
		MinTrackingConf: 0.5,
		FlipType:        true,
	}
}
