// Package pointer maps a tracked hand landmark onto the screen and smooths its motion.
package pointer

import (
	"image"

	"github.com/ayusman/hcs/internal/detector"
)

const (
	DefaultLandmark       = detector.IndexMCP
	DefaultFrameReduction = 160
	DefaultSmoothing      = 7.0
)

// Config holds the motion filter settings.
type Config struct {
	// Landmark is the index of the landmark that drives the pointer.
	Landmark int
	// FrameReduction is the margin in pixels cut from every side of the camera
	// frame to form the control region.
	FrameReduction int
	// Smoothing is the exponential smoothing denominator. 1 disables smoothing.
	Smoothing float64
	// ScreenWidth and ScreenHeight are the target screen resolution.
	ScreenWidth  int
	ScreenHeight int
}

// DefaultConfig returns the default filter settings for a screen of the given size.
func DefaultConfig(screenWidth, screenHeight int) Config {
	return Config{
		Landmark:       DefaultLandmark,
		FrameReduction: DefaultFrameReduction,
		Smoothing:      DefaultSmoothing,
		ScreenWidth:    screenWidth,
		ScreenHeight:   screenHeight,
	}
}

// State is the smoothed pointer position before horizontal mirroring, in
// floating-point screen coordinates.
type State struct {
	X, Y float64
}

// Filter converts landmark positions into smoothed screen coordinates.
// It is not safe for concurrent use.
type Filter struct {
	config Config
	state  State
}

// NewFilter creates a Filter starting at the screen origin.
func NewFilter(config Config) *Filter {
	return &Filter{config: config}
}

// ControlRegion returns the part of a frame of the given size that maps onto the full screen.
func (f *Filter) ControlRegion(frameSize image.Point) image.Rectangle {
	r := f.config.FrameReduction
	return image.Rect(r, r, frameSize.X-r, frameSize.Y-r)
}

// Target returns the unsmoothed, unmirrored screen position for a landmark.
// Positions outside the control region are clamped to the screen edges.
func (f *Filter) Target(frameSize image.Point, p detector.Point3D) State {
	region := f.ControlRegion(frameSize)
	return State{
		X: interp(p.X, float64(region.Min.X), float64(region.Max.X), float64(f.config.ScreenWidth)),
		Y: interp(p.Y, float64(region.Min.Y), float64(region.Max.Y), float64(f.config.ScreenHeight)),
	}
}

// Update moves the pointer state toward the landmark p of a hand seen in a
// frame of frameSize and returns the screen position, mirrored horizontally.
func (f *Filter) Update(frameSize image.Point, p detector.Point3D) image.Point {
	target := f.Target(frameSize, p)

	s := f.config.Smoothing
	f.state.X += (target.X - f.state.X) / s
	f.state.Y += (target.Y - f.state.Y) / s

	return f.Position()
}

// UpdateHand runs Update with the configured landmark of hand.
func (f *Filter) UpdateHand(frameSize image.Point, hand *detector.Hand) image.Point {
	return f.Update(frameSize, hand.Landmarks[f.config.Landmark])
}

// Position returns the current integer screen position, mirrored horizontally.
func (f *Filter) Position() image.Point {
	return image.Point{
		X: int(float64(f.config.ScreenWidth) - f.state.X),
		Y: int(f.state.Y),
	}
}

// State returns the current pointer state.
func (f *Filter) State() State {
	return f.state
}

// Reset moves the pointer state back to the origin.
func (f *Filter) Reset() {
	f.state = State{}
}

// interp maps v from [lo, hi] onto [0, out], clamping at the ends.
func interp(v, lo, hi, out float64) float64 {
	switch {
	case v <= lo:
		return 0
	case v >= hi:
		return out
	}
	return (v - lo) / (hi - lo) * out
}
