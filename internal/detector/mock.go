package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands    []Hand
	sequence [][]Hand
	calls    int
	err      error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every call to Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.hands = hands
	m.sequence = nil
}

// SetSequence makes the n-th call to Detect return sequence[n]. Once the
// sequence is exhausted Detect returns no hands.
func (m *MockDetector) SetSequence(sequence [][]Hand) {
	m.sequence = sequence
	m.hands = nil
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	defer func() { m.calls++ }()

	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		if m.calls >= len(m.sequence) {
			return nil, nil
		}
		return m.sequence[m.calls], nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// HandAt returns a right or left hand whose pointer landmark (IndexMCP) sits at
// pixel (x, y). The other landmarks are laid out as an open palm around it.
func HandAt(handType HandType, x, y float64) Hand {
	hand := Hand{Type: handType, Score: 0.95}

	palm := OpenPalmPoints()
	anchor := palm[IndexMCP]
	const scale = 400.0 // pixels per normalized unit

	minX, minY := x, y
	maxX, maxY := x, y
	for i, p := range palm {
		px := x + (p.X-anchor.X)*scale
		py := y + (p.Y-anchor.Y)*scale
		hand.Landmarks[i] = Point3D{X: px, Y: py, Z: p.Z}
		minX, maxX = min(minX, px), max(maxX, px)
		minY, maxY = min(minY, py), max(maxY, py)
	}

	hand.BorderBox = BorderBox{
		X:      int(minX) - BorderPadding,
		Y:      int(minY) - BorderPadding,
		Width:  int(maxX-minX) + 2*BorderPadding,
		Height: int(maxY-minY) + 2*BorderPadding,
	}
	hand.Center.X = hand.BorderBox.X + hand.BorderBox.Width/2
	hand.Center.Y = hand.BorderBox.Y + hand.BorderBox.Height/2

	return hand
}

// FistPoints returns normalized landmarks of a closed fist: thumb tucked across
// the palm and all four fingers curled.
func FistPoints() []Point3D {
	points := make([]Point3D, NumLandmarks)

	points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb folded toward the palm (tip left of IP for a right hand)
	points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: -0.01}
	points[ThumbIP] = Point3D{X: 0.56, Y: 0.66, Z: -0.02}
	points[ThumbTip] = Point3D{X: 0.52, Y: 0.65, Z: -0.03}

	// Index finger curled (tip below PIP)
	points[IndexMCP] = Point3D{X: 0.55, Y: 0.66, Z: -0.02}
	points[IndexPIP] = Point3D{X: 0.55, Y: 0.62, Z: -0.05}
	points[IndexDIP] = Point3D{X: 0.54, Y: 0.66, Z: -0.04}
	points[IndexTip] = Point3D{X: 0.54, Y: 0.69, Z: -0.02}

	// Middle finger curled
	points[MiddleMCP] = Point3D{X: 0.50, Y: 0.65, Z: -0.02}
	points[MiddlePIP] = Point3D{X: 0.50, Y: 0.61, Z: -0.05}
	points[MiddleDIP] = Point3D{X: 0.49, Y: 0.65, Z: -0.04}
	points[MiddleTip] = Point3D{X: 0.49, Y: 0.68, Z: -0.02}

	// Ring finger curled
	points[RingMCP] = Point3D{X: 0.45, Y: 0.66, Z: -0.02}
	points[RingPIP] = Point3D{X: 0.45, Y: 0.62, Z: -0.05}
	points[RingDIP] = Point3D{X: 0.44, Y: 0.66, Z: -0.04}
	points[RingTip] = Point3D{X: 0.44, Y: 0.69, Z: -0.02}

	// Pinky finger curled
	points[PinkyMCP] = Point3D{X: 0.41, Y: 0.68, Z: -0.02}
	points[PinkyPIP] = Point3D{X: 0.41, Y: 0.65, Z: -0.05}
	points[PinkyDIP] = Point3D{X: 0.40, Y: 0.68, Z: -0.04}
	points[PinkyTip] = Point3D{X: 0.40, Y: 0.71, Z: -0.02}

	return points
}

// OpenPalmPoints returns normalized landmarks of an open palm with all fingers extended.
func OpenPalmPoints() []Point3D {
	points := make([]Point3D, NumLandmarks)

	points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward
	points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward
	points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return points
}

// MirrorPoints flips normalized landmarks horizontally, turning a right-hand
// pose into the matching left-hand pose.
func MirrorPoints(points []Point3D) []Point3D {
	mirrored := make([]Point3D, len(points))
	for i, p := range points {
		mirrored[i] = Point3D{X: 1 - p.X, Y: p.Y, Z: p.Z}
	}
	return mirrored
}
