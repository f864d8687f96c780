// Package detector provides hand detection interfaces and the per-frame hand record.
package detector

import (
	"errors"
	"fmt"
	"image"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// BorderPadding is the margin in pixels added on every side of the landmark extent.
const BorderPadding = 20

// FeatureLength is the length of a flattened normalized landmark vector.
const FeatureLength = NumLandmarks * 3

var (
	// ErrDegenerateBox is returned when a hand's border box has no width or height.
	ErrDegenerateBox = errors.New("degenerate border box")
	// ErrLandmarkCount is returned when a detection does not carry exactly 21 landmarks.
	ErrLandmarkCount = errors.New("unexpected landmark count")
)

// Point3D is a landmark position. For a Hand, X and Y are frame pixels and Z is
// the relative depth reported by the detector.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandType tells the left hand from the right hand.
type HandType int

const (
	HandLeft HandType = iota
	HandRight
)

func (t HandType) String() string {
	if t == HandRight {
		return "Right"
	}
	return "Left"
}

// BorderBox is the padded axis-aligned rectangle enclosing all landmarks, in pixels.
type BorderBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Hand is one hand detected in one frame. Hands carry no identity across frames.
type Hand struct {
	Landmarks [NumLandmarks]Point3D `json:"landmarks"`
	BorderBox BorderBox             `json:"border_box"`
	Center    image.Point           `json:"center"`
	Type      HandType              `json:"type"`
	Score     float64               `json:"score"`
}

// NewHand builds a Hand from detector output. Points are in normalized image
// coordinates and are converted to pixels of a frameWidth x frameHeight frame.
// label is the detector's handedness ("Left" or "Right"); when flip is set the
// label is swapped to match a mirrored preview.
func NewHand(points []Point3D, frameWidth, frameHeight int, label string, score float64, flip bool) (Hand, error) {
	if len(points) != NumLandmarks {
		return Hand{}, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(points), NumLandmarks)
	}

	hand := Hand{Score: score}

	minX, minY := int(^uint(0)>>1), int(^uint(0)>>1)
	maxX, maxY := -minX-1, -minY-1
	for i, p := range points {
		px := int(p.X * float64(frameWidth))
		py := int(p.Y * float64(frameHeight))
		hand.Landmarks[i] = Point3D{X: float64(px), Y: float64(py), Z: p.Z}

		minX = min(minX, px)
		maxX = max(maxX, px)
		minY = min(minY, py)
		maxY = max(maxY, py)
	}

	minX, maxX = minX-BorderPadding, maxX+BorderPadding
	minY, maxY = minY-BorderPadding, maxY+BorderPadding
	hand.BorderBox = BorderBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	hand.Center = image.Point{
		X: hand.BorderBox.X + hand.BorderBox.Width/2,
		Y: hand.BorderBox.Y + hand.BorderBox.Height/2,
	}

	isRight := label == "Right"
	if flip {
		isRight = !isRight
	}
	if isRight {
		hand.Type = HandRight
	} else {
		hand.Type = HandLeft
	}

	return hand, nil
}

// Normalize maps the landmarks into the unit square spanned by the border box.
// X and Y are clamped to [0,1]; Z is passed through unchanged.
func (h *Hand) Normalize() ([NumLandmarks]Point3D, error) {
	var out [NumLandmarks]Point3D

	box := h.BorderBox
	if box.Width <= 0 || box.Height <= 0 {
		return out, ErrDegenerateBox
	}

	for i, p := range h.Landmarks {
		out[i] = Point3D{
			X: unitInterp(p.X-float64(box.X), float64(box.Width)),
			Y: unitInterp(p.Y-float64(box.Y), float64(box.Height)),
			Z: p.Z,
		}
	}

	return out, nil
}

// FeatureVector returns the normalized landmarks flattened to x0,y0,z0,x1,...
func (h *Hand) FeatureVector() ([]float64, error) {
	points, err := h.Normalize()
	if err != nil {
		return nil, err
	}

	features := make([]float64, 0, FeatureLength)
	for _, p := range points {
		features = append(features, p.X, p.Y, p.Z)
	}
	return features, nil
}

// unitInterp maps [0, span] onto [0, 1], clamping outside values.
func unitInterp(v, span float64) float64 {
	switch {
	case v <= 0:
		return 0
	case v >= span:
		return 1
	}
	return v / span
}
