// Package capture provides the video source and preview window using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultSource = "0"
	DefaultWidth  = 1280
	DefaultHeight = 720
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the source has no further frame, for example
	// at the end of a video file or when the device stops delivering.
	ErrNoFrame = errors.New("no frame available")
)

// Camera defines the interface for video sources.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller is responsible for closing it.
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// Config selects the video source.
type Config struct {
	// Source is a device index such as "0" or a video file path.
	Source string
	// Width and Height are requested from capture devices; files keep their own size.
	Width  int
	Height int
}

// DefaultConfig returns the default camera settings.
func DefaultConfig() Config {
	return Config{
		Source: DefaultSource,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// cameraImpl manages video capture from a device or file using GoCV.
type cameraImpl struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a new Camera for the configured source.
func NewCamera(config Config) Camera {
	return &cameraImpl{config: config}
}

// deviceID returns the device index when the source is numeric.
func (c Config) deviceID() (int, bool) {
	id, err := strconv.Atoi(c.Source)
	return id, err == nil
}

// Open opens the source for capturing frames.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	id, isDevice := c.config.deviceID()
	if isDevice {
		capture, err = gocv.OpenVideoCapture(id)
	} else {
		capture, err = gocv.OpenVideoCapture(c.config.Source)
	}
	if err != nil {
		return fmt.Errorf("open video source %q: %w", c.config.Source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video source %q: %w", c.config.Source, ErrCameraNotOpen)
	}

	if isDevice {
		if c.config.Width > 0 {
			capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
		}
		if c.config.Height > 0 {
			capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
		}
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the source.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrNoFrame
	}

	return &mat, nil
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// FrameSize returns the size of a frame as a point.
func FrameSize(frame *gocv.Mat) image.Point {
	return image.Pt(frame.Cols(), frame.Rows())
}
