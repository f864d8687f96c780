package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back pre-recorded frames for testing.
type MockCamera struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	reads   int
	mu      sync.Mutex
	running bool
	closed  bool
}

func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
	}
}

// NewBlankCamera plays n black frames of the given size.
// Release frees the frames once the camera is no longer used.
func NewBlankCamera(n, width, height int) *MockCamera {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return &MockCamera{frames: frames}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.closed = true
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if c.index >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrNoFrame
		}
		c.index = 0
	}

	// Clone the frame so the original isn't modified
	frame := c.frames[c.index].Clone()
	c.index++
	c.reads++

	return &frame, nil
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reads returns how many frames have been delivered.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Closed reports whether Close has been called.
func (c *MockCamera) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Release closes all frames held by the camera.
func (c *MockCamera) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.frames {
		f.Close()
	}
	c.frames = nil
}

// Reset restarts playback from the beginning
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
