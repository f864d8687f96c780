package input

import (
	"fmt"
	"image"
	"strings"
)

// Call is one primitive recorded by MockBackend.
type Call struct {
	Op   string // move, click, down, up, key
	X, Y int
	Key  string
}

func (c Call) String() string {
	switch c.Op {
	case "move":
		return fmt.Sprintf("move(%d,%d)", c.X, c.Y)
	case "key":
		return "key(" + c.Key + ")"
	}
	return c.Op
}

// MockBackend records every primitive instead of touching the display.
type MockBackend struct {
	Width, Height int
	Calls         []Call
	// Err, when set, is returned by every primitive.
	Err error
}

// NewMockBackend creates a MockBackend with the given screen size.
func NewMockBackend(width, height int) *MockBackend {
	return &MockBackend{Width: width, Height: height}
}

func (m *MockBackend) record(c Call) error {
	if m.Err != nil {
		return m.Err
	}
	m.Calls = append(m.Calls, c)
	return nil
}

func (m *MockBackend) Move(x, y int) error { return m.record(Call{Op: "move", X: x, Y: y}) }

func (m *MockBackend) Click() error { return m.record(Call{Op: "click"}) }

func (m *MockBackend) Toggle(down bool) error {
	if down {
		return m.record(Call{Op: "down"})
	}
	return m.record(Call{Op: "up"})
}

func (m *MockBackend) KeyTap(key string, modifiers ...string) error {
	return m.record(Call{Op: "key", Key: strings.Join(append(append([]string(nil), modifiers...), key), "+")})
}

func (m *MockBackend) ScreenSize() (int, int, error) {
	if m.Err != nil {
		return 0, 0, m.Err
	}
	return m.Width, m.Height, nil
}

func (m *MockBackend) Close() error { return nil }

// Actions returns the recorded calls other than moves, formatted as strings.
func (m *MockBackend) Actions() []string {
	var out []string
	for _, c := range m.Calls {
		if c.Op != "move" {
			out = append(out, c.String())
		}
	}
	return out
}

// Moves returns the recorded pointer positions.
func (m *MockBackend) Moves() []image.Point {
	var out []image.Point
	for _, c := range m.Calls {
		if c.Op == "move" {
			out = append(out, image.Pt(c.X, c.Y))
		}
	}
	return out
}

// Reset forgets the recorded calls.
func (m *MockBackend) Reset() {
	m.Calls = nil
}
