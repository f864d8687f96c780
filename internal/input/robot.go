package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotBackend drives the local display through robotgo.
type RobotBackend struct{}

// NewRobotBackend creates a RobotBackend. It fails when no display is available.
func NewRobotBackend() (*RobotBackend, error) {
	b := &RobotBackend{}
	if _, _, err := b.ScreenSize(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *RobotBackend) Move(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (b *RobotBackend) Click() error {
	robotgo.Click("left", false)
	return nil
}

func (b *RobotBackend) Toggle(down bool) error {
	if down {
		return robotgo.Toggle("left")
	}
	return robotgo.Toggle("left", "up")
}

func (b *RobotBackend) KeyTap(key string, modifiers ...string) error {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}

func (b *RobotBackend) ScreenSize() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("no display: screen size %dx%d", w, h)
	}
	return w, h, nil
}

func (b *RobotBackend) Close() error {
	return nil
}
