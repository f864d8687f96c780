// Package input drives the system pointer and keyboard.
package input

import "errors"

// ErrUnsupported is returned when a backend cannot perform a primitive.
var ErrUnsupported = errors.New("input primitive not supported")

// Key names accepted by KeyTap.
const (
	KeyLeft  = "left"
	KeyRight = "right"
	ModAlt   = "alt"
)

// Backend is the pointer and keyboard the control loop acts on.
// Any error it returns is treated as fatal by the caller.
type Backend interface {
	// Move places the pointer at absolute screen coordinates.
	Move(x, y int) error
	// Click presses and releases the left mouse button.
	Click() error
	// Toggle holds the left mouse button down or releases it.
	Toggle(down bool) error
	// KeyTap presses key while holding the given modifiers.
	KeyTap(key string, modifiers ...string) error
	// ScreenSize returns the screen resolution in pixels.
	ScreenSize() (width, height int, err error)
	// Close releases the backend.
	Close() error
}
