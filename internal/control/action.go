package control

import (
	"fmt"
	"image"
	"time"

	"github.com/ayusman/hcs/internal/detector"
	"github.com/ayusman/hcs/internal/gesture"
)

// Action is a discrete pointer action.
type Action int

const (
	ActionClick Action = iota
	ActionGrabDown
	ActionGrabUp
	ActionNavigateBack
	ActionNavigateForward
)

var actionNames = [...]string{
	ActionClick:           "click",
	ActionGrabDown:        "grab_down",
	ActionGrabUp:          "grab_up",
	ActionNavigateBack:    "navigate_back",
	ActionNavigateForward: "navigate_forward",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// kind groups actions that share one debounce interval.
type kind int

const (
	kindClick kind = iota
	kindGrab
	kindNavigate
)

func (a Action) kind() kind {
	switch a {
	case ActionGrabDown, ActionGrabUp:
		return kindGrab
	case ActionNavigateBack, ActionNavigateForward:
		return kindNavigate
	}
	return kindClick
}

// Event describes an action that was sent to the input backend.
type Event struct {
	Action   Action
	Hand     detector.HandType
	Gesture  gesture.Type
	Score    float64
	Position image.Point
	Time     time.Time
}
