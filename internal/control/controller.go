package control

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/hcs/internal/detector"
	"github.com/ayusman/hcs/internal/gesture"
	"github.com/ayusman/hcs/internal/input"
	"github.com/ayusman/hcs/internal/pointer"
)

// Recognizer classifies a hand. A nil result means the hand is unclassified.
type Recognizer interface {
	Predict(hand *detector.Hand) (*gesture.ClassificationResult, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Backend    input.Backend
	Filter     *pointer.Filter
	Recognizer Recognizer
	Clock      Clock
	Log        zerolog.Logger
}

// Controller is the gesture-to-action state machine. It owns the pointer
// filter state and the grab toggle and must be driven from a single goroutine.
type Controller struct {
	config     Config
	backend    input.Backend
	filter     *pointer.Filter
	recognizer Recognizer
	clock      Clock
	log        zerolog.Logger

	activeGrab bool
	nextAction map[kind]time.Time

	// OnAction is called after every action sent to the backend.
	OnAction func(Event)
	// OnClassify is called for every classified hand, with a nil result when
	// the hand stayed unclassified.
	OnClassify func(hand detector.HandType, result *gesture.ClassificationResult)
}

// New creates a Controller. A nil Clock defaults to the system clock.
func New(config Config, deps Deps) *Controller {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &Controller{
		config:     config,
		backend:    deps.Backend,
		filter:     deps.Filter,
		recognizer: deps.Recognizer,
		clock:      clock,
		log:        deps.Log.With().Str("component", "control").Logger(),
		nextAction: make(map[kind]time.Time),
	}
}

// GrabActive reports whether the left button is held by a grab.
func (c *Controller) GrabActive() bool {
	return c.activeGrab
}

// ProcessFrame handles the hands detected in one frame of frameSize, in
// detection order. It returns an error only when the input backend fails.
func (c *Controller) ProcessFrame(frameSize image.Point, hands []detector.Hand) error {
	sawRight := false
	for i := range hands {
		hand := &hands[i]
		switch hand.Type {
		case detector.HandRight:
			sawRight = true
			if err := c.HandleRight(frameSize, hand); err != nil {
				return err
			}
		case detector.HandLeft:
			if err := c.HandleLeft(hand); err != nil {
				return err
			}
		}
	}

	if !sawRight && c.activeGrab && c.config.ReleaseGrabOnHandLoss {
		c.log.Debug().Msg("right hand lost, releasing grab")
		return c.perform(ActionGrabUp, detector.HandRight, nil)
	}
	return nil
}

// HandleRight moves the pointer after the hand and acts on its gesture.
// Motion is applied whether or not the gesture is classified.
func (c *Controller) HandleRight(frameSize image.Point, hand *detector.Hand) error {
	pos := c.filter.UpdateHand(frameSize, hand)
	if err := c.backend.Move(pos.X, pos.Y); err != nil {
		return fmt.Errorf("move pointer: %w", err)
	}

	result := c.classify(hand)
	if result == nil {
		return nil
	}

	switch result.Type {
	case gesture.Click:
		return c.perform(ActionClick, hand.Type, result)
	case gesture.Grab:
		if c.activeGrab {
			return c.perform(ActionGrabUp, hand.Type, result)
		}
		return c.perform(ActionGrabDown, hand.Type, result)
	case gesture.GoBack:
		return c.perform(ActionNavigateBack, hand.Type, result)
	case gesture.GoForward:
		return c.perform(ActionNavigateForward, hand.Type, result)
	}
	return nil
}

// HandleLeft acts on the left hand according to the configured strategy.
// The left hand only navigates; it never moves the pointer or clicks.
func (c *Controller) HandleLeft(hand *detector.Hand) error {
	switch c.config.LeftHand {
	case LeftHandFingerCount:
		if hand.ExtendedFingers() == 0 {
			return c.perform(ActionNavigateBack, hand.Type, nil)
		}
	case LeftHandClassifier:
		result := c.classify(hand)
		if result == nil {
			return nil
		}
		switch result.Type {
		case gesture.GoBack:
			return c.perform(ActionNavigateBack, hand.Type, result)
		case gesture.GoForward:
			return c.perform(ActionNavigateForward, hand.Type, result)
		}
	}
	return nil
}

// classify runs the recognizer. Classification failures are never fatal.
func (c *Controller) classify(hand *detector.Hand) *gesture.ClassificationResult {
	result, err := c.recognizer.Predict(hand)
	switch {
	case errors.Is(err, detector.ErrDegenerateBox):
		c.log.Debug().Stringer("hand", hand.Type).Msg("degenerate border box, skipping classification")
		return nil
	case err != nil:
		c.log.Warn().Err(err).Stringer("hand", hand.Type).Msg("classification failed")
		return nil
	}

	if c.OnClassify != nil {
		c.OnClassify(hand.Type, result)
	}
	return result
}

// perform sends an action to the backend unless it is debounced, updates the
// grab toggle and enforces the action's interval.
func (c *Controller) perform(action Action, hand detector.HandType, result *gesture.ClassificationResult) error {
	interval := c.interval(action)
	now := c.clock.Now()

	if c.config.Debounce == DebounceTimestamp {
		if next, ok := c.nextAction[action.kind()]; ok && now.Before(next) {
			c.log.Debug().Stringer("action", action).Dur("wait", next.Sub(now)).Msg("action debounced")
			return nil
		}
	}

	var err error
	switch action {
	case ActionClick:
		err = c.backend.Click()
	case ActionGrabDown:
		err = c.backend.Toggle(true)
	case ActionGrabUp:
		err = c.backend.Toggle(false)
	case ActionNavigateBack:
		err = c.backend.KeyTap(input.KeyLeft, input.ModAlt)
	case ActionNavigateForward:
		err = c.backend.KeyTap(input.KeyRight, input.ModAlt)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	switch action {
	case ActionClick:
		c.activeGrab = false
	case ActionGrabDown:
		c.activeGrab = true
	case ActionGrabUp:
		c.activeGrab = false
	}

	event := Event{Action: action, Hand: hand, Position: c.filter.Position(), Time: now}
	if result != nil {
		event.Gesture = result.Type
		event.Score = result.Score
	}
	c.log.Debug().
		Stringer("action", action).
		Stringer("hand", hand).
		Bool("grab", c.activeGrab).
		Msg("action")
	if c.OnAction != nil {
		c.OnAction(event)
	}

	switch c.config.Debounce {
	case DebounceTimestamp:
		c.nextAction[action.kind()] = now.Add(interval)
	default:
		c.clock.Sleep(interval)
	}
	return nil
}

func (c *Controller) interval(action Action) time.Duration {
	switch action.kind() {
	case kindGrab:
		return c.config.GrabInterval
	case kindNavigate:
		return c.config.NavigateInterval
	}
	return c.config.ClickInterval
}
