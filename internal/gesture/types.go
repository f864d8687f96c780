// Package gesture classifies hand poses into a closed set of control gestures.
package gesture

import (
	"fmt"
	"strings"
)

// Type is a gesture class. Its integer value is the class label used by the
// persisted model.
type Type int

const (
	Neutral Type = iota
	Click
	Grab
	GoBack
	GoForward
)

var typeNames = [...]string{
	Neutral:   "neutral",
	Click:     "click",
	Grab:      "grab",
	GoBack:    "go_back",
	GoForward: "go_forward",
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("gesture(%d)", int(t))
	}
	return typeNames[t]
}

// Valid reports whether t is one of the known gestures.
func (t Type) Valid() bool {
	return t >= Neutral && int(t) < len(typeNames)
}

// ParseType converts a gesture name such as "go_back" (case-insensitive,
// dashes accepted) into its Type.
func ParseType(s string) (Type, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown gesture %q", s)
}

// ClassificationResult is the outcome of classifying one hand.
type ClassificationResult struct {
	Type  Type
	Score float64 // probability of the predicted class, rounded to 2 decimals
}
