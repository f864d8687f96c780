package gesture

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/hcs/internal/detector"
)

// DefaultMinConfidence is the probability below which a hand is left unclassified.
const DefaultMinConfidence = 0.5

// ErrUnknownLabel is returned when the classifier predicts a label outside the gesture set.
var ErrUnknownLabel = errors.New("unknown gesture label")

// Recognizer adapts a Classifier to hands: it normalizes the landmarks, runs
// the model and applies the confidence threshold.
type Recognizer struct {
	classifier    Classifier
	minConfidence float64
}

// NewRecognizer creates a Recognizer. Results scoring below minConfidence are dropped.
func NewRecognizer(classifier Classifier, minConfidence float64) *Recognizer {
	return &Recognizer{
		classifier:    classifier,
		minConfidence: minConfidence,
	}
}

// Predict classifies a hand. It returns nil, nil when the top class
// probability is below the minimum confidence, whatever the predicted label.
func (r *Recognizer) Predict(hand *detector.Hand) (*ClassificationResult, error) {
	features, err := hand.FeatureVector()
	if err != nil {
		return nil, err
	}

	label, err := r.classifier.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	proba, err := r.classifier.PredictProba(features)
	if err != nil {
		return nil, fmt.Errorf("predict proba: %w", err)
	}
	if len(proba) == 0 {
		return nil, fmt.Errorf("predict proba: no classes")
	}

	score := math.Round(floats.Max(proba)*100) / 100
	if score < r.minConfidence {
		return nil, nil
	}

	gestureType := Type(label)
	if !gestureType.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLabel, label)
	}

	return &ClassificationResult{Type: gestureType, Score: score}, nil
}
