package gesture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/hcs/internal/detector"
)

// fakeClassifier returns a fixed label and probabilities.
type fakeClassifier struct {
	label int
	proba []float64
	err   error
	calls int
}

func (f *fakeClassifier) Predict(x []float64) (int, error) {
	f.calls++
	if len(x) != detector.FeatureLength {
		return 0, errors.New("bad feature length")
	}
	return f.label, f.err
}

func (f *fakeClassifier) PredictProba(x []float64) ([]float64, error) {
	return f.proba, f.err
}

func (f *fakeClassifier) Classes() []int {
	classes := make([]int, len(f.proba))
	for i := range classes {
		classes[i] = i
	}
	return classes
}

func rightHand(t *testing.T) *detector.Hand {
	t.Helper()
	hand, err := detector.NewHand(detector.OpenPalmPoints(), 1280, 720, "Right", 0.9, false)
	require.NoError(t, err)
	return &hand
}

func TestRecognizer_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		label     int
		proba     []float64
		wantNil   bool
		wantType  Type
		wantScore float64
	}{
		{
			name:    "below threshold",
			label:   int(Click),
			proba:   []float64{0.3, 0.494, 0.206},
			wantNil: true,
		},
		{
			name:      "rounds up to threshold",
			label:     int(Click),
			proba:     []float64{0.3, 0.496, 0.204},
			wantType:  Click,
			wantScore: 0.5,
		},
		{
			name:      "confident grab",
			label:     int(Grab),
			proba:     []float64{0.01, 0.02, 0.9649, 0.0051},
			wantType:  Grab,
			wantScore: 0.96,
		},
		{
			name:      "neutral is a result too",
			label:     int(Neutral),
			proba:     []float64{0.8, 0.2},
			wantType:  Neutral,
			wantScore: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecognizer(&fakeClassifier{label: tt.label, proba: tt.proba}, DefaultMinConfidence)

			result, err := r.Predict(rightHand(t))
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.wantType, result.Type)
			assert.Equal(t, tt.wantScore, result.Score)
		})
	}
}

func TestRecognizer_UnknownLabel(t *testing.T) {
	r := NewRecognizer(&fakeClassifier{label: 9, proba: []float64{0.1, 0.9}}, DefaultMinConfidence)

	result, err := r.Predict(rightHand(t))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestRecognizer_UnknownLabelBelowThreshold(t *testing.T) {
	r := NewRecognizer(&fakeClassifier{label: 9, proba: []float64{0.45, 0.3, 0.25}}, DefaultMinConfidence)

	result, err := r.Predict(rightHand(t))
	assert.NoError(t, err, "a low score is unclassified whatever the label")
	assert.Nil(t, result)
}

func TestRecognizer_DegenerateBox(t *testing.T) {
	classifier := &fakeClassifier{label: int(Click), proba: []float64{0, 1}}
	r := NewRecognizer(classifier, DefaultMinConfidence)

	result, err := r.Predict(&detector.Hand{Type: detector.HandRight})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, detector.ErrDegenerateBox)
	assert.Zero(t, classifier.calls, "classifier must not run on a degenerate box")
}

func TestRecognizer_ClassifierError(t *testing.T) {
	r := NewRecognizer(&fakeClassifier{err: errors.New("boom")}, DefaultMinConfidence)

	_, err := r.Predict(rightHand(t))
	assert.Error(t, err)
}

func TestRecognizer_WithCentroidModel(t *testing.T) {
	r := NewRecognizer(newPoseModel(t), DefaultMinConfidence)

	fist, err := detector.NewHand(detector.FistPoints(), 1280, 720, "Right", 0.9, false)
	require.NoError(t, err)

	result, err := r.Predict(&fist)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, Grab, result.Type)
	assert.GreaterOrEqual(t, result.Score, DefaultMinConfidence)
}
