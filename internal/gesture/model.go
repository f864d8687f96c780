package gesture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/hcs/internal/detector"
	"github.com/ayusman/hcs/internal/store"
)

var (
	// ErrEmptyModel is returned when a model artifact holds no classes.
	ErrEmptyModel = errors.New("gesture model has no classes")
	// ErrModelMismatch is returned when a model does not fit hand feature
	// vectors or predicts labels outside the gesture set.
	ErrModelMismatch = errors.New("gesture model does not match hand features")
)

// Classifier is a pre-trained model over flattened landmark feature vectors.
type Classifier interface {
	// Predict returns the class label of x.
	Predict(x []float64) (int, error)
	// PredictProba returns one probability per class, in Classes order.
	PredictProba(x []float64) ([]float64, error)
	// Classes returns the class labels known to the model.
	Classes() []int
}

// CentroidModel is a nearest-centroid classifier. Class probabilities are the
// softmax of the negative Euclidean distances scaled by the temperature.
type CentroidModel struct {
	labels      []int
	centroids   [][]float64
	temperature float64
}

// NewCentroidModel creates a model from parallel label and centroid slices.
// A non-positive temperature defaults to 1.
func NewCentroidModel(labels []int, centroids [][]float64, temperature float64) (*CentroidModel, error) {
	if len(labels) == 0 {
		return nil, ErrEmptyModel
	}
	if len(labels) != len(centroids) {
		return nil, fmt.Errorf("model has %d labels but %d centroids", len(labels), len(centroids))
	}

	dim := len(centroids[0])
	seen := make(map[int]bool, len(labels))
	for i, c := range centroids {
		if len(c) != dim || dim == 0 {
			return nil, fmt.Errorf("centroid %d has length %d, want %d", labels[i], len(c), dim)
		}
		if seen[labels[i]] {
			return nil, fmt.Errorf("duplicate class label %d", labels[i])
		}
		seen[labels[i]] = true
	}

	if temperature <= 0 {
		temperature = 1
	}

	return &CentroidModel{
		labels:      append([]int(nil), labels...),
		centroids:   centroids,
		temperature: temperature,
	}, nil
}

// LoadModel reads a model artifact written by the store package. A missing,
// unreadable or mismatched (see Validate) artifact is an error.
func LoadModel(path string) (*CentroidModel, error) {
	s, err := store.OpenExisting(path)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}
	defer s.Close()

	m, err := s.Models().Load()
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}

	model, err := NewCentroidModel(m.Labels, m.Centroids, m.Temperature)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return model, nil
}

// Validate checks that the model takes detector.FeatureLength features and
// that every class label is a known gesture.
func (m *CentroidModel) Validate() error {
	if m.Dim() != detector.FeatureLength {
		return fmt.Errorf("%w: centroids have %d features, want %d", ErrModelMismatch, m.Dim(), detector.FeatureLength)
	}
	for _, label := range m.labels {
		if !Type(label).Valid() {
			return fmt.Errorf("%w: class label %d is not a gesture", ErrModelMismatch, label)
		}
	}
	return nil
}

// SaveModel writes m to the artifact at path, replacing any stored model.
func SaveModel(path string, m *CentroidModel) error {
	s, err := store.New(path)
	if err != nil {
		return fmt.Errorf("open model %s: %w", path, err)
	}
	defer s.Close()

	if err := s.Models().Save(m.ToStore()); err != nil {
		return fmt.Errorf("save model %s: %w", path, err)
	}
	return nil
}

// modelJSON is the interchange form of a centroid model, as exported by
// training tools.
type modelJSON struct {
	Temperature float64 `json:"temperature"`
	Classes     []struct {
		Label    int       `json:"label"`
		Centroid []float64 `json:"centroid"`
	} `json:"classes"`
}

// DecodeModel reads a centroid model from JSON:
//
//	{"temperature": 0.1, "classes": [{"label": 1, "centroid": [...]}]}
func DecodeModel(r io.Reader) (*CentroidModel, error) {
	var raw modelJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	labels := make([]int, len(raw.Classes))
	centroids := make([][]float64, len(raw.Classes))
	for i, c := range raw.Classes {
		labels[i] = c.Label
		centroids[i] = c.Centroid
	}
	return NewCentroidModel(labels, centroids, raw.Temperature)
}

// Dim returns the feature vector length the model expects.
func (m *CentroidModel) Dim() int {
	return len(m.centroids[0])
}

// Classes returns the class labels in probability order.
func (m *CentroidModel) Classes() []int {
	return m.labels
}

// Predict returns the label of the nearest centroid.
func (m *CentroidModel) Predict(x []float64) (int, error) {
	d, err := m.distances(x)
	if err != nil {
		return 0, err
	}
	return m.labels[floats.MinIdx(d)], nil
}

// PredictProba returns the class probabilities of x.
func (m *CentroidModel) PredictProba(x []float64) ([]float64, error) {
	d, err := m.distances(x)
	if err != nil {
		return nil, err
	}

	floats.Scale(-1/m.temperature, d)
	lse := floats.LogSumExp(d)
	for i, v := range d {
		d[i] = math.Exp(v - lse)
	}
	return d, nil
}

func (m *CentroidModel) distances(x []float64) ([]float64, error) {
	if len(x) != m.Dim() {
		return nil, fmt.Errorf("feature vector has length %d, want %d", len(x), m.Dim())
	}

	d := make([]float64, len(m.centroids))
	for i, c := range m.centroids {
		d[i] = floats.Distance(x, c, 2)
	}
	return d, nil
}

// ToStore converts the model to its persisted form.
func (m *CentroidModel) ToStore() *store.Model {
	names := make([]string, len(m.labels))
	for i, l := range m.labels {
		names[i] = Type(l).String()
	}
	return &store.Model{
		Labels:      m.Classes(),
		Names:       names,
		Centroids:   m.centroids,
		Temperature: m.temperature,
	}
}
