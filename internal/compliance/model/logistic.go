// Package model loads the pre-trained match classifier used by the screening
// pipeline.
package model

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Logistic is a logistic regression classifier over named feature columns.
// It is read-only after loading and safe for concurrent use.
type Logistic struct {
	Features     []string  `yaml:"features" json:"features"`
	Coefficients []float64 `yaml:"coefficients" json:"coefficients"`
	Intercept    float64   `yaml:"intercept" json:"intercept"`
}

// LoadLogistic reads a logistic model from a YAML or JSON file.
func LoadLogistic(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return ParseLogistic(data)
}

// ParseLogistic decodes a logistic model. JSON documents are accepted as YAML.
func ParseLogistic(data []byte) (*Logistic, error) {
	var m Logistic
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode logistic model: %w", err)
	}
	if len(m.Coefficients) == 0 {
		return nil, fmt.Errorf("logistic model has no coefficients")
	}
	if len(m.Features) != 0 && len(m.Features) != len(m.Coefficients) {
		return nil, fmt.Errorf("logistic model declares %d features but %d coefficients",
			len(m.Features), len(m.Coefficients))
	}
	return &m, nil
}

// PredictProba returns sigmoid(w·x + b).
func (m *Logistic) PredictProba(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("got %d features, model takes %d", len(features), len(m.Coefficients))
	}
	z := m.Intercept
	for i, w := range m.Coefficients {
		z += w * features[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func (m *Logistic) NumFeatures() int {
	return len(m.Coefficients)
}

// FeatureNames returns the declared input columns, or nil when the file did
// not name them.
func (m *Logistic) FeatureNames() []string {
	return m.Features
}
