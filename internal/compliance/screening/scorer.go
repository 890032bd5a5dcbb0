package screening

import (
	"math"
	"strings"
)

// Scorer binds a FeatureVector to the model's input columns.
type Scorer struct {
	model ScoringModel
}

// NewScorer checks that the model accepts exactly the FeatureNames columns.
// Models implementing NamedModel must also declare them in the same order.
func NewScorer(model ScoringModel) (*Scorer, error) {
	if model == nil {
		return nil, ErrScoring.Explain("no scoring model configured")
	}
	if n := model.NumFeatures(); n != len(FeatureNames) {
		return nil, ErrScoring.Explain("model expects %d features, pipeline produces %d", n, len(FeatureNames))
	}
	if named, ok := model.(NamedModel); ok {
		names := named.FeatureNames()
		for i, want := range FeatureNames {
			if i >= len(names) || names[i] != want {
				return nil, ErrScoring.Explain("model feature columns [%s] do not match pipeline order [%s]",
					strings.Join(names, ","), strings.Join(FeatureNames, ","))
			}
		}
	}
	return &Scorer{model: model}, nil
}

// Score returns the match probability for fv. Failures are never mapped to a
// default probability.
func (s *Scorer) Score(fv FeatureVector) (float64, error) {
	values := fv.Values()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ErrScoring.Explain("feature %s is not finite (%v)", FeatureNames[i], v)
		}
	}
	p, err := s.model.PredictProba(values)
	if err != nil {
		return 0, ErrScoring.Explain("model prediction failed").Wrap(err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, ErrScoring.Explain("model returned probability %v outside [0,1]", p)
	}
	return p, nil
}
