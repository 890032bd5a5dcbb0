package screening

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// DefaultThreshold is the probability at or above which a pair is a match.
const DefaultThreshold = 0.5

// Matcher runs the normalize, extract, score pipeline. It holds no mutable
// state and is safe for concurrent use.
type Matcher struct {
	extractor *FeatureExtractor
	scorer    *Scorer
	workers   int
	logger    *zap.Logger
}

// NewMatcher creates a matcher. workers bounds the bulk scan parallelism;
// values below 1 use GOMAXPROCS.
func NewMatcher(extractor *FeatureExtractor, scorer *Scorer, workers int, logger *zap.Logger) *Matcher {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Matcher{
		extractor: extractor,
		scorer:    scorer,
		workers:   workers,
		logger:    logger,
	}
}

// Extractor exposes the feature extractor used by the matcher.
func (m *Matcher) Extractor() *FeatureExtractor {
	return m.extractor
}

// Match compares two raw names. MatchedName of the decision is the normalized name2.
func (m *Matcher) Match(name1, name2 string, threshold float64) (MatchDecision, error) {
	if err := validateThreshold(threshold); err != nil {
		return MatchDecision{}, err
	}
	norm1, norm2 := Normalize(name1), Normalize(name2)

	p, err := m.scorer.Score(m.extractor.Extract(norm1, norm2))
	if err != nil {
		return MatchDecision{}, fmt.Errorf("compare %q with %q: %w", name1, name2, err)
	}
	return MatchDecision{
		MatchedName: norm2,
		Probability: p,
		IsMatch:     p >= threshold,
		Threshold:   threshold,
	}, nil
}

func validateThreshold(threshold float64) error {
	if !(threshold >= 0 && threshold <= 1) {
		return ErrInput.Explain("threshold %v outside [0,1]", threshold)
	}
	return nil
}
