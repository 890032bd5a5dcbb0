package screening

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ratioModel scores a pair by its fuzz_ratio alone.
type ratioModel struct{}

func (ratioModel) PredictProba(features []float64) (float64, error) {
	return features[0] / 100, nil
}

func (ratioModel) NumFeatures() int { return len(FeatureNames) }

// constModel returns the same probability for every pair.
type constModel struct{ p float64 }

func (m constModel) PredictProba([]float64) (float64, error) { return m.p, nil }
func (constModel) NumFeatures() int                          { return len(FeatureNames) }

// funcModel delegates to fn.
type funcModel struct {
	n  int
	fn func([]float64) (float64, error)
}

func (m funcModel) PredictProba(f []float64) (float64, error) { return m.fn(f) }
func (m funcModel) NumFeatures() int                          { return m.n }

type namedModel struct {
	constModel
	names []string
}

func (m namedModel) FeatureNames() []string { return m.names }

func newTestMatcher(t *testing.T, model ScoringModel, workers int) *Matcher {
	t.Helper()
	scorer, err := NewScorer(model)
	require.NoError(t, err)
	return NewMatcher(newTestExtractor(t), scorer, workers, zap.NewNop())
}

type fakeSource struct {
	records []ReferenceRecord
	err     error
	calls   int
}

func (s *fakeSource) FetchAll(context.Context) ([]ReferenceRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *fakeSource) FetchByCountry(_ context.Context, filter string) ([]ReferenceRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []ReferenceRecord
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Country), strings.ToLower(filter)) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	records []AuditRecord
	failOn  map[string]bool
}

func (a *fakeAudit) Record(_ context.Context, rec AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failOn[rec.MatchedName] {
		return fmt.Errorf("insert prediction_log: connection reset")
	}
	a.records = append(a.records, rec)
	return nil
}

func referenceList(names ...string) []ReferenceRecord {
	out := make([]ReferenceRecord, len(names))
	for i, n := range names {
		out[i] = ReferenceRecord{
			EntNum:      int64(100 + i),
			SDNName:     n,
			SDNType:     "individual",
			Country:     "Cuba",
			CleanedName: Normalize(n),
		}
	}
	return out
}
