package screening

import (
	"context"
	"fmt"
	"testing"

	"github.com/Aidin1998/sanctions_matcher/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkMatch_AllAboveThreshold(t *testing.T) {
	m := newTestMatcher(t, ratioModel{}, 2)
	candidates := referenceList("ALICE JONES", "JON SMYTH", "JOHN SMITH")

	got, err := m.BulkMatch(context.Background(), "John Smith", candidates, 0.5, AllAboveThreshold())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "JOHN SMITH", got[0].MatchedName)
	assert.Equal(t, int64(102), got[0].EntityID)
	assert.Equal(t, 1.0, got[0].Probability)
	assert.Equal(t, "JON SMYTH", got[1].MatchedName)
	assert.InDelta(t, 0.8421, got[1].Probability, 1e-9)
	for _, d := range got {
		assert.True(t, d.IsMatch)
		assert.Equal(t, 0.5, d.Threshold)
	}
}

func TestBulkMatch_AllAboveThresholdIsComplete(t *testing.T) {
	m := newTestMatcher(t, ratioModel{}, 3)
	candidates := referenceList("JOHN SMITH", "JOHN SMYTHE", "JON SMYTH", "JOHAN SMIT", "ALICE JONES", "PETER PAN", "SMITH JOHN")

	got, err := m.BulkMatch(context.Background(), "JOHN SMITH", candidates, 0.6, AllAboveThreshold())
	require.NoError(t, err)

	returned := map[int64]bool{}
	for _, d := range got {
		returned[d.EntityID] = true
	}
	for _, c := range candidates {
		single, err := m.Match("JOHN SMITH", c.CleanedName, 0.6)
		require.NoError(t, err)
		assert.Equal(t, single.IsMatch, returned[c.EntNum], c.SDNName)
	}
}

func TestBulkMatch_TopN(t *testing.T) {
	m := newTestMatcher(t, ratioModel{}, 4)
	candidates := referenceList("ALICE JONES", "JON SMYTH", "JOHN SMITH", "PETER PAN", "JOHN SMYTHE")

	got, err := m.BulkMatch(context.Background(), "John Smith", candidates, 0.5, TopN(3))
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Probability, got[i].Probability)
	}
	assert.Equal(t, "JOHN SMITH", got[0].MatchedName)

	all, err := m.BulkMatch(context.Background(), "Peter Pan", candidates[:2], 0.5, TopN(10))
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, d := range all {
		assert.False(t, d.IsMatch, "top-N keeps non-matches: %s", d.MatchedName)
	}
}

func TestBulkMatch_TopNValidation(t *testing.T) {
	m := newTestMatcher(t, ratioModel{}, 1)

	_, err := m.BulkMatch(context.Background(), "John Smith", nil, 0.5, TopN(3))
	assert.True(t, errors.Is(err, ErrNoCandidates))

	for _, n := range []int{0, -1} {
		_, err = m.BulkMatch(context.Background(), "John Smith", referenceList("JOHN SMITH"), 0.5, TopN(n))
		assert.True(t, errors.Is(err, ErrInput), "n=%d", n)
	}

	got, err := m.BulkMatch(context.Background(), "John Smith", nil, 0.5, AllAboveThreshold())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBulkMatch_TiesKeepCandidateOrder(t *testing.T) {
	m := newTestMatcher(t, constModel{p: 0.7}, 4)
	candidates := referenceList("D", "B", "A", "C", "E")

	got, err := m.BulkMatch(context.Background(), "X", candidates, 0.5, AllAboveThreshold())
	require.NoError(t, err)
	require.Len(t, got, len(candidates))
	for i, d := range got {
		assert.Equal(t, candidates[i].EntNum, d.EntityID)
	}
}

func TestBulkMatch_ParallelMatchesSerial(t *testing.T) {
	first := []string{"JOHN", "JON", "JOHAN", "IVAN", "ALI", "ALY", "MARIA", "MARIO"}
	last := []string{"SMITH", "SMYTH", "PETROV", "HASSAN", "GARCIA", "GARZA"}
	var names []string
	for _, f := range first {
		for _, l := range last {
			names = append(names, f+" "+l, l+" "+f)
		}
	}
	candidates := referenceList(names...)

	serial := newTestMatcher(t, ratioModel{}, 1)
	parallel := newTestMatcher(t, ratioModel{}, 8)

	for _, mode := range []Mode{AllAboveThreshold(), TopN(7)} {
		want, err := serial.BulkMatch(context.Background(), "Jon Smith", candidates, 0.4, mode)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			got, err := parallel.BulkMatch(context.Background(), "Jon Smith", candidates, 0.4, mode)
			require.NoError(t, err)
			assert.Equal(t, want, got, mode.String())
		}
	}
}

func TestBulkMatch_ScoringFailureFailsCall(t *testing.T) {
	model := funcModel{n: 7, fn: func(f []float64) (float64, error) {
		if f[0] < 50 {
			return 0, fmt.Errorf("tree ensemble rejected row")
		}
		return f[0] / 100, nil
	}}
	m := newTestMatcher(t, model, 2)

	got, err := m.BulkMatch(context.Background(), "John Smith", referenceList("JOHN SMITH", "ALICE JONES", "JON SMYTH"), 0.5, AllAboveThreshold())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrScoring))
	assert.Contains(t, err.Error(), "ent_num 101")
}

func TestBulkMatch_Cancelled(t *testing.T) {
	m := newTestMatcher(t, ratioModel{}, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.BulkMatch(ctx, "John Smith", referenceList("JOHN SMITH", "JON SMYTH"), 0.5, AllAboveThreshold())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBulkMatch_NormalizesBlankCleanedName(t *testing.T) {
	m := newTestMatcher(t, ratioModel{}, 1)
	candidates := []ReferenceRecord{{EntNum: 7, SDNName: "Smith, John"}}

	got, err := m.BulkMatch(context.Background(), "JOHN SMITH", candidates, 0, TopN(1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Smith, John", got[0].MatchedName)
	assert.Equal(t, 0.5, got[0].Probability)
}
