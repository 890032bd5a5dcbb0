package screening

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

// ModeKind selects how bulk results are filtered.
type ModeKind int

const (
	// ModeAllAboveThreshold keeps every decision with probability >= threshold.
	ModeAllAboveThreshold ModeKind = iota
	// ModeTopN keeps the N most probable decisions regardless of verdict.
	ModeTopN
)

// Mode is a bulk selection mode.
type Mode struct {
	Kind ModeKind
	N    int
}

// AllAboveThreshold returns the threshold selection mode.
func AllAboveThreshold() Mode {
	return Mode{Kind: ModeAllAboveThreshold}
}

// TopN returns the top-n selection mode.
func TopN(n int) Mode {
	return Mode{Kind: ModeTopN, N: n}
}

func (m Mode) String() string {
	if m.Kind == ModeTopN {
		return fmt.Sprintf("top_n(%d)", m.N)
	}
	return "all_above_threshold"
}

type scoredCandidate struct {
	index int
	prob  float64
}

// BulkMatch scores input against every candidate and returns decisions ranked
// by descending probability, ties kept in candidate order. Candidates are
// scored in parallel; ranking happens after every score is known, so the
// result does not depend on scheduling. Any scoring failure fails the call.
func (m *Matcher) BulkMatch(ctx context.Context, input string, candidates []ReferenceRecord, threshold float64, mode Mode) ([]MatchDecision, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	if mode.Kind == ModeTopN {
		if mode.N <= 0 {
			return nil, ErrInput.Explain("top_n must be positive, got %d", mode.N)
		}
		if len(candidates) == 0 {
			return nil, ErrNoCandidates.Explain("no reference records to rank for %q", input)
		}
	}

	normInput := Normalize(input)
	scored, err := m.scoreAll(ctx, normInput, candidates)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].prob > scored[j].prob
	})

	limit := len(scored)
	if mode.Kind == ModeTopN && mode.N < limit {
		limit = mode.N
	}

	decisions := make([]MatchDecision, 0, limit)
	for _, sc := range scored[:limit] {
		isMatch := sc.prob >= threshold
		if mode.Kind == ModeAllAboveThreshold && !isMatch {
			// sorted descending, nothing further can pass
			break
		}
		c := candidates[sc.index]
		decisions = append(decisions, MatchDecision{
			EntityID:    c.EntNum,
			MatchedName: c.SDNName,
			Probability: sc.prob,
			IsMatch:     isMatch,
			Threshold:   threshold,
		})
	}

	m.logger.Debug("bulk match completed",
		zap.String("input", normInput),
		zap.Int("candidates", len(candidates)),
		zap.String("mode", mode.String()),
		zap.Int("returned", len(decisions)),
	)
	return decisions, nil
}

// scoreAll fills one slot per candidate, in candidate order, using at most
// m.workers goroutines over contiguous chunks.
func (m *Matcher) scoreAll(ctx context.Context, normInput string, candidates []ReferenceRecord) ([]scoredCandidate, error) {
	scored := make([]scoredCandidate, len(candidates))
	if len(candidates) == 0 {
		return scored, nil
	}

	workers := m.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	chunk := (len(candidates) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		start := start
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				p, err := m.scoreCandidate(normInput, candidates[i])
				if err != nil {
					return fmt.Errorf("bulk candidate %d (ent_num %d): %w", i, candidates[i].EntNum, err)
				}
				scored[i] = scoredCandidate{index: i, prob: p}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

func (m *Matcher) scoreCandidate(normInput string, c ReferenceRecord) (float64, error) {
	cleaned := c.CleanedName
	if cleaned == "" {
		cleaned = Normalize(c.SDNName)
	}
	return m.scorer.Score(m.extractor.Extract(normInput, cleaned))
}
