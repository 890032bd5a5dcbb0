package screening

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FeatureNames is the column order the classifier was trained on.
var FeatureNames = []string{
	"fuzz_ratio",
	"token_sort_ratio",
	"length_diff",
	"common_token_count",
	"prefix_match",
	"word_count_1",
	"word_count_2",
}

// FeatureVector holds the similarity features of a name pair.
type FeatureVector struct {
	FuzzRatio        float64 `json:"fuzz_ratio"`
	TokenSortRatio   float64 `json:"token_sort_ratio"`
	LengthDiff       float64 `json:"length_diff"`
	CommonTokenCount float64 `json:"common_token_count"`
	PrefixMatch      float64 `json:"prefix_match"`
	WordCount1       float64 `json:"word_count_1"`
	WordCount2       float64 `json:"word_count_2"`
}

// Values lays the vector out in FeatureNames order.
func (fv FeatureVector) Values() []float64 {
	return []float64{
		fv.FuzzRatio,
		fv.TokenSortRatio,
		fv.LengthDiff,
		fv.CommonTokenCount,
		fv.PrefixMatch,
		fv.WordCount1,
		fv.WordCount2,
	}
}

// RatioFunc returns a 0-100 similarity of two strings.
type RatioFunc func(a, b string) float64

// Ratio algorithms selectable by configuration.
const (
	RatioIndel       = "indel"
	RatioLevenshtein = "levenshtein"
)

// IndelRatio is the normalized insertion/deletion similarity
// (1 - indel/(len(a)+len(b))) * 100, the definition used by common fuzzy
// string libraries for their plain "ratio".
func IndelRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	dist := total - 2*lcsLength(ra, rb)
	return (1 - float64(dist)/float64(total)) * 100
}

// LevenshteinRatio applies the same normalization to the Levenshtein distance,
// where a substitution costs 1.
func LevenshteinRatio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (1 - float64(dist)/float64(total)) * 100
}

// lcsLength is the longest common subsequence length, two-row DP.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// FeatureExtractor computes FeatureVectors for pairs of normalized names.
type FeatureExtractor struct {
	ratio  RatioFunc
	logger *zap.Logger
}

// NewFeatureExtractor builds an extractor for the named ratio algorithm.
// An empty name selects RatioIndel.
func NewFeatureExtractor(algorithm string, logger *zap.Logger) (*FeatureExtractor, error) {
	var ratio RatioFunc
	switch algorithm {
	case "", RatioIndel:
		ratio = IndelRatio
	case RatioLevenshtein:
		ratio = LevenshteinRatio
	default:
		return nil, fmt.Errorf("unknown ratio algorithm %q", algorithm)
	}
	return &FeatureExtractor{ratio: ratio, logger: logger}, nil
}

// Extract computes the features of a normalized name pair. Ratio features are
// computed on token-sorted forms; counts and lengths on the names as given.
func (fe *FeatureExtractor) Extract(a, b string) FeatureVector {
	tokensA, tokensB := Tokens(a), Tokens(b)
	sortedA, sortedB := joinSorted(tokensA), joinSorted(tokensB)

	return FeatureVector{
		FuzzRatio:        fe.safeRatio(sortedA, sortedB),
		TokenSortRatio:   fe.safeRatio(joinSorted(Tokens(sortedA)), joinSorted(Tokens(sortedB))),
		LengthDiff:       float64(absInt(len(a) - len(b))),
		CommonTokenCount: float64(commonTokens(tokensA, tokensB)),
		PrefixMatch:      prefixMatch(tokensA, tokensB),
		WordCount1:       float64(len(tokensA)),
		WordCount2:       float64(len(tokensB)),
	}
}

// SortedRatio is the fuzz_ratio feature alone, used for cheap lookups.
func (fe *FeatureExtractor) SortedRatio(a, b string) float64 {
	return fe.safeRatio(joinSorted(Tokens(a)), joinSorted(Tokens(b)))
}

// safeRatio rounds the ratio to two decimals. A panic in the ratio function
// degrades to 0 so a single bad pair cannot abort a bulk scan.
func (fe *FeatureExtractor) safeRatio(a, b string) (ratio float64) {
	defer func() {
		if r := recover(); r != nil {
			fe.logger.Warn("similarity ratio failed, using 0",
				zap.String("name_a", a),
				zap.String("name_b", b),
				zap.Any("panic", r),
			)
			ratio = 0
		}
	}()
	return round(fe.ratio(a, b), 2)
}

func joinSorted(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

func commonTokens(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			n++
			delete(set, t)
		}
	}
	return n
}

// prefixMatch is 0 when either name has no tokens.
func prefixMatch(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if a[0] == b[0] {
		return 1
	}
	return 0
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// round rounds half away from zero.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
