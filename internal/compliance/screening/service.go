package screening

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Aidin1998/sanctions_matcher/pkg/errors"
	"github.com/Aidin1998/sanctions_matcher/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Aidin1998/sanctions_matcher/internal/compliance/screening")

// ServiceConfig holds the canonical thresholds of the exposed operations.
type ServiceConfig struct {
	// Threshold is the default match probability cutoff (0-1).
	Threshold float64 `yaml:"threshold" json:"threshold" mapstructure:"threshold"`
	// LookupMinRatio is the fuzz_ratio (0-100) a record must exceed to be listed by LookupSimilar.
	LookupMinRatio float64 `yaml:"lookup_min_ratio" json:"lookup_min_ratio" mapstructure:"lookup_min_ratio"`
	// DefaultTopN is used when a top-N bulk request gives no N.
	DefaultTopN int `yaml:"default_top_n" json:"default_top_n" mapstructure:"default_top_n"`
}

// DefaultServiceConfig returns the canonical thresholds.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Threshold:      DefaultThreshold,
		LookupMinRatio: 50,
		DefaultTopN:    5,
	}
}

// CompareResult is a single-pair decision. AuditErr is set when the decision
// was computed but could not be recorded.
type CompareResult struct {
	Decision MatchDecision
	AuditErr error
}

// BulkRequest describes a bulk comparison.
type BulkRequest struct {
	InputName string
	// Country restricts the reference list; empty means the full list.
	Country   string
	Threshold float64
	Mode      Mode
}

// BulkResult carries the ranked decisions of a bulk comparison.
type BulkResult struct {
	InputName string
	Decisions []MatchDecision
	AuditErr  error
}

// SimilarRecord is a reference record with its fuzz_ratio against the query.
type SimilarRecord struct {
	ReferenceRecord
	FuzzRatio float64 `json:"fuzz_ratio"`
}

// Service exposes the screening operations. All collaborators are injected
// at construction and never replaced.
type Service struct {
	cfg     ServiceConfig
	matcher *Matcher
	source  ReferenceSource
	audit   AuditLogger
	logger  *zap.Logger
}

// NewService wires the screening operations.
func NewService(cfg ServiceConfig, matcher *Matcher, source ReferenceSource, audit AuditLogger, logger *zap.Logger) *Service {
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = DefaultServiceConfig().DefaultTopN
	}
	return &Service{
		cfg:     cfg,
		matcher: matcher,
		source:  source,
		audit:   audit,
		logger:  logger,
	}
}

// Config returns the service thresholds.
func (s *Service) Config() ServiceConfig {
	return s.cfg
}

// Compare decides whether name1 and name2 refer to the same entity.
func (s *Service) Compare(ctx context.Context, name1, name2 string, threshold float64) (*CompareResult, error) {
	defer observe(OpCompare, time.Now())
	ctx, span := tracer.Start(ctx, OpCompare)
	defer span.End()

	if err := requireName(OpCompare, "name1", name1); err != nil {
		return nil, err
	}
	if err := requireName(OpCompare, "name2", name2); err != nil {
		return nil, err
	}

	decision, err := s.matcher.Match(name1, name2, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpCompare, err)
	}
	countDecisions(OpCompare, decision)

	result := &CompareResult{Decision: decision}
	result.AuditErr = s.record(ctx, OpCompare, name1, []MatchDecision{decision})

	s.logger.Info("name comparison completed",
		zap.String("operation", OpCompare),
		zap.String("name1", name1),
		zap.String("name2", name2),
		zap.Float64("probability", decision.Probability),
		zap.Bool("is_match", decision.IsMatch),
		zap.Float64("threshold", threshold),
	)
	return result, nil
}

// BulkCompare ranks the reference list against one input name.
func (s *Service) BulkCompare(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	op := OpBulk
	if req.Mode.Kind == ModeTopN {
		op = OpTop
	}
	defer observe(op, time.Now())
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if err := requireName(op, "input_name", req.InputName); err != nil {
		return nil, err
	}

	candidates, err := s.fetch(ctx, op, req.Country)
	if err != nil {
		return nil, err
	}
	metrics.BulkCandidates.Observe(float64(len(candidates)))
	span.SetAttributes(
		attribute.String("screening.mode", req.Mode.String()),
		attribute.Int("screening.candidates", len(candidates)),
	)

	decisions, err := s.matcher.BulkMatch(ctx, req.InputName, candidates, req.Threshold, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", op, req.InputName, err)
	}
	for _, d := range decisions {
		countDecisions(op, d)
	}

	result := &BulkResult{
		InputName: Normalize(req.InputName),
		Decisions: decisions,
	}
	result.AuditErr = s.record(ctx, op, req.InputName, decisions)

	s.logger.Info("bulk comparison completed",
		zap.String("operation", op),
		zap.String("input_name", req.InputName),
		zap.String("country", req.Country),
		zap.String("mode", req.Mode.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(decisions)),
		zap.Bool("audit_failed", result.AuditErr != nil),
	)
	return result, nil
}

// TopMatch returns the single most probable reference record for name.
func (s *Service) TopMatch(ctx context.Context, name, country string, threshold float64) (*CompareResult, error) {
	res, err := s.BulkCompare(ctx, BulkRequest{
		InputName: name,
		Country:   country,
		Threshold: threshold,
		Mode:      TopN(1),
	})
	if err != nil {
		return nil, err
	}
	return &CompareResult{Decision: res.Decisions[0], AuditErr: res.AuditErr}, nil
}

// LookupSimilar lists reference records whose fuzz_ratio against name is
// strictly above LookupMinRatio, most similar first.
func (s *Service) LookupSimilar(ctx context.Context, name, country string) ([]SimilarRecord, error) {
	defer observe(OpLookup, time.Now())
	ctx, span := tracer.Start(ctx, OpLookup)
	defer span.End()

	if err := requireName(OpLookup, "name", name); err != nil {
		return nil, err
	}
	records, err := s.fetch(ctx, OpLookup, country)
	if err != nil {
		return nil, err
	}

	query := Normalize(name)
	extractor := s.matcher.Extractor()
	var similar []SimilarRecord
	for _, rec := range records {
		cleaned := rec.CleanedName
		if cleaned == "" {
			cleaned = Normalize(rec.SDNName)
		}
		ratio := extractor.SortedRatio(cleaned, query)
		if ratio > s.cfg.LookupMinRatio {
			similar = append(similar, SimilarRecord{ReferenceRecord: rec, FuzzRatio: ratio})
		}
	}
	if len(similar) == 0 {
		return nil, ErrNoMatches.Explain("%s: no reference record above ratio %v for %q", OpLookup, s.cfg.LookupMinRatio, name)
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].FuzzRatio > similar[j].FuzzRatio
	})
	return similar, nil
}

func (s *Service) fetch(ctx context.Context, op, country string) ([]ReferenceRecord, error) {
	var (
		records []ReferenceRecord
		err     error
	)
	if country != "" {
		records, err = s.source.FetchByCountry(ctx, country)
	} else {
		records, err = s.source.FetchAll(ctx)
	}
	if err != nil {
		s.logger.Error("reference list unavailable",
			zap.String("operation", op),
			zap.String("country", country),
			zap.Error(err),
		)
		return nil, ErrDataSource.Explain("%s: reference list unavailable", op).Wrap(err)
	}
	return records, nil
}

// record writes one audit entry per decision. Every failure is kept; the
// decisions themselves are unaffected.
func (s *Service) record(ctx context.Context, op, input string, decisions []MatchDecision) error {
	var failures []error
	for _, d := range decisions {
		err := s.audit.Record(ctx, AuditRecord{
			InputName:       input,
			MatchedName:     d.MatchedName,
			Probability:     d.Probability,
			IsMatch:         d.IsMatch,
			Threshold:       d.Threshold,
			SourceOperation: op,
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("record %q: %w", d.MatchedName, err))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	s.logger.Error("audit logging failed",
		zap.String("operation", op),
		zap.String("input_name", input),
		zap.Int("failed", len(failures)),
		zap.Int("decisions", len(decisions)),
		zap.Error(errors.Join(failures...)),
	)
	return ErrAuditLog.
		Explain("%s: %d of %d decisions for %q not recorded", op, len(failures), len(decisions), input).
		Wrap(errors.Join(failures...))
}

func requireName(op, field, raw string) error {
	if Normalize(raw) == "" {
		return ErrInput.
			Explain("%s: %s %q has no letters after normalization", op, field, raw).
			WithField("required", field, "must contain at least one letter")
	}
	return nil
}

func observe(op string, start time.Time) {
	metrics.MatchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func countDecisions(op string, d MatchDecision) {
	metrics.MatchDecisions.WithLabelValues(op, metrics.Verdict(d.IsMatch)).Inc()
}
