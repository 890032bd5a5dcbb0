package audit

import (
	"context"
	"fmt"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/Aidin1998/sanctions_matcher/pkg/errors"
	"github.com/Aidin1998/sanctions_matcher/pkg/metrics"
	"go.uber.org/zap"
)

// Sink is a named audit destination.
type Sink struct {
	Name   string
	Logger screening.AuditLogger
}

// Chain fans each decision out to every sink. A decision counts as recorded
// only when every sink accepted it.
type Chain struct {
	sinks []Sink
	log   *zap.Logger
}

var _ screening.AuditLogger = (*Chain)(nil)

func NewChain(log *zap.Logger, sinks ...Sink) *Chain {
	return &Chain{sinks: sinks, log: log}
}

func (c *Chain) Record(ctx context.Context, rec screening.AuditRecord) error {
	var errs []error
	for _, sink := range c.sinks {
		if err := sink.Logger.Record(ctx, rec); err != nil {
			metrics.AuditFailures.WithLabelValues(sink.Name).Inc()
			c.log.Error("failed to record decision",
				zap.String("sink", sink.Name),
				zap.String("operation", rec.SourceOperation),
				zap.String("matched_name", rec.MatchedName),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name, err))
		}
	}
	return errors.Join(errs...)
}

// LogSink writes decisions to the service log. It never fails.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (l *LogSink) Record(ctx context.Context, rec screening.AuditRecord) error {
	l.log.Info("screening decision",
		zap.String("operation", rec.SourceOperation),
		zap.String("input_name", rec.InputName),
		zap.String("matched_name", rec.MatchedName),
		zap.Float64("probability", rec.Probability),
		zap.Bool("is_match", rec.IsMatch),
		zap.Float64("threshold", rec.Threshold),
		zap.String("request_id", RequestID(ctx)),
	)
	return nil
}
