// Package telemetry installs the global OpenTelemetry providers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// ExporterStdout writes spans or metrics to the configured writer.
const ExporterStdout = "stdout"

// Config selects an exporter per signal. An empty exporter leaves the signal
// on the global no-op provider.
type Config struct {
	Tracing TracingOpts `mapstructure:"tracing" yaml:"tracing" json:"tracing"`
	Metrics MetricsOpts `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

type TracingOpts struct {
	Exporter string `mapstructure:"exporter" yaml:"exporter" json:"exporter"`
}

type MetricsOpts struct {
	Exporter string `mapstructure:"exporter" yaml:"exporter" json:"exporter"`
}

// Validate rejects unknown exporters.
func (c Config) Validate() error {
	for signal, exporter := range map[string]string{"tracing": c.Tracing.Exporter, "metrics": c.Metrics.Exporter} {
		if exporter != "" && exporter != ExporterStdout {
			return fmt.Errorf("telemetry.%s.exporter %q is not supported", signal, exporter)
		}
	}
	return nil
}

// Setup installs the propagator and every configured provider. The returned
// shutdown flushes and stops them; it is safe to call when Setup failed.
func Setup(ctx context.Context, cfg Config, w io.Writer) (func(context.Context) error, error) {
	var shutdownFuncs []func(context.Context) error

	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	otel.SetTextMapPropagator(newPropagator())

	if cfg.Tracing.Exporter != "" {
		tracerProvider, err := newTracerProvider(w)
		if err != nil {
			return shutdown, errors.Join(err, shutdown(ctx))
		}
		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)
	}

	if cfg.Metrics.Exporter != "" {
		meterProvider, err := newMeterProvider(w)
		if err != nil {
			return shutdown, errors.Join(err, shutdown(ctx))
		}
		shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
		otel.SetMeterProvider(meterProvider)
	}

	return shutdown, nil
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTracerProvider(w io.Writer) (*trace.TracerProvider, error) {
	traceExporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter,
			trace.WithBatchTimeout(0)),
	)
	return tracerProvider, nil
}

func newMeterProvider(w io.Writer) (*metric.MeterProvider, error) {
	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, err
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
	)
	return meterProvider, nil
}
