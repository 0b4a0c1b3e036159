// internal/common/observability/observability.go
package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the OTel providers. The meter feeds the default
// Prometheus registry, so generation metrics show up on /metrics next to the
// promauto collectors. A nil *Observability is valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	generations        otelmetric.Int64Counter
	generationDuration otelmetric.Float64Histogram
}

func New(ctx context.Context, appCfg config.AppConfig, cfg config.TelemetryConfig, log logger.Logger) (*Observability, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", appCfg.Name),
		attribute.String("service.version", appCfg.Version),
		attribute.String("deployment.environment", appCfg.Environment),
	)

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(mp)

	o := &Observability{meterProvider: mp}
	meter := mp.Meter(appCfg.Name)

	o.generations, err = meter.Int64Counter(
		"copy.generations",
		otelmetric.WithDescription("Copy generation requests by mode and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("generations counter: %w", err)
	}
	o.generationDuration, err = meter.Float64Histogram(
		"copy.generation.duration",
		otelmetric.WithDescription("End-to-end generation time"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("generation histogram: %w", err)
	}

	if cfg.Enabled {
		spanExporter, err := buildTraceExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		o.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExporter, sdktrace.WithBatchTimeout(5*time.Second)),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.SampleRatio)))),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(o.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		log.Info("otel tracing initialized", map[string]interface{}{
			"service":     appCfg.Name,
			"sampleRatio": cfg.SampleRatio,
			"otlp":        cfg.OTLPEndpoint != "",
		})
	}
	o.tracer = otel.Tracer(appCfg.Name)

	return o, nil
}

func buildTraceExporter(ctx context.Context, cfg config.TelemetryConfig) (sdktrace.SpanExporter, error) {
	if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		return exp, nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("stdout trace exporter: %w", err)
	}
	return exp, nil
}

// StartSpan falls back to the global (no-op unless configured) tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("betfunnels-copy")
	if o != nil && o.tracer != nil {
		tracer = o.tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordGeneration(ctx context.Context, mode, status string, duration time.Duration) {
	if o == nil || o.generations == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", status),
	)
	o.generations.Add(ctx, 1, attrs)
	o.generationDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	var firstErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
