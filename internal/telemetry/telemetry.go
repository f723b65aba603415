// Package telemetry wires optional trace export for the monitor itself.
//
// Tracing is off by default. It turns on via monitor.yaml or the
// VIZZLY_MONITOR_TRACE environment variable and writes OTLP/JSON lines to
// ~/.vizzly/monitor-traces.jsonl; there is no network export path. The
// engine traces reconciliation passes and CLI invocations against it.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vizzly-testing/monitor/internal/config"
)

// EnvTrace force-enables tracing when set to any non-empty value,
// overriding monitor.yaml.
const EnvTrace = "VIZZLY_MONITOR_TRACE"

const serviceName = "vizzly-monitor"

// Enabled reports whether tracing should be active for these settings.
func Enabled(s *config.Settings) bool {
	if os.Getenv(EnvTrace) != "" {
		return true
	}
	return s != nil && s.Telemetry.Enabled
}

// Telemetry holds the active tracer provider. The zero value is unusable;
// construct via Setup.
type Telemetry struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// Setup builds the tracer provider. When disabled, the provider is a no-op
// and no file is touched.
func Setup(dir config.Dir, enabled bool, version string) (*Telemetry, error) {
	if !enabled {
		return &Telemetry{provider: noop.NewTracerProvider()}, nil
	}

	if err := os.MkdirAll(string(dir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create vizzly directory: %w", err)
	}
	exp, err := newFileExporter(dir.TracePath())
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	return &Telemetry{provider: tp, shutdown: tp.Shutdown}, nil
}

// Tracer returns a named tracer from the active provider.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	return t.provider.Tracer(name)
}

// Shutdown flushes buffered spans. Safe on a disabled Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}
