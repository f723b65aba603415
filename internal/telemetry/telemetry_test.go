package telemetry

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vizzly-testing/monitor/internal/config"
)

func TestDisabledSetupTouchesNothing(t *testing.T) {
	dir := config.Dir(t.TempDir())
	tel, err := Setup(dir, false, "test")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	_, span := tel.Tracer("test").Start(context.Background(), "noop")
	span.End()
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if _, err := os.Stat(dir.TracePath()); !os.IsNotExist(err) {
		t.Errorf("trace file created while disabled: %v", err)
	}
}

func TestEnabled(t *testing.T) {
	if Enabled(&config.Settings{}) {
		t.Error("Enabled() = true for zero settings")
	}
	if !Enabled(&config.Settings{Telemetry: config.Telemetry{Enabled: true}}) {
		t.Error("Enabled() = false with telemetry.enabled")
	}
	t.Setenv(EnvTrace, "1")
	if !Enabled(&config.Settings{}) {
		t.Error("Enabled() = false with env override set")
	}
}

func TestSpansLandInTraceFile(t *testing.T) {
	dir := config.Dir(t.TempDir())
	tel, err := Setup(dir, true, "1.2.3")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	tracer := tel.Tracer("vizzly-monitor")
	ctx, parent := tracer.Start(context.Background(), "reconcile.pass",
		trace.WithAttributes(
			attribute.String("trigger", "registry-change"),
			attribute.Int("servers.live", 2),
		))
	_, child := tracer.Start(ctx, "cli.invoke")
	child.SetStatus(codes.Error, "command not found")
	child.AddEvent("retry", trace.WithAttributes(attribute.Bool("final", true)))
	child.End()
	parent.End()

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(dir.TracePath())
	if err != nil {
		t.Fatalf("read trace file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one export batch, got %d lines", len(lines))
	}
	if !gjson.Valid(lines[0]) {
		t.Fatalf("trace line is not valid JSON: %q", lines[0])
	}

	root := gjson.Parse(lines[0])
	svc := root.Get(`resourceSpans.0.resource.attributes.#(key=="service.name").value.stringValue`)
	if svc.String() != "vizzly-monitor" {
		t.Errorf("service.name = %q", svc.String())
	}
	ver := root.Get(`resourceSpans.0.resource.attributes.#(key=="service.version").value.stringValue`)
	if ver.String() != "1.2.3" {
		t.Errorf("service.version = %q", ver.String())
	}

	spans := root.Get("resourceSpans.0.scopeSpans.0.spans")
	if spans.Get("#").Int() != 2 {
		t.Fatalf("span count = %d, want 2", spans.Get("#").Int())
	}

	pass := spans.Get(`#(name=="reconcile.pass")`)
	if !pass.Exists() {
		t.Fatal("reconcile.pass span missing")
	}
	trigger := pass.Get(`attributes.#(key=="trigger").value.stringValue`)
	if trigger.String() != "registry-change" {
		t.Errorf("trigger attribute = %q", trigger.String())
	}
	liveCount := pass.Get(`attributes.#(key=="servers.live").value.intValue`)
	if liveCount.String() != "2" {
		t.Errorf("servers.live attribute = %q", liveCount.String())
	}

	invoke := spans.Get(`#(name=="cli.invoke")`)
	if !invoke.Exists() {
		t.Fatal("cli.invoke span missing")
	}
	if got := invoke.Get("status.code").String(); got != "STATUS_CODE_ERROR" {
		t.Errorf("status.code = %q", got)
	}
	if got := invoke.Get("status.message").String(); got != "command not found" {
		t.Errorf("status.message = %q", got)
	}
	if got := invoke.Get("events.0.name").String(); got != "retry" {
		t.Errorf("event name = %q", got)
	}
	if invoke.Get("parentSpanId").String() == "" {
		t.Error("child span lost its parent")
	}
}
