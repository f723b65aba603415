package telemetry

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/encoding/protojson"
)

// fileExporter appends spans to a local file, one OTLP/JSON TracesData
// document per line. The format is the standard OTLP file convention, so
// the output can be replayed into any collector with a filelog receiver.
type fileExporter struct {
	mu   sync.Mutex
	f    *os.File
	done bool
}

func newFileExporter(path string) (*fileExporter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return &fileExporter{f: f}, nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *fileExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(spans) == 0 {
		return nil
	}

	doc := &tracepb.TracesData{ResourceSpans: toResourceSpans(spans)}
	data, err := protojson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal spans: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return nil
	}
	if _, err := e.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write spans: %w", err)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *fileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return nil
	}
	e.done = true
	return e.f.Close()
}

// toResourceSpans converts one export batch. All spans in a batch share the
// provider's resource; scopes can differ per tracer.
func toResourceSpans(spans []sdktrace.ReadOnlySpan) []*tracepb.ResourceSpans {
	byScope := make(map[string]*tracepb.ScopeSpans)
	var order []string

	for _, s := range spans {
		scope := s.InstrumentationScope()
		key := scope.Name + "\x00" + scope.Version
		ss, ok := byScope[key]
		if !ok {
			ss = &tracepb.ScopeSpans{
				Scope: &commonpb.InstrumentationScope{
					Name:    scope.Name,
					Version: scope.Version,
				},
			}
			byScope[key] = ss
			order = append(order, key)
		}
		ss.Spans = append(ss.Spans, toSpan(s))
	}

	scopeSpans := make([]*tracepb.ScopeSpans, 0, len(order))
	for _, key := range order {
		scopeSpans = append(scopeSpans, byScope[key])
	}

	return []*tracepb.ResourceSpans{{
		Resource:   toResource(spans[0]),
		ScopeSpans: scopeSpans,
	}}
}

func toResource(s sdktrace.ReadOnlySpan) *resourcepb.Resource {
	res := s.Resource()
	if res == nil {
		return nil
	}
	return &resourcepb.Resource{Attributes: toKeyValues(res.Attributes())}
}

func toSpan(s sdktrace.ReadOnlySpan) *tracepb.Span {
	sc := s.SpanContext()
	tid := sc.TraceID()
	sid := sc.SpanID()

	span := &tracepb.Span{
		TraceId:           tid[:],
		SpanId:            sid[:],
		Name:              s.Name(),
		Kind:              tracepb.Span_SpanKind(s.SpanKind()),
		StartTimeUnixNano: uint64(s.StartTime().UnixNano()),
		EndTimeUnixNano:   uint64(s.EndTime().UnixNano()),
		Attributes:        toKeyValues(s.Attributes()),
		Status:            toStatus(s.Status().Code, s.Status().Description),
	}
	if parent := s.Parent(); parent.HasSpanID() {
		pid := parent.SpanID()
		span.ParentSpanId = pid[:]
	}
	for _, ev := range s.Events() {
		span.Events = append(span.Events, &tracepb.Span_Event{
			Name:         ev.Name,
			TimeUnixNano: uint64(ev.Time.UnixNano()),
			Attributes:   toKeyValues(ev.Attributes),
		})
	}
	return span
}

// toStatus maps otel status codes onto the wire enum; the two orderings
// disagree, so this cannot be a cast.
func toStatus(code codes.Code, desc string) *tracepb.Status {
	st := &tracepb.Status{Message: desc}
	switch code {
	case codes.Ok:
		st.Code = tracepb.Status_STATUS_CODE_OK
	case codes.Error:
		st.Code = tracepb.Status_STATUS_CODE_ERROR
	default:
		st.Code = tracepb.Status_STATUS_CODE_UNSET
	}
	return st
}

func toKeyValues(attrs []attribute.KeyValue) []*commonpb.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]*commonpb.KeyValue, 0, len(attrs))
	for _, kv := range attrs {
		out = append(out, &commonpb.KeyValue{
			Key:   string(kv.Key),
			Value: toAnyValue(kv.Value),
		})
	}
	return out
}

func toAnyValue(v attribute.Value) *commonpb.AnyValue {
	switch v.Type() {
	case attribute.BOOL:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: v.AsBool()}}
	case attribute.INT64:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: v.AsInt64()}}
	case attribute.FLOAT64:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: v.AsFloat64()}}
	case attribute.STRING:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v.AsString()}}
	case attribute.BOOLSLICE:
		vals := v.AsBoolSlice()
		arr := make([]*commonpb.AnyValue, 0, len(vals))
		for _, b := range vals {
			arr = append(arr, &commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: b}})
		}
		return arrayValue(arr)
	case attribute.INT64SLICE:
		vals := v.AsInt64Slice()
		arr := make([]*commonpb.AnyValue, 0, len(vals))
		for _, n := range vals {
			arr = append(arr, &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: n}})
		}
		return arrayValue(arr)
	case attribute.FLOAT64SLICE:
		vals := v.AsFloat64Slice()
		arr := make([]*commonpb.AnyValue, 0, len(vals))
		for _, f := range vals {
			arr = append(arr, &commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: f}})
		}
		return arrayValue(arr)
	case attribute.STRINGSLICE:
		vals := v.AsStringSlice()
		arr := make([]*commonpb.AnyValue, 0, len(vals))
		for _, s := range vals {
			arr = append(arr, &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: s}})
		}
		return arrayValue(arr)
	default:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v.Emit()}}
	}
}

func arrayValue(vals []*commonpb.AnyValue) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_ArrayValue{
		ArrayValue: &commonpb.ArrayValue{Values: vals},
	}}
}
