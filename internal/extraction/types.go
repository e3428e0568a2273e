package extraction

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// Limits on how much of a model or result ends up on a span.
const (
	// MaxVariableEvents is the number of model variables reported as
	// events.
	MaxVariableEvents = 5

	// MaxResultColumns is the number of result columns named and
	// summarized.
	MaxResultColumns = 10

	// zeroThreshold is the magnitude under which an output counts as zero.
	zeroThreshold = 1e-10
)

const unknown = "unknown"

// Event is a named span event with its attributes.
type Event struct {
	Name       string
	Attributes []attribute.KeyValue
}

// Attribute returns the value stored under key.
func (e Event) Attribute(key string) (attribute.Value, bool) {
	return lookup(e.Attributes, key)
}

// Telemetry is the set of span attributes and events derived from one call.
type Telemetry struct {
	Attributes []attribute.KeyValue
	Events     []Event
}

// Apply sets the attributes and adds the events to span, in order.
func (t Telemetry) Apply(span trace.Span) {
	if span == nil {
		return
	}
	if len(t.Attributes) > 0 {
		span.SetAttributes(t.Attributes...)
	}
	for _, e := range t.Events {
		span.AddEvent(e.Name, trace.WithAttributes(e.Attributes...))
	}
}

// Attribute returns the value stored under key.
func (t Telemetry) Attribute(key string) (attribute.Value, bool) {
	return lookup(t.Attributes, key)
}

// Event returns the first event named name.
func (t Telemetry) Event(name string) (Event, bool) {
	for _, e := range t.Events {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}

// EventNames returns the event names in emission order.
func (t Telemetry) EventNames() []string {
	names := make([]string, len(t.Events))
	for i, e := range t.Events {
		names[i] = e.Name
	}
	return names
}

func (t *Telemetry) set(attrs ...attribute.KeyValue) {
	t.Attributes = append(t.Attributes, attrs...)
}

func (t *Telemetry) event(name string, attrs ...attribute.KeyValue) {
	t.Events = append(t.Events, Event{Name: name, Attributes: attrs})
}

// VariableSummary condenses one result column.
type VariableSummary struct {
	Name      string
	Causality fmu.Causality
	Initial   float64
	Final     float64

	// Min and Max are set for non-time columns with more than one sample.
	Min *float64
	Max *float64
}

// Attributes returns the summary as event attributes.
func (s VariableSummary) Attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Float64("initial", s.Initial),
		attribute.Float64("final", s.Final),
	}
	if s.Min != nil {
		attrs = append(attrs, attribute.Float64("min", *s.Min))
	}
	if s.Max != nil {
		attrs = append(attrs, attribute.Float64("max", *s.Max))
	}
	return attrs
}

func lookup(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
