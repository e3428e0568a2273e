package extraction

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// Model derives span telemetry from a parsed model description. A nil
// description yields empty telemetry.
func Model(md *fmu.ModelDescription) Telemetry {
	var t Telemetry
	if md == nil {
		return t
	}

	t.set(
		attribute.String(AttrModelName, orUnknown(md.ModelName)),
		attribute.String(AttrFMIVersion, orUnknown(md.FMIVersion)),
		attribute.String(AttrGUID, orUnknown(md.GUID)),
		attribute.String(AttrGenerationTool, orUnknown(md.GenerationTool)),
		attribute.String(AttrDescription, orUnknown(md.Description)),
		attribute.String(AttrVariableNamingConvention, orUnknown(md.VariableNamingConvention)),
		attribute.Int(AttrVariablesCount, len(md.ModelVariables)),
	)

	for i, v := range md.ModelVariables {
		if i == MaxVariableEvents {
			break
		}
		if e, ok := variableEvent(v); ok {
			t.Events = append(t.Events, e)
		}
	}

	if exp := md.DefaultExperiment; exp != nil {
		if exp.StartTime != nil {
			t.set(attribute.Float64(AttrDefaultStartTime, *exp.StartTime))
		}
		if exp.StopTime != nil {
			t.set(attribute.Float64(AttrDefaultStopTime, *exp.StopTime))
		}
		if exp.StepSize != nil {
			t.set(attribute.Float64(AttrDefaultStepSize, *exp.StepSize))
		}
	}

	t.set(
		attribute.Int(AttrContinuousStatesCount, md.NumberOfContinuousStates),
		attribute.Int(AttrEventIndicatorsCount, md.NumberOfEventIndicators),
		attribute.StringSlice(AttrSupportedInterfaces, SupportedInterfaces(md)),
	)
	return t
}

// SupportedInterfaces lists the FMI interfaces md declares, in the order
// ModelExchange, CoSimulation, ScheduledExecution.
func SupportedInterfaces(md *fmu.ModelDescription) []string {
	interfaces := []string{}
	if md == nil {
		return interfaces
	}
	if md.ModelExchange != nil {
		interfaces = append(interfaces, InterfaceModelExchange)
	}
	if md.CoSimulation != nil {
		interfaces = append(interfaces, InterfaceCoSimulation)
	}
	if md.ScheduledExecution != nil {
		interfaces = append(interfaces, InterfaceScheduledExecution)
	}
	return interfaces
}

// variableEvent builds the model.variable.<name> event. Absent optional
// fields are left out.
func variableEvent(v fmu.Variable) (e Event, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	name := orUnknown(v.Name)
	attrs := []attribute.KeyValue{
		attribute.String("name", name),
		attribute.String("type", orUnknown(v.Type)),
		attribute.String("causality", orUnknown(string(v.Causality))),
		attribute.String("variability", orUnknown(v.Variability)),
	}
	if v.Description != nil {
		attrs = append(attrs, attribute.String("description", *v.Description))
	}
	if v.Start != nil {
		attrs = append(attrs, attribute.String("start", *v.Start))
	}
	if v.Min != nil {
		attrs = append(attrs, attribute.Float64("min", *v.Min))
	}
	if v.Max != nil {
		attrs = append(attrs, attribute.Float64("max", *v.Max))
	}
	if v.Unit != nil {
		attrs = append(attrs, attribute.String("unit", *v.Unit))
	}
	return Event{Name: EventVariablePrefix + name, Attributes: attrs}, true
}
