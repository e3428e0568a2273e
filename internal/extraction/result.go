package extraction

import (
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// Result derives span telemetry from a simulation result. md supplies the
// causality of each column and may be nil, in which case every column is of
// unknown causality.
func Result(res *fmu.SimulationResult, md *fmu.ModelDescription) Telemetry {
	var t Telemetry
	if res == nil {
		return t
	}

	names := res.Names()
	head := names
	if len(head) > MaxResultColumns {
		head = head[:MaxResultColumns]
	}

	t.set(
		attribute.String(AttrResultShape, res.ShapeString()),
		attribute.Int(AttrResultPoints, res.Rows()),
		attribute.Int(AttrVariablesCount, len(names)),
		attribute.StringSlice(AttrVariableNames, head),
	)

	causality := causalities(md)
	var inputs, outputs []VariableSummary
	for _, name := range head {
		s, ok := Summarize(res, name)
		if !ok {
			continue
		}
		if c, found := causality[name]; found {
			s.Causality = c
		}

		switch s.Causality {
		case fmu.CausalityInput:
			inputs = append(inputs, s)
		case fmu.CausalityOutput, fmu.CausalityIndependent:
			if name != fmu.TimeColumn {
				outputs = append(outputs, s)
			}
		}
	}

	timing, hasTime := Summarize(res, fmu.TimeColumn)
	if hasTime {
		t.set(attribute.Float64(AttrFinalTime, timing.Final))
	}

	for _, s := range inputs {
		t.event(EventInputPrefix+s.Name, s.Attributes()...)
	}

	active := make([]VariableSummary, 0, len(outputs))
	for _, s := range outputs {
		if Interesting(s) {
			active = append(active, s)
		}
	}
	if filtered := len(outputs) - len(active); filtered > 0 {
		t.event(EventSummary,
			attribute.Int("active_outputs", len(active)),
			attribute.Int("filtered_zero_outputs", filtered),
			attribute.Int("total_outputs", len(outputs)),
		)
	}
	for _, s := range active {
		t.event(EventOutputPrefix+s.Name, s.Attributes()...)
	}

	if hasTime {
		t.event(EventTiming,
			attribute.Float64("duration", timing.Final-timing.Initial),
			attribute.Float64("start", timing.Initial),
			attribute.Float64("end", timing.Final),
		)
	}

	if step, ok := TimeStep(res); ok {
		t.set(attribute.Float64(AttrTimeStep, step))
	}
	return t
}

// Summarize condenses the column name of res. It reports false when the
// column is missing, empty, or cannot be read.
func Summarize(res *fmu.SimulationResult, name string) (s VariableSummary, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = VariableSummary{}, false
		}
	}()

	col, found := res.Column(name)
	if !found || len(col) == 0 {
		return VariableSummary{}, false
	}

	s = VariableSummary{
		Name:      name,
		Causality: fmu.CausalityUnknown,
		Initial:   col[0],
		Final:     col[len(col)-1],
	}
	if name != fmu.TimeColumn && len(col) > 1 {
		lo, hi := col[0], col[0]
		for _, v := range col[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		s.Min, s.Max = &lo, &hi
	}
	return s, true
}

// Interesting reports whether an output summary is worth its own event: the
// value changed, is not zero at either end, or varied during the run.
func Interesting(s VariableSummary) bool {
	var lo, hi float64
	if s.Min != nil {
		lo = *s.Min
	}
	if s.Max != nil {
		hi = *s.Max
	}
	return s.Initial != s.Final ||
		math.Abs(s.Initial) > zeroThreshold ||
		math.Abs(s.Final) > zeroThreshold ||
		lo != hi
}

// TimeStep returns the spacing of the first two samples of the time column.
func TimeStep(res *fmu.SimulationResult) (step float64, ok bool) {
	defer func() {
		if recover() != nil {
			step, ok = 0, false
		}
	}()

	col, found := res.Column(fmu.TimeColumn)
	if !found || len(col) < 2 {
		return 0, false
	}
	return col[1] - col[0], true
}

func causalities(md *fmu.ModelDescription) map[string]fmu.Causality {
	if md == nil {
		return nil
	}
	m := make(map[string]fmu.Causality, len(md.ModelVariables))
	for _, v := range md.ModelVariables {
		c := v.Causality
		if c == "" {
			c = fmu.CausalityUnknown
		}
		m[v.Name] = c
	}
	return m
}
