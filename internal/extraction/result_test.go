package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu/fmutest"
)

func threeRowResult() *fmu.SimulationResult {
	return fmu.NewResult(
		[]string{"time", "h", "v"},
		[]float64{0, 0.5, 1.0},
		[]float64{1.0, 0.8, 0.2},
		[]float64{0, -4.9, -9.8},
	)
}

func TestResult_Shape(t *testing.T) {
	tel := Result(threeRowResult(), fmutest.BouncingBall())

	assertString(t, tel, AttrResultShape, "(3,)")
	assertInt(t, tel, AttrResultPoints, 3)
	assertInt(t, tel, AttrVariablesCount, 3)
	assertFloat(t, tel, AttrFinalTime, 1.0)
	assertFloat(t, tel, AttrTimeStep, 0.5)

	v, ok := tel.Attribute(AttrVariableNames)
	require.True(t, ok)
	assert.Equal(t, []string{"time", "h", "v"}, v.AsStringSlice())
}

func TestResult_OutputEventsAndTiming(t *testing.T) {
	tel := Result(threeRowResult(), fmutest.BouncingBall())

	assert.Equal(t, []string{
		"simulation.output.h",
		"simulation.output.v",
		"simulation.timing",
	}, tel.EventNames(), "no summary when nothing is filtered")

	h, ok := tel.Event("simulation.output.h")
	require.True(t, ok)
	initial, _ := h.Attribute("initial")
	assert.Equal(t, 1.0, initial.AsFloat64())
	final, _ := h.Attribute("final")
	assert.Equal(t, 0.2, final.AsFloat64())
	lo, _ := h.Attribute("min")
	assert.Equal(t, 0.2, lo.AsFloat64())
	hi, _ := h.Attribute("max")
	assert.Equal(t, 1.0, hi.AsFloat64())

	timing, ok := tel.Event(EventTiming)
	require.True(t, ok)
	duration, _ := timing.Attribute("duration")
	assert.Equal(t, 1.0, duration.AsFloat64())
	start, _ := timing.Attribute("start")
	assert.Equal(t, 0.0, start.AsFloat64())
	end, _ := timing.Attribute("end")
	assert.Equal(t, 1.0, end.AsFloat64())
}

func TestResult_FiltersConstantZeroOutputs(t *testing.T) {
	md := &fmu.ModelDescription{ModelVariables: []fmu.Variable{
		{Name: "time", Causality: fmu.CausalityIndependent},
		{Name: "y", Causality: fmu.CausalityOutput},
		{Name: "z", Causality: fmu.CausalityOutput},
	}}
	res := fmu.NewResult(
		[]string{"time", "y", "z"},
		[]float64{0, 1, 2},
		[]float64{0, 0, 0},
		[]float64{1, 2, 3},
	)

	tel := Result(res, md)

	assert.Equal(t, []string{
		"simulation.summary",
		"simulation.output.z",
		"simulation.timing",
	}, tel.EventNames())

	summary, _ := tel.Event(EventSummary)
	active, _ := summary.Attribute("active_outputs")
	assert.Equal(t, int64(1), active.AsInt64())
	filtered, _ := summary.Attribute("filtered_zero_outputs")
	assert.Equal(t, int64(1), filtered.AsInt64())
	total, _ := summary.Attribute("total_outputs")
	assert.Equal(t, int64(2), total.AsInt64())
}

func TestResult_InputEventsComeFirst(t *testing.T) {
	md := &fmu.ModelDescription{ModelVariables: []fmu.Variable{
		{Name: "u", Causality: fmu.CausalityInput},
		{Name: "y", Causality: fmu.CausalityOutput},
	}}
	res := fmu.NewResult(
		[]string{"time", "y", "u"},
		[]float64{0, 1},
		[]float64{2, 3},
		[]float64{5, 5},
	)

	tel := Result(res, md)

	assert.Equal(t, []string{
		"simulation.input.u",
		"simulation.output.y",
		"simulation.timing",
	}, tel.EventNames())
}

func TestResult_UnknownCausalityWithoutDescription(t *testing.T) {
	tel := Result(threeRowResult(), nil)

	assert.Equal(t, []string{"simulation.timing"}, tel.EventNames(),
		"columns of unknown causality are neither inputs nor outputs")
	assertInt(t, tel, AttrVariablesCount, 3)
}

func TestResult_NoTimeColumn(t *testing.T) {
	md := &fmu.ModelDescription{ModelVariables: []fmu.Variable{
		{Name: "y", Causality: fmu.CausalityOutput},
	}}
	res := fmu.NewResult([]string{"y"}, []float64{1, 2})

	tel := Result(res, md)

	assert.Equal(t, []string{"simulation.output.y"}, tel.EventNames())
	_, ok := tel.Attribute(AttrFinalTime)
	assert.False(t, ok)
	_, ok = tel.Attribute(AttrTimeStep)
	assert.False(t, ok)
}

func TestResult_SingleSampleTime(t *testing.T) {
	res := fmu.NewResult([]string{"time"}, []float64{0.25})

	tel := Result(res, nil)

	assertFloat(t, tel, AttrFinalTime, 0.25)
	_, ok := tel.Attribute(AttrTimeStep)
	assert.False(t, ok, "one sample has no step")
	_, ok = tel.Event(EventTiming)
	assert.True(t, ok)
}

func TestResult_LimitsColumns(t *testing.T) {
	names := []string{"time"}
	cols := [][]float64{{0, 1}}
	for i := 0; i < 14; i++ {
		names = append(names, string(rune('a'+i)))
		cols = append(cols, []float64{float64(i), float64(i + 1)})
	}

	tel := Result(fmu.NewResult(names, cols...), nil)

	assertInt(t, tel, AttrVariablesCount, 15)
	v, ok := tel.Attribute(AttrVariableNames)
	require.True(t, ok)
	assert.Len(t, v.AsStringSlice(), MaxResultColumns)
}

func TestResult_RaggedColumnSkipped(t *testing.T) {
	md := &fmu.ModelDescription{ModelVariables: []fmu.Variable{
		{Name: "y", Causality: fmu.CausalityOutput},
		{Name: "empty", Causality: fmu.CausalityOutput},
	}}
	res := fmu.NewResult(
		[]string{"time", "y", "empty"},
		[]float64{0, 1},
		[]float64{3, 4},
		[]float64{},
	)

	tel := Result(res, md)

	_, ok := tel.Event("simulation.output.empty")
	assert.False(t, ok)
	_, ok = tel.Event("simulation.output.y")
	assert.True(t, ok)
}

func TestResult_Nil(t *testing.T) {
	tel := Result(nil, nil)
	assert.Empty(t, tel.Attributes)
	assert.Empty(t, tel.Events)
}

func TestSummarize(t *testing.T) {
	res := threeRowResult()

	s, ok := Summarize(res, "time")
	require.True(t, ok)
	assert.Nil(t, s.Min, "time has no min/max")
	assert.Nil(t, s.Max)
	assert.Equal(t, fmu.CausalityUnknown, s.Causality)

	s, ok = Summarize(res, "v")
	require.True(t, ok)
	require.NotNil(t, s.Min)
	assert.Equal(t, -9.8, *s.Min)
	assert.Equal(t, 0.0, *s.Max)

	_, ok = Summarize(res, "missing")
	assert.False(t, ok)
}

func TestInteresting(t *testing.T) {
	tests := []struct {
		name string
		s    VariableSummary
		want bool
	}{
		{"constant zero", VariableSummary{Min: fmu.Float(0), Max: fmu.Float(0)}, false},
		{"below threshold", VariableSummary{Initial: 1e-12, Final: 1e-12}, false},
		{"changed", VariableSummary{Initial: 0, Final: 1}, true},
		{"constant nonzero", VariableSummary{Initial: 2, Final: 2}, true},
		{"varied but returned", VariableSummary{Min: fmu.Float(-1), Max: fmu.Float(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interesting(tt.s))
		})
	}
}
