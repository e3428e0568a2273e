package fmutest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

func TestLibrary_ReadModelDescription(t *testing.T) {
	lib := New().AddModel("bb.fmu", BouncingBall())

	md, err := lib.ReadModelDescription(context.Background(), "bb.fmu")
	require.NoError(t, err)
	assert.Equal(t, BouncingBallName, md.ModelName)
	assert.Len(t, md.ModelVariables, 8)
	assert.Equal(t, 1, lib.ReadCalls())

	_, err = lib.ReadModelDescription(context.Background(), "missing.fmu")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, lib.ReadCalls())
}

func TestLibrary_SimulateCanned(t *testing.T) {
	res := fmu.NewResult([]string{"time"}, []float64{0, 1})
	lib := New().AddResult("any.fmu", res)

	got, err := lib.SimulateFMU(context.Background(), "any.fmu", fmu.SimulateOptions{})
	require.NoError(t, err)
	assert.Same(t, res, got)
	assert.Equal(t, 1, lib.SimulateCalls())
}

func TestLibrary_Failures(t *testing.T) {
	boom := errors.New("boom")
	lib := New().AddModel("bb.fmu", BouncingBall()).FailRead(boom).FailSimulate(boom)

	_, err := lib.ReadModelDescription(context.Background(), "bb.fmu")
	assert.Same(t, boom, err)

	_, err = lib.SimulateFMU(context.Background(), "bb.fmu", fmu.SimulateOptions{})
	assert.Same(t, boom, err)
}

func TestSimulateBouncingBall(t *testing.T) {
	res := SimulateBouncingBall(fmu.SimulateOptions{
		StopTime:       fmu.Float(1),
		OutputInterval: fmu.Float(0.1),
	})

	assert.Equal(t, []string{"time", "h", "v"}, res.Names())
	assert.Equal(t, 11, res.Rows())

	times, ok := res.Column("time")
	require.True(t, ok)
	assert.InDelta(t, 0.0, times[0], 1e-12)
	assert.InDelta(t, 1.0, times[len(times)-1], 1e-9)

	h, _ := res.Column("h")
	for _, sample := range h {
		assert.GreaterOrEqual(t, sample, 0.0)
	}
	assert.Equal(t, 1.0, h[0])
}

func TestModelFromPath(t *testing.T) {
	assert.Equal(t, BouncingBallName, ModelFromPath("/tmp/BouncingBall.fmu").ModelName)
	assert.Equal(t, "Dahlquist", ModelFromPath("models/Dahlquist.fmu").ModelName)
}
