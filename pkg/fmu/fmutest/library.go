// Package fmutest provides an in-process FMPy-compatible library for tests
// and demos.
//
// The library serves canned model descriptions and either canned or
// generated simulation results, and counts how often each entry point was
// called.
package fmutest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// ErrNotFound is returned for files the library has no model for.
var ErrNotFound = errors.New("fmutest: no such FMU")

// Library is a fake simulation library. The zero value is not usable, use
// New.
type Library struct {
	mu sync.Mutex

	models  map[string]*fmu.ModelDescription
	results map[string]*fmu.SimulationResult

	readErr error
	simErr  error

	readCalls int
	simCalls  int
}

// New returns an empty library.
func New() *Library {
	return &Library{
		models:  make(map[string]*fmu.ModelDescription),
		results: make(map[string]*fmu.SimulationResult),
	}
}

// AddModel serves md for filename.
func (l *Library) AddModel(filename string, md *fmu.ModelDescription) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.models[filename] = md
	return l
}

// AddResult serves res for simulations of filename.
func (l *Library) AddResult(filename string, res *fmu.SimulationResult) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[filename] = res
	return l
}

// FailRead makes every ReadModelDescription call return err.
func (l *Library) FailRead(err error) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readErr = err
	return l
}

// FailSimulate makes every SimulateFMU call return err.
func (l *Library) FailSimulate(err error) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.simErr = err
	return l
}

// ReadCalls returns how many times ReadModelDescription ran.
func (l *Library) ReadCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readCalls
}

// SimulateCalls returns how many times SimulateFMU ran.
func (l *Library) SimulateCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.simCalls
}

// Namespace returns a fresh namespace bound to the library.
func (l *Library) Namespace() *fmu.Namespace {
	return &fmu.Namespace{
		ReadModelDescription: l.ReadModelDescription,
		SimulateFMU:          l.SimulateFMU,
	}
}

// ReadModelDescription implements fmu.ReadModelDescriptionFunc.
func (l *Library) ReadModelDescription(_ context.Context, filename string) (*fmu.ModelDescription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readCalls++

	if l.readErr != nil {
		return nil, l.readErr
	}
	md, ok := l.models[filename]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return md, nil
}

// SimulateFMU implements fmu.SimulateFMUFunc. A canned result wins; without
// one, any known model is simulated as the bouncing ball.
func (l *Library) SimulateFMU(_ context.Context, filename string, opts fmu.SimulateOptions) (*fmu.SimulationResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.simCalls++

	if l.simErr != nil {
		return nil, l.simErr
	}
	if res, ok := l.results[filename]; ok {
		return res, nil
	}
	if _, ok := l.models[filename]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return SimulateBouncingBall(opts), nil
}

// BouncingBallName is the model name of the reference model.
const BouncingBallName = "BouncingBall"

// BouncingBall returns the reference bouncing ball model description with
// eight variables.
func BouncingBall() *fmu.ModelDescription {
	return &fmu.ModelDescription{
		FMIVersion:               "2.0",
		ModelName:                BouncingBallName,
		GUID:                     "{1AE5E10D-9521-4DE3-80B9-D0EAAA7D5AF1}",
		GenerationTool:           "Reference FMUs (v0.0.29)",
		Description:              "This model calculates the trajectory, over time, of a ball dropped from a height of 1 m.",
		VariableNamingConvention: "flat",
		ModelVariables: []fmu.Variable{
			{Name: "time", Type: "Real", Causality: fmu.CausalityIndependent, Variability: "continuous", Description: fmu.String("Simulation time")},
			{Name: "h", Type: "Real", Causality: fmu.CausalityOutput, Variability: "continuous", Description: fmu.String("Position of the ball"), Start: fmu.String("1"), Min: fmu.Float(0), Unit: fmu.String("m")},
			{Name: "der(h)", Type: "Real", Causality: fmu.CausalityLocal, Variability: "continuous", Unit: fmu.String("m/s")},
			{Name: "v", Type: "Real", Causality: fmu.CausalityOutput, Variability: "continuous", Description: fmu.String("Velocity of the ball"), Start: fmu.String("0"), Unit: fmu.String("m/s")},
			{Name: "der(v)", Type: "Real", Causality: fmu.CausalityLocal, Variability: "continuous", Unit: fmu.String("m/s2")},
			{Name: "g", Type: "Real", Causality: fmu.CausalityParameter, Variability: "fixed", Description: fmu.String("Gravity acting on the ball"), Start: fmu.String("-9.81"), Unit: fmu.String("m/s2")},
			{Name: "e", Type: "Real", Causality: fmu.CausalityParameter, Variability: "tunable", Description: fmu.String("Coefficient of restitution"), Start: fmu.String("0.7"), Min: fmu.Float(0.5), Max: fmu.Float(1)},
			{Name: "v_min", Type: "Real", Causality: fmu.CausalityLocal, Variability: "constant", Description: fmu.String("Velocity below which the ball stops bouncing"), Start: fmu.String("0.1")},
		},
		DefaultExperiment: &fmu.DefaultExperiment{
			StartTime: fmu.Float(0),
			StopTime:  fmu.Float(3),
			StepSize:  fmu.Float(0.01),
		},
		ModelExchange:            &fmu.Interface{ModelIdentifier: BouncingBallName},
		CoSimulation:             &fmu.Interface{ModelIdentifier: BouncingBallName},
		NumberOfContinuousStates: 2,
		NumberOfEventIndicators:  1,
	}
}

// SimulateBouncingBall integrates the bouncing ball with explicit Euler
// steps and records time, h and v.
func SimulateBouncingBall(opts fmu.SimulateOptions) *fmu.SimulationResult {
	const (
		g    = -9.81
		e    = 0.7
		vMin = 0.1
	)

	start, stop, step := 0.0, 3.0, 0.01
	if opts.StartTime != nil {
		start = *opts.StartTime
	}
	if opts.StopTime != nil {
		stop = *opts.StopTime
	}
	if opts.OutputInterval != nil && *opts.OutputInterval > 0 {
		step = *opts.OutputInterval
	} else if opts.StepSize != nil && *opts.StepSize > 0 {
		step = *opts.StepSize
	}

	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	if n < 1 {
		n = 1
	}
	times := make([]float64, n)
	heights := make([]float64, n)
	velocities := make([]float64, n)

	h, v := 1.0, 0.0
	for i := 0; i < n; i++ {
		times[i] = start + float64(i)*step
		heights[i] = h
		velocities[i] = v

		v += g * step
		h += v * step
		if h <= 0 && v < 0 {
			h = 0
			v = -e * v
			if v < vMin {
				v = 0
			}
		}
	}

	return fmu.NewResult([]string{fmu.TimeColumn, "h", "v"}, times, heights, velocities)
}

// ModelFromPath picks a reference model for an arbitrary FMU path: paths
// whose base name contains "bouncing" get the bouncing ball, others get a
// copy renamed after the file.
func ModelFromPath(path string) *fmu.ModelDescription {
	md := BouncingBall()
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if base != "" && base != "." && !strings.Contains(strings.ToLower(base), "bouncing") {
		md.ModelName = base
	}
	return md
}
