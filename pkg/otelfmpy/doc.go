// Package otelfmpy instruments an FMPy-compatible simulation library with
// OpenTelemetry traces and metrics.
//
// The instrumentor swaps the two entry points of a library namespace,
// ReadModelDescription and SimulateFMU, for wrappers that open a span per
// call, derive attributes and events from the arguments and results, and
// record simulation metrics. Results and errors pass through unchanged.
//
// Basic usage:
//
//	inst := otelfmpy.New(
//	    otelfmpy.WithTracerProvider(tp),
//	    otelfmpy.WithMeterProvider(mp),
//	    otelfmpy.WithLogger(logger),
//	)
//	if err := inst.Enable(ctx); err != nil {
//	    return err
//	}
//	defer inst.Disable(ctx)
//
//	ns, _ := fmu.Lookup(fmu.DefaultLibrary)
//	res, err := ns.SimulateFMU(ctx, "BouncingBall.fmu", fmu.SimulateOptions{StopTime: fmu.Float(3)})
//
// # Spans
//
// fmpy.read_model_description carries the model identity, the default
// experiment and one event per leading model variable. fmpy.simulate_fmu
// carries the requested experiment, the result shape and summary events for
// inputs, non-trivial outputs and the time axis.
//
// # Metrics
//
//   - fmu.simulations.total: simulations by model, status and FMI type
//   - fmu.simulation.duration_seconds: simulated time span
//   - fmu.variable.value: sampled values of the leading result columns
//   - fmu.model_cache.lookups: model description cache hits and misses
//
// Metric recording never fails a call; problems are logged at debug level.
//
// # Concurrency
//
// Enable, Disable and IsActive are safe for concurrent use. Calling through
// the namespace while another goroutine enables or disables is not
// synchronized and must be coordinated by the caller.
package otelfmpy
