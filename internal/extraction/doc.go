// Package extraction derives span telemetry from simulation inputs and
// outputs.
//
// The functions in this package are pure: given a model description or a
// simulation result they return a [Telemetry] value holding span attributes
// and span events, without touching any span. Callers apply the result to a
// span with [Telemetry.Apply].
//
// # Model descriptions
//
// [Model] yields the identity attributes of a model (fmu.model_name,
// fmu.fmi_version, fmu.guid, ...), its default experiment, its supported
// interfaces, and one model.variable.<name> event for each of the first
// [MaxVariableEvents] variables.
//
// # Simulation results
//
// [Result] yields the result shape, the first [MaxResultColumns] column
// names, and per-variable summaries (initial, final, min, max). Summaries
// are split by causality, looked up in the model description:
//
//   - input variables become simulation.input.<name> events
//   - output and independent variables become simulation.output.<name>
//     events, except outputs that stay at zero for the whole run, which are
//     only counted in a simulation.summary event
//   - the time column becomes a simulation.timing event
//
// A column that cannot be summarized is skipped; extraction never fails as a
// whole.
package extraction
