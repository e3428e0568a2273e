// Package fmu defines the contract of an FMPy-compatible simulation library.
//
// The package holds the data model returned by the library (model
// descriptions, variables, tabular simulation results), the two entry-point
// function types, and a [Namespace] that carries the current binding of each
// entry point. Call sites go through a namespace:
//
//	ns, _ := fmu.Lookup("fmpy")
//	md, err := ns.ReadModelDescription(ctx, "BouncingBall.fmu")
//	res, err := ns.SimulateFMU(ctx, "BouncingBall.fmu", fmu.SimulateOptions{StopTime: fmu.Float(3)})
//
// Because every caller resolves the entry point through the namespace,
// replacing a binding intercepts all call sites without touching them. This
// is what the otelfmpy instrumentor relies on.
//
// # Registration
//
// A library implementation makes itself available by registering its
// namespace, in the same way database/sql drivers register themselves:
//
//	func init() {
//	    fmu.Register("fmpy", &fmu.Namespace{
//	        ReadModelDescription: readModelDescription,
//	        SimulateFMU:          simulateFMU,
//	    })
//	}
//
// A library that never registered is treated as not loaded.
package fmu
