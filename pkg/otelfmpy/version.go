package otelfmpy

const (
	// InstrumentationName identifies the tracer and meter of this package.
	InstrumentationName = "github.com/fyrsmithlabs/otelfmu/pkg/otelfmpy"

	// Version is the instrumentation version reported to the providers.
	Version = "0.1.0"
)

// dependencies lists the library requirement this instrumentation targets.
var dependencies = []string{"fmpy >= 0.3.0"}
