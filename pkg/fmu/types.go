package fmu

// Causality classifies the role of a variable within a model.
type Causality string

// Causality values defined by the FMI standard.
const (
	CausalityInput               Causality = "input"
	CausalityOutput              Causality = "output"
	CausalityIndependent         Causality = "independent"
	CausalityParameter           Causality = "parameter"
	CausalityCalculatedParameter Causality = "calculatedParameter"
	CausalityLocal               Causality = "local"
	CausalityUnknown             Causality = "unknown"
)

// ModelDescription is the static metadata of a simulation model.
//
// String fields are empty when the model description does not declare them.
// Interface pointers are nil when the model does not support that interface.
type ModelDescription struct {
	FMIVersion               string
	ModelName                string
	GUID                     string
	GenerationTool           string
	Description              string
	VariableNamingConvention string

	ModelVariables    []Variable
	DefaultExperiment *DefaultExperiment

	ModelExchange      *Interface
	CoSimulation       *Interface
	ScheduledExecution *Interface

	NumberOfContinuousStates int
	NumberOfEventIndicators  int
}

// Interface describes one FMI interface supported by a model.
type Interface struct {
	ModelIdentifier string
}

// DefaultExperiment holds the experiment settings suggested by the model.
type DefaultExperiment struct {
	StartTime *float64
	StopTime  *float64
	StepSize  *float64
	Tolerance *float64
}

// Variable is a single model variable. Optional attributes are nil when
// absent.
type Variable struct {
	Name        string
	Type        string
	Causality   Causality
	Variability string

	Description *string
	Start       *string
	Min         *float64
	Max         *float64
	Unit        *string
}

// Variable returns the variable with the given name.
func (md *ModelDescription) Variable(name string) (Variable, bool) {
	if md == nil {
		return Variable{}, false
	}
	for _, v := range md.ModelVariables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Execution modes for SimulateOptions.FMIType.
const (
	FMITypeModelExchange = "ModelExchange"
	FMITypeCoSimulation  = "CoSimulation"
)

// SimulateOptions are the named options of a simulation call. Nil pointers
// leave the choice to the library.
type SimulateOptions struct {
	StartTime      *float64
	StopTime       *float64
	StepSize       *float64
	OutputInterval *float64

	// FMIType selects the execution mode, FMITypeModelExchange or
	// FMITypeCoSimulation. Empty lets the library choose.
	FMIType string

	// Output restricts the recorded columns. Empty records the library
	// default set.
	Output []string
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
