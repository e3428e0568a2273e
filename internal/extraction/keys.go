package extraction

// Span attribute keys.
const (
	AttrFilename = "fmu.filename"

	AttrModelName                = "fmu.model_name"
	AttrFMIVersion               = "fmu.fmi_version"
	AttrGUID                     = "fmu.guid"
	AttrGenerationTool           = "fmu.generation_tool"
	AttrDescription              = "fmu.description"
	AttrVariableNamingConvention = "fmu.variable_naming_convention"
	AttrVariablesCount           = "fmu.variables_count"
	AttrDefaultStartTime         = "fmu.default_start_time"
	AttrDefaultStopTime          = "fmu.default_stop_time"
	AttrDefaultStepSize          = "fmu.default_step_size"
	AttrContinuousStatesCount    = "fmu.continuous_states_count"
	AttrEventIndicatorsCount     = "fmu.event_indicators_count"
	AttrSupportedInterfaces      = "fmu.supported_interfaces"

	AttrStopTime    = "fmu.stop_time"
	AttrStartTime   = "fmu.start_time"
	AttrFMIType     = "fmu.fmi_type"
	AttrFMITypeUsed = "fmu.fmi_type_used"

	AttrResultShape   = "fmu.result_shape"
	AttrResultPoints  = "fmu.result_points"
	AttrVariableNames = "fmu.variable_names"
	AttrFinalTime     = "fmu.final_time"
	AttrTimeStep      = "fmu.time_step"
)

// Span event names and prefixes.
const (
	EventVariablePrefix = "model.variable."
	EventInputPrefix    = "simulation.input."
	EventOutputPrefix   = "simulation.output."
	EventSummary        = "simulation.summary"
	EventTiming         = "simulation.timing"
)

// Interface names reported in fmu.supported_interfaces.
const (
	InterfaceModelExchange      = "ModelExchange"
	InterfaceCoSimulation       = "CoSimulation"
	InterfaceScheduledExecution = "ScheduledExecution"
)
