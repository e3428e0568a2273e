package otelfmpy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// MaxGaugeColumns is the number of non-time result columns whose samples
// are recorded on fmu.variable.value.
const MaxGaugeColumns = 5

// Metric names.
const (
	MetricSimulations      = "fmu.simulations.total"
	MetricDuration         = "fmu.simulation.duration_seconds"
	MetricVariableValue    = "fmu.variable.value"
	MetricModelCacheLookup = "fmu.model_cache.lookups"
)

// Metric attribute keys and values.
const (
	attrModel        = "fmu.model"
	attrVariable     = "fmu.variable"
	attrStatus       = "status"
	attrFMIType      = "fmi.type"
	attrErrorType    = "error.type"
	attrSimTime      = "simulation.time"
	attrCacheResult  = "result"
	statusSuccess    = "success"
	statusError      = "error"
	defaultFMIType   = "default"
	cacheHit         = "hit"
	cacheMiss        = "miss"
	defaultStartTime = 0.0
	defaultStopTime  = 1.0
)

// metrics holds the instruments created on Enable.
type metrics struct {
	simulations   metric.Int64Counter
	duration      metric.Float64Histogram
	variableValue metric.Float64Gauge
	cacheLookups  metric.Int64Counter
}

// newMetrics creates the instruments on meter. Instruments that fail to
// create are left as no-ops and the failures are returned joined.
func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var errs []error
	var err error

	m.simulations, err = meter.Int64Counter(
		MetricSimulations,
		metric.WithDescription("Total number of FMU simulations performed"),
		metric.WithUnit("{simulation}"),
	)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", MetricSimulations, err))
	}

	m.duration, err = meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Duration of FMU simulations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", MetricDuration, err))
	}

	m.variableValue, err = meter.Float64Gauge(
		MetricVariableValue,
		metric.WithDescription("Current value of FMU variables during simulation"),
	)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", MetricVariableValue, err))
	}

	m.cacheLookups, err = meter.Int64Counter(
		MetricModelCacheLookup,
		metric.WithDescription("Model description cache lookups during simulation enrichment"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", MetricModelCacheLookup, err))
	}

	return m, errors.Join(errs...)
}

// recordSuccess records the counter, duration and variable samples of a
// successful simulation.
func (m *metrics) recordSuccess(ctx context.Context, filename string, opts fmu.SimulateOptions, res *fmu.SimulationResult) error {
	if m == nil {
		return nil
	}
	model := modelLabel(filename)

	fmiType := opts.FMIType
	if fmiType == "" {
		fmiType = defaultFMIType
	}
	if m.simulations != nil {
		m.simulations.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrModel, model),
			attribute.String(attrStatus, statusSuccess),
			attribute.String(attrFMIType, fmiType),
		))
	}

	start, stop := defaultStartTime, defaultStopTime
	if opts.StartTime != nil {
		start = *opts.StartTime
	}
	if opts.StopTime != nil {
		stop = *opts.StopTime
	}
	if m.duration != nil {
		m.duration.Record(ctx, stop-start, metric.WithAttributes(attribute.String(attrModel, model)))
	}

	if m.variableValue == nil || res == nil {
		return nil
	}
	times, _ := res.Column(fmu.TimeColumn)
	recorded := 0
	for _, name := range res.Names() {
		if recorded == MaxGaugeColumns {
			break
		}
		if name == fmu.TimeColumn {
			continue
		}
		recorded++

		col, ok := res.Column(name)
		if !ok {
			continue
		}
		for i, v := range col {
			at := float64(i)
			if i < len(times) {
				at = times[i]
			}
			m.variableValue.Record(ctx, v, metric.WithAttributes(
				attribute.String(attrModel, model),
				attribute.String(attrVariable, name),
				attribute.Float64(attrSimTime, at),
			))
		}
	}
	return nil
}

// recordFailure counts a failed simulation.
func (m *metrics) recordFailure(ctx context.Context, filename string, err error) error {
	if m == nil || m.simulations == nil {
		return nil
	}
	m.simulations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrModel, modelLabel(filename)),
		attribute.String(attrStatus, statusError),
		attribute.String(attrErrorType, errorType(err)),
	))
	return nil
}

// recordCacheLookup counts a model description cache lookup.
func (m *metrics) recordCacheLookup(ctx context.Context, hit bool) error {
	if m == nil || m.cacheLookups == nil {
		return nil
	}
	result := cacheMiss
	if hit {
		result = cacheHit
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(attrCacheResult, result)))
	return nil
}

// modelLabel is the base name of filename, or "unknown".
func modelLabel(filename string) string {
	if filename == "" {
		return unknownValue
	}
	return filepath.Base(filename)
}

// errorType names the concrete type of err without package path or pointer.
func errorType(err error) string {
	if err == nil {
		return unknownValue
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
