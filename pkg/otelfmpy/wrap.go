package otelfmpy

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/otelfmu/internal/extraction"
	"github.com/fyrsmithlabs/otelfmu/internal/modelcache"
	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// Span names.
const (
	SpanReadModelDescription = "fmpy.read_model_description"
	SpanSimulateFMU          = "fmpy.simulate_fmu"
)

const (
	codeNamespace = "fmpy"
	unknownValue  = "unknown"
	autoFMIType   = "auto"
)

// session is the state shared by the wrappers of one enable session.
type session struct {
	tracer  trace.Tracer
	logger  *zap.Logger
	cache   *modelcache.Cache
	metrics *metrics

	// parse is the unwrapped parser used to enrich simulations whose model
	// description is not cached. Nil when the library has no parser.
	parse fmu.ReadModelDescriptionFunc
}

// wrapReadModelDescription returns a parser that traces original.
func (s *session) wrapReadModelDescription(original fmu.ReadModelDescriptionFunc) fmu.ReadModelDescriptionFunc {
	return func(ctx context.Context, filename string) (*fmu.ModelDescription, error) {
		ctx, span := s.tracer.Start(ctx, SpanReadModelDescription,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				semconv.CodeFunction(entryReadModelDescription),
				semconv.CodeNamespace(codeNamespace),
				attribute.String(extraction.AttrFilename, orUnknown(filename)),
			),
		)
		defer span.End()

		md, err := original(ctx, filename)
		if err != nil {
			fail(span, err)
			return md, err
		}

		if md != nil {
			extraction.Model(md).Apply(span)
			s.cache.Put(filename, md)
		}
		return md, nil
	}
}

// wrapSimulateFMU returns a simulation entry point that traces original and
// records simulation metrics.
func (s *session) wrapSimulateFMU(original fmu.SimulateFMUFunc) fmu.SimulateFMUFunc {
	return func(ctx context.Context, filename string, opts fmu.SimulateOptions) (*fmu.SimulationResult, error) {
		ctx, span := s.tracer.Start(ctx, SpanSimulateFMU,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(simulateAttributes(filename, opts)...),
		)
		defer span.End()

		res, err := original(ctx, filename, opts)
		if err != nil {
			safely(ctx, s.logger, "record failed simulation", func(ctx context.Context) error {
				return s.metrics.recordFailure(ctx, filename, err)
			})
			fail(span, err)
			return res, err
		}

		used := opts.FMIType
		if used == "" {
			used = defaultFMIType
		}
		span.SetAttributes(attribute.String(extraction.AttrFMITypeUsed, used))

		if res != nil {
			extraction.Result(res, s.describe(ctx, filename)).Apply(span)
		}
		safely(ctx, s.logger, "record simulation metrics", func(ctx context.Context) error {
			return s.metrics.recordSuccess(ctx, filename, opts, res)
		})
		return res, nil
	}
}

// simulateAttributes are the span attributes known before the simulation
// runs.
func simulateAttributes(filename string, opts fmu.SimulateOptions) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(entrySimulateFMU),
		semconv.CodeNamespace(codeNamespace),
		attribute.String(extraction.AttrFilename, orUnknown(filename)),
	}
	if opts.StopTime != nil {
		attrs = append(attrs, attribute.Float64(extraction.AttrStopTime, *opts.StopTime))
	}

	start := defaultStartTime
	if opts.StartTime != nil {
		start = *opts.StartTime
	}
	fmiType := opts.FMIType
	if fmiType == "" {
		fmiType = autoFMIType
	}
	return append(attrs,
		attribute.Float64(extraction.AttrStartTime, start),
		attribute.String(extraction.AttrFMIType, fmiType),
	)
}

// describe returns the model description used to classify result columns.
// A cache miss falls back to the unwrapped parser; a failed parse yields nil
// and is not cached.
func (s *session) describe(ctx context.Context, filename string) *fmu.ModelDescription {
	md, hit := s.cache.Get(filename)
	safely(ctx, s.logger, "record cache lookup", func(ctx context.Context) error {
		return s.metrics.recordCacheLookup(ctx, hit)
	})
	if hit || s.parse == nil {
		return md
	}

	md, err := s.parseQuietly(ctx, filename)
	if err != nil || md == nil {
		s.logger.Debug("model description unavailable for simulation telemetry",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return nil
	}
	s.cache.Put(filename, md)
	return md
}

// parseQuietly calls the unwrapped parser and turns a panic into an error.
func (s *session) parseQuietly(ctx context.Context, filename string) (md *fmu.ModelDescription, err error) {
	defer func() {
		if r := recover(); r != nil {
			md, err = nil, fmt.Errorf("parsing %s: panic: %v", filename, r)
		}
	}()
	return s.parse(ctx, filename)
}

// fail marks span as failed with err.
func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}
