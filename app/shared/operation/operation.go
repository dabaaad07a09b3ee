// Package operation wraps application service calls with tracing, metrics, logging and
// panic recovery.
package operation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles what a service needs to instrument its operations.
type Telemetry struct {
	Service string
	Logger  *slog.Logger
	Metrics metrics.ConsoleMetrics
	Tracer  trace.Tracer
}

// Func is the signature of a wrapped service operation.
type Func[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// Run executes op inside a span, records attempt/success/failure/duration and turns a panic
// into an error.
func Run[S any, F any](
	ctx context.Context,
	t Telemetry,
	operationName string,
	identifier string,
	op Func[S, F],
) (result results.OperationResult[S, F], err error) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var span trace.Span
	if t.Tracer != nil {
		ctx, span = t.Tracer.Start(ctx, t.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if t.Metrics != nil {
		t.Metrics.RecordOperationAttempt(ctx, operationName, t.Service)
	}
	startTime := time.Now()
	defer func() {
		if t.Metrics != nil {
			t.Metrics.RecordOperationDuration(ctx, operationName, t.Service, time.Since(startTime))
		}
	}()

	logger.DebugContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if t.Metrics != nil {
				t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if t.Metrics != nil {
			t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure", *result.Failure),
		)
	} else {
		logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if t.Metrics != nil {
		t.Metrics.RecordOperationSuccess(ctx, operationName, t.Service)
	}
	return result, nil
}
