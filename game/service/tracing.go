package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

var tracer = otel.Tracer("rushhour.service")

// startSolveSpan creates a span for one solve request
func startSolveSpan(ctx context.Context, source, puzzle, requestID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "GameService.Solve",
		trace.WithAttributes(
			attribute.String("solve.source", source),
			attribute.String("solve.puzzle", puzzle),
			attribute.String("solve.request_id", requestID),
		),
	)
}

// setSolveSpanResult records the outcome on a solve span
func setSolveSpanResult(span trace.Span, res *engine.Result, shared bool) {
	span.SetAttributes(
		attribute.String("solve.outcome", res.Outcome.String()),
		attribute.Int("solve.steps", res.Steps()),
		attribute.Int("solve.expanded", res.Expanded),
		attribute.Bool("solve.shared", shared),
	)
}

// setSpanError marks a span failed
func setSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
