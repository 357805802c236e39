package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter
}

func TestStartSpan_EndSpanOK(t *testing.T) {
	exporter := setupExporter(t)

	_, span := StartSpan(context.Background(), "collect.all", attribute.String("query", "ai agents"))
	EndSpan(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "collect.all", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("query", "ai agents"))
}

func TestEndSpan_RecordsError(t *testing.T) {
	exporter := setupExporter(t)

	_, span := StartSpan(context.Background(), "fallback.route")
	EndSpan(span, errors.New("tier exploded"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "tier exploded", spans[0].Status.Description)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestGetTracer_UsesCurrentProvider(t *testing.T) {
	exporter := setupExporter(t)

	_, span := GetTracer().Start(context.Background(), "child")
	span.End()

	assert.Len(t, exporter.GetSpans(), 1)
}
