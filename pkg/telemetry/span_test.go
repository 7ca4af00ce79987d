package telemetry

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

func TestStartSpan_Recorded(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := StartSpan(context.Background(), "swmm.open", attribute.String("swmm.path", "frutal.out"))
	EndSpan(span, nil)

	_, failed := StartSpan(context.Background(), "swmm.extract")
	EndSpan(failed, errors.New("no match"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "swmm.open", spans[0].Name())
	assert.Equal(t, TracerName, spans[0].InstrumentationScope().Name)
	assert.Contains(t, spans[0].Attributes(), attribute.String("swmm.path", "frutal.out"))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "no match", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
}
