// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, ExporterNone, cfg.Exporter)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.Equal(t, "modhost", cfg.ServiceName)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("With tracing disabled", func(t *testing.T) {
		provider, err := NewProvider(ctx, DefaultConfig())
		require.NoError(t, err)
		assert.False(t, provider.Enabled())

		_, span := provider.Tracer().Start(ctx, "noop")
		assert.False(t, span.SpanContext().IsValid())
		span.End()
		require.NoError(t, provider.Shutdown(ctx))
	})
	t.Run("With span recorder", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		cfg := Config{Enabled: true, Exporter: ExporterNone, ServiceName: "test"}
		provider, err := NewProvider(ctx, cfg, sdktrace.WithSpanProcessor(recorder))
		require.NoError(t, err)
		assert.True(t, provider.Enabled())

		_, span := provider.Tracer().Start(ctx, "deploy")
		End(span, errors.New("boom"))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "deploy", spans[0].Name())
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "boom", spans[0].Status().Description)
		require.NoError(t, provider.Shutdown(ctx))
	})
	t.Run("With unsupported exporter", func(t *testing.T) {
		_, err := NewProvider(ctx, Config{Enabled: true, Exporter: "zipkin"})
		require.Error(t, err)
	})
}

func TestNoopTracer(t *testing.T) {
	_, span := NoopTracer().Start(context.Background(), "x")
	End(span, nil)
	assert.False(t, span.IsRecording())
}
