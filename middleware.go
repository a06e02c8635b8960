package transloader

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the OTel instrumentation scope for this package.
const instrumentationName = "github.com/six8/transloader"

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Middleware wraps an http.RoundTripper with cross-cutting logic around
// each API request.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain applies middleware to a base transport. Middleware are applied
// right-to-left: the first in the list is the outermost wrapper.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// Logging returns middleware that logs each request's outcome and timing.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)

			if err != nil {
				logger.Error("request failed",
					slog.String("method", req.Method),
					slog.String("url", req.URL.String()),
					slog.Duration("elapsed", elapsed),
					slog.String("error", err.Error()),
				)
			} else {
				logger.Info("request completed",
					slog.String("method", req.Method),
					slog.String("url", req.URL.String()),
					slog.Int("status", resp.StatusCode),
					slog.Duration("elapsed", elapsed),
				)
			}
			return resp, err
		})
	}
}

// Tracing returns middleware that wraps each request in an OpenTelemetry
// span using the global TracerProvider. Without a configured provider the
// noop tracer makes this a pass-through.
//
// Span attributes: http.method, url.full, http.status_code. On transport
// error the span status is set to codes.Error with the error message.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(instrumentationName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx, span := tracer.Start(req.Context(), "transloadit.request",
				trace.WithAttributes(
					attribute.String("http.method", req.Method),
					attribute.String("url.full", req.URL.String()),
				),
				trace.WithSpanKind(trace.SpanKindClient),
			)
			defer span.End()

			resp, err := next.RoundTrip(req.WithContext(ctx))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return resp, err
			}
			span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
			span.SetStatus(codes.Ok, "")
			return resp, nil
		})
	}
}

// Metrics returns middleware that records per-request metrics using the
// global OTel MeterProvider. Without a configured provider the noop
// instruments make this a pass-through.
//
// Instruments:
//   - transloadit.request.duration (Float64Histogram): round-trip time in
//     seconds, with attributes: method, host, status
//   - transloadit.requests (Int64Counter): total requests,
//     with attributes: method, host, status
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(instrumentationName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time. On error
	// the OTel API returns noop instruments, so the middleware degrades
	// gracefully.
	duration, dErr := meter.Float64Histogram(
		"transloadit.request.duration",
		metric.WithDescription("Duration of API round trips in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr

	requests, rErr := meter.Int64Counter(
		"transloadit.requests",
		metric.WithDescription("Total number of API requests"),
		metric.WithUnit("{request}"),
	)
	_ = rErr

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start).Seconds()

			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}

			attrs := metric.WithAttributes(
				attribute.String("method", req.Method),
				attribute.String("host", req.URL.Host),
				attribute.String("status", status),
			)

			ctx := req.Context()
			duration.Record(ctx, elapsed, attrs)
			requests.Add(ctx, 1, attrs)

			return resp, err
		})
	}
}
