package telemetry

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TraceIDHeader is the header key for trace ID
	TraceIDHeader = "X-Trace-ID"

	// unmatchedRoute names spans of requests no route matched, keeping span
	// names bounded when clients request arbitrary paths
	unmatchedRoute = "unmatched"
)

// HTTPConfig configures the server span middleware
type HTTPConfig struct {
	ServiceName string

	// SkipPaths are served without a span
	SkipPaths []string

	// ContextAttributes maps gin context keys to span attribute names.
	// Values are read after the handler chain ran, so keys set by auth or
	// error mapping further down the chain are captured.
	ContextAttributes map[string]string
}

// TracingMiddleware starts one server span per request, named by route template
func TracingMiddleware(cfg *HTTPConfig) gin.HandlerFunc {
	if cfg == nil {
		cfg = &HTTPConfig{}
	}
	tracer := otel.Tracer(cfg.ServiceName)
	propagator := otel.GetTextMapPropagator()

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		attrs := []attribute.KeyValue{
			semconv.HTTPMethod(c.Request.Method),
			semconv.HTTPRoute(route),
			attribute.String("http.client_ip", c.ClientIP()),
		}
		for _, p := range c.Params {
			attrs = append(attrs, attribute.String("http.route.param."+p.Key, p.Value))
		}

		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Header(TraceIDHeader, sc.TraceID().String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		for key, name := range cfg.ContextAttributes {
			if v := c.GetString(key); v != "" {
				span.SetAttributes(attribute.String(name, v))
			}
		}
		for _, e := range c.Errors {
			span.RecordError(e.Err)
		}

		// 4xx responses are the caller's fault and stay Unset on the server span
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
