package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), &Config{ServiceName: "eventix-test"})
	require.NoError(t, err)
	require.NotNil(t, tel)

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	assert.Empty(t, GetTraceID(ctx))
	assert.NoError(t, Shutdown(context.Background()))
}

func TestInit_EnabledExportsWithServiceResource(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	t.Cleanup(func() { otel.SetTracerProvider(sdktrace.NewTracerProvider()) })

	tel, err := Init(context.Background(), &Config{
		Enabled:     true,
		ServiceName: "eventix-test",
		Environment: "test",
		SampleRatio: 7,
		Exporter:    exporter,
	})
	require.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "BookingService.CreateBooking")
	assert.NotEmpty(t, GetTraceID(ctx))
	span.End()
	// the in-memory exporter drops its spans on shutdown, so flush instead
	require.NoError(t, tel.provider.ForceFlush(context.Background()))
	t.Cleanup(func() { _ = Shutdown(context.Background()) })

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	res := make(map[attribute.Key]string)
	for _, kv := range spans[0].Resource.Attributes() {
		res[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "eventix-test", res["service.name"])
	assert.Equal(t, "eventix", res["service.namespace"])
	assert.Equal(t, "test", res["deployment.environment"])
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 1.0, sampleRatio(0))
	assert.Equal(t, 1.0, sampleRatio(-0.5))
	assert.Equal(t, 1.0, sampleRatio(2))
	assert.Equal(t, 0.25, sampleRatio(0.25))
}

func newRecordingRouter(t *testing.T, cfg *HTTPConfig) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(sdktrace.NewTracerProvider()) })

	_, err := Init(context.Background(), &Config{ServiceName: "eventix-test"})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TracingMiddleware(cfg))
	return r, recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingMiddleware_RecordsSpanAndPropagates(t *testing.T) {
	r, recorder := newRecordingRouter(t, &HTTPConfig{ServiceName: "eventix-test"})

	var headers map[string]string
	r.GET("/events/:id", func(c *gin.Context) {
		headers = InjectHeaders(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
	assert.Contains(t, headers, "traceparent")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /events/:id", spans[0].Name())
	assert.Equal(t, "42", spanAttrs(spans[0])["http.route.param.id"].AsString())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracingMiddleware_ContextAttributesAndStatus(t *testing.T) {
	r, recorder := newRecordingRouter(t, &HTTPConfig{
		ServiceName: "eventix-test",
		ContextAttributes: map[string]string{
			"user_id":    "enduser.id",
			"error_code": "eventix.error_code",
		},
	})

	r.POST("/bookings", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("error_code", "INTERNAL_ERROR")
		_ = c.Error(errors.New("connection reset"))
		c.Status(http.StatusInternalServerError)
	})
	r.GET("/events/:id", func(c *gin.Context) {
		c.Set("error_code", "NOT_FOUND")
		c.Status(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/bookings", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/missing", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	failed := spanAttrs(spans[0])
	assert.Equal(t, "user-1", failed["enduser.id"].AsString())
	assert.Equal(t, "INTERNAL_ERROR", failed["eventix.error_code"].AsString())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)

	rejected := spanAttrs(spans[1])
	assert.Equal(t, "NOT_FOUND", rejected["eventix.error_code"].AsString())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
	_, anon := rejected["enduser.id"]
	assert.False(t, anon)
}

func TestTracingMiddleware_SkipsHealthAndBoundsUnmatched(t *testing.T) {
	r, recorder := newRecordingRouter(t, &HTTPConfig{
		ServiceName: "eventix-test",
		SkipPaths:   []string{"/health"},
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, w.Header().Get(TraceIDHeader))
	assert.Empty(t, recorder.Ended())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin/setup.php", nil))
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET unmatched", spans[0].Name())
}
