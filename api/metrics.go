package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName        = "start-page/api"
	requestMetricsMsg = "dashboard.request.metrics"
)

type requestMetrics struct {
	logger *log.Logger
	span   trace.Span
	start  time.Time
	method string
	route  string
}

func newRequestMetrics(ctx context.Context, logger *log.Logger, method, route string) (*requestMetrics, context.Context) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
		),
	)
	return &requestMetrics{logger: logger, span: span, start: time.Now(), method: method, route: route}, ctx
}

// Log ends the span and writes one metrics line for the request.
func (m *requestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}
	total := durationToMillis(time.Since(m.start))

	m.span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.Float64("dashboard.request.total_ms", total),
	)
	if err != nil {
		m.span.RecordError(err)
		m.span.SetAttributes(attribute.String("error.message", err.Error()))
	}
	if status >= http.StatusInternalServerError || (status == 0 && err != nil) {
		msg := http.StatusText(status)
		if err != nil {
			msg = err.Error()
		}
		m.span.SetStatus(codes.Error, msg)
	}
	m.span.End()

	if m.logger == nil {
		return
	}
	fields := log.Fields{
		"route":    m.route,
		"method":   m.method,
		"status":   status,
		"total_ms": total,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	entry := m.logger.WithFields(fields)
	switch severityForStatus(status, err) {
	case log.ErrorLevel:
		entry.Error(requestMetricsMsg)
	case log.WarnLevel:
		entry.Warn(requestMetricsMsg)
	default:
		entry.Info(requestMetricsMsg)
	}
}

func severityForStatus(status int, err error) log.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return log.ErrorLevel
	case status >= http.StatusBadRequest:
		return log.WarnLevel
	case status == 0 && err != nil:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// withRequestMetrics traces and logs every request of the group.
func withRequestMetrics(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			metrics, ctx := newRequestMetrics(req.Context(), logger, req.Method, c.Path())
			c.SetRequest(req.WithContext(ctx))
			defer func() {
				metrics.Log(c.Response().Status, err)
			}()
			return next(c)
		}
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
